package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aircheck/internal/cache"
	"aircheck/internal/domain"
	"aircheck/internal/logger"

	"github.com/sourcegraph/conc/pool"
)

// defaultMaxQueries bounds concurrent provider calls per report
const defaultMaxQueries = 8

// DetectionSet is the normalized, deterministically ordered detection list
// for one report build. Events are indexed by (material, stream, local date)
// for candidate lookup during matching; indices identify events for claiming.
type DetectionSet struct {
	events []domain.DetectionEvent
	index  map[string][]int
}

func candidateKey(acrID, streamID, date string) string {
	return acrID + "|" + streamID + "|" + date
}

// newDetectionSet builds a set from already-normalized events, preserving
// their order
func newDetectionSet(events []domain.DetectionEvent) *DetectionSet {
	set := &DetectionSet{index: make(map[string][]int)}
	for _, event := range events {
		set.add(event)
	}
	return set
}

// add appends a normalized event and indexes it for candidate lookup
func (s *DetectionSet) add(event domain.DetectionEvent) {
	idx := len(s.events)
	s.events = append(s.events, event)
	k := candidateKey(event.ACRID, event.StreamID, event.LocalDate())
	s.index[k] = append(s.index[k], idx)
}

// Len returns the number of normalized events
func (s *DetectionSet) Len() int {
	return len(s.events)
}

// Event returns the event at index i
func (s *DetectionSet) Event(i int) domain.DetectionEvent {
	return s.events[i]
}

// Candidates returns, in provider order, the indices of events matching the
// given material, stream and local date
func (s *DetectionSet) Candidates(acrID, streamID, date string) []int {
	return s.index[candidateKey(acrID, streamID, date)]
}

// Normalizer converts raw provider detections into a canonical local-time
// detection set for one project. All provider queries for a report pass
// through here so identical (stream, date) lookups are issued exactly once.
type Normalizer struct {
	provider   domain.DetectionProvider
	utcOffset  time.Duration
	maxQueries int
	log        *logger.Logger
}

// NewNormalizer creates a Normalizer applying the given fixed UTC offset
func NewNormalizer(provider domain.DetectionProvider, utcOffsetMinutes int) *Normalizer {
	return &Normalizer{
		provider:   provider,
		utcOffset:  time.Duration(utcOffsetMinutes) * time.Minute,
		maxQueries: defaultMaxQueries,
		log:        logger.GetGlobalLogger(),
	}
}

// providerQuery identifies one distinct provider call
type providerQuery struct {
	streamID string
	utcDate  time.Time
}

// Collect fetches and normalizes every detection the given slots can match.
//
// The provider's per-day query is keyed by UTC date, which does not align
// with local-day boundaries once the UTC offset is applied, so each requested
// (stream, local date) pair queries both that date and the following one.
// Every returned event is shifted into local time and kept only when its
// local date is one the schedule actually requested for that stream.
//
// Queries fan out concurrently; the first provider failure cancels the
// remaining ones and fails the whole collection.
func (n *Normalizer) Collect(ctx context.Context, project *domain.Project, slots []domain.ScheduledSlot) (*DetectionSet, error) {
	// Scheduled (material, stream, local date) combinations drive the
	// cross-day noise filter; distinct (stream, date) pairs drive the query
	// set. A detection only enters the set when its material was scheduled
	// on that stream and local date at all.
	requested := make(map[string]bool)
	queries := make(map[string]providerQuery)
	for _, slot := range slots {
		requested[candidateKey(slot.ACRID, slot.StreamID, slot.Date)] = true

		day, err := time.Parse(domain.DateLayout, slot.Date)
		if err != nil {
			continue
		}
		for _, utcDate := range []time.Time{day, day.AddDate(0, 0, 1)} {
			q := providerQuery{streamID: slot.StreamID, utcDate: utcDate}
			queries[q.streamID+"|"+q.utcDate.Format(domain.DateLayout)] = q
		}
	}

	keys := make([]string, 0, len(queries))
	for key := range queries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	n.log.Debug("Collecting detections", map[string]interface{}{
		"project_id": project.ProviderID,
		"queries":    len(keys),
	})

	memo := cache.NewQueryMemo()
	p := pool.New().
		WithErrors().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(n.maxQueries)

	for _, key := range keys {
		q := queries[key]
		memoKey := key
		p.Go(func(ctx context.Context) error {
			_, err := memo.Do(memoKey, func() ([]domain.DetectionEvent, error) {
				return n.provider.FetchDetections(ctx, project.ProviderID, q.streamID, q.utcDate)
			})
			return err
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("detection collection failed: %w", err)
	}

	// Assemble in sorted query order so the set is identical no matter how
	// the concurrent fetches interleaved.
	set := &DetectionSet{index: make(map[string][]int)}
	for _, key := range keys {
		q := queries[key]
		events, err := memo.Do(key, func() ([]domain.DetectionEvent, error) {
			return n.provider.FetchDetections(ctx, project.ProviderID, q.streamID, q.utcDate)
		})
		if err != nil {
			return nil, fmt.Errorf("detection collection failed: %w", err)
		}

		for _, event := range events {
			event.LocalTime = event.UTCTime.Add(n.utcOffset)

			// Drop cross-day noise from the dual-date querying along with
			// detections of materials never scheduled on this stream/date
			if !requested[candidateKey(event.ACRID, event.StreamID, event.LocalDate())] {
				continue
			}

			set.add(event)
		}
	}

	n.log.Debug("Detection set assembled", map[string]interface{}{
		"project_id": project.ProviderID,
		"events":     set.Len(),
	})

	return set, nil
}

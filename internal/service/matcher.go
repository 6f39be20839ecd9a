package service

import (
	"sort"
	"time"

	"aircheck/internal/domain"
)

// Match reconciles the expanded schedule against the normalized detection
// set and returns the complete classified result list.
//
// Slots are resolved in their (material, stream, date, time) order. Each slot
// claims the first unclaimed candidate, in provider order, whose absolute
// minute difference from the scheduled time is within the project tolerance;
// a claimed event can satisfy no other slot. Slots with no qualifying
// candidate are MISSING. Every event left unclaimed after all slots resolve
// is emitted once as OUT_OF_SCHEDULE, so each normalized event appears in
// the output exactly once.
func Match(project *domain.Project, slots []domain.ScheduledSlot, detections *DetectionSet) []domain.MatchResult {
	tolerance := project.ToleranceMinutes
	claimed := make(map[int]bool)
	results := make([]domain.MatchResult, 0, len(slots)+detections.Len())

	for _, slot := range slots {
		result := domain.MatchResult{
			StreamID:      slot.StreamID,
			StreamName:    project.StreamName(slot.StreamID),
			ACRID:         slot.ACRID,
			Title:         slot.MaterialName,
			Date:          slot.Date,
			ScheduledTime: slot.Time,
			Status:        domain.StatusMissing,
		}

		for _, idx := range detections.Candidates(slot.ACRID, slot.StreamID, slot.Date) {
			if claimed[idx] {
				continue
			}
			event := detections.Event(idx)
			offset := offsetMinutes(event.LocalTime, slot.ScheduledAt)
			if abs(offset) > tolerance {
				continue
			}

			claimed[idx] = true
			result.Status = domain.StatusDetected
			result.Title = event.Title
			result.DetectedTime = event.LocalTime.Format(domain.ClockLayout)
			result.OffsetMinutes = &offset
			break
		}

		results = append(results, result)
	}

	// Unclaimed detections are real airings outside every tolerance window
	var extras []domain.MatchResult
	for i := 0; i < detections.Len(); i++ {
		if claimed[i] {
			continue
		}
		event := detections.Event(i)
		extras = append(extras, domain.MatchResult{
			StreamID:     event.StreamID,
			StreamName:   project.StreamName(event.StreamID),
			ACRID:        event.ACRID,
			Title:        event.Title,
			Date:         event.LocalDate(),
			DetectedTime: event.LocalTime.Format(domain.ClockLayout),
			Status:       domain.StatusOutOfSchedule,
		})
	}

	sort.SliceStable(extras, func(i, j int) bool {
		a, b := extras[i], extras[j]
		if a.StreamID != b.StreamID {
			return a.StreamID < b.StreamID
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.DetectedTime != b.DetectedTime {
			return a.DetectedTime < b.DetectedTime
		}
		return a.ACRID < b.ACRID
	})

	return append(results, extras...)
}

// offsetMinutes returns the signed whole-minute difference detected-scheduled,
// truncating the second-precision difference toward zero. Negative = early.
func offsetMinutes(detected, scheduled time.Time) int {
	return int(detected.Unix()-scheduled.Unix()) / 60
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

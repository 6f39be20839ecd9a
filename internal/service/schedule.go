package service

import (
	"sort"
	"time"

	"aircheck/internal/domain"
)

// BuildSlots expands a project's materials into the full list of scheduled
// slots: the cross product of each material's active dates, scheduled times
// and target streams. The result is sorted by material, stream, date and
// scheduled time so downstream matching is deterministic regardless of the
// order materials arrive in.
//
// A material with no scheduled times, dates or streams contributes nothing.
func BuildSlots(project *domain.Project) []domain.ScheduledSlot {
	var slots []domain.ScheduledSlot

	for _, material := range project.Materials {
		for _, date := range material.ActiveDates {
			day, err := time.Parse(domain.DateLayout, date)
			if err != nil {
				// Unreachable after validation; an unparseable date expands to nothing
				continue
			}
			for _, clock := range material.Times {
				t, err := time.Parse(domain.TimeLayout, clock)
				if err != nil {
					continue
				}
				// Local wall-clock datetimes are modeled in UTC; only
				// local-to-local differences are ever taken.
				scheduledAt := time.Date(day.Year(), day.Month(), day.Day(),
					t.Hour(), t.Minute(), 0, 0, time.UTC)

				for _, streamID := range material.Streams {
					slots = append(slots, domain.ScheduledSlot{
						ACRID:        material.ACRID,
						MaterialName: material.Name,
						StreamID:     streamID,
						Date:         date,
						Time:         clock,
						ScheduledAt:  scheduledAt,
					})
				}
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.ACRID != b.ACRID {
			return a.ACRID < b.ACRID
		}
		if a.StreamID != b.StreamID {
			return a.StreamID < b.StreamID
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})

	return slots
}

package service

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"aircheck/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildRandomProject derives a project whose materials, dates and times are
// generated from small integer seeds so slot counts stay bounded
func buildRandomProject(numMaterials, numTimes, tolerance int) *domain.Project {
	project := &domain.Project{
		ProviderID:       "prop-project",
		Name:             "Property Campaign",
		ToleranceMinutes: tolerance,
		StreamCatalog: []domain.StreamCatalogEntry{
			{StreamID: "s1", Name: "Stream One"},
			{StreamID: "s2", Name: "Stream Two"},
		},
	}

	for i := 0; i < numMaterials; i++ {
		times := make([]string, 0, numTimes)
		for j := 0; j < numTimes; j++ {
			times = append(times, fmt.Sprintf("%02d:%02d", (6+j*3)%24, (i*7)%60))
		}
		project.Materials = append(project.Materials, domain.Material{
			ACRID:       fmt.Sprintf("acr-%d", i),
			Name:        fmt.Sprintf("Material %d", i),
			ActiveDates: []string{"2025-06-17"},
			Times:       times,
			Streams:     []string{"s1", "s2"}[:1+i%2],
		})
	}

	return project
}

// buildRandomDetections places one detection near every nth slot plus some
// stray events far from any schedule
func buildRandomDetections(project *domain.Project, slots []domain.ScheduledSlot, jitterMinutes int) []domain.DetectionEvent {
	var events []domain.DetectionEvent
	for i, slot := range slots {
		if i%2 == 1 {
			continue
		}
		at := slot.ScheduledAt.Add(time.Duration(jitterMinutes) * time.Minute)
		events = append(events, domain.DetectionEvent{
			ACRID:     slot.ACRID,
			StreamID:  slot.StreamID,
			Title:     slot.MaterialName,
			UTCTime:   at.Add(6 * time.Hour),
			LocalTime: at,
		})
	}
	if len(project.Materials) > 0 {
		// A stray airing three hours before the first slot of each material
		for _, m := range project.Materials {
			at := time.Date(2025, 6, 17, 3, 0, 0, 0, time.UTC)
			events = append(events, domain.DetectionEvent{
				ACRID:     m.ACRID,
				StreamID:  m.Streams[0],
				Title:     m.Name,
				UTCTime:   at.Add(6 * time.Hour),
				LocalTime: at,
			})
		}
	}
	return events
}

// Every slot resolves to exactly one DETECTED or MISSING result; no slot is
// left unclassified and none is classified twice
func TestProperty_ClassificationCompleteness(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every slot yields exactly one slot result", prop.ForAll(
		func(numMaterials, numTimes, tolerance, jitter int) bool {
			project := buildRandomProject(numMaterials, numTimes, tolerance)
			slots := BuildSlots(project)
			detections := newDetectionSet(buildRandomDetections(project, slots, jitter))

			results := Match(project, slots, detections)

			type slotKey struct{ acr, stream, date, clock string }
			seen := make(map[slotKey]int)
			for _, r := range results {
				if r.Status == domain.StatusOutOfSchedule {
					continue
				}
				seen[slotKey{r.ACRID, r.StreamID, r.Date, r.ScheduledTime}]++
			}

			if len(seen) != len(slots) {
				return false
			}
			for _, count := range seen {
				if count != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 3),
		gen.IntRange(0, 10),
		gen.IntRange(-15, 15),
	))

	properties.TestingRun(t)
}

// Every normalized detection appears in the output exactly once: absorbed
// into a DETECTED slot or emitted as OUT_OF_SCHEDULE, never both
func TestProperty_EventConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("detected plus out-of-schedule equals event count", prop.ForAll(
		func(numMaterials, numTimes, tolerance, jitter int) bool {
			project := buildRandomProject(numMaterials, numTimes, tolerance)
			slots := BuildSlots(project)
			events := buildRandomDetections(project, slots, jitter)

			results := Match(project, slots, newDetectionSet(events))

			detected, outOfSchedule := 0, 0
			for _, r := range results {
				switch r.Status {
				case domain.StatusDetected:
					detected++
				case domain.StatusOutOfSchedule:
					outOfSchedule++
				}
			}

			return detected+outOfSchedule == len(events)
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 3),
		gen.IntRange(0, 10),
		gen.IntRange(-15, 15),
	))

	properties.TestingRun(t)
}

// Re-running the matcher on the same normalized input yields identical
// ordering and classification
func TestProperty_MatcherDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("same input, same output", prop.ForAll(
		func(numMaterials, numTimes, tolerance, jitter int) bool {
			project := buildRandomProject(numMaterials, numTimes, tolerance)
			slots := BuildSlots(project)
			events := buildRandomDetections(project, slots, jitter)

			first := Match(project, slots, newDetectionSet(events))
			second := Match(project, slots, newDetectionSet(events))

			return reflect.DeepEqual(first, second)
		},
		gen.IntRange(1, 4),
		gen.IntRange(1, 3),
		gen.IntRange(0, 10),
		gen.IntRange(-15, 15),
	))

	properties.TestingRun(t)
}

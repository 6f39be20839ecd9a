package service

import (
	"testing"

	"aircheck/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSummarize_BucketsByDateAndStream(t *testing.T) {
	results := []domain.MatchResult{
		{Date: "2025-06-17", StreamName: "Stream One", Status: domain.StatusDetected},
		{Date: "2025-06-17", StreamName: "Stream One", Status: domain.StatusMissing},
		{Date: "2025-06-17", StreamName: "Stream One", Status: domain.StatusOutOfSchedule},
		{Date: "2025-06-17", StreamName: "Stream Two", Status: domain.StatusDetected},
		{Date: "2025-06-18", StreamName: "Stream One", Status: domain.StatusMissing},
	}

	summary := Summarize(results)

	if len(summary.Buckets) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(summary.Buckets))
	}

	first := summary.Buckets[0]
	if first.Date != "2025-06-17" || first.StreamName != "Stream One" {
		t.Errorf("Expected first bucket 2025-06-17/Stream One, got %s/%s", first.Date, first.StreamName)
	}
	if first.Detected != 1 || first.Missing != 1 || first.OutOfSchedule != 1 {
		t.Errorf("Unexpected first bucket counts: %+v", first)
	}
	if first.Total != 2 {
		t.Errorf("Expected total 2 (missing excluded), got %d", first.Total)
	}

	second := summary.Buckets[1]
	if second.StreamName != "Stream Two" {
		t.Errorf("Expected same-date buckets ordered by stream name, got %s", second.StreamName)
	}

	third := summary.Buckets[2]
	if third.Date != "2025-06-18" {
		t.Errorf("Expected buckets ordered by date, got %s", third.Date)
	}
}

func TestSummarize_GrandTotals(t *testing.T) {
	results := []domain.MatchResult{
		{Date: "2025-06-17", StreamName: "A", Status: domain.StatusDetected},
		{Date: "2025-06-17", StreamName: "B", Status: domain.StatusDetected},
		{Date: "2025-06-18", StreamName: "A", Status: domain.StatusMissing},
		{Date: "2025-06-18", StreamName: "B", Status: domain.StatusOutOfSchedule},
	}

	summary := Summarize(results)

	totals := summary.Totals
	if totals.StreamName != "TOTAL" {
		t.Errorf("Expected TOTAL label, got %q", totals.StreamName)
	}
	if totals.Detected != 2 || totals.Missing != 1 || totals.OutOfSchedule != 1 {
		t.Errorf("Unexpected totals: %+v", totals)
	}
	if totals.Total != 3 {
		t.Errorf("Expected grand total 3, got %d", totals.Total)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	if len(summary.Buckets) != 0 {
		t.Errorf("Expected no buckets, got %d", len(summary.Buckets))
	}
	if summary.Totals.Total != 0 {
		t.Errorf("Expected zero grand total, got %d", summary.Totals.Total)
	}
}

// For every bucket, detected+missing+out_of_schedule equals the number of
// results sharing that bucket's key, and the grand total row sums the buckets
func TestProperty_AggregateConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	statuses := []domain.MatchStatus{domain.StatusDetected, domain.StatusMissing, domain.StatusOutOfSchedule}

	properties.Property("bucket counts match result counts", prop.ForAll(
		func(seeds []int) bool {
			var results []domain.MatchResult
			for _, seed := range seeds {
				if seed < 0 {
					seed = -seed
				}
				results = append(results, domain.MatchResult{
					Date:       []string{"2025-06-17", "2025-06-18", "2025-06-19"}[seed%3],
					StreamName: []string{"A", "B"}[(seed/3)%2],
					Status:     statuses[(seed/6)%3],
				})
			}

			summary := Summarize(results)

			counted := 0
			for _, bucket := range summary.Buckets {
				want := 0
				for _, r := range results {
					if r.Date == bucket.Date && r.StreamName == bucket.StreamName {
						want++
					}
				}
				if bucket.Detected+bucket.Missing+bucket.OutOfSchedule != want {
					return false
				}
				if bucket.Total != bucket.Detected+bucket.OutOfSchedule {
					return false
				}
				counted += want
			}
			if counted != len(results) {
				return false
			}

			totals := domain.SummaryBucket{}
			for _, bucket := range summary.Buckets {
				totals.Detected += bucket.Detected
				totals.Missing += bucket.Missing
				totals.OutOfSchedule += bucket.OutOfSchedule
				totals.Total += bucket.Total
			}
			return totals.Detected == summary.Totals.Detected &&
				totals.Missing == summary.Totals.Missing &&
				totals.OutOfSchedule == summary.Totals.OutOfSchedule &&
				totals.Total == summary.Totals.Total
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

package service

import (
	"sort"

	"aircheck/internal/domain"
)

// Summarize folds the classified results into per-(date, stream display
// name) buckets plus a grand-total row. Buckets are ordered by ascending
// date, then stream name. The Total column counts detected plus
// out-of-schedule airings; missing slots never aired, so they are reported
// in their own column and excluded from Total.
func Summarize(results []domain.MatchResult) domain.Summary {
	type key struct {
		date   string
		stream string
	}

	buckets := make(map[key]*domain.SummaryBucket)
	for _, result := range results {
		k := key{date: result.Date, stream: result.StreamName}
		bucket, ok := buckets[k]
		if !ok {
			bucket = &domain.SummaryBucket{Date: result.Date, StreamName: result.StreamName}
			buckets[k] = bucket
		}

		switch result.Status {
		case domain.StatusDetected:
			bucket.Detected++
		case domain.StatusMissing:
			bucket.Missing++
		case domain.StatusOutOfSchedule:
			bucket.OutOfSchedule++
		}
		bucket.Total = bucket.Detected + bucket.OutOfSchedule
	}

	ordered := make([]domain.SummaryBucket, 0, len(buckets))
	for _, bucket := range buckets {
		ordered = append(ordered, *bucket)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].StreamName < ordered[j].StreamName
	})

	totals := domain.SummaryBucket{StreamName: "TOTAL"}
	for _, bucket := range ordered {
		totals.Detected += bucket.Detected
		totals.Missing += bucket.Missing
		totals.OutOfSchedule += bucket.OutOfSchedule
		totals.Total += bucket.Total
	}

	return domain.Summary{Buckets: ordered, Totals: totals}
}

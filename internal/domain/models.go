package domain

import "time"

// DateLayout is the calendar-date format used across the schedule model.
const DateLayout = "2006-01-02"

// TimeLayout is the minute-precision time-of-day format used for scheduled times.
const TimeLayout = "15:04"

// ClockLayout is the second-precision format used for detected local times.
const ClockLayout = "15:04:05"

// Material represents a schedulable item monitored for on-air detection
type Material struct {
	ACRID       string   `json:"acr_id"`       // Provider content identifier
	Name        string   `json:"name"`         // Display name
	Category    string   `json:"category"`     // Free-form category label
	ActiveDates []string `json:"active_dates"` // Calendar dates (YYYY-MM-DD)
	Times       []string `json:"times"`        // Scheduled times of day (HH:MM, local)
	Streams     []string `json:"streams"`      // Target stream identifiers
	Conflicts   []string `json:"conflicts_with,omitempty"`
	BackToBack  []string `json:"back_to_back,omitempty"`
}

// StreamCatalogEntry maps a stream identifier to its display name
type StreamCatalogEntry struct {
	StreamID string `json:"stream_id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
}

// Project is the report request descriptor: schedule, catalog and metadata.
// Client/brand/product fields are pass-through and never influence matching.
type Project struct {
	ID               string               `json:"id,omitempty"`
	ProviderID       string               `json:"project_id"` // Provider-side project identifier
	Name             string               `json:"name"`
	Client           string               `json:"client,omitempty"`
	Agency           string               `json:"agency,omitempty"`
	Brand            string               `json:"brand,omitempty"`
	Product          string               `json:"product,omitempty"`
	ClientType       string               `json:"client_type,omitempty"`
	ToleranceMinutes int                  `json:"tolerance_minutes"`
	ReportTypes      []string             `json:"report_types,omitempty"`
	Recipients       []string             `json:"recipients,omitempty"`
	Materials        []Material           `json:"materials"`
	StreamCatalog    []StreamCatalogEntry `json:"stream_catalog,omitempty"`
	CreatedAt        time.Time            `json:"created_at,omitempty"`
	UpdatedAt        time.Time            `json:"updated_at,omitempty"`
}

// StreamName resolves a stream identifier to its catalog display name.
// Identifiers absent from the catalog fall back to the raw identifier.
func (p *Project) StreamName(streamID string) string {
	for _, entry := range p.StreamCatalog {
		if entry.StreamID == streamID && entry.Name != "" {
			return entry.Name
		}
	}
	return streamID
}

// ScheduledSlot is one expected airing: the cross product of a material's
// active dates, scheduled times and target streams. Uniquely keyed by
// (ACRID, StreamID, Date, Time).
type ScheduledSlot struct {
	ACRID        string
	MaterialName string
	StreamID     string
	Date         string    // YYYY-MM-DD (local)
	Time         string    // HH:MM (local)
	ScheduledAt  time.Time // Local wall-clock datetime of the expected airing
}

// DetectionEvent is a single provider-reported recognition, already shifted
// into local time by the configured UTC offset.
type DetectionEvent struct {
	ACRID     string
	StreamID  string
	Title     string
	Score     float64 // Pass-through confidence, unused by matching
	UTCTime   time.Time
	LocalTime time.Time
}

// LocalDate returns the event's local calendar date (YYYY-MM-DD)
func (e DetectionEvent) LocalDate() string {
	return e.LocalTime.Format(DateLayout)
}

// MatchStatus classifies a match result
type MatchStatus string

const (
	// StatusDetected marks a slot satisfied by a detection within tolerance
	StatusDetected MatchStatus = "DETECTED"
	// StatusMissing marks a slot with no qualifying detection
	StatusMissing MatchStatus = "MISSING"
	// StatusOutOfSchedule marks a detection not claimed by any slot
	StatusOutOfSchedule MatchStatus = "OUT_OF_SCHEDULE"
)

// MatchResult is one classified outcome: a resolved slot (DETECTED or
// MISSING) or an unclaimed detection (OUT_OF_SCHEDULE). Empty strings mean
// "not applicable for this status"; OffsetMinutes is nil unless DETECTED.
type MatchResult struct {
	StreamID      string
	StreamName    string
	ACRID         string
	Title         string
	Date          string // YYYY-MM-DD (local)
	ScheduledTime string // HH:MM, empty for OUT_OF_SCHEDULE
	DetectedTime  string // HH:MM:SS, empty for MISSING
	OffsetMinutes *int   // Signed detected-scheduled, negative = early
	Status        MatchStatus
}

// SummaryBucket holds per-(date, stream) status counts.
// Total counts detected + out-of-schedule; missing is its own column.
type SummaryBucket struct {
	Date          string
	StreamName    string
	Detected      int
	Missing       int
	OutOfSchedule int
	Total         int
}

// Summary is the aggregate view of one report: ordered buckets plus a
// grand-total row summing every column across buckets.
type Summary struct {
	Buckets []SummaryBucket
	Totals  SummaryBucket
}

// Report is the complete build-once output consumed by the exporter
type Report struct {
	Project     *Project
	Results     []MatchResult
	Summary     Summary
	GeneratedAt time.Time
}

package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"time"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed 24-hour HH:MM time of day
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// Validate checks the project descriptor against the report-request schema.
// It collects every offending field path into a single *ValidationError so
// the caller sees the whole problem at once, and never returns a partially
// checked result.
func (p *Project) Validate() error {
	var fields []string

	if p.ProviderID == "" {
		fields = append(fields, "project_id")
	}
	if p.ToleranceMinutes < 0 {
		fields = append(fields, "tolerance_minutes")
	}
	if len(p.Materials) == 0 {
		fields = append(fields, "materials")
	}

	for i, m := range p.Materials {
		if m.ACRID == "" {
			fields = append(fields, fmt.Sprintf("materials[%d].acr_id", i))
		}
		for j, d := range m.ActiveDates {
			if !ValidDate(d) {
				fields = append(fields, fmt.Sprintf("materials[%d].active_dates[%d]", i, j))
			}
		}
		for j, t := range m.Times {
			if !ValidTime(t) {
				fields = append(fields, fmt.Sprintf("materials[%d].times[%d]", i, j))
			}
		}
		for j, s := range m.Streams {
			if s == "" {
				fields = append(fields, fmt.Sprintf("materials[%d].streams[%d]", i, j))
			}
		}
	}

	for i, entry := range p.StreamCatalog {
		if entry.StreamID == "" {
			fields = append(fields, fmt.Sprintf("stream_catalog[%d].stream_id", i))
		}
	}

	for i, addr := range p.Recipients {
		if _, err := mail.ParseAddress(addr); err != nil {
			fields = append(fields, fmt.Sprintf("recipients[%d]", i))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

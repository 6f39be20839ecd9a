package service

import (
	"context"
	"time"

	"aircheck/internal/domain"
	"aircheck/internal/logger"
)

// reportService implements the domain.ReportService interface
type reportService struct {
	normalizer *Normalizer
	log        *logger.Logger
}

// NewReportService creates a ReportService reconciling schedules against the
// given detection provider, shifting provider timestamps by the fixed UTC
// offset in minutes.
func NewReportService(provider domain.DetectionProvider, utcOffsetMinutes int) domain.ReportService {
	return &reportService{
		normalizer: NewNormalizer(provider, utcOffsetMinutes),
		log:        logger.GetGlobalLogger(),
	}
}

// GenerateReport builds one complete reconciliation report. Validation
// failures and provider failures abort the build; a returned report is
// always complete.
func (s *reportService) GenerateReport(ctx context.Context, project *domain.Project) (*domain.Report, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	slots := BuildSlots(project)

	detections, err := s.normalizer.Collect(ctx, project, slots)
	if err != nil {
		return nil, err
	}

	results := Match(project, slots, detections)
	summary := Summarize(results)

	s.log.Info("Report generated", map[string]interface{}{
		"project_id": project.ProviderID,
		"slots":      len(slots),
		"detections": detections.Len(),
		"results":    len(results),
	})

	return &domain.Report{
		Project:     project,
		Results:     results,
		Summary:     summary,
		GeneratedAt: time.Now(),
	}, nil
}

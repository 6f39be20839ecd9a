// Package seed populates an empty database with a sample project so a fresh
// development environment has something to generate reports against.
package seed

import (
	"context"
	"fmt"
	"time"

	"aircheck/internal/domain"
	"aircheck/internal/logger"
	"aircheck/internal/repository"

	"github.com/google/uuid"
)

// SampleProject returns the development sample descriptor
func SampleProject() *domain.Project {
	now := time.Now()
	return &domain.Project{
		ID:               uuid.New().String(),
		ProviderID:       "12345",
		Name:             "Sample Campaign",
		Client:           "Acme Beverages",
		Agency:           "Northside Media",
		Brand:            "Acme Cola",
		Product:          "Cola 600ml",
		ClientType:       "direct",
		ToleranceMinutes: 5,
		ReportTypes:      []string{"detail", "summary"},
		Materials: []domain.Material{
			{
				ACRID:       "e9b1c2d3f4a5b6c7d8e9f0a1b2c3d4e5",
				Name:        "Cola Summer 20s",
				Category:    "spot",
				ActiveDates: []string{now.Format(domain.DateLayout)},
				Times:       []string{"08:00", "13:30", "20:00"},
				Streams:     []string{"radio-centro-fm"},
			},
			{
				ACRID:       "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6",
				Name:        "Cola Summer 30s",
				Category:    "spot",
				ActiveDates: []string{now.Format(domain.DateLayout)},
				Times:       []string{"10:00", "18:00"},
				Streams:     []string{"radio-centro-fm", "tv-canal-9"},
			},
		},
		StreamCatalog: []domain.StreamCatalogEntry{
			{StreamID: "radio-centro-fm", Name: "Radio Centro 97.7 FM"},
			{StreamID: "tv-canal-9", Name: "Canal 9"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Run inserts the sample project when the store is empty. Seeding a
// non-empty database is a no-op so repeated restarts stay idempotent.
func Run(ctx context.Context, projectRepo repository.ProjectRepository) error {
	count, err := projectRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check project count: %w", err)
	}
	if count > 0 {
		return nil
	}

	project := SampleProject()
	if err := projectRepo.Create(ctx, project); err != nil {
		return fmt.Errorf("failed to seed sample project: %w", err)
	}

	logger.Info("Seeded sample project", map[string]interface{}{
		"id":        project.ID,
		"materials": len(project.Materials),
	})
	return nil
}

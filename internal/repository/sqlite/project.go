package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aircheck/internal/domain"
)

// ProjectRepository implements repository.ProjectRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project descriptor with its materials and stream catalog
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects
			(id, provider_id, name, client, agency, brand, product, client_type,
			 tolerance_minutes, report_types, recipients, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.ProviderID,
		project.Name,
		project.Client,
		project.Agency,
		project.Brand,
		project.Product,
		project.ClientType,
		project.ToleranceMinutes,
		mustJSON(project.ReportTypes),
		mustJSON(project.Recipients),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	for i, material := range project.Materials {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO materials
				(project_id, acr_id, name, category, active_dates, times, streams,
				 conflicts, back_to_back, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.ID,
			material.ACRID,
			material.Name,
			material.Category,
			mustJSON(material.ActiveDates),
			mustJSON(material.Times),
			mustJSON(material.Streams),
			mustJSON(material.Conflicts),
			mustJSON(material.BackToBack),
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert material %s: %w", material.ACRID, err)
		}
	}

	for i, entry := range project.StreamCatalog {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO stream_catalog (project_id, stream_id, name, url, position) VALUES (?, ?, ?, ?, ?)",
			project.ID,
			entry.StreamID,
			entry.Name,
			entry.URL,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stream catalog entry %s: %w", entry.StreamID, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a full project descriptor by its stored ID.
// Returns domain.ErrNotFound when no project matches.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	project := &domain.Project{}
	var reportTypes, recipients string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider_id, name, client, agency, brand, product, client_type,
				tolerance_minutes, report_types, recipients, created_at, updated_at
		 FROM projects WHERE id = ?`, id,
	).Scan(
		&project.ID,
		&project.ProviderID,
		&project.Name,
		&project.Client,
		&project.Agency,
		&project.Brand,
		&project.Product,
		&project.ClientType,
		&project.ToleranceMinutes,
		&reportTypes,
		&recipients,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	project.ReportTypes = fromJSON(reportTypes)
	project.Recipients = fromJSON(recipients)

	if project.Materials, err = r.loadMaterials(ctx, id); err != nil {
		return nil, err
	}
	if project.StreamCatalog, err = r.loadCatalog(ctx, id); err != nil {
		return nil, err
	}

	return project, nil
}

// List retrieves up to limit project descriptors, newest first, without
// their materials or catalogs
func (r *ProjectRepository) List(ctx context.Context, limit int) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, provider_id, name, client, agency, brand, product, client_type,
				tolerance_minutes, report_types, recipients, created_at, updated_at
		 FROM projects ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project := &domain.Project{}
		var reportTypes, recipients string
		if err := rows.Scan(
			&project.ID,
			&project.ProviderID,
			&project.Name,
			&project.Client,
			&project.Agency,
			&project.Brand,
			&project.Product,
			&project.ClientType,
			&project.ToleranceMinutes,
			&reportTypes,
			&recipients,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		project.ReportTypes = fromJSON(reportTypes)
		project.Recipients = fromJSON(recipients)
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Delete removes a project and, via cascade, its materials and catalog
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes projects last updated before the cutoff
func (r *ProjectRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale projects: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored projects
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func (r *ProjectRepository) loadMaterials(ctx context.Context, projectID string) ([]domain.Material, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT acr_id, name, category, active_dates, times, streams, conflicts, back_to_back
		 FROM materials WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []domain.Material
	for rows.Next() {
		var m domain.Material
		var dates, times, streams, conflicts, backToBack string
		if err := rows.Scan(&m.ACRID, &m.Name, &m.Category, &dates, &times, &streams, &conflicts, &backToBack); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		m.ActiveDates = fromJSON(dates)
		m.Times = fromJSON(times)
		m.Streams = fromJSON(streams)
		m.Conflicts = fromJSON(conflicts)
		m.BackToBack = fromJSON(backToBack)
		materials = append(materials, m)
	}

	return materials, rows.Err()
}

func (r *ProjectRepository) loadCatalog(ctx context.Context, projectID string) ([]domain.StreamCatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT stream_id, name, url FROM stream_catalog WHERE project_id = ? ORDER BY position", projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stream catalog: %w", err)
	}
	defer rows.Close()

	var entries []domain.StreamCatalogEntry
	for rows.Next() {
		var entry domain.StreamCatalogEntry
		if err := rows.Scan(&entry.StreamID, &entry.Name, &entry.URL); err != nil {
			return nil, fmt.Errorf("failed to scan stream catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// mustJSON encodes a string slice column; nil encodes as the empty list
func mustJSON(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

// fromJSON decodes a string slice column, tolerating legacy empty values
func fromJSON(data string) []string {
	if data == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

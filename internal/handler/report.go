package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aircheck/internal/domain"
	"aircheck/internal/logger"
	"aircheck/internal/repository"

	"github.com/google/uuid"
)

// ReportHandler exposes project upload and report generation over HTTP
type ReportHandler struct {
	reportService domain.ReportService
	emitter       domain.ReportEmitter
	projectRepo   repository.ProjectRepository
	log           *logger.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	reportService domain.ReportService,
	emitter domain.ReportEmitter,
	projectRepo repository.ProjectRepository,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		emitter:       emitter,
		projectRepo:   projectRepo,
		log:           logger.GetGlobalLogger(),
	}
}

// HandlePing answers the health probe
// GET /ping
func (h *ReportHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

// HandleUploadProject validates and stores a project descriptor
// POST /api/projects
func (h *ReportHandler) HandleUploadProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var project domain.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if err := project.Validate(); err != nil {
		h.writeDomainError(w, err)
		return
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := h.projectRepo.Create(ctx, &project); err != nil {
		h.log.Error("Failed to store project", map[string]interface{}{
			"project_id": project.ProviderID,
			"error":      err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "failed to store project")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "ok",
		"id":      project.ID,
		"message": fmt.Sprintf("Project %s received with %d materials", project.Name, len(project.Materials)),
	})
}

// HandleListProjects lists stored project descriptors
// GET /api/projects
func (h *ReportHandler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectRepo.List(r.Context(), 100)
	if err != nil {
		h.log.Error("Failed to list projects", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleGetProject returns one stored project descriptor
// GET /api/projects/{id}
func (h *ReportHandler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleDeleteProject removes a stored project descriptor
// DELETE /api/projects/{id}
func (h *ReportHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectRepo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGenerateReport builds a report from an inline project descriptor and
// streams back the spreadsheet
// POST /api/reports
func (h *ReportHandler) HandleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var project domain.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	h.generateAndSend(w, r, &project)
}

// HandleGenerateStoredReport builds a report from a stored project
// POST /api/projects/{id}/report
func (h *ReportHandler) HandleGenerateStoredReport(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.generateAndSend(w, r, project)
}

// generateAndSend runs the reconciliation and writes the xlsx attachment
func (h *ReportHandler) generateAndSend(w http.ResponseWriter, r *http.Request, project *domain.Project) {
	report, err := h.reportService.GenerateReport(r.Context(), project)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	artifact, err := h.emitter.Emit(report)
	if err != nil {
		h.log.Error("Failed to emit report", map[string]interface{}{
			"project_id": project.ProviderID,
			"error":      err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", h.emitter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.emitter.Filename(report)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact); err != nil {
		h.log.Warn("Failed to stream report to client", map[string]interface{}{
			"project_id": project.ProviderID,
			"error":      err.Error(),
		})
	}
}

// writeDomainError maps domain errors onto HTTP status codes with a
// structured JSON body
func (h *ReportHandler) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		h.log.Error("Provider query failed", map[string]interface{}{
			"stream_id": providerErr.StreamID,
			"date":      providerErr.Date,
			"status":    providerErr.StatusCode,
		})
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":     "detection provider request failed",
			"stream_id": providerErr.StreamID,
			"date":      providerErr.Date,
			"detail":    providerErr.Detail,
		})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	h.log.Error("Report request failed", map[string]interface{}{"error": err.Error()})
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

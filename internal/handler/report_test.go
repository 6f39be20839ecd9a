package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aircheck/internal/domain"
)

// mockReportService is a mock implementation of domain.ReportService
type mockReportService struct {
	generateFunc func(ctx context.Context, project *domain.Project) (*domain.Report, error)
}

func (m *mockReportService) GenerateReport(ctx context.Context, project *domain.Project) (*domain.Report, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, project)
	}
	return &domain.Report{Project: project, GeneratedAt: time.Now()}, nil
}

// mockEmitter is a mock implementation of domain.ReportEmitter
type mockEmitter struct {
	emitFunc func(report *domain.Report) ([]byte, error)
}

func (m *mockEmitter) Emit(report *domain.Report) ([]byte, error) {
	if m.emitFunc != nil {
		return m.emitFunc(report)
	}
	return []byte("workbook-bytes"), nil
}

func (m *mockEmitter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (m *mockEmitter) Filename(report *domain.Report) string {
	return "test-report.xlsx"
}

// mockProjectRepo is a mock implementation of repository.ProjectRepository
type mockProjectRepo struct {
	createFunc  func(ctx context.Context, project *domain.Project) error
	getByIDFunc func(ctx context.Context, id string) (*domain.Project, error)
	listFunc    func(ctx context.Context, limit int) ([]*domain.Project, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectRepo) List(ctx context.Context, limit int) ([]*domain.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockProjectRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockProjectRepo) Count(ctx context.Context) (int, error) {
	return 0, nil
}

func validProjectBody() string {
	return `{
		"project_id": "100",
		"name": "June Campaign",
		"tolerance_minutes": 5,
		"materials": [
			{
				"acr_id": "acr-1",
				"name": "Spot One",
				"active_dates": ["2025-06-17"],
				"times": ["08:00"],
				"streams": ["s1"]
			}
		]
	}`
}

func newTestHandler() (*ReportHandler, *mockReportService, *mockEmitter, *mockProjectRepo) {
	service := &mockReportService{}
	emitter := &mockEmitter{}
	repo := &mockProjectRepo{}
	return NewReportHandler(service, emitter, repo), service, emitter, repo
}

func TestHandlePing(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/ping", nil)
	rec := httptest.NewRecorder()
	h.HandlePing(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["message"] != "pong" {
		t.Errorf("Expected pong, got %q", body["message"])
	}
}

func TestHandleUploadProject_Success(t *testing.T) {
	h, _, _, repo := newTestHandler()

	var stored *domain.Project
	repo.createFunc = func(ctx context.Context, project *domain.Project) error {
		stored = project
		return nil
	}

	req := httptest.NewRequest("POST", "/api/projects", strings.NewReader(validProjectBody()))
	rec := httptest.NewRecorder()
	h.HandleUploadProject(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stored == nil {
		t.Fatal("Expected project to be stored")
	}
	if stored.ID == "" {
		t.Error("Expected a generated project ID")
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["message"] != "Project June Campaign received with 1 materials" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestHandleUploadProject_ValidationFailure(t *testing.T) {
	h, _, _, _ := newTestHandler()

	body := `{"project_id": "", "materials": []}`
	req := httptest.NewRequest("POST", "/api/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleUploadProject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "validation failed" {
		t.Errorf("Unexpected error message: %q", resp.Error)
	}
	if len(resp.Fields) == 0 {
		t.Error("Expected offending field paths in response")
	}
}

func TestHandleUploadProject_MalformedBody(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest("POST", "/api/projects", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleUploadProject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGetProject_NotFound(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/api/projects/unknown", nil)
	req.SetPathValue("id", "unknown")
	rec := httptest.NewRecorder()
	h.HandleGetProject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteProject(t *testing.T) {
	h, _, _, repo := newTestHandler()

	var deletedID string
	repo.deleteFunc = func(ctx context.Context, id string) error {
		deletedID = id
		return nil
	}

	req := httptest.NewRequest("DELETE", "/api/projects/p-1", nil)
	req.SetPathValue("id", "p-1")
	rec := httptest.NewRecorder()
	h.HandleDeleteProject(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	if deletedID != "p-1" {
		t.Errorf("Expected delete of p-1, got %q", deletedID)
	}
}

func TestHandleListProjects_EmptyIsArray(t *testing.T) {
	h, _, _, _ := newTestHandler()

	req := httptest.NewRequest("GET", "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.HandleListProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("Expected empty JSON array, got %s", got)
	}
}

func TestHandleGenerateReport_StreamsAttachment(t *testing.T) {
	h, service, _, _ := newTestHandler()

	var receivedTolerance int
	service.generateFunc = func(ctx context.Context, project *domain.Project) (*domain.Report, error) {
		receivedTolerance = project.ToleranceMinutes
		return &domain.Report{Project: project, GeneratedAt: time.Now()}, nil
	}

	req := httptest.NewRequest("POST", "/api/reports", strings.NewReader(validProjectBody()))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedTolerance != 5 {
		t.Errorf("Expected tolerance 5 passed through, got %d", receivedTolerance)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Errorf("Unexpected content type: %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=test-report.xlsx" {
		t.Errorf("Unexpected disposition: %s", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("workbook-bytes")) {
		t.Error("Expected emitted bytes in response body")
	}
}

func TestHandleGenerateReport_ValidationError(t *testing.T) {
	h, service, _, _ := newTestHandler()

	service.generateFunc = func(ctx context.Context, project *domain.Project) (*domain.Report, error) {
		return nil, &domain.ValidationError{Fields: []string{"materials"}}
	}

	req := httptest.NewRequest("POST", "/api/reports", strings.NewReader(`{"project_id":"100"}`))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateReport_ProviderFailure(t *testing.T) {
	h, service, _, _ := newTestHandler()

	service.generateFunc = func(ctx context.Context, project *domain.Project) (*domain.Report, error) {
		return nil, &domain.ProviderError{
			StreamID:   "s1",
			Date:       "2025-06-17",
			StatusCode: 500,
			Detail:     "upstream exploded",
		}
	}

	req := httptest.NewRequest("POST", "/api/reports", strings.NewReader(validProjectBody()))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}

	var resp struct {
		Error    string `json:"error"`
		StreamID string `json:"stream_id"`
		Date     string `json:"date"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.StreamID != "s1" || resp.Date != "2025-06-17" {
		t.Errorf("Unexpected error body: %+v", resp)
	}
}

func TestHandleGenerateStoredReport(t *testing.T) {
	h, service, _, repo := newTestHandler()

	repo.getByIDFunc = func(ctx context.Context, id string) (*domain.Project, error) {
		if id != "p-1" {
			return nil, domain.ErrNotFound
		}
		return &domain.Project{ID: "p-1", ProviderID: "100", Name: "Stored"}, nil
	}

	var generatedFor string
	service.generateFunc = func(ctx context.Context, project *domain.Project) (*domain.Report, error) {
		generatedFor = project.ID
		return &domain.Report{Project: project, GeneratedAt: time.Now()}, nil
	}

	req := httptest.NewRequest("POST", "/api/projects/p-1/report", nil)
	req.SetPathValue("id", "p-1")
	rec := httptest.NewRecorder()
	h.HandleGenerateStoredReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if generatedFor != "p-1" {
		t.Errorf("Expected report for stored project p-1, got %q", generatedFor)
	}
}

func TestHandleGenerateReport_EmitterFailure(t *testing.T) {
	h, _, emitter, _ := newTestHandler()

	emitter.emitFunc = func(report *domain.Report) ([]byte, error) {
		return nil, errors.New("render failed")
	}

	req := httptest.NewRequest("POST", "/api/reports", strings.NewReader(validProjectBody()))
	rec := httptest.NewRecorder()
	h.HandleGenerateReport(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
}

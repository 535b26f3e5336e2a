package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/schema"
	"resumeforge/internal/store"
	"resumeforge/internal/types"
)

// fakeProvider scripts model responses for handler tests.
type fakeProvider struct {
	parseEnvelope    types.ParsedResumeEnvelope
	matchEnvelope    types.TailoredResumeEnvelope
	generateEnvelope types.FormattedResumeEnvelope
	err              error
}

func (f *fakeProvider) ParseResumeFile(ctx context.Context, input types.ParseFileInput) (types.ParsedResumeEnvelope, *ai.TokenUsage, error) {
	return f.parseEnvelope, nil, f.err
}

func (f *fakeProvider) ParseResumeText(ctx context.Context, input types.ParseTextInput) (types.ParsedResumeEnvelope, *ai.TokenUsage, error) {
	return f.parseEnvelope, nil, f.err
}

func (f *fakeProvider) MatchJob(ctx context.Context, jobDescription string, resume schema.ResumeDocument) (types.TailoredResumeEnvelope, *ai.TokenUsage, error) {
	return f.matchEnvelope, nil, f.err
}

func (f *fakeProvider) GenerateLayout(ctx context.Context, template string, resume schema.ResumeDocument) (types.FormattedResumeEnvelope, *ai.TokenUsage, error) {
	return f.generateEnvelope, nil, f.err
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return &ai.ModelInfo{Name: "fake-model", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.Provider = "openrouter"
	cfg.AI.Model = "fake-model"
	cfg.AI.APIKey = "test-key"
	cfg.AI.Timeout = 5 * time.Second
	cfg.Observability.HealthCheck.Timeout = time.Second
	return cfg
}

// newTestServer builds a server wired to a scripted provider and an
// in-memory store, and returns it with its route mux.
func newTestServer(t *testing.T, provider *fakeProvider, apiKeys ...string) (*Server, http.Handler) {
	t.Helper()

	cfg := testConfig()
	logger := forgeErrors.NewLogger(slog.LevelError)

	srv := NewServer(cfg, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		APIKeys:        apiKeys,
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxRequestSize: 1 << 20,
	}, logger)
	srv.Store = store.NewMemoryRepository()
	srv.newAIService = func(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*ai.Service, error) {
		return &ai.Service{Provider: provider}, nil
	}

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error = %v", err)
	}

	return srv, srv.setupRoutes(om)
}

func postJSON(t *testing.T, mux http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestParseTextEndpoint(t *testing.T) {
	provider := &fakeProvider{
		parseEnvelope: types.ParsedResumeEnvelope{
			Resume: json.RawMessage(`{"personalInformation":{"firstName":"Ada","lastName":"Lovelace"}}`),
		},
	}
	_, mux := newTestServer(t, provider)

	rec := postJSON(t, mux, "/parse-text", ParseTextRequest{Text: "Ada Lovelace, analyst engine programmer"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result types.ParseOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Resume.PersonalInformation.FirstName != "Ada" {
		t.Errorf("firstName = %q", result.Resume.PersonalInformation.FirstName)
	}
	if result.Resume.PersonalInformation.LastName != "Lovelace" {
		t.Errorf("lastName = %q", result.Resume.PersonalInformation.LastName)
	}
	if result.Resume.ResumeID == "" {
		t.Error("normalization should mint a resume id")
	}
}

func TestParseTextRequiresText(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	rec := postJSON(t, mux, "/parse-text", ParseTextRequest{Text: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseTextRejectsWrongContentType(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, "/parse-text", strings.NewReader("text=hi"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParseFileEndpoint(t *testing.T) {
	provider := &fakeProvider{
		parseEnvelope: types.ParsedResumeEnvelope{
			Resume: json.RawMessage(`{"personalInformation":{"firstName":"Grace","lastName":"Hopper"}}`),
		},
	}
	_, mux := newTestServer(t, provider)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="resume.pdf"`}
	header["Content-Type"] = []string{"application/pdf"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	fmt.Fprint(part, "%PDF-1.4 fake resume content")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/parse-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result types.ParseOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Resume.PersonalInformation.FirstName != "Grace" {
		t.Errorf("firstName = %q", result.Resume.PersonalInformation.FirstName)
	}
}

func TestParseFileRejectsUnsupportedType(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="resume.docx"`}
	header["Content-Type"] = []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	fmt.Fprint(part, "not a pdf")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/parse-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != forgeErrors.ErrCodeInvalidFormat {
		t.Errorf("code = %q, want %q", resp.Code, forgeErrors.ErrCodeInvalidFormat)
	}
}

func TestParseFileRequiresFileField(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/parse-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestJobMatchCallerJobDescriptionWins(t *testing.T) {
	provider := &fakeProvider{
		matchEnvelope: types.TailoredResumeEnvelope{
			TailoredResumeText: "Tailored for Initech.",
			Resume:             json.RawMessage(`{"jobDescription":"model-invented description"}`),
		},
	}
	_, mux := newTestServer(t, provider)

	rec := postJSON(t, mux, "/job-match", JobMatchRequest{
		JobDescription: "Backend Engineer at Initech",
		Resume:         json.RawMessage(`{"personalInformation":{"firstName":"Ada"}}`),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result types.JobMatchOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.UpdatedResume.JobDescription != "Backend Engineer at Initech" {
		t.Errorf("jobDescription = %q, caller's value must win", result.UpdatedResume.JobDescription)
	}
	if result.TailoredText != "Tailored for Initech." {
		t.Errorf("tailoredText = %q", result.TailoredText)
	}
}

func TestJobMatchRequiresJobDescription(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	rec := postJSON(t, mux, "/job-match", JobMatchRequest{
		Resume: json.RawMessage(`{}`),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateResumeTemplateAuthority(t *testing.T) {
	provider := &fakeProvider{
		generateEnvelope: types.FormattedResumeEnvelope{
			FormattedText: "ADA LOVELACE\n============",
			Resume:        json.RawMessage(`{"resumeSettings":{"template":"simple","fontFamily":"Times New Roman"}}`),
		},
	}
	_, mux := newTestServer(t, provider)

	rec := postJSON(t, mux, "/generate-resume", GenerateResumeRequest{
		Resume:   json.RawMessage(`{"personalInformation":{"firstName":"Ada"}}`),
		Template: "professional",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result types.GenerateResumeOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.UpdatedResume.ResumeSettings.Template != "professional" {
		t.Errorf("template = %q, caller's selection must win", result.UpdatedResume.ResumeSettings.Template)
	}
	if result.FormattedText == "" {
		t.Error("formattedText missing")
	}
}

func TestGenerateResumeRejectsUnknownTemplate(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	rec := postJSON(t, mux, "/generate-resume", GenerateResumeRequest{
		Resume:   json.RawMessage(`{"personalInformation":{"firstName":"Ada"}}`),
		Template: "fancy",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpstreamFailuresStayGeneric(t *testing.T) {
	provider := &fakeProvider{
		err: forgeErrors.NewUpstreamError("Model request failed", fmt.Errorf("429 from provider at https://internal.example")),
	}
	_, mux := newTestServer(t, provider)

	rec := postJSON(t, mux, "/parse-text", ParseTextRequest{Text: "some resume"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "internal.example") {
		t.Error("provider details leaked into the error response")
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{}, "secret-key")

	// Missing key
	req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}

	// Wrong key
	req = httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", rec.Code)
	}

	// Valid key via header
	req = httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.Header.Set("X-API-Key", "secret-key")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}

	// Valid key via bearer token
	req = httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("bearer token status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodOptions, "/parse-text", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	// Unknown origins get no CORS headers
	req = httptest.NewRequest(http.MethodOptions, "/parse-text", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin for unknown origin = %q, want empty", got)
	}
}

func TestResumesCRUD(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	// Save
	rec := postJSON(t, mux, "/resumes", map[string]any{
		"resumeTitle":         "Backend Draft",
		"personalInformation": map[string]any{"firstName": "Ada"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	var saved store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved record: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved record has no id")
	}

	// List
	req := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing struct {
		Resumes []store.Record `json:"resumes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Resumes) != 1 || listing.Resumes[0].Resume.ResumeTitle != "Backend Draft" {
		t.Errorf("unexpected listing: %+v", listing.Resumes)
	}

	// Get
	req = httptest.NewRequest(http.MethodGet, "/resumes/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/resumes/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	// Gone
	req = httptest.NewRequest(http.MethodGet, "/resumes/"+saved.ID, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestResumesArePerUser(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	data, _ := json.Marshal(map[string]any{"resumeTitle": "Mine"})
	req := httptest.NewRequest(http.MethodPost, "/resumes", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/resumes", nil)
	req.Header.Set("X-User-ID", "bob")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var listing struct {
		Resumes []store.Record `json:"resumes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.Resumes) != 0 {
		t.Errorf("bob sees %d of alice's resumes", len(listing.Resumes))
	}
}

func TestSaveResumeNormalizesBeforeStoring(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	rec := postJSON(t, mux, "/resumes", map[string]any{
		"personalInformation": map[string]any{"firstName": "Ada"},
		"unknownKey":          "dropped",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}

	var saved store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode saved record: %v", err)
	}
	if saved.Resume.ResumeTitle != schema.DefaultTitle {
		t.Errorf("resumeTitle = %q, want default filled in", saved.Resume.ResumeTitle)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v", health["status"])
	}
	models, ok := health["ai_models"].(map[string]any)
	if !ok {
		t.Fatalf("ai_models missing: %v", health)
	}
	for _, op := range []string{"parseFile", "parseText", "jobMatch", "generateLayout"} {
		if _, exists := models[op]; !exists {
			t.Errorf("health is missing model status for %s", op)
		}
	}
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig()
	logger := forgeErrors.NewLogger(slog.LevelError)

	srv := NewServer(cfg, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		AllowedOrigins: []string{"*"},
		MaxRequestSize: 1 << 20,
		RateLimit: &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  1,
			ByIP:           true,
		},
	}, logger)
	defer srv.RateLimiter.Close()
	srv.Store = store.NewMemoryRepository()
	srv.newAIService = func(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*ai.Service, error) {
		return &ai.Service{Provider: &fakeProvider{}}, nil
	}

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error = %v", err)
	}
	mux := srv.setupRoutes(om)

	first := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}

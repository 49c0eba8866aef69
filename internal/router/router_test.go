package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/handler"
	"github.com/stemsi/examprep-backend/internal/repository"
	"github.com/stemsi/examprep-backend/internal/service"
	"github.com/stemsi/examprep-backend/internal/validator"
)

func TestMain(m *testing.M) {
	validator.Setup()
	os.Exit(m.Run())
}

type testServer struct {
	handler http.Handler
	locker  *service.LocalScopeLocker
}

func newTestServer() *testServer {
	cfg := &config.Config{
		GinMode:             "test",
		StoreDriver:         config.StoreDriverMemory,
		ImportExamCap:       100,
		PassageSubQuestions: 5,
		DefaultMarks:        1,
		MaxImportBytes:      1 << 20,
		ImportRateLimit:     1000,
	}
	log := zerolog.Nop()
	store := repository.NewMemoryStore()
	locker := service.NewLocalScopeLocker()
	activity := service.NewStoreActivityPublisher(store, log)

	importService := service.NewImportService(store, store, locker, activity, cfg, log)
	distributionService := service.NewDistributionService(store, store, locker, service.NewMemoryReportCache(), activity, log)

	handlers := &Handlers{
		Import:       handler.NewImportHandler(importService, log),
		Bank:         handler.NewBankHandler(importService, log),
		Exam:         handler.NewExamHandler(service.NewExamService(store, log), log),
		Distribution: handler.NewDistributionHandler(distributionService, log),
		Activity:     handler.NewActivityHandler(service.NewActivityService(store), log),
		System:       handler.NewSystemHandler(nil, nil, cfg.StoreDriver, log),
	}
	return &testServer{handler: SetupRouter(handlers, cfg), locker: locker}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (body %q)", method, path, err, w.Body.String())
	}
	return w.Code, env
}

func questionText(from, n int) string {
	var b strings.Builder
	for i := from; i < from+n; i++ {
		fmt.Fprintf(&b, "%d. Router question %d? A. first B. second C. third D. fourth Ans: A\n\n", i+1, i)
	}
	return b.String()
}

func (s *testServer) createExam(t *testing.T, parts ...string) (string, []string) {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/admin/exams", map[string]interface{}{
		"title": "Mock Test",
		"parts": parts,
	})
	if code != http.StatusCreated {
		t.Fatalf("expected 201 creating exam, got %d", code)
	}
	var data struct {
		Exam struct {
			ID string `json:"id"`
		} `json:"exam"`
		Parts []struct {
			ID string `json:"id"`
		} `json:"parts"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode exam: %v", err)
	}
	ids := make([]string, len(data.Parts))
	for i, p := range data.Parts {
		ids[i] = p.ID
	}
	return data.Exam.ID, ids
}

func TestImportToBank(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantErr  string
	}{
		{
			name:     "parses questions",
			body:     map[string]interface{}{"text": questionText(0, 3)},
			wantCode: http.StatusOK,
		},
		{
			name:     "nothing parsed",
			body:     map[string]interface{}{"text": "no questions here"},
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "NOTHING_PARSED",
		},
		{
			name:     "missing text",
			body:     map[string]interface{}{"mode": "append"},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
		{
			name:     "unknown mode",
			body:     map[string]interface{}{"text": questionText(0, 1), "mode": "merge"},
			wantCode: http.StatusBadRequest,
			wantErr:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			code, env := s.do(t, http.MethodPost, "/api/v1/admin/banks/gk/import", tt.body)
			if code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, code)
			}
			if tt.wantErr == "" {
				if env.Error != nil {
					t.Fatalf("expected no error, got %s", env.Error.Code)
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Fatalf("expected error %s, got %+v", tt.wantErr, env.Error)
			}
		})
	}
}

func TestImportReportsCounts(t *testing.T) {
	s := newTestServer()
	text := questionText(0, 2) + "This block has no options at all"
	code, env := s.do(t, http.MethodPost, "/api/v1/admin/banks/gk/import", map[string]interface{}{"text": text})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var data struct {
		Report struct {
			Total    int `json:"total"`
			Imported int `json:"imported"`
			Failed   int `json:"failed"`
		} `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if data.Report.Total != 3 || data.Report.Imported != 2 || data.Report.Failed != 1 {
		t.Errorf("expected total=3 imported=2 failed=1, got %+v", data.Report)
	}
}

func TestImportWhileScopeBusy(t *testing.T) {
	s := newTestServer()
	release, err := s.locker.Acquire(context.Background(), "gk")
	if err != nil {
		t.Fatalf("expected lock, got: %v", err)
	}
	defer release()

	code, env := s.do(t, http.MethodPost, "/api/v1/admin/banks/gk/import", map[string]interface{}{"text": questionText(0, 1)})
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
	if env.Error == nil || env.Error.Code != "SCOPE_BUSY" {
		t.Errorf("expected SCOPE_BUSY, got %+v", env.Error)
	}
}

func TestDistributeFlow(t *testing.T) {
	s := newTestServer()
	examID, parts := s.createExam(t, "Section A", "Section B")
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	if code, _ := s.do(t, http.MethodPost, "/api/v1/admin/banks/gk/import", map[string]interface{}{"text": questionText(0, 60)}); code != http.StatusOK {
		t.Fatalf("expected 200 importing, got %d", code)
	}

	code, _ := s.do(t, http.MethodPost, "/api/v1/admin/distributions", map[string]interface{}{
		"sections": []map[string]interface{}{{
			"scope": "gk",
			"targets": []map[string]interface{}{
				{"exam_id": examID, "part_id": parts[0], "quota": 25},
				{"exam_id": examID, "part_id": parts[1], "quota": 25},
			},
		}},
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200 distributing, got %d", code)
	}

	seen := make(map[string]bool)
	for _, partID := range parts {
		code, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/exams/%s/parts/%s/questions", examID, partID), nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200 listing part, got %d", code)
		}
		var data struct {
			Questions []struct {
				Text string `json:"question_text_en"`
			} `json:"questions"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode questions: %v", err)
		}
		if len(data.Questions) != 25 {
			t.Errorf("expected 25 questions, got %d", len(data.Questions))
		}
		for _, q := range data.Questions {
			if seen[q.Text] {
				t.Errorf("expected disjoint parts, %q appears twice", q.Text)
			}
			seen[q.Text] = true
		}
	}

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/distributions/last?scope=gk", nil)
	if code != http.StatusOK {
		t.Errorf("expected 200 for last report, got %d", code)
	}
}

func TestDistributeInsufficientBank(t *testing.T) {
	s := newTestServer()
	examID, parts := s.createExam(t, "Section A")
	s.do(t, http.MethodPost, "/api/v1/admin/banks/gk/import", map[string]interface{}{"text": questionText(0, 10)})

	code, env := s.do(t, http.MethodPost, "/api/v1/admin/distributions", map[string]interface{}{
		"sections": []map[string]interface{}{{
			"scope":   "gk",
			"targets": []map[string]interface{}{{"exam_id": examID, "part_id": parts[0], "quota": 15}},
		}},
	})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if env.Error == nil || env.Error.Code != "INSUFFICIENT_BANK" {
		t.Fatalf("expected INSUFFICIENT_BANK, got %+v", env.Error)
	}

	var data struct {
		Have int `json:"have"`
		Need int `json:"need"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Have != 10 || data.Need != 15 {
		t.Errorf("expected have=10 need=15, got have=%d need=%d", data.Have, data.Need)
	}
}

func TestNotFoundAndBadIDs(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown part", http.MethodGet, fmt.Sprintf("/api/v1/admin/exams/%s/parts/%s/questions", uuid.New(), uuid.New()), http.StatusNotFound, "PART_NOT_FOUND"},
		{"malformed exam id", http.MethodGet, fmt.Sprintf("/api/v1/admin/exams/nope/parts/%s/questions", uuid.New()), http.StatusBadRequest, "INVALID_ID"},
		{"no report yet", http.MethodGet, "/api/v1/admin/distributions/last?scope=gk", http.StatusNotFound, "NO_DISTRIBUTION_REPORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.method, tt.path, nil)
			if code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, code)
			}
			if env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("expected error %s, got %+v", tt.wantErr, env.Error)
			}
		})
	}
}

func TestHealthOnMemoryStore(t *testing.T) {
	s := newTestServer()
	code, env := s.do(t, http.MethodGet, "/health", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if data["status"] != "ok" || data["store"] != config.StoreDriverMemory {
		t.Errorf("expected ok on memory store, got %v", data)
	}
}

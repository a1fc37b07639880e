package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/services"
)

type recordingProgressService struct {
	got []services.ProgressInput
}

func (s *recordingProgressService) Record(_ context.Context, _ requestdata.RequestData, items []services.ProgressInput) (*services.ProgressReport, error) {
	s.got = items
	return &services.ProgressReport{Updated: []services.ProgressItemResult{}, Missing: []string{}}, nil
}

func progressTestRouter(svc services.ReadProgressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rd := &requestdata.RequestData{UserID: uuid.New()}
	h := NewProgressHandler(svc)
	r := gin.New()
	r.POST("/api/progress/batch", withActor(rd), h.Batch)
	return r
}

func postBatch(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/progress/batch", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestBatchAcceptsEnvelopeAndBareArray(t *testing.T) {
	id := uuid.NewString()
	forms := map[string]string{
		"envelope":   `{"events":[{"articleId":"` + id + `","deltaTimeMs":1000}]}`,
		"bare_array": `[{"articleId":"` + id + `","deltaTimeMs":1000}]`,
	}
	for name, body := range forms {
		t.Run(name, func(t *testing.T) {
			svc := &recordingProgressService{}
			w := postBatch(progressTestRouter(svc), body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
			}
			if len(svc.got) != 1 || svc.got[0].ArticleID != id {
				t.Fatalf("service saw %+v", svc.got)
			}
		})
	}
}

func TestBatchRejectsBadBodies(t *testing.T) {
	cases := map[string]struct {
		body string
		code string
	}{
		"empty":    {"", "empty_body"},
		"not_json": {"still reading", "invalid_json"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &recordingProgressService{}
			w := postBatch(progressTestRouter(svc), tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
			}
			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode error envelope: %v", err)
			}
			if env.Error.Code != tc.code {
				t.Fatalf("code = %q, want %q", env.Error.Code, tc.code)
			}
			if svc.got != nil {
				t.Fatal("service should not have been called")
			}
		})
	}
}

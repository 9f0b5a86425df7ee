package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/api/middleware"
	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/integration/rafiq"
	"github.com/futig/rafiq-frontend/internal/pkg/formatter"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/repository"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
)

const testConversation = "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	uc := conversation.NewUsecase(
		repository.NewConversationMemoryRepository(time.Hour, time.Hour),
		rafiq.NewMockConnector(logger),
		validator.New(config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 2048}),
		formatter.NewFactory(),
		logger,
	)
	t.Cleanup(func() { _ = uc.Close(context.Background()) })

	r := chi.NewRouter()
	r.Use(middleware.Session(config.WebConfig{CookieName: "rafiq_session", CookieMaxAge: time.Hour}))
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ConversationHeader, testConversation)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChat(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/chat", `{"question": "Qui es-tu ?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var got entity.ChatAPIResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Answer != "[MOCK] Réponse à : Qui es-tu ?" {
		t.Errorf("answer = %q", got.Answer)
	}
	if !strings.HasPrefix(got.Sources, "[\n  {\n    \"id\": \"mock-0\"") {
		t.Errorf("sources = %q", got.Sources)
	}

	rec = do(t, h, http.MethodGet, "/api/conversation", "")
	var conv entity.ConversationDTO
	if err := json.NewDecoder(rec.Body).Decode(&conv); err != nil {
		t.Fatal(err)
	}
	if conv.ID != testConversation || len(conv.Messages) != 2 {
		t.Fatalf("conversation = %+v", conv)
	}
	if conv.Messages[0].Label != "Vous" || conv.Messages[1].Label != "Rafiq-AI" {
		t.Errorf("labels = %q, %q", conv.Messages[0].Label, conv.Messages[1].Label)
	}
	if conv.Pending {
		t.Error("conversation still pending")
	}
}

func TestChat_Rejects(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"blank question", `{"question": "  "}`},
		{"malformed body", `{"question":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/api/conversation", "")
	var conv entity.ConversationDTO
	_ = json.NewDecoder(rec.Body).Decode(&conv)
	if len(conv.Messages) != 0 {
		t.Errorf("rejected questions reached the log: %+v", conv.Messages)
	}
}

func TestIngest(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/ingest", `{"text": "un\n\ndeux"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var got entity.IngestAPIResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "Indexé: 2 documents (source: user-paste)" {
		t.Errorf("status line = %q", got.Status)
	}

	rec = do(t, h, http.MethodPost, "/api/ingest", `{"text": " "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var apiErr entity.ErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&apiErr)
	if apiErr.Message != "Collez quelque chose d'abord." {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestResetConversation(t *testing.T) {
	h := newTestRouter(t)

	do(t, h, http.MethodPost, "/api/chat", `{"question": "q"}`)
	if rec := do(t, h, http.MethodDelete, "/api/conversation", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/conversation", "")
	var conv entity.ConversationDTO
	_ = json.NewDecoder(rec.Body).Decode(&conv)
	if len(conv.Messages) != 0 || conv.Sources != "" {
		t.Errorf("conversation not reset: %+v", conv)
	}
}

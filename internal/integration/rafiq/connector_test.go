package rafiq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	pkgRetry "github.com/futig/rafiq-frontend/internal/pkg/retry"
	pkghttp "github.com/futig/rafiq-frontend/pkg/http"
)

func newTestConnector(url string, attempts uint) *Connector {
	return NewConnector(config.RafiqConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: url, RequestTimeout: 5 * time.Second},
		IngestEndpoint:   "/ingest/",
		ChatEndpoint:     "/chat/",
		HealthEndpoint:   "/",
		Retry:            pkgRetry.RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: time.Millisecond},
	}, zap.NewNop())
}

func TestConnector_Ingest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ingest/" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if got, want := string(body), `{"text":"a\n\nb","source_name":"doc.txt"}`; got != want {
			t.Errorf("body = %s, want %s", got, want)
		}
		_, _ = io.WriteString(w, `{"indexed": 3, "source": "doc.txt"}`)
	}))
	defer srv.Close()

	resp, err := newTestConnector(srv.URL, 1).Ingest(context.Background(), &entity.IngestRequest{Text: "a\n\nb", SourceName: "doc.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Indexed == nil || *resp.Indexed != 3 || resp.Source == nil || *resp.Source != "doc.txt" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestConnector_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req entity.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question != "Salut ?" {
			t.Errorf("unexpected request %+v (%v)", req, err)
		}
		_, _ = io.WriteString(w, `{"answer": "Bonjour", "sources": ["a.txt"]}`)
	}))
	defer srv.Close()

	resp, err := newTestConnector(srv.URL, 1).Chat(context.Background(), &entity.ChatRequest{Question: "Salut ?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasAnswer || string(resp.Answer) != `"Bonjour"` {
		t.Errorf("answer = %s (present %v)", resp.Answer, resp.HasAnswer)
	}
	if !resp.HasSources || string(resp.Sources) != `["a.txt"]` {
		t.Errorf("sources = %s", resp.Sources)
	}
}

func TestConnector_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"service": "rafiq-ai backend", "status": "ok"}`)
	}))
	defer srv.Close()

	resp, err := newTestConnector(srv.URL, 2).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestConnector_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Empty question"}`)
	}))
	defer srv.Close()

	_, err := newTestConnector(srv.URL, 3).Chat(context.Background(), &entity.ChatRequest{Question: " "})

	var httpErr *pkghttp.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTP 400 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestConnector_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestConnector(srv.URL, 3).Chat(ctx, &entity.ChatRequest{Question: "q"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMockConnector(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	ing, err := m.Ingest(context.Background(), &entity.IngestRequest{Text: "a\n\nb\n\n\n\nc", SourceName: "x"})
	if err != nil || *ing.Indexed != 3 || *ing.Source != "x" {
		t.Errorf("ingest = %+v, %v", ing, err)
	}

	chat, err := m.Chat(context.Background(), &entity.ChatRequest{Question: "q"})
	if err != nil || !chat.HasAnswer || !chat.HasSources {
		t.Errorf("chat = %+v, %v", chat, err)
	}
}

package rafiq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
)

// MockConnector answers without a backend, for local runs with ENABLE_MOCKS
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

// Ingest counts paragraphs the way the backend splits pasted text
func (m *MockConnector) Ingest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResponse, error) {
	ctxzap.Info(ctx, "[MOCK] ingesting text",
		zap.String("source_name", req.SourceName),
		zap.Int("text_length", len(req.Text)),
	)

	indexed := 0
	for _, p := range strings.Split(strings.TrimSpace(req.Text), "\n\n") {
		if strings.TrimSpace(p) != "" {
			indexed++
		}
	}
	if req.URL != "" && indexed == 0 {
		indexed = 1
	}

	source := req.SourceName
	return &entity.IngestResponse{Indexed: &indexed, Source: &source}, nil
}

func (m *MockConnector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] answering question", zap.Int("question_length", len(req.Question)))

	payload, err := json.Marshal(map[string]any{
		"answer": fmt.Sprintf("[MOCK] Réponse à : %s", req.Question),
		"sources": []map[string]any{
			{"id": "mock-0", "score": 0.99, "meta": map[string]any{"source": "mock.txt"}},
		},
	})
	if err != nil {
		return nil, err
	}

	var resp entity.ChatResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (m *MockConnector) Health(ctx context.Context) (*entity.HealthResponse, error) {
	return &entity.HealthResponse{Service: "rafiq-ai backend (mock)", Status: "ok"}, nil
}

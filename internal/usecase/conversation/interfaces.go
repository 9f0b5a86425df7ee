package conversation

import (
	"context"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/formatter"
)

type RafiqConnector interface {
	Ingest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResponse, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	Health(ctx context.Context) (*entity.HealthResponse, error)
}

type ConversationRepository interface {
	Get(ctx context.Context, id string) (*entity.Conversation, error)
	Save(ctx context.Context, conv *entity.Conversation) error
	Delete(ctx context.Context, id string) error
}

type FormatterFactory interface {
	Create(format entity.ExportFormat) (formatter.Formatter, error)
}

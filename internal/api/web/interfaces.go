package web

import (
	"context"

	"github.com/futig/rafiq-frontend/internal/entity"
)

type ConversationUsecase interface {
	Conversation(ctx context.Context, id string) (*entity.Conversation, error)
	Ingest(ctx context.Context, id string, in entity.IngestInput) error
	Alert(ctx context.Context, id string, cause error) error
	ClearAlert(ctx context.Context, id string) error
	Ask(ctx context.Context, id, question string) error
	Reset(ctx context.Context, id string) error
	Export(ctx context.Context, id string, format entity.ExportFormat) (*entity.ExportedFile, error)
}

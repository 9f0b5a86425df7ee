package chat

import (
	"context"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
)

type ConversationUsecase interface {
	Conversation(ctx context.Context, id string) (*entity.Conversation, error)
	IngestNow(ctx context.Context, id string, in entity.IngestInput) (*conversation.IngestOutcome, error)
	AskNow(ctx context.Context, id, question string) (*conversation.Outcome, error)
	Reset(ctx context.Context, id string) error
}

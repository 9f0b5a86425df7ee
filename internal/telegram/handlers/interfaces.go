package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
)

// ConversationUsecase is what the bot needs from the conversation logic
type ConversationUsecase interface {
	Conversation(ctx context.Context, id string) (*entity.Conversation, error)
	IngestNow(ctx context.Context, id string, in entity.IngestInput) (*conversation.IngestOutcome, error)
	AskNow(ctx context.Context, id, question string) (*conversation.Outcome, error)
	Reset(ctx context.Context, id string) error
	Export(ctx context.Context, id string, format entity.ExportFormat) (*entity.ExportedFile, error)
}

// BotAPI is the part of *tgbotapi.BotAPI the handlers call
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

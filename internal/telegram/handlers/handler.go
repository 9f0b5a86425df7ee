package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/pkg/logger"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/render"
	"github.com/futig/rafiq-frontend/internal/telegram/keyboard"
	"github.com/futig/rafiq-frontend/internal/telegram/state"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	CommandArgs  string
	Document     *tgbotapi.Document
	CallbackData string
	CallbackID   string
}

// NewMessage normalizes an incoming message
func NewMessage(m *tgbotapi.Message) *Message {
	msg := &Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		Document:  m.Document,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}
	if m.IsCommand() {
		msg.Command = m.Command()
		msg.CommandArgs = strings.TrimSpace(m.CommandArguments())
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	return msg
}

// ConversationID maps a chat to its conversation
func ConversationID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

// Handler answers every chat: questions, ingestion, commands and buttons
type Handler struct {
	bot       BotAPI
	usecase   ConversationUsecase
	validator *validator.Validator
	state     *state.Store
	keyboard  *keyboard.Builder
	sender    *MessageSender
	logger    *zap.Logger
}

func NewHandler(
	bot BotAPI,
	usecase ConversationUsecase,
	validator *validator.Validator,
	store *state.Store,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		usecase:   usecase,
		validator: validator,
		state:     store,
		keyboard:  kb,
		sender:    NewMessageSender(bot, logger),
		logger:    logger,
	}
}

// HandleMessage routes a message: commands, documents, then plain text.
// Plain text is a question unless /ingest is waiting for it.
func (h *Handler) HandleMessage(ctx context.Context, msg *Message) error {
	ctx = logger.WithConversation(ctx, ConversationID(msg.ChatID))

	switch {
	case msg.Command != "":
		return h.handleCommand(ctx, msg)
	case msg.Document != nil:
		return h.handleDocument(ctx, msg)
	case strings.TrimSpace(msg.Text) == "":
		_, err := h.sender.Send(msg.ChatID, render.TgUnsupported, nil)
		return err
	}

	if action, ok := h.state.TakePending(msg.ChatID); ok && action == state.ActionIngest {
		return h.ingestText(ctx, msg.ChatID, msg.Text)
	}
	return h.handleQuestion(ctx, msg)
}

// HandleCallback runs the action of an inline button
func (h *Handler) HandleCallback(ctx context.Context, msg *Message) error {
	ctx = logger.WithConversation(ctx, ConversationID(msg.ChatID))

	if _, err := h.bot.Request(tgbotapi.NewCallback(msg.CallbackID, "")); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback", zap.Error(err))
	}

	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil || !keyboard.IsAction(data) {
		ctxzap.Warn(ctx, "unknown callback data", zap.String("data", msg.CallbackData))
		return nil
	}

	switch data.Value {
	case keyboard.ActionSources:
		return h.sendSources(ctx, msg.ChatID)
	case keyboard.ActionExport:
		return h.sendExport(ctx, msg.ChatID)
	case keyboard.ActionReset:
		return h.reset(ctx, msg.ChatID)
	default:
		ctxzap.Warn(ctx, "unknown callback action", zap.String("action", data.Value))
		return nil
	}
}

package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/render"
)

// handleQuestion shows the thinking message while the answer is computed,
// removes it once the answer is in and replies with the answer and its buttons.
func (h *Handler) handleQuestion(ctx context.Context, msg *Message) error {
	if strings.TrimSpace(msg.Text) == "" {
		return nil
	}
	chatID := msg.ChatID

	placeholder, err := h.sender.Send(chatID, render.MsgThinking, nil)
	placeholderSent := err == nil

	typing := NewTypingNotifier(h.bot, chatID, h.logger)
	typing.Start(ctx)
	out, err := h.usecase.AskNow(ctx, ConversationID(chatID), msg.Text)
	typing.Stop()

	if placeholderSent {
		h.sender.Delete(chatID, placeholder.MessageID)
	}

	switch {
	case errors.Is(err, entity.ErrEmptyQuestion):
		return nil
	case err != nil:
		return err
	case out.Stale:
		ctxzap.Debug(ctx, "question superseded by a newer one")
		return nil
	case out.Err != nil:
		h.HandleError(ctx, chatID, out.Err)
		return nil
	}

	_, err = h.sender.Send(chatID, out.Answer, h.keyboard.AnswerKeyboard(hasSources(out.Sources)))
	return err
}

func (h *Handler) sendSources(ctx context.Context, chatID int64) error {
	conv, err := h.usecase.Conversation(ctx, ConversationID(chatID))
	if err != nil {
		return err
	}

	if !hasSources(conv.Sources) {
		_, err = h.sender.Send(chatID, render.TgNoSources, nil)
		return err
	}

	_, err = h.sender.Send(chatID, conv.Sources, nil)
	return err
}

func (h *Handler) sendExport(ctx context.Context, chatID int64) error {
	file, err := h.usecase.Export(ctx, ConversationID(chatID), entity.ExportFormatMarkdown)
	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}

	ctxzap.Info(ctx, "sending transcript", zap.String("filename", file.Filename))
	return h.sender.SendDocument(chatID, file.Filename, file.Content)
}

func (h *Handler) reset(ctx context.Context, chatID int64) error {
	h.state.Clear(chatID)
	if err := h.usecase.Reset(ctx, ConversationID(chatID)); err != nil {
		return err
	}

	_, err := h.sender.Send(chatID, render.TgConversationRe, nil)
	return err
}

// hasSources is false for an absent panel and for empty JSON lists or objects
func hasSources(sources string) bool {
	switch strings.Join(strings.Fields(sources), "") {
	case "", "[]", "{}", "null":
		return false
	}
	return true
}

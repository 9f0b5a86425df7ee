package handlers

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/render"
	"github.com/futig/rafiq-frontend/internal/telegram/state"
)

func (h *Handler) handleCommand(ctx context.Context, msg *Message) error {
	ctxzap.Info(ctx, "command received",
		zap.String("command", msg.Command),
		zap.Int64("user_id", msg.UserID),
	)

	switch msg.Command {
	case "start":
		h.state.Clear(msg.ChatID)
		if err := h.usecase.Reset(ctx, ConversationID(msg.ChatID)); err != nil {
			return err
		}
		_, err := h.sender.Send(msg.ChatID, render.TgWelcome, nil)
		return err
	case "help":
		_, err := h.sender.Send(msg.ChatID, render.TgHelp, nil)
		return err
	case "ingest":
		if msg.CommandArgs == "" {
			h.state.SetPending(msg.ChatID, state.ActionIngest)
			_, err := h.sender.Send(msg.ChatID, render.TgAskIngestText, nil)
			return err
		}
		return h.ingestText(ctx, msg.ChatID, msg.CommandArgs)
	case "sources":
		return h.sendSources(ctx, msg.ChatID)
	case "export":
		return h.sendExport(ctx, msg.ChatID)
	default:
		_, err := h.sender.Send(msg.ChatID, render.TgHelp, nil)
		return err
	}
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/api/middleware"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/logger"
	"github.com/futig/rafiq-frontend/internal/pkg/response"
	"github.com/futig/rafiq-frontend/internal/render"
)

// request bodies are small JSON documents; uploads go through the web form
const maxBodySize = 1 << 20

type Handler struct {
	usecase ConversationUsecase
}

func NewHandler(usecase ConversationUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Ingest handles POST /api/ingest - index text and wait for the status line
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "APIIngest")

	var req entity.IngestAPIRequest
	if err := decode(w, r, &req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	out, err := h.usecase.IngestNow(ctx, middleware.ConversationID(ctx), entity.IngestInput{
		Text:       req.Text,
		SourceName: req.SourceName,
		URL:        req.URL,
	})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if out.Err != nil {
		status = http.StatusBadGateway
	}
	response.JSON(w, status, toIngestDTO(out))
}

// Chat handles POST /api/chat - ask a question and wait for the answer
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "APIChat")

	var req entity.ChatAPIRequest
	if err := decode(w, r, &req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	out, err := h.usecase.AskNow(ctx, middleware.ConversationID(ctx), req.Question)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	status := http.StatusOK
	switch {
	case out.Stale:
		status = http.StatusConflict
	case out.Err != nil:
		status = http.StatusBadGateway
	}
	response.JSON(w, status, toChatDTO(out))
}

// GetConversation handles GET /api/conversation - the current chat log, sources and ingestion status
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conv, err := h.usecase.Conversation(ctx, middleware.ConversationID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toConversationDTO(conv))
}

// ResetConversation handles DELETE /api/conversation
func (h *Handler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "APIReset")

	if err := h.usecase.Reset(ctx, middleware.ConversationID(ctx)); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(dst)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Info(ctx, message, zap.Error(err))
	}
	response.JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyText), errors.Is(err, entity.ErrInvalidURL):
		h.respondError(ctx, w, http.StatusBadRequest, render.ClassifyError(err), err)
	case errors.Is(err, entity.ErrEmptyQuestion):
		h.respondError(ctx, w, http.StatusBadRequest, "question is empty", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

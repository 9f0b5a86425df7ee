package handlers

import (
	"context"
	"errors"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/render"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// String returns string representation of error severity
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// HandlerError pairs an error with the reply shown to the user
type HandlerError struct {
	Err         error
	UserMessage string
	Severity    ErrorSeverity
}

// classifyHandlerError picks the user reply and log level for an error.
// Input mistakes are warnings; backend and transport failures are errors.
func classifyHandlerError(err error) *HandlerError {
	severity := SeverityError
	switch {
	case errors.Is(err, entity.ErrEmptyText),
		errors.Is(err, entity.ErrInvalidURL),
		errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrNothingToExport):
		severity = SeverityWarning
	}

	return &HandlerError{
		Err:         err,
		UserMessage: render.ClassifyError(err),
		Severity:    severity,
	}
}

// HandleError logs the error with its severity and replies with a short message
func (h *Handler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	switch handlerErr.Severity {
	case SeverityError:
		ctxzap.Error(ctx, "telegram handler failed",
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	case SeverityWarning:
		ctxzap.Warn(ctx, "telegram request rejected",
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	}

	_, _ = h.sender.Send(chatID, handlerErr.UserMessage, nil)
}

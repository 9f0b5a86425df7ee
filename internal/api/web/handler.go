package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/api/middleware"
	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/logger"
	"github.com/futig/rafiq-frontend/internal/pkg/response"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/render"
)

// multipart parts above this size are spooled to disk
const formMemory = 1 << 20

type Handler struct {
	usecase   ConversationUsecase
	validator *validator.Validator
	renderer  *render.HTMLRenderer
	templates *template.Template
	cfg       config.WebConfig
	maxUpload int64
}

func NewHandler(
	usecase ConversationUsecase,
	validator *validator.Validator,
	renderer *render.HTMLRenderer,
	cfg config.WebConfig,
	uploadCfg config.FileUploadConfig,
) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		usecase:   usecase,
		validator: validator,
		renderer:  renderer,
		templates: tmpl,
		cfg:       cfg,
		maxUpload: uploadCfg.MaxUploadSize,
	}, nil
}

// Page handles GET / - the full chat page
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderView(w, r, "page")
}

// ChatFragment handles GET /fragments/chat - the chat box alone
func (h *Handler) ChatFragment(w http.ResponseWriter, r *http.Request) {
	h.renderView(w, r, "chat")
}

// IngestFragment handles GET /fragments/ingest - the ingestion alert and status line
func (h *Handler) IngestFragment(w http.ResponseWriter, r *http.Request) {
	h.renderView(w, r, "ingest")
}

// Ingest handles POST /ingest - pasted text, URL or uploaded document
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ingest")
	id := middleware.ConversationID(ctx)

	in, err := h.readIngestForm(w, r)
	if err != nil {
		ctxzap.Warn(ctx, "rejected ingestion form", zap.Error(err))
		if aerr := h.usecase.Alert(ctx, id, err); aerr != nil {
			h.respondError(ctx, w, http.StatusInternalServerError, "failed to save alert", aerr)
			return
		}
		response.Redirect(w, r, "/#ingest")
		return
	}

	if err := h.usecase.Ingest(ctx, id, in); err != nil && !isInputError(err) {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to start ingestion", err)
		return
	}

	response.Redirect(w, r, "/#ingest")
}

// Ask handles POST /ask - a new question
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")
	id := middleware.ConversationID(ctx)

	err := h.usecase.Ask(ctx, id, r.FormValue("question"))
	if err != nil && !errors.Is(err, entity.ErrEmptyQuestion) {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to submit question", err)
		return
	}

	response.Redirect(w, r, "/#last")
}

// Reset handles POST /reset - forget the conversation
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Reset")

	if err := h.usecase.Reset(ctx, middleware.ConversationID(ctx)); err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to reset conversation", err)
		return
	}

	response.Redirect(w, r, "/")
}

// Export handles GET /export/{format} - transcript download
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")
	format := entity.ExportFormat(chi.URLParam(r, "format"))

	file, err := h.usecase.Export(ctx, middleware.ConversationID(ctx), format)
	switch {
	case errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusNotFound, "unsupported export format", err)
		return
	case errors.Is(err, entity.ErrNothingToExport):
		h.respondError(ctx, w, http.StatusConflict, render.TgNothingExport, err)
		return
	case err != nil:
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to export conversation", err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Content)
}

// readIngestForm accepts both urlencoded and multipart forms.
// An uploaded file replaces the pasted text and names the source unless one was typed.
func (h *Handler) readIngestForm(w http.ResponseWriter, r *http.Request) (entity.IngestInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return entity.IngestInput{}, fmt.Errorf("%w: request over %d bytes", entity.ErrFileTooLarge, maxErr.Limit)
		}
		return entity.IngestInput{}, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}

	in := entity.IngestInput{
		Text:       r.FormValue("kbText"),
		SourceName: r.FormValue("sourceName"),
		URL:        r.FormValue("url"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}
	defer file.Close()

	// browsers send an empty part when no file was picked
	if header.Filename == "" && header.Size == 0 {
		return in, nil
	}

	name, text, err := h.validator.ReadUpload(file, header)
	if err != nil {
		return in, err
	}

	in.Text = text
	if in.SourceName == "" {
		in.SourceName = name
	}
	return in, nil
}

func (h *Handler) renderView(w http.ResponseWriter, r *http.Request, name string) {
	ctx := r.Context()
	id := middleware.ConversationID(ctx)

	conv, err := h.usecase.Conversation(ctx, id)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to load conversation", err)
		return
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, toPageView(conv, h.renderer, h.cfg.PollInterval)); err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to render page", err)
		return
	}

	// an alert is shown once
	if conv.IngestAlert != "" && name != "chat" {
		if err := h.usecase.ClearAlert(ctx, id); err != nil {
			ctxzap.Warn(ctx, "failed to clear ingestion alert", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Text(w, status, "%s\n", message)
}

// isInputError reports errors the usecase already turned into an alert
func isInputError(err error) bool {
	return errors.Is(err, entity.ErrEmptyText) ||
		errors.Is(err, entity.ErrInvalidURL)
}

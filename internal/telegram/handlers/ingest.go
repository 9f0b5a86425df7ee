package handlers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
)

const downloadTimeout = 30 * time.Second

var secureHTTPClient = &http.Client{
	Timeout: downloadTimeout,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// ingestText indexes text under the default source and replies with the status line
func (h *Handler) ingestText(ctx context.Context, chatID int64, text string) error {
	return h.ingest(ctx, chatID, entity.IngestInput{Text: text})
}

// handleDocument indexes a .txt or .md file named after itself
func (h *Handler) handleDocument(ctx context.Context, msg *Message) error {
	doc := msg.Document
	name := validator.SanitizeFilename(doc.FileName)

	if err := h.validator.ValidateFile(name, int64(doc.FileSize)); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	content, err := h.download(ctx, doc.FileID)
	if err != nil {
		return fmt.Errorf("download document: %w", err)
	}

	text, err := h.validator.DocumentText(name, content)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	sourceName := name
	if msg.Text != "" {
		sourceName = msg.Text
	}
	return h.ingest(ctx, msg.ChatID, entity.IngestInput{Text: text, SourceName: sourceName})
}

func (h *Handler) ingest(ctx context.Context, chatID int64, in entity.IngestInput) error {
	typing := NewTypingNotifier(h.bot, chatID, h.logger)
	typing.Start(ctx)
	out, err := h.usecase.IngestNow(ctx, ConversationID(chatID), in)
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}
	if out.Stale {
		return nil
	}
	if out.Err != nil {
		ctxzap.Warn(ctx, "ingestion failed", zap.Error(out.Err))
	}

	_, err = h.sender.Send(chatID, out.Status, nil)
	return err
}

// download fetches a file from Telegram over HTTPS
func (h *Handler) download(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	parsedURL, err := url.Parse(fileURL)
	if err != nil {
		return nil, fmt.Errorf("invalid file URL: %w", err)
	}
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL scheme: %s (expected https)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := secureHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// one byte over the limit is enough for DocumentText to reject it
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.validator.MaxFileSize()+1))
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	return data, nil
}

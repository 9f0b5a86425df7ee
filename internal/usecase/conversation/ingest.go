package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/metrics"
	"github.com/futig/rafiq-frontend/internal/render"
)

// IngestTask is a submitted ingestion waiting for the backend
type IngestTask struct {
	ConversationID string
	Generation     uint64
	Request        *entity.IngestRequest

	ctx        context.Context
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// supersede cancels the request because a newer one or a reset replaced it.
func (t *IngestTask) supersede() {
	t.superseded.Store(true)
	t.cancel()
}

// IngestOutcome is what an ingestion ended with
type IngestOutcome struct {
	Status   string
	Response *entity.IngestResponse
	Err      error
	// Stale is set when a newer ingestion or a reset superseded this one
	Stale bool
}

// SubmitIngest validates the input, shows the in-progress status and cancels the ingestion it supersedes.
// Invalid input is recorded as the conversation alert and nothing is sent.
func (uc *ConversationUsecase) SubmitIngest(ctx context.Context, id string, in entity.IngestInput) (*IngestTask, error) {
	req, verr := uc.validator.IngestRequest(in)
	if verr != nil {
		if err := uc.Alert(ctx, id, verr); err != nil {
			return nil, err
		}
		return nil, verr
	}

	task := &IngestTask{ConversationID: id, Request: req}
	_, err := uc.update(ctx, id, func(conv *entity.Conversation) bool {
		conv.IngestGeneration++
		conv.IngestStatus = render.MsgIngestInProgress
		conv.IngestAlert = ""
		conv.IngestPending = true
		task.Generation = conv.IngestGeneration

		task.ctx, task.cancel = uc.requestContext(ctx)
		uc.inflight.replace(id, kindIngest, task.Generation, task.supersede)
		return true
	})
	if err != nil {
		if task.cancel != nil {
			uc.inflight.release(id, kindIngest, task.Generation)
			task.cancel()
		}
		return nil, err
	}

	ctxzap.Debug(ctx, "ingestion submitted", zap.Uint64("generation", task.Generation))
	return task, nil
}

// Alert records a rejected ingestion input as the alert shown by the next render.
func (uc *ConversationUsecase) Alert(ctx context.Context, id string, cause error) error {
	_, err := uc.update(ctx, id, func(conv *entity.Conversation) bool {
		conv.IngestAlert = render.ClassifyError(cause)
		return true
	})
	return err
}

// ResolveIngest sends the task to the backend and writes the final status line,
// unless the task was superseded in the meantime.
func (uc *ConversationUsecase) ResolveIngest(ctx context.Context, task *IngestTask) (*IngestOutcome, error) {
	defer task.cancel()
	defer uc.inflight.release(task.ConversationID, kindIngest, task.Generation)

	resp, callErr := uc.connector.Ingest(task.ctx, task.Request)

	outcome := &IngestOutcome{Response: resp, Err: callErr}
	if callErr != nil {
		outcome.Status = render.IngestError(callErr)
	} else {
		outcome.Status = render.IngestResult(resp)
	}

	settleCtx, cancel := settleContext(ctx)
	defer cancel()

	_, err := uc.update(settleCtx, task.ConversationID, func(conv *entity.Conversation) bool {
		if task.superseded.Load() || conv.IngestGeneration != task.Generation || !conv.IngestPending {
			outcome.Stale = true
			return false
		}
		conv.IngestStatus = outcome.Status
		conv.IngestPending = false
		return true
	})
	if err != nil {
		return nil, err
	}

	if outcome.Stale {
		metrics.StaleResponsesTotal.WithLabelValues("ingest").Inc()
		ctxzap.Debug(ctx, "dropping superseded ingestion result", zap.Uint64("generation", task.Generation))
	}
	return outcome, nil
}

// Ingest submits and resolves in the background; views poll the conversation for the result.
func (uc *ConversationUsecase) Ingest(ctx context.Context, id string, in entity.IngestInput) error {
	task, err := uc.SubmitIngest(ctx, id, in)
	if err != nil {
		return err
	}

	uc.background(ctx, func(bgCtx context.Context) {
		if _, err := uc.ResolveIngest(bgCtx, task); err != nil {
			ctxzap.Error(bgCtx, "failed to resolve ingestion", zap.Error(err))
		}
	})
	return nil
}

// IngestNow submits and waits for the result.
func (uc *ConversationUsecase) IngestNow(ctx context.Context, id string, in entity.IngestInput) (*IngestOutcome, error) {
	task, err := uc.SubmitIngest(ctx, id, in)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, task.cancel)
	defer stop()

	return uc.ResolveIngest(ctx, task)
}

// IngestDocument sends a file's content straight to the backend, outside any conversation.
// The file name becomes the source label.
func (uc *ConversationUsecase) IngestDocument(ctx context.Context, name string, content []byte) (*entity.IngestResponse, error) {
	text, err := uc.validator.DocumentText(name, content)
	if err != nil {
		return nil, err
	}

	req, err := uc.validator.IngestRequest(entity.IngestInput{Text: text, SourceName: name})
	if err != nil {
		if errors.Is(err, entity.ErrEmptyText) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, err
	}

	return uc.connector.Ingest(ctx, req)
}

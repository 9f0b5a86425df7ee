package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
)

// settleTimeout bounds the store write that closes a turn after its request was cancelled.
const settleTimeout = 5 * time.Second

// ConversationUsecase drives the chat log, the sources panel and the ingestion status
// of every conversation, whatever view it is shown in.
type ConversationUsecase struct {
	repo       ConversationRepository
	connector  RafiqConnector
	validator  *validator.Validator
	formatters FormatterFactory
	logger     *zap.Logger

	locks    *keyedMutex
	inflight *inflight

	// background resolutions hang off baseCtx so Close can abort them
	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

// NewUsecase creates a new conversation use case
func NewUsecase(
	repo ConversationRepository,
	connector RafiqConnector,
	validator *validator.Validator,
	formatters FormatterFactory,
	logger *zap.Logger,
) *ConversationUsecase {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &ConversationUsecase{
		repo:       repo,
		connector:  connector,
		validator:  validator,
		formatters: formatters,
		logger:     logger,
		locks:      newKeyedMutex(),
		inflight:   newInflight(),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
}

// Conversation returns the stored conversation or a fresh empty one.
func (uc *ConversationUsecase) Conversation(ctx context.Context, id string) (*entity.Conversation, error) {
	conv, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrConversationNotFound) {
			return entity.NewConversation(id), nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// update loads a conversation, applies fn and saves it, all under the conversation lock.
// fn returning false skips the save.
func (uc *ConversationUsecase) update(ctx context.Context, id string, fn func(conv *entity.Conversation) bool) (*entity.Conversation, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	conv, err := uc.Conversation(ctx, id)
	if err != nil {
		return nil, err
	}

	if !fn(conv) {
		return conv, nil
	}

	conv.Touch()
	if err := uc.repo.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// ClearAlert drops the ingestion alert once a view has shown it
func (uc *ConversationUsecase) ClearAlert(ctx context.Context, id string) error {
	_, err := uc.update(ctx, id, func(conv *entity.Conversation) bool {
		if conv.IngestAlert == "" {
			return false
		}
		conv.IngestAlert = ""
		return true
	})
	return err
}

// Reset cancels pending requests and forgets the conversation
func (uc *ConversationUsecase) Reset(ctx context.Context, id string) error {
	unlock := uc.locks.Lock(id)
	defer unlock()

	uc.inflight.cancel(id)

	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	ctxzap.Info(ctx, "conversation reset")
	return nil
}

// Health reports whether the backend answers
func (uc *ConversationUsecase) Health(ctx context.Context) (*entity.HealthResponse, error) {
	return uc.connector.Health(ctx)
}

// background runs fn detached from the request, keeping its logger.
func (uc *ConversationUsecase) background(ctx context.Context, fn func(ctx context.Context)) {
	bgCtx := ctxzap.ToContext(uc.baseCtx, ctxzap.Extract(ctx))

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				ctxzap.Error(bgCtx, "panic in background resolution", zap.Any("panic", r), zap.Stack("stack"))
			}
		}()
		fn(bgCtx)
	}()
}

// requestContext derives the cancellable context of one backend request.
func (uc *ConversationUsecase) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := ctxzap.ToContext(uc.baseCtx, ctxzap.Extract(ctx))
	return context.WithCancel(base)
}

// settleContext keeps the values of ctx but drops its cancellation, so the final state
// of a turn is still written when the backend call was aborted by shutdown or a gone client.
func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

// Close waits for background resolutions; when ctx ends first they are cancelled.
func (uc *ConversationUsecase) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		uc.cancelBase()
		return nil
	case <-ctx.Done():
		uc.cancelBase()
		<-done
		return ctx.Err()
	}
}

package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/chatlog"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/metrics"
	"github.com/futig/rafiq-frontend/internal/render"
)

// ChatTurn is a submitted question waiting for its answer
type ChatTurn struct {
	ConversationID string
	Generation     uint64
	Question       string
	Placeholder    chatlog.Message

	ctx        context.Context
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// supersede cancels the request because a newer one or a reset replaced it.
func (t *ChatTurn) supersede() {
	t.superseded.Store(true)
	t.cancel()
}

// Outcome is what a chat turn ended with
type Outcome struct {
	Answer  string
	Sources string
	Raw     json.RawMessage
	Message chatlog.Message
	Err     error
	// Stale is set when a newer question or a reset superseded this turn
	Stale bool
}

// SubmitQuestion appends the question and the thinking placeholder, and cancels the turn it supersedes.
// A blank question returns entity.ErrEmptyQuestion and leaves the conversation untouched.
func (uc *ConversationUsecase) SubmitQuestion(ctx context.Context, id, question string) (*ChatTurn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, entity.ErrEmptyQuestion
	}

	turn := &ChatTurn{ConversationID: id, Question: question}
	_, err := uc.update(ctx, id, func(conv *entity.Conversation) bool {
		conv.ChatGeneration++
		turn.Generation = conv.ChatGeneration

		conv.Messages.AddMessage(chatlog.RoleUser, question)
		turn.Placeholder = conv.Messages.AddPlaceholder(render.MsgThinking, turn.Generation)
		conv.ChatPending = true

		turn.ctx, turn.cancel = uc.requestContext(ctx)
		uc.inflight.replace(id, kindChat, turn.Generation, turn.supersede)
		return true
	})
	if err != nil {
		if turn.cancel != nil {
			uc.inflight.release(id, kindChat, turn.Generation)
			turn.cancel()
		}
		return nil, err
	}

	ctxzap.Debug(ctx, "question submitted", zap.Uint64("generation", turn.Generation))
	return turn, nil
}

// ResolveQuestion asks the backend and replaces the placeholder with the answer or the error,
// unless the turn was superseded in the meantime.
func (uc *ConversationUsecase) ResolveQuestion(ctx context.Context, turn *ChatTurn) (*Outcome, error) {
	defer turn.cancel()
	defer uc.inflight.release(turn.ConversationID, kindChat, turn.Generation)

	resp, callErr := uc.connector.Chat(turn.ctx, &entity.ChatRequest{Question: turn.Question})

	outcome := &Outcome{Err: callErr}
	if callErr != nil {
		outcome.Answer = render.ChatError(callErr)
	} else {
		outcome.Answer = render.AnswerText(resp)
		outcome.Sources = render.SourcesText(resp)
		if resp != nil {
			outcome.Raw = resp.Raw
		}
	}

	settleCtx, cancel := settleContext(ctx)
	defer cancel()

	_, err := uc.update(settleCtx, turn.ConversationID, func(conv *entity.Conversation) bool {
		if turn.superseded.Load() || conv.ChatGeneration != turn.Generation || !conv.ChatPending {
			outcome.Stale = true
			return false
		}

		conv.Messages.RemoveLastSystemThinking()
		outcome.Message = conv.Messages.AddMessage(chatlog.RoleAssistant, outcome.Answer)
		if callErr == nil {
			conv.Sources = outcome.Sources
		}
		conv.ChatPending = false
		return true
	})
	if err != nil {
		return nil, err
	}

	if outcome.Stale {
		metrics.StaleResponsesTotal.WithLabelValues("chat").Inc()
		ctxzap.Debug(ctx, "dropping superseded answer", zap.Uint64("generation", turn.Generation))
	}
	return outcome, nil
}

// Ask submits a question and resolves it in the background; views poll the conversation.
func (uc *ConversationUsecase) Ask(ctx context.Context, id, question string) error {
	turn, err := uc.SubmitQuestion(ctx, id, question)
	if err != nil {
		return err
	}

	uc.background(ctx, func(bgCtx context.Context) {
		if _, err := uc.ResolveQuestion(bgCtx, turn); err != nil {
			ctxzap.Error(bgCtx, "failed to resolve question", zap.Error(err))
		}
	})
	return nil
}

// AskNow submits a question and waits for its outcome.
func (uc *ConversationUsecase) AskNow(ctx context.Context, id, question string) (*Outcome, error) {
	turn, err := uc.SubmitQuestion(ctx, id, question)
	if err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, turn.cancel)
	defer stop()

	return uc.ResolveQuestion(ctx, turn)
}

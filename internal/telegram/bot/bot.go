package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/telegram/handlers"
	"github.com/futig/rafiq-frontend/internal/telegram/middleware"
)

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	handler     *handlers.Handler
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware

	// bounds the number of updates handled at once
	slots chan struct{}

	// handler contexts hang off baseCtx so Stop can abort them
	baseCtx    context.Context
	cancelBase context.CancelFunc
	stopOnce   sync.Once
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// New authorizes the bot token and builds the middleware chain
func New(cfg *config.TelegramConfig, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	baseCtx, cancel := context.WithCancel(context.Background())
	return &Bot{
		api:         api,
		cfg:         cfg,
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		slots:       make(chan struct{}, cfg.MaxConcurrentUsers),
		baseCtx:     baseCtx,
		cancelBase:  cancel,
		stopChan:    make(chan struct{}),
	}, nil
}

// SetHandler must be called before Start
func (b *Bot) SetHandler(h *handlers.Handler) {
	b.handler = h
}

// API returns the bot API instance (for handlers)
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// Start begins long polling in the background
func (b *Bot) Start(ctx context.Context) error {
	if b.handler == nil {
		return errors.New("telegram handler is not set")
	}

	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	go b.rateLimitMW.RunCleanup(b.baseCtx)
	go b.processUpdates(ctxzap.ToContext(ctx, b.logger), updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops polling and waits for in-flight updates up to the shutdown timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.cancelBase()
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.cancelBase()
		b.logger.Warn("shutdown timeout exceeded, cancelling remaining handlers",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			select {
			case b.slots <- struct{}{}:
			case <-b.stopChan:
				return
			}

			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				defer func() { <-b.slots }()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limiting, logging and recovery around the handler
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.handleUpdate)
		})
	})
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(b.baseCtx, b.logger.With(zap.Int("update_id", update.UpdateID)))

	var (
		msg    *handlers.Message
		err    error
		chatID int64
	)
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		query := update.CallbackQuery
		chatID = query.Message.Chat.ID
		msg = &handlers.Message{
			ChatID:       chatID,
			UserID:       query.From.ID,
			MessageID:    query.Message.MessageID,
			CallbackData: query.Data,
			CallbackID:   query.ID,
		}
		err = b.handler.HandleCallback(ctx, msg)
	case update.Message != nil:
		msg = handlers.NewMessage(update.Message)
		chatID = msg.ChatID
		err = b.handler.HandleMessage(ctx, msg)
	default:
		return
	}

	if err != nil {
		b.handler.HandleError(ctx, chatID, err)
	}
}

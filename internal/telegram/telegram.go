package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/telegram/bot"
	"github.com/futig/rafiq-frontend/internal/telegram/handlers"
	"github.com/futig/rafiq-frontend/internal/telegram/keyboard"
	"github.com/futig/rafiq-frontend/internal/telegram/state"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	usecase handlers.ConversationUsecase,
	validator *validator.Validator,
	logger *zap.Logger,
) (Bot, error) {
	b, err := bot.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.SetHandler(handlers.NewHandler(
		b.API(),
		usecase,
		validator,
		state.NewStore(cfg.StateTTL),
		keyboard.NewBuilder(),
		logger,
	))

	logger.Info("telegram bot initialized successfully")
	return b, nil
}

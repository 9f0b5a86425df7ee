package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rafiq-frontend/internal/api"
	chatapi "github.com/futig/rafiq-frontend/internal/api/chat"
	"github.com/futig/rafiq-frontend/internal/api/web"
	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/integration/rafiq"
	"github.com/futig/rafiq-frontend/internal/pkg/formatter"
	pkglogger "github.com/futig/rafiq-frontend/internal/pkg/logger"
	"github.com/futig/rafiq-frontend/internal/pkg/validator"
	"github.com/futig/rafiq-frontend/internal/render"
	"github.com/futig/rafiq-frontend/internal/telegram"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
	"github.com/futig/rafiq-frontend/internal/watcher"
	"go.uber.org/zap"
)

// core holds what both frontends share
type core struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store
	connector conversation.RafiqConnector
	validator *validator.Validator
	usecase   *conversation.ConversationUsecase
}

func buildCore(ctx context.Context, component string) (*core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	logger = logger.With(zap.String("component", component))

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("backend_url", cfg.RafiqConnectorCfg.Url),
	)

	st, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup store: %w", err)
	}

	var connector conversation.RafiqConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the backend")
		connector = rafiq.NewMockConnector(logger)
	} else {
		connector = rafiq.NewConnector(cfg.RafiqConnectorCfg, logger)
	}

	v := validator.New(cfg.FileUploadCfg)

	uc := conversation.NewUsecase(
		st.repo,
		connector,
		v,
		formatter.NewFactory(),
		logger,
	)
	logger.Info("Use cases initialized")

	return &core{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		connector: connector,
		validator: v,
		usecase:   uc,
	}, nil
}

// Build assembles the web frontend
func Build() (*App, error) {
	ctx := context.Background()

	c, err := buildCore(ctx, "web")
	if err != nil {
		return nil, err
	}
	cfg, logger := c.cfg, c.logger

	webHandler, err := web.NewHandler(
		c.usecase,
		c.validator,
		render.NewHTMLRenderer(cfg.WebCfg.RenderMarkdown),
		cfg.WebCfg,
		cfg.FileUploadCfg,
	)
	if err != nil {
		c.release()
		return nil, fmt.Errorf("setup web handler: %w", err)
	}
	chatHandler := chatapi.NewHandler(c.usecase)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(webHandler, chatHandler, c.connector, cfg.WebCfg, logger)
	logger.Info("HTTP router configured")

	// Chat requests wait for the backend, so the write timeout follows the request timeout.
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.WebCfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var w *watcher.Watcher
	if cfg.WatchCfg.Dir != "" {
		w = watcher.New(cfg.WatchCfg, c.usecase, logger)
		logger.Info("Folder watcher enabled", zap.String("dir", cfg.WatchCfg.Dir))
	}

	logger.Info("Application built successfully",
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("store", cfg.StoreCfg.Driver),
	)

	return &App{
		server:          server,
		watcher:         w,
		usecase:         c.usecase,
		store:           c.store,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot assembles the Telegram frontend
func BuildTelegramBot() (*BotApp, error) {
	ctx := context.Background()

	c, err := buildCore(ctx, "telegram")
	if err != nil {
		return nil, err
	}
	cfg, logger := c.cfg, c.logger

	if cfg.TelegramCfg.BotToken == "" {
		c.release()
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, c.usecase, c.validator, logger)
	if err != nil {
		c.release()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreCfg.Driver),
	)

	return &BotApp{
		bot:             bot,
		usecase:         c.usecase,
		store:           c.store,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

func (c *core) release() {
	if c.store.close != nil {
		c.store.close()
	}
}

package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/futig/rafiq-frontend/internal/telegram"
	"github.com/futig/rafiq-frontend/internal/usecase/conversation"
	"github.com/futig/rafiq-frontend/internal/watcher"
	"go.uber.org/zap"
)

// App represents the web application with all its components
type App struct {
	server          *http.Server
	watcher         *watcher.Watcher
	usecase         *conversation.ConversationUsecase
	store           *store
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	daemonCtx, stopDaemons := context.WithCancel(context.Background())
	var daemons sync.WaitGroup
	defer func() {
		stopDaemons()
		daemons.Wait()
	}()

	a.startDaemons(daemonCtx, &daemons)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.release()
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	stopDaemons()
	daemons.Wait()
	return a.shutdown()
}

func (a *App) startDaemons(ctx context.Context, wg *sync.WaitGroup) {
	if a.watcher != nil {
		wg.Go(func() {
			if err := a.watcher.Run(ctx); err != nil {
				a.logger.Error("Folder watcher stopped", zap.Error(err))
			}
		})
	}

	if a.store.janitor != nil {
		wg.Go(func() { a.store.janitor(ctx) })
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		a.release()
		return err
	}

	if err := a.usecase.Close(ctx); err != nil {
		a.logger.Warn("Pending requests abandoned", zap.Error(err))
	}

	a.release()
	a.logger.Info("Application stopped gracefully")
	return nil
}

func (a *App) release() {
	if a.store.close != nil {
		a.logger.Info("Closing store connections")
		a.store.close()
	}
	_ = a.logger.Sync()
}

// BotApp is the Telegram frontend process
type BotApp struct {
	bot             telegram.Bot
	usecase         *conversation.ConversationUsecase
	store           *store
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// Run starts the bot and blocks until a shutdown signal arrives
func (a *BotApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var daemons sync.WaitGroup
	if a.store.janitor != nil {
		daemons.Go(func() { a.store.janitor(ctx) })
	}

	a.logger.Info("starting telegram bot...")
	if err := a.bot.Start(ctx); err != nil {
		cancel()
		daemons.Wait()
		a.release()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	if err := a.bot.Stop(); err != nil {
		a.logger.Error("error stopping bot", zap.Error(err))
	}
	cancel()
	daemons.Wait()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer closeCancel()
	if err := a.usecase.Close(closeCtx); err != nil {
		a.logger.Warn("pending requests abandoned", zap.Error(err))
	}

	a.release()
	a.logger.Info("telegram bot stopped gracefully")
	return nil
}

func (a *BotApp) release() {
	if a.store.close != nil {
		a.store.close()
	}
	_ = a.logger.Sync()
}

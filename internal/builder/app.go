package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/launchpad-backend/internal/telegram"
	"github.com/futig/launchpad-backend/internal/usecase/project"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	server          *http.Server
	bot             telegram.Bot
	projectUC       *project.ProjectUsecase
	logger          *zap.Logger
	shutdownTimeout time.Duration
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	if a.bot != nil {
		if err := a.bot.Start(ctx); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		errs = append(errs, err)
	}

	if a.bot != nil {
		if err := a.bot.Stop(); err != nil {
			a.logger.Error("Telegram bot shutdown error", zap.Error(err))
			errs = append(errs, err)
		}
	}

	a.logger.Info("Waiting for pending webhook deliveries")
	done := make(chan struct{})
	go func() {
		a.projectUC.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Pending webhook deliveries abandoned")
	}

	_ = a.logger.Sync()
	a.logger.Info("Application stopped gracefully")
	return errors.Join(errs...)
}

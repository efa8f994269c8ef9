package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sharetube/watch-together/internal/controller"
	conninmemory "github.com/sharetube/watch-together/internal/repository/connection/inmemory"
	sessioninmemory "github.com/sharetube/watch-together/internal/repository/session/inmemory"
	"github.com/sharetube/watch-together/internal/service/session"
)

const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

type AppConfig struct {
	Host       string        `json:"host"`
	Port       int           `json:"port"`
	LogLevel   string        `json:"log_level"`
	LogFormat  string        `json:"log_format"`
	SendBuffer int           `json:"send_buffer"`
	ReadLimit  int64         `json:"read_limit"`
	PingPeriod time.Duration `json:"ping_period"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.LogFormat != logFormatJSON && cfg.LogFormat != logFormatConsole {
		return fmt.Errorf("log format must be %q or %q, got %q", logFormatJSON, logFormatConsole, cfg.LogFormat)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.SendBuffer < 1 {
		return fmt.Errorf("send buffer must be greater than 0")
	}
	if cfg.ReadLimit < 1 {
		return fmt.Errorf("read limit must be greater than 0")
	}
	if cfg.PingPeriod <= 0 {
		return fmt.Errorf("ping period must be greater than 0")
	}
	return nil
}

func newHandler(cfg *AppConfig, logger zerolog.Logger) http.Handler {
	sessionRepo := sessioninmemory.NewRepo(logger)
	connectionRepo := conninmemory.NewRepo[session.Conn](logger)
	sessionService := session.New(sessionRepo, connectionRepo)
	controller := controller.NewController(sessionService, logger, &controller.Config{
		SendBuffer: cfg.SendBuffer,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
	})

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: newHandler(cfg, logger),
	}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		select {
		case <-sig:
		case <-serverCtx.Done():
		}

		shutdownCtx, c := context.WithTimeout(context.Background(), 30*time.Second)
		defer c()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed, forcing close")
			server.Close()
		}
	}()

	logger.Info().Str("address", server.Addr).Msg("starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-shutdownDone
	logger.Info().Msg("server stopped")

	return nil
}

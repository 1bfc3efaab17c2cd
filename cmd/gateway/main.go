package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agendalink/internal/backend"
	"agendalink/internal/clipboard"
	"agendalink/internal/config"
	"agendalink/internal/events"
	"agendalink/internal/flow"
	"agendalink/internal/google"
	"agendalink/internal/journal"
	"agendalink/internal/logging"
	"agendalink/internal/metrics"
	"agendalink/internal/notify"
	"agendalink/internal/repository"
	"agendalink/internal/session"
	"agendalink/internal/web"
	"agendalink/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessions := initSessionStore(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	jr, err := initJournal(cfg, logger)
	if err != nil {
		return err
	}
	if jr != nil {
		defer jr.Close()
	}

	eventBus := events.NewEventBus()

	if err := initNotifier(cfg, eventBus, logger); err != nil {
		return err
	}
	if err := initExportWorker(ctx, cfg, eventBus, logger); err != nil {
		return err
	}

	copier := clipboard.Chain{
		Fallback: clipboard.NewWriterCopier(os.Stdout),
	}
	if system, err := clipboard.System(); err == nil {
		copier.Primary = system
	}

	factory := func(linkToken, sessionID string) *flow.Controller {
		client := backend.NewPublicClient(cfg.Backend.BaseURL, linkToken, cfg.Backend.Timeout())
		if redisClient != nil {
			client.UseRedisCache(redisClient, cfg.Backend.CacheTTL())
		}
		return flow.NewController(client, flow.Options{
			SessionID:    sessionID,
			PollInterval: cfg.Flow.PollInterval(),
			Logger:       logger,
			Events:       eventBus,
			Journal:      jr,
			Clipboard:    copier,
		})
	}

	registry := web.NewRegistry(factory, sessions, cfg.Flow.SessionTTL(), cfg.Flow.MaxSessions, logger)
	defer registry.Close()
	go registry.RunJanitor(ctx, time.Minute)

	adminClient := backend.NewAdminClient(cfg.Backend.BaseURL, cfg.Backend.Timeout())
	server := web.NewServer(cfg, logger, registry, adminClient, jr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func initSessionStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, session.Repository) {
	memory := repository.NewMemorySessionRepository(cfg.Flow.SessionTTL())

	if !cfg.Redis.Enabled {
		logger.Info().Msg("Redis disabled, using in-memory session store")
		return nil, memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unreachable, using in-memory session store")
		_ = repository.Close(client)
		return nil, memory
	}

	primary := repository.NewRedisSessionRepository(client, cfg.Flow.SessionTTL())
	return client, repository.NewFailoverSessionRepository(primary, memory, logger)
}

func initJournal(cfg *config.Config, logger *zerolog.Logger) (*journal.Journal, error) {
	if cfg.Journal.Path == "" {
		logger.Info().Msg("Flow journal disabled")
		return nil, nil
	}
	jr, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.Journal.Path).Msg("Flow journal opened")
	return jr, nil
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) error {
	if !cfg.Notify.Telegram.Enabled {
		return nil
	}
	sender, err := notify.NewTelegramSender(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	if err != nil {
		return err
	}
	notify.NewNotifier(sender, logger).Subscribe(bus)
	logger.Info().Int64("chat_id", cfg.Notify.Telegram.ChatID).Msg("Telegram notifier enabled")
	return nil
}

func initExportWorker(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) error {
	if cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}
	sheets, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		return err
	}

	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sheets.TestConnection(testCtx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed, export disabled")
		return nil
	}

	w := worker.NewExportWorker(sheets, worker.DefaultExportRetry(), logger)
	w.Subscribe(bus)
	go w.Run(ctx)

	logger.Info().Str("spreadsheet_id", cfg.Google.BookingSpreadSheetID).Msg("Sheets export worker started")
	return nil
}

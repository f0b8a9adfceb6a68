package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/karthikdoguparthi/KisaanGrow/internal/advisory"
	"github.com/karthikdoguparthi/KisaanGrow/internal/config"
	"github.com/karthikdoguparthi/KisaanGrow/internal/events"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/server"
	"github.com/karthikdoguparthi/KisaanGrow/internal/service"
	"github.com/karthikdoguparthi/KisaanGrow/internal/session"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage/drivers"
	"github.com/karthikdoguparthi/KisaanGrow/lib/logger"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.NewConfig()
	log := logger.SetupLogger(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	store := storage.NewStore(driver, cfg.CacheTTL, log)
	defer store.Close()

	sessions, err := openSessions(cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	hub := events.NewHub(log)
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.RabbitURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		publishers = append(publishers, amqpPub)
	}
	defer publishers.Close()

	var gateway advisory.Gateway
	if cfg.OpenAIKey != "" {
		gateway = advisory.NewOpenAIGateway(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	} else {
		log.Warn("OPENAI_API_KEY is not set, advice will use the fallback tip")
	}

	srv := server.NewServer(server.ServerOpts{
		Config:   cfg,
		Sessions: sessions,
		Identity: service.NewIdentityService(store, sessions, cfg.HashPasswords, log),
		Booking:  service.NewBookingService(store, publishers, log),
		Payment:  service.NewPaymentService(store, publishers, log),
		Advisor:  advisory.NewAdvisor(gateway, cfg.AdviceTimeout, log),
		Live:     hub,
		Logger:   log,
	})

	log.Info("starting KisaanGrow",
		slog.String("store", cfg.StoreDriver),
		slog.String("sessions", cfg.SessionDriver))
	return srv.Run(ctx, cfg.Listen)
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	opts := storage.StorageOpts{DriverType: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case storage.PgxDriverType:
		if err := drivers.Migrate(cfg.MigrationsPath, cfg.DbPath); err != nil {
			return nil, err
		}
		db, err := sql.Open(storage.PgxDriverType, cfg.DbPath)
		if err != nil {
			return nil, err
		}
		opts.Database = db
	case storage.BadgerDriverType:
		db, err := drivers.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		opts.Badger = db
	case storage.SheetsDriverType:
		creds, err := os.ReadFile(cfg.SheetsCreds)
		if err != nil {
			return nil, fmt.Errorf("read sheets credentials: %w", err)
		}
		srv, err := drivers.NewSheetsService(ctx, creds)
		if err != nil {
			return nil, err
		}
		opts.Sheets = srv
		opts.SpreadsheetID = cfg.SheetID
	}

	driver, err := storage.NewStorage(opts)
	if err != nil {
		return nil, err
	}
	if up, ok := driver.(storage.Upgrader); ok {
		err := up.Upgrade(ctx, models.FarmersTable, models.CorporatesTable, models.SlotsTable)
		if err != nil {
			return nil, fmt.Errorf("upgrade %s tables: %w", cfg.StoreDriver, err)
		}
	}
	return driver, nil
}

func openSessions(cfg config.Config) (session.Store, error) {
	switch cfg.SessionDriver {
	case session.MemoryDriverType:
		return session.NewMemoryStore(cfg.SessionIdle), nil
	case session.RedisDriverType:
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(redis.NewClient(redisOpts), cfg.SessionIdle), nil
	}
	return nil, fmt.Errorf("unknown session driver %q", cfg.SessionDriver)
}

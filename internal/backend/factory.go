package backend

import (
	"context"
	"fmt"
	"log/slog"

	"billed/internal/adapters"
	"billed/internal/amqp"
	"billed/internal/services"
	"billed/internal/storage"
	"billed/internal/store/memory"
	"billed/internal/store/remote"
)

// Factory creates bill stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store named by the config and returns it with an
// optional cleanup function.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case RemoteBackend:
		return f.createRemote(cfg)
	default:
		return f.createMemory()
	}
}

func (f *Factory) createSQLite(cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it bills stay local until the worker sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
			amqpClient = nil
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewBillService(repo, amqpClient)
	adapter := adapters.NewSQLiteAdapter(repo, svc)

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{Store: adapter, Reviewer: adapter, Cleanup: svc.Close}, nil
}

func (f *Factory) createRemote(cfg Config) (*Result, error) {
	client := remote.NewClient(cfg.RemoteAPIURL)
	f.logger.Info("Initialized remote backend", "api_url", cfg.RemoteAPIURL)
	return &Result{Store: client}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	store := memory.NewWithFixtures()
	f.logger.Info("Initialized memory backend")
	return &Result{Store: store, Reviewer: store}, nil
}

// Package services orchestrates bill operations across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"billed/internal/amqp"
	"billed/internal/core"
	"billed/internal/storage"
)

// BillService saves bills locally and queues them for the archive worker.
type BillService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewBillService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BillService {
	return &BillService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateBill persists the draft and publishes a sync message. The local save
// is authoritative: a failed publish is logged, not surfaced, and the
// periodic sweep picks the bill up later.
func (s *BillService) CreateBill(ctx context.Context, draft core.Bill) (core.Bill, error) {
	created, err := s.storage.Create(ctx, draft)
	if err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}

	id, err := strconv.ParseInt(created.ID, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse bill ID", "id", created.ID, "error", err)
		return created, nil
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return created, nil
	}
	if err := s.amqpClient.PublishBillSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}

	return created, nil
}

// Close closes both storage and AMQP connections.
func (s *BillService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close bill service: %v", errs)
	}
	return nil
}

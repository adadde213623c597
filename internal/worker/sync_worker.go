// Package worker moves created bills from SQLite to the archive.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"billed/internal/amqp"
	"billed/internal/archive"
	"billed/internal/core"
	"billed/internal/storage"
)

// BillSource is the slice of the repository the worker needs.
type BillSource interface {
	GetBill(ctx context.Context, id int64) (core.Bill, error)
	GetPendingSyncBills(ctx context.Context, limit int) ([]storage.PendingSyncBill, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker consumes sync messages and archives the referenced bills.
type SyncWorker struct {
	source    BillSource
	archive   archive.Appender
	batchSize int
}

func NewSyncWorker(source BillSource, appender archive.Appender, batchSize int) *SyncWorker {
	return &SyncWorker{
		source:    source,
		archive:   appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one queued bill. Errors bubble up so the
// delivery is requeued.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.BillSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	b, err := w.source.GetBill(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get bill from storage: %w", err)
	}

	if _, err := w.archive.Append(ctx, b); err != nil {
		return fmt.Errorf("archive bill: %w", err)
	}

	if err := w.source.MarkSynced(ctx, msg.ID); err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}

	return nil
}

// ProcessPendingBills sweeps bills the queue missed. Archive failures flag
// the row instead of aborting the batch, so one bad bill cannot wedge the
// sweep forever.
func (w *SyncWorker) ProcessPendingBills(ctx context.Context) error {
	pending, err := w.source.GetPendingSyncBills(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending bills: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending bills", "count", len(pending))

	for _, p := range pending {
		b, err := w.source.GetBill(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending bill", "id", p.ID, "error", err)
			continue
		}

		if _, err := w.archive.Append(ctx, b); err != nil {
			slog.ErrorContext(ctx, "Failed to archive pending bill", "id", p.ID, "error", err)
			if markErr := w.source.MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to flag bill", "id", p.ID, "error", markErr)
			}
			continue
		}

		if err := w.source.MarkSynced(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark bill synced", "id", p.ID, "error", err)
		}
	}

	return nil
}

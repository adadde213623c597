package adapters

import (
	"context"

	"billed/internal/core"
	"billed/internal/services"
	"billed/internal/storage"
)

// SQLiteAdapter exposes the SQLite repository and bill service as the store
// port the controllers consume, so the HTTP layer works unchanged against
// the SQLite + AMQP backend.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.BillService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.BillService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// List implements bill.Store.
func (a *SQLiteAdapter) List(ctx context.Context) ([]core.Bill, error) {
	return a.storage.List(ctx)
}

// Create implements bill.Store, routing through the service so the sync
// message is published.
func (a *SQLiteAdapter) Create(ctx context.Context, draft core.Bill) (core.Bill, error) {
	return a.service.CreateBill(ctx, draft)
}

// UpdateStatus applies an admin review decision.
func (a *SQLiteAdapter) UpdateStatus(ctx context.Context, id string, status core.Status, commentAdmin string) error {
	return a.storage.UpdateStatus(ctx, id, status, commentAdmin)
}

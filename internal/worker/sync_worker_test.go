package worker

import (
	"context"
	"errors"
	"testing"

	"billed/internal/amqp"
	"billed/internal/core"
	"billed/internal/storage"
)

type fakeSource struct {
	bills      map[int64]core.Bill
	pending    []storage.PendingSyncBill
	synced     []int64
	flagged    []int64
	getErr     error
	pendingErr error
}

func (f *fakeSource) GetBill(_ context.Context, id int64) (core.Bill, error) {
	if f.getErr != nil {
		return core.Bill{}, f.getErr
	}
	b, ok := f.bills[id]
	if !ok {
		return core.Bill{}, errors.New("no such bill")
	}
	return b, nil
}

func (f *fakeSource) GetPendingSyncBills(_ context.Context, limit int) ([]storage.PendingSyncBill, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkSynced(_ context.Context, id int64) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSource) MarkSyncError(_ context.Context, id int64) error {
	f.flagged = append(f.flagged, id)
	return nil
}

type fakeAppender struct {
	appended []core.Bill
	err      error
}

func (f *fakeAppender) Append(_ context.Context, b core.Bill) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, b)
	return "sheet!A2:L2", nil
}

func TestHandleSyncMessage(t *testing.T) {
	src := &fakeSource{bills: map[int64]core.Bill{
		7: {ID: "7", Type: "Transports", Date: "2024-05-01", Amount: 35, Pct: 20, Status: core.StatusPending},
	}}
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewBillSyncMessage(7)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(app.appended) != 1 || app.appended[0].ID != "7" {
		t.Fatalf("bill not archived: %+v", app.appended)
	}
	if len(src.synced) != 1 || src.synced[0] != 7 {
		t.Fatalf("bill not marked synced: %v", src.synced)
	}
}

func TestHandleSyncMessageArchiveFailureRequeues(t *testing.T) {
	src := &fakeSource{bills: map[int64]core.Bill{7: {ID: "7"}}}
	app := &fakeAppender{err: errors.New("quota exceeded")}
	w := NewSyncWorker(src, app, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewBillSyncMessage(7)); err == nil {
		t.Fatalf("expected error so the delivery is requeued")
	}
	if len(src.synced) != 0 {
		t.Fatalf("failed bill must not be marked synced")
	}
}

func TestProcessPendingBills(t *testing.T) {
	src := &fakeSource{
		bills: map[int64]core.Bill{
			1: {ID: "1", Date: "2024-01-01"},
			2: {ID: "2", Date: "2024-02-02"},
		},
		pending: []storage.PendingSyncBill{{ID: 1}, {ID: 2}},
	}
	w := NewSyncWorker(src, &fakeAppender{}, 10)

	if err := w.ProcessPendingBills(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(src.synced) != 2 {
		t.Fatalf("expected 2 synced, got %v", src.synced)
	}
}

func TestProcessPendingBillsFlagsFailures(t *testing.T) {
	src := &fakeSource{
		bills:   map[int64]core.Bill{1: {ID: "1"}},
		pending: []storage.PendingSyncBill{{ID: 1}},
	}
	app := &fakeAppender{err: errors.New("boom")}
	w := NewSyncWorker(src, app, 10)

	if err := w.ProcessPendingBills(context.Background()); err != nil {
		t.Fatalf("sweep must not abort on a single failure: %v", err)
	}
	if len(src.flagged) != 1 || src.flagged[0] != 1 {
		t.Fatalf("failed bill not flagged: %v", src.flagged)
	}
}

func TestProcessPendingBillsRespectsBatchSize(t *testing.T) {
	src := &fakeSource{
		bills:   map[int64]core.Bill{1: {ID: "1"}, 2: {ID: "2"}, 3: {ID: "3"}},
		pending: []storage.PendingSyncBill{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	app := &fakeAppender{}
	w := NewSyncWorker(src, app, 2)

	if err := w.ProcessPendingBills(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(app.appended) != 2 {
		t.Fatalf("batch size ignored: archived %d", len(app.appended))
	}
}

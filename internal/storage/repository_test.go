package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"billed/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bills.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func str(s string) *string { return &s }

func draft() core.Bill {
	return core.Bill{
		Email:      "employee@test.tld",
		Type:       "Transports",
		Name:       "Vol Paris Londres",
		Amount:     348,
		Date:       "2023-04-04",
		VAT:        "70",
		Pct:        20,
		Commentary: "séminaire",
		FileURL:    str("/uploads/receipt.png"),
		FileName:   str("receipt.png"),
		Status:     core.StatusPending,
	}
}

func TestCreateAndListRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected an assigned ID")
	}

	bills, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(bills))
	}
	got := bills[0]
	if got.Email != "employee@test.tld" || got.Amount != 348 || got.Date != "2023-04-04" {
		t.Fatalf("bill fields lost: %+v", got)
	}
	if !got.HasFile() || *got.FileURL != "/uploads/receipt.png" || *got.FileName != "receipt.png" {
		t.Fatalf("file pair lost: %+v", got)
	}
	if got.Status != core.StatusPending {
		t.Fatalf("status lost: %q", got.Status)
	}
}

func TestCreateWithoutFileKeepsPairNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d := draft()
	d.FileURL = nil
	d.FileName = nil
	if _, err := repo.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	bills, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if bills[0].HasFile() {
		t.Fatalf("expected no file pair, got %+v", bills[0])
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	repo := newTestRepo(t)

	d := draft()
	d.Type = ""
	if _, err := repo.Create(context.Background(), d); err == nil {
		t.Fatalf("expected validation error for empty type")
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdateStatus(ctx, created.ID, core.StatusAccepted, "parfait"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	bills, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if bills[0].Status != core.StatusAccepted || bills[0].CommentAdmin != "parfait" {
		t.Fatalf("review not applied: %+v", bills[0])
	}

	if err := repo.UpdateStatus(ctx, "999", core.StatusRefused, ""); err == nil {
		t.Fatalf("expected error for unknown bill")
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, draft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, draft()); err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := repo.GetPendingSyncBills(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	if err := repo.MarkSynced(ctx, pending[0].ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, pending[1].ID); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.GetPendingSyncBills(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("synced and flagged bills must leave the queue, got %d", len(pending))
	}

	got, err := repo.GetBill(ctx, mustID(t, first.ID))
	if err != nil {
		t.Fatalf("get bill: %v", err)
	}
	if got.Name != "Vol Paris Londres" {
		t.Fatalf("unexpected bill: %+v", got)
	}
}

func TestGetPendingSyncBillsRespectsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, draft()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	pending, err := repo.GetPendingSyncBills(ctx, 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("limit ignored: got %d", len(pending))
	}
}

func mustID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("non-numeric id %q", s)
	}
	return id
}

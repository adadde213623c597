// Package storage persists bills in SQLite. It backs the sqlite data
// backend and the sync queue consumed by the archive worker.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"billed/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// PendingSyncBill is the minimal row the archive worker needs to pick up
// a bill that has not been synced yet.
type PendingSyncBill struct {
	ID        int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List implements bill.Store. Rows come back in insertion order; display
// ordering belongs to the controller.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, type, name, amount, date, vat, pct, commentary,
		       file_url, file_name, status, comment_admin
		FROM bills ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

// Create implements bill.Store.
func (r *SQLiteRepository) Create(ctx context.Context, draft core.Bill) (core.Bill, error) {
	if err := draft.Validate(); err != nil {
		return core.Bill{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (email, type, name, amount, date, vat, pct, commentary,
		                   file_url, file_name, status, comment_admin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Email, draft.Type, draft.Name, draft.Amount, draft.Date, draft.VAT,
		draft.Pct, draft.Commentary, draft.FileURL, draft.FileName,
		string(draft.Status), draft.CommentAdmin)
	if err != nil {
		return core.Bill{}, fmt.Errorf("insert bill: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Bill{}, fmt.Errorf("last insert id: %w", err)
	}
	draft.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Bill saved to SQLite",
		"id", draft.ID,
		"type", draft.Type,
		"amount", draft.Amount,
		"date", draft.Date)

	return draft, nil
}

// GetBill retrieves a single bill by its numeric id.
func (r *SQLiteRepository) GetBill(ctx context.Context, id int64) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, type, name, amount, date, vat, pct, commentary,
		       file_url, file_name, status, comment_admin
		FROM bills WHERE id = ?`, id)
	b, err := scanBill(row)
	if err != nil {
		return core.Bill{}, fmt.Errorf("get bill %d: %w", id, err)
	}
	return b, nil
}

// UpdateStatus applies an admin review decision.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status core.Status, commentAdmin string) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown status: %s", status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET status = ?, comment_admin = ? WHERE id = ?`,
		string(status), commentAdmin, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s not found", id)
	}
	return nil
}

// GetPendingSyncBills returns bills not yet pushed to the archive.
func (r *SQLiteRepository) GetPendingSyncBills(ctx context.Context, limit int) ([]PendingSyncBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM bills WHERE synced = 0 AND sync_error = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending bills: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncBill
	for rows.Next() {
		var p PendingSyncBill
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending bill: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records that a bill reached the archive.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE bills SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill synced: %w", err)
	}
	slog.InfoContext(ctx, "Bill marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a bill so the periodic sweep stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE bills SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark bill sync error: %w", err)
	}
	slog.WarnContext(ctx, "Bill marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (core.Bill, error) {
	var (
		b        core.Bill
		id       int64
		fileURL  sql.NullString
		fileName sql.NullString
		status   string
	)
	err := row.Scan(&id, &b.Email, &b.Type, &b.Name, &b.Amount, &b.Date, &b.VAT,
		&b.Pct, &b.Commentary, &fileURL, &fileName, &status, &b.CommentAdmin)
	if err != nil {
		return core.Bill{}, fmt.Errorf("scan bill: %w", err)
	}
	b.ID = strconv.FormatInt(id, 10)
	b.Status = core.Status(status)
	if fileURL.Valid && fileName.Valid {
		b.FileURL = &fileURL.String
		b.FileName = &fileName.String
	}
	return b, nil
}

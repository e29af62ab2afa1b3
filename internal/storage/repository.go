// Package storage persists ledger snapshots in SQLite and tracks which
// transactions still need to be exported by the sync worker.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
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

// Load reads both collections back in their original order.
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, balance_cents FROM accounts ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a core.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.Balance.Cents); err != nil {
			return snap, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		snap.Accounts = append(snap.Accounts, a)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate accounts: %w", err)
	}

	txRows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount_cents, category, division, description, date, created_at, account_id
		 FROM transactions ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		tx, err := scanTransaction(txRows)
		if err != nil {
			return snap, err
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := txRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	return snap, nil
}

// Save writes the whole snapshot in one SQL transaction. Rows are upserted
// so the sync bookkeeping columns survive; a content change resets the
// synced flag so the worker re-exports the record. Rows absent from the
// snapshot are deleted.
func (r *SQLiteRepository) Save(ctx context.Context, snap core.Snapshot) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for i, a := range snap.Accounts {
		_, err := sqlTx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, type, balance_cents, position)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   type = excluded.type,
			   balance_cents = excluded.balance_cents,
			   position = excluded.position`,
			a.ID, a.Name, string(a.Type), a.Balance.Cents, i)
		if err != nil {
			return fmt.Errorf("upsert account %s: %w", a.ID, err)
		}
	}

	for i, t := range snap.Transactions {
		_, err := sqlTx.ExecContext(ctx,
			`INSERT INTO transactions
			   (id, type, amount_cents, category, division, description, date, created_at, account_id, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   type = excluded.type,
			   amount_cents = excluded.amount_cents,
			   category = excluded.category,
			   division = excluded.division,
			   description = excluded.description,
			   date = excluded.date,
			   created_at = excluded.created_at,
			   account_id = excluded.account_id,
			   position = excluded.position,
			   synced = CASE WHEN transactions.amount_cents != excluded.amount_cents
			                   OR transactions.category != excluded.category
			                   OR transactions.division != excluded.division
			                   OR transactions.description != excluded.description
			                   OR transactions.date != excluded.date
			                   OR transactions.account_id != excluded.account_id
			                 THEN 0 ELSE transactions.synced END`,
			t.ID, string(t.Type), t.Amount.Cents, string(t.Category), string(t.Division),
			t.Description, formatTime(t.Date), formatTime(t.CreatedAt), t.AccountID, i)
		if err != nil {
			return fmt.Errorf("upsert transaction %s: %w", t.ID, err)
		}
	}

	if err := deleteMissing(ctx, sqlTx, "accounts", accountIDs(snap.Accounts)); err != nil {
		return err
	}
	if err := deleteMissing(ctx, sqlTx, "transactions", transactionIDs(snap.Transactions)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved",
		"accounts", len(snap.Accounts),
		"transactions", len(snap.Transactions))
	return nil
}

// GetTransaction retrieves a single record by ID for the sync worker.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, type, amount_cents, category, division, description, date, created_at, account_id
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.NewNotFoundError("transaction %s not found", id)
	}
	return tx, err
}

// GetPendingSync lists transaction IDs that have not been exported yet.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM transactions WHERE synced = 0 AND sync_error = 0 ORDER BY position LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkSynced records a successful export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a record whose export failed so the periodic pass can
// skip it until an operator looks.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var typ, category, division, date, createdAt string
	err := row.Scan(&tx.ID, &typ, &tx.Amount.Cents, &category, &division,
		&tx.Description, &date, &createdAt, &tx.AccountID)
	if err != nil {
		return tx, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Category = core.Category(category)
	tx.Division = core.Division(division)
	if tx.Date, err = parseTime(date); err != nil {
		return tx, fmt.Errorf("parse date of %s: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return tx, fmt.Errorf("parse created_at of %s: %w", tx.ID, err)
	}
	return tx, nil
}

func deleteMissing(ctx context.Context, sqlTx *sql.Tx, table string, keep []string) error {
	if len(keep) == 0 {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, len(keep))
	for i, id := range keep {
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id NOT IN (%s)", table, placeholders)
	if _, err := sqlTx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

func accountIDs(accounts []core.Account) []string {
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}

func transactionIDs(txs []core.Transaction) []string {
	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	return ids
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

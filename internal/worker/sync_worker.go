// Package worker moves saved transactions from SQLite into the Google Sheets
// journal, driven by AMQP events with a periodic catch-up pass.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/sheets"
	"khata/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.TransactionWriter
	batchSize int
}

func NewSyncWorker(st *storage.SQLiteRepository, writer sheets.TransactionWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   st,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single event from the queue.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing event",
		"kind", ev.Kind,
		"transaction_id", ev.ID)

	switch ev.Kind {
	case amqp.EventSync:
		return w.syncTransaction(ctx, ev.ID)
	case amqp.EventDelete:
		return w.voidTransaction(ctx, ev.ID)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// ProcessPending exports transactions the event stream missed. This is the
// backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, id := range pending {
		if err := w.syncTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "transaction_id", id, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog on worker startup, covering
// downtime while the API kept accepting writes.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, id := range pending {
		if err := w.syncTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"transaction_id", id, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The row is already on the sheet; the flag catches up on the
		// next pending pass.
		slog.ErrorContext(ctx, "Failed to mark as synced", "transaction_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction synced",
		"transaction_id", id,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}

func (w *SyncWorker) voidTransaction(ctx context.Context, id string) error {
	ref, err := w.writer.AppendVoid(ctx, id)
	if err != nil {
		return fmt.Errorf("append void row: %w", err)
	}

	slog.InfoContext(ctx, "Transaction voided on sheet",
		"transaction_id", id,
		"sheets_ref", ref)

	return nil
}

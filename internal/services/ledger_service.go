// Package services wires the ledger book to its collaborators: the
// persistence store and the AMQP export pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"khata/internal/core"
	"khata/internal/ledger"
	"khata/internal/store"
)

// Publisher is what the service needs from the AMQP client. Nil is allowed;
// events are then skipped (a local-only setup).
type Publisher interface {
	PublishSync(ctx context.Context, transactionID string) error
	PublishDelete(ctx context.Context, transactionID string) error
	Close() error
}

// LedgerService is the caller-facing command surface. Every mutation runs
// through the book (which enforces the domain rules), then persists the
// post-mutation snapshot and emits an export event. Publish failures are
// logged, never surfaced: the ledger is already consistent locally.
type LedgerService struct {
	book      *ledger.Book
	store     store.Store
	publisher Publisher
}

func NewLedgerService(book *ledger.Book, st store.Store, publisher Publisher) *LedgerService {
	return &LedgerService{book: book, store: st, publisher: publisher}
}

// Init restores the book from the store. An empty store yields an empty book.
func (s *LedgerService) Init(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.book.Restore(snap)
	slog.InfoContext(ctx, "Ledger restored",
		"accounts", len(snap.Accounts),
		"transactions", len(snap.Transactions))
	return nil
}

func (s *LedgerService) CreateAccount(ctx context.Context, name string, typ core.AccountType, opening core.Money) (core.Account, error) {
	acct, err := s.book.CreateAccount(name, typ, opening)
	if err != nil {
		return core.Account{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "Account created",
		"account_id", acct.ID,
		"name", acct.Name,
		"type", acct.Type,
		"opening_cents", acct.Balance.Cents)
	return acct, nil
}

func (s *LedgerService) Accounts(ctx context.Context) []core.Account {
	return s.book.Accounts()
}

func (s *LedgerService) AddTransaction(ctx context.Context, in ledger.TransactionInput) (core.Transaction, error) {
	tx, err := s.book.AddTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.publishSync(ctx, tx.ID)
	slog.InfoContext(ctx, "Transaction added",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)
	return tx, nil
}

func (s *LedgerService) EditTransaction(ctx context.Context, id string, patch ledger.TransactionPatch) (core.Transaction, error) {
	tx, err := s.book.EditTransaction(id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.publishSync(ctx, tx.ID)
	slog.InfoContext(ctx, "Transaction edited", "transaction_id", tx.ID)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.book.DeleteTransaction(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event", "transaction_id", id, "error", err)
		}
	}
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

func (s *LedgerService) Transfer(ctx context.Context, sourceID, destID string, amount core.Money, description string, date time.Time) (core.Transaction, error) {
	tx, err := s.book.Transfer(sourceID, destID, amount, description, date)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.persist(ctx); err != nil {
		return core.Transaction{}, err
	}
	s.publishSync(ctx, tx.ID)
	slog.InfoContext(ctx, "Transfer completed",
		"transaction_id", tx.ID,
		"source", sourceID,
		"destination", destID,
		"amount_cents", amount.Cents)
	return tx, nil
}

func (s *LedgerService) FilterTransactions(ctx context.Context, f core.Filter) []core.Transaction {
	return s.book.FilterTransactions(f)
}

func (s *LedgerService) Summarize(ctx context.Context, p core.Period) core.Summary {
	return s.book.Summarize(p)
}

func (s *LedgerService) CategoryTotals(ctx context.Context) []core.CategoryTotal {
	return s.book.CategoryTotals()
}

func (s *LedgerService) CategoryShares(ctx context.Context) []core.CategoryShare {
	return s.book.CategoryShares()
}

// persist writes the current snapshot. A failed save is reported to the
// caller; the next successful mutation rewrites the full snapshot, so disk
// catches up on its own.
func (s *LedgerService) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.book.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *LedgerService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping sync event", "transaction_id", id)
		return
	}
	if err := s.publisher.PublishSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync event", "transaction_id", id, "error", err)
	}
}

// Close releases the service's collaborators.
func (s *LedgerService) Close() error {
	var errs []error
	if closer, ok := s.store.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

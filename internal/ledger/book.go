// Package ledger owns the mutable book of accounts and transactions.
// All command-side operations are serialized behind one lock so a transfer's
// two postings and its record commit as a single unit; readers only ever see
// full snapshots.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"khata/internal/core"
)

type Book struct {
	mu    sync.RWMutex
	clock core.Clock

	accounts     map[string]*core.Account
	accountOrder []string
	transactions []core.Transaction
}

func NewBook(clock core.Clock) *Book {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Book{
		clock:    clock,
		accounts: make(map[string]*core.Account),
	}
}

// Restore replaces the book's contents with a previously saved snapshot.
func (b *Book) Restore(snap core.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.accounts = make(map[string]*core.Account, len(snap.Accounts))
	b.accountOrder = b.accountOrder[:0]
	for _, a := range snap.Accounts {
		acct := a
		b.accounts[a.ID] = &acct
		b.accountOrder = append(b.accountOrder, a.ID)
	}
	b.transactions = append([]core.Transaction(nil), snap.Transactions...)
}

// Snapshot returns copies of both collections, consistent with each other.
func (b *Book) Snapshot() core.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

func (b *Book) snapshotLocked() core.Snapshot {
	snap := core.Snapshot{
		Accounts:     make([]core.Account, 0, len(b.accountOrder)),
		Transactions: append([]core.Transaction(nil), b.transactions...),
	}
	for _, id := range b.accountOrder {
		snap.Accounts = append(snap.Accounts, *b.accounts[id])
	}
	return snap
}

// CreateAccount opens a new account with an opening balance of zero or more.
func (b *Book) CreateAccount(name string, typ core.AccountType, opening core.Money) (core.Account, error) {
	acct := core.Account{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    typ,
		Balance: opening,
	}
	if err := acct.Validate(); err != nil {
		return core.Account{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[acct.ID] = &acct
	b.accountOrder = append(b.accountOrder, acct.ID)
	return acct, nil
}

// Account returns a copy of one account.
func (b *Book) Account(id string) (core.Account, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	acct, ok := b.accounts[id]
	if !ok {
		return core.Account{}, core.NewNotFoundError("account %s not found", id)
	}
	return *acct, nil
}

// Accounts returns copies of all accounts in creation order.
func (b *Book) Accounts() []core.Account {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Account, 0, len(b.accountOrder))
	for _, id := range b.accountOrder {
		out = append(out, *b.accounts[id])
	}
	return out
}

// ApplyPosting adds delta to an account balance. A debit that would drive
// the balance negative is rejected with no partial effect.
func (b *Book) ApplyPosting(accountID string, delta core.Money) (core.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyPostingLocked(accountID, delta)
}

func (b *Book) applyPostingLocked(accountID string, delta core.Money) (core.Account, error) {
	acct, ok := b.accounts[accountID]
	if !ok {
		return core.Account{}, core.NewNotFoundError("account %s not found", accountID)
	}
	next := acct.Balance.Add(delta)
	if delta.Cents < 0 && next.Cents < 0 {
		return core.Account{}, core.NewInsufficientFundsError(
			"debit of %d would overdraw account %s (balance %d)", -delta.Cents, accountID, acct.Balance.Cents)
	}
	acct.Balance = next
	return *acct, nil
}

// TransactionInput carries the caller-supplied fields of a new transaction.
// Transfers cannot be created this way; they go through Transfer so the
// postings and the record stay in lockstep.
type TransactionInput struct {
	Type        core.TransactionType
	Amount      core.Money
	Category    core.Category
	Division    core.Division
	Description string
	Date        time.Time
	AccountID   string
}

// AddTransaction validates and records a new income or expense event.
// The record's CreatedAt is stamped from the injected clock and is the sole
// input to the edit window; no window applies to creation itself.
func (b *Book) AddTransaction(in TransactionInput) (core.Transaction, error) {
	if in.Type == core.TypeTransfer {
		return core.Transaction{}, core.NewValidationError("transfers are created via the transfer operation")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Division:    in.Division,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   now,
		AccountID:   in.AccountID,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.AccountID != "" {
		if _, ok := b.accounts[tx.AccountID]; !ok {
			return core.Transaction{}, core.NewNotFoundError("account %s not found", tx.AccountID)
		}
	}

	b.transactions = append(b.transactions, tx)
	return tx, nil
}

// TransactionPatch holds the fields an edit may change. Nil fields are left
// untouched. Type, ID and CreatedAt are not representable here and so can
// never change.
type TransactionPatch struct {
	Amount      *core.Money
	Category    *core.Category
	Division    *core.Division
	Description *string
	Date        *time.Time
	AccountID   *string
}

// touchesFinancialFields reports whether the patch would alter fields that
// must stay in sync with applied postings.
func (p TransactionPatch) touchesFinancialFields() bool {
	return p.Amount != nil || p.Category != nil || p.Division != nil || p.AccountID != nil
}

// EditTransaction applies a patch to a stored transaction. Transfer records
// only accept description and date changes, rejected with the immutable-field
// kind regardless of the window; everything else is gated by the twelve-hour
// edit window measured from CreatedAt.
func (b *Book) EditTransaction(id string, patch TransactionPatch) (core.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findLocked(id)
	if i < 0 {
		return core.Transaction{}, core.NewNotFoundError("transaction %s not found", id)
	}
	current := b.transactions[i]

	if current.IsTransfer() && patch.touchesFinancialFields() {
		return core.Transaction{}, core.NewImmutableFieldError(
			"transfer %s: amount, category, division and account are fixed at creation", id)
	}
	if !core.WithinEditWindow(current.CreatedAt, b.clock.Now()) {
		return core.Transaction{}, core.NewEditWindowExpiredError(
			"transaction %s can no longer be edited (window is %s from creation)", id, core.EditWindow)
	}

	next := current
	if patch.Amount != nil {
		next.Amount = *patch.Amount
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Division != nil {
		next.Division = *patch.Division
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.AccountID != nil {
		next.AccountID = *patch.AccountID
	}
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if next.AccountID != "" {
		if _, ok := b.accounts[next.AccountID]; !ok {
			return core.Transaction{}, core.NewNotFoundError("account %s not found", next.AccountID)
		}
	}

	b.transactions[i] = next
	return next, nil
}

// DeleteTransaction removes a record. Deletion is deliberately not gated by
// the edit window; only edits are time-boxed.
func (b *Book) DeleteTransaction(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findLocked(id)
	if i < 0 {
		return core.NewNotFoundError("transaction %s not found", id)
	}
	b.transactions = append(b.transactions[:i], b.transactions[i+1:]...)
	return nil
}

// Transaction returns a copy of one record.
func (b *Book) Transaction(id string) (core.Transaction, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.findLocked(id)
	if i < 0 {
		return core.Transaction{}, core.NewNotFoundError("transaction %s not found", id)
	}
	return b.transactions[i], nil
}

// Transfer moves amount between two accounts and records a single transfer
// transaction tagged with the source account. Validation happens up front:
// either all three effects land or none do.
func (b *Book) Transfer(sourceID, destID string, amount core.Money, description string, date time.Time) (core.Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	source, ok := b.accounts[sourceID]
	if !ok {
		return core.Transaction{}, core.NewNotFoundError("account %s not found", sourceID)
	}
	if _, ok := b.accounts[destID]; !ok {
		return core.Transaction{}, core.NewNotFoundError("account %s not found", destID)
	}
	if sourceID == destID {
		return core.Transaction{}, core.NewSameAccountError("cannot transfer from account %s to itself", sourceID)
	}
	if amount.Cents <= 0 {
		return core.Transaction{}, core.NewValidationError("transfer amount must be greater than zero")
	}
	if amount.Cents > source.Balance.Cents {
		return core.Transaction{}, core.NewInsufficientFundsError(
			"transfer of %d exceeds balance %d of account %s", amount.Cents, source.Balance.Cents, sourceID)
	}

	now := b.clock.Now()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Type:        core.TypeTransfer,
		Amount:      amount,
		Category:    core.CategoryTransfer,
		Description: description,
		Date:        date,
		CreatedAt:   now,
		AccountID:   sourceID,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	// All checks passed: commit the two postings and the record together.
	if _, err := b.applyPostingLocked(sourceID, amount.Negate()); err != nil {
		return core.Transaction{}, err
	}
	if _, err := b.applyPostingLocked(destID, amount); err != nil {
		// Cannot happen for a positive credit, but never leave a half
		// applied transfer behind.
		_, _ = b.applyPostingLocked(sourceID, amount)
		return core.Transaction{}, err
	}
	b.transactions = append(b.transactions, tx)
	return tx, nil
}

// Transactions returns a copy of all records in insertion order.
func (b *Book) Transactions() []core.Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]core.Transaction(nil), b.transactions...)
}

// FilterTransactions evaluates a filter over a consistent snapshot.
func (b *Book) FilterTransactions(f core.Filter) []core.Transaction {
	return core.FilterTransactions(b.Transactions(), f)
}

// Summarize aggregates income/expense/balance for a named period resolved
// against the book's clock.
func (b *Book) Summarize(p core.Period) core.Summary {
	return core.Summarize(b.Transactions(), core.PeriodWindow(p, b.clock.Now()))
}

// SummarizeWindow aggregates over an explicit window.
func (b *Book) SummarizeWindow(w core.Window) core.Summary {
	return core.Summarize(b.Transactions(), w)
}

// CategoryTotals groups all transactions by category.
func (b *Book) CategoryTotals() []core.CategoryTotal {
	return core.CategoryTotals(b.Transactions())
}

// CategoryShares returns the per-type percentage breakdown.
func (b *Book) CategoryShares() []core.CategoryShare {
	return core.CategoryShares(b.CategoryTotals())
}

func (b *Book) findLocked(id string) int {
	for i := range b.transactions {
		if b.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
}

func totalBalance(b *Book) int64 {
	var sum int64
	for _, a := range b.Accounts() {
		sum += a.Balance.Cents
	}
	return sum
}

func TestCreateAccount(t *testing.T) {
	b := NewBook(newFakeClock())

	acct, err := b.CreateAccount("HDFC Savings", core.AccountSavings, core.Money{Cents: 100000})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, int64(100000), acct.Balance.Cents)

	_, err = b.CreateAccount("", core.AccountSavings, core.Money{})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = b.CreateAccount("X", "offshore", core.Money{})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = b.CreateAccount("X", core.AccountCash, core.Money{Cents: -1})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestApplyPosting(t *testing.T) {
	b := NewBook(newFakeClock())
	acct, err := b.CreateAccount("Cash", core.AccountCash, core.Money{Cents: 500})
	require.NoError(t, err)

	updated, err := b.ApplyPosting(acct.ID, core.Money{Cents: 250})
	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.Balance.Cents)

	updated, err = b.ApplyPosting(acct.ID, core.Money{Cents: -750})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Balance.Cents)

	_, err = b.ApplyPosting(acct.ID, core.Money{Cents: -1})
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)

	got, err := b.Account(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Balance.Cents, "failed debit must not change the balance")

	_, err = b.ApplyPosting("missing", core.Money{Cents: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTransfer(t *testing.T) {
	b := NewBook(newFakeClock())
	a, err := b.CreateAccount("A", core.AccountChecking, core.Money{Cents: 1000})
	require.NoError(t, err)
	dest, err := b.CreateAccount("B", core.AccountSavings, core.Money{Cents: 500})
	require.NoError(t, err)

	before := totalBalance(b)

	tx, err := b.Transfer(a.ID, dest.ID, core.Money{Cents: 300}, "move to savings", time.Time{})
	require.NoError(t, err)

	gotA, _ := b.Account(a.ID)
	gotB, _ := b.Account(dest.ID)
	assert.Equal(t, int64(700), gotA.Balance.Cents)
	assert.Equal(t, int64(800), gotB.Balance.Cents)
	assert.Equal(t, before, totalBalance(b), "total ledger balance is invariant across a transfer")

	assert.Equal(t, core.TypeTransfer, tx.Type)
	assert.Equal(t, int64(300), tx.Amount.Cents)
	assert.Equal(t, core.CategoryTransfer, tx.Category)
	assert.Equal(t, a.ID, tx.AccountID)
	assert.Empty(t, tx.Division)
	require.Len(t, b.Transactions(), 1)
}

func TestTransferFailures(t *testing.T) {
	b := NewBook(newFakeClock())
	a, _ := b.CreateAccount("A", core.AccountChecking, core.Money{Cents: 1000})
	dest, _ := b.CreateAccount("B", core.AccountSavings, core.Money{Cents: 500})

	cases := []struct {
		name   string
		source string
		dst    string
		amount int64
		desc   string
		kind   error
	}{
		{"unknown source", "missing", dest.ID, 100, "x", core.ErrNotFound},
		{"unknown destination", a.ID, "missing", 100, "x", core.ErrNotFound},
		{"same account", a.ID, a.ID, 100, "x", core.ErrSameAccount},
		{"zero amount", a.ID, dest.ID, 0, "x", core.ErrValidation},
		{"negative amount", a.ID, dest.ID, -100, "x", core.ErrValidation},
		{"insufficient funds", a.ID, dest.ID, 1001, "x", core.ErrInsufficientFunds},
		{"empty description", a.ID, dest.ID, 100, " ", core.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Transfer(tc.source, tc.dst, core.Money{Cents: tc.amount}, tc.desc, time.Time{})
			assert.ErrorIs(t, err, tc.kind)

			// no partial effect is ever observable
			gotA, _ := b.Account(a.ID)
			gotB, _ := b.Account(dest.ID)
			assert.Equal(t, int64(1000), gotA.Balance.Cents)
			assert.Equal(t, int64(500), gotB.Balance.Cents)
			assert.Empty(t, b.Transactions())
		})
	}
}

func TestAddTransaction(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)

	tx, err := b.AddTransaction(TransactionInput{
		Type:        core.TypeIncome,
		Amount:      core.Money{Cents: 5000000},
		Category:    core.CategorySalary,
		Division:    core.DivisionPersonal,
		Description: "July salary",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, clock.Now(), tx.CreatedAt)
	assert.Equal(t, clock.Now(), tx.Date, "date defaults to now when omitted")

	_, err = b.AddTransaction(TransactionInput{
		Type:        core.TypeTransfer,
		Amount:      core.Money{Cents: 100},
		Category:    core.CategoryTransfer,
		Description: "sneaky",
	})
	assert.ErrorIs(t, err, core.ErrValidation, "transfers cannot be created directly")

	_, err = b.AddTransaction(TransactionInput{
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: 100},
		Category:    core.CategoryFood,
		Division:    core.DivisionPersonal,
		Description: "lunch",
		AccountID:   "missing",
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEditTransactionWindow(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)

	tx, err := b.AddTransaction(TransactionInput{
		Type:        core.TypeIncome,
		Amount:      core.Money{Cents: 5000000},
		Category:    core.CategorySalary,
		Division:    core.DivisionPersonal,
		Description: "July salary",
	})
	require.NoError(t, err)

	newDesc := "July salary (corrected)"

	clock.Advance(11 * time.Hour)
	got, err := b.EditTransaction(tx.ID, TransactionPatch{Description: &newDesc})
	require.NoError(t, err)
	assert.Equal(t, newDesc, got.Description)
	assert.Equal(t, tx.CreatedAt, got.CreatedAt, "createdAt never changes")

	// exactly twelve hours is still inside the window
	clock.Advance(time.Hour)
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Description: &newDesc})
	require.NoError(t, err)

	clock.Advance(time.Hour) // now 13h after creation
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Description: &newDesc})
	assert.ErrorIs(t, err, core.ErrEditWindowExpired)

	_, err = b.EditTransaction("missing", TransactionPatch{Description: &newDesc})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEditTransactionFields(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)

	tx, err := b.AddTransaction(TransactionInput{
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: 20000},
		Category:    core.CategoryFood,
		Division:    core.DivisionPersonal,
		Description: "dinner",
	})
	require.NoError(t, err)

	amount := core.Money{Cents: 25000}
	category := core.CategoryMovie
	division := core.DivisionOffice
	date := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	got, err := b.EditTransaction(tx.ID, TransactionPatch{
		Amount:   &amount,
		Category: &category,
		Division: &division,
		Date:     &date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), got.Amount.Cents)
	assert.Equal(t, core.CategoryMovie, got.Category)
	assert.Equal(t, core.DivisionOffice, got.Division)
	assert.Equal(t, date, got.Date)

	// a patch that breaks type/category coupling is rejected
	badCategory := core.CategorySalary
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Category: &badCategory})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestEditTransferRestrictions(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)
	a, _ := b.CreateAccount("A", core.AccountChecking, core.Money{Cents: 1000})
	dest, _ := b.CreateAccount("B", core.AccountSavings, core.Money{Cents: 0})

	tx, err := b.Transfer(a.ID, dest.ID, core.Money{Cents: 300}, "top-up", time.Time{})
	require.NoError(t, err)

	amount := core.Money{Cents: 400}
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Amount: &amount})
	assert.ErrorIs(t, err, core.ErrImmutableField)

	division := core.DivisionPersonal
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Division: &division})
	assert.ErrorIs(t, err, core.ErrImmutableField)

	// immutable-field errors win over the window, even long after it closed
	clock.Advance(48 * time.Hour)
	_, err = b.EditTransaction(tx.ID, TransactionPatch{Amount: &amount})
	assert.ErrorIs(t, err, core.ErrImmutableField)

	// description and date remain editable inside the window
	clock.Advance(-48 * time.Hour)
	desc := "monthly top-up"
	date := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	got, err := b.EditTransaction(tx.ID, TransactionPatch{Description: &desc, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)
	assert.Equal(t, date, got.Date)
	assert.Equal(t, int64(300), got.Amount.Cents)
}

func TestDeleteTransaction(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)

	tx, err := b.AddTransaction(TransactionInput{
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: 100},
		Category:    core.CategoryFuel,
		Division:    core.DivisionOffice,
		Description: "petrol",
	})
	require.NoError(t, err)

	// deletion is not window-gated: still allowed well past twelve hours
	clock.Advance(100 * time.Hour)
	require.NoError(t, b.DeleteTransaction(tx.ID))
	assert.Empty(t, b.Transactions())

	assert.ErrorIs(t, b.DeleteTransaction(tx.ID), core.ErrNotFound)
}

func TestSnapshotRestore(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)
	a, _ := b.CreateAccount("A", core.AccountChecking, core.Money{Cents: 1000})
	dest, _ := b.CreateAccount("B", core.AccountSavings, core.Money{Cents: 500})
	_, err := b.Transfer(a.ID, dest.ID, core.Money{Cents: 300}, "seed", time.Time{})
	require.NoError(t, err)

	snap := b.Snapshot()
	require.Len(t, snap.Accounts, 2)
	require.Len(t, snap.Transactions, 1)

	// mutating the snapshot must not leak into the book
	snap.Accounts[0].Balance = core.Money{Cents: 9}
	gotA, _ := b.Account(a.ID)
	assert.Equal(t, int64(700), gotA.Balance.Cents)

	restored := NewBook(clock)
	restored.Restore(b.Snapshot())
	assert.Equal(t, b.Snapshot(), restored.Snapshot())
}

func TestBookSummaryReadPaths(t *testing.T) {
	clock := newFakeClock()
	b := NewBook(clock)

	_, err := b.AddTransaction(TransactionInput{
		Type: core.TypeIncome, Amount: core.Money{Cents: 100000},
		Category: core.CategorySalary, Division: core.DivisionPersonal,
		Description: "pay", Date: clock.Now(),
	})
	require.NoError(t, err)
	_, err = b.AddTransaction(TransactionInput{
		Type: core.TypeExpense, Amount: core.Money{Cents: 40000},
		Category: core.CategoryFood, Division: core.DivisionPersonal,
		Description: "groceries", Date: clock.Now(),
	})
	require.NoError(t, err)
	// an old transaction outside every named window
	_, err = b.AddTransaction(TransactionInput{
		Type: core.TypeExpense, Amount: core.Money{Cents: 99900},
		Category: core.CategoryLoan, Division: core.DivisionPersonal,
		Description: "old EMI", Date: clock.Now().AddDate(-2, 0, 0),
	})
	require.NoError(t, err)

	weekly := b.Summarize(core.PeriodWeekly)
	assert.Equal(t, int64(100000), weekly.Income.Cents)
	assert.Equal(t, int64(40000), weekly.Expense.Cents)
	assert.Equal(t, int64(60000), weekly.Balance.Cents)

	total := b.Summarize(core.PeriodTotal)
	assert.Equal(t, int64(139900), total.Expense.Cents)

	typ := core.TypeExpense
	filtered := b.FilterTransactions(core.Filter{Type: &typ})
	assert.Len(t, filtered, 2)

	shares := b.CategoryShares()
	require.NotEmpty(t, shares)
}

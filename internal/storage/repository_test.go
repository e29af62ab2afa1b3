package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khata/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "khata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testSnapshot() core.Snapshot {
	created := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	return core.Snapshot{
		Accounts: []core.Account{
			{ID: "a1", Name: "HDFC Savings", Type: core.AccountSavings, Balance: core.Money{Cents: 70000}},
			{ID: "a2", Name: "Wallet", Type: core.AccountCash, Balance: core.Money{Cents: 80000}},
		},
		Transactions: []core.Transaction{
			{
				ID: "t1", Type: core.TypeIncome, Amount: core.Money{Cents: 5000000},
				Category: core.CategorySalary, Division: core.DivisionPersonal,
				Description: "July salary", Date: created, CreatedAt: created,
			},
			{
				ID: "t2", Type: core.TypeTransfer, Amount: core.Money{Cents: 30000},
				Category:    core.CategoryTransfer,
				Description: "top-up", Date: created.AddDate(0, 0, 1), CreatedAt: created.AddDate(0, 0, 1),
				AccountID: "a1",
			},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	repo := newTestRepo(t)
	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.Transactions)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := testSnapshot()

	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 2)
	require.Len(t, got.Transactions, 2)

	assert.Equal(t, want.Accounts, got.Accounts)
	for i := range want.Transactions {
		assert.Equal(t, want.Transactions[i].ID, got.Transactions[i].ID)
		assert.Equal(t, want.Transactions[i].Amount, got.Transactions[i].Amount)
		assert.Equal(t, want.Transactions[i].Category, got.Transactions[i].Category)
		assert.True(t, want.Transactions[i].Date.Equal(got.Transactions[i].Date))
		assert.True(t, want.Transactions[i].CreatedAt.Equal(got.Transactions[i].CreatedAt))
	}
}

func TestSavePrunesDeletedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	snap := testSnapshot()
	require.NoError(t, repo.Save(ctx, snap))

	snap.Transactions = snap.Transactions[:1]
	snap.Accounts = snap.Accounts[:1]
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Accounts, 1)
	assert.Len(t, got.Transactions, 1)
	assert.Equal(t, "t1", got.Transactions[0].ID)
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	snap := testSnapshot()
	require.NoError(t, repo.Save(ctx, snap))

	pending, err := repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, pending)

	require.NoError(t, repo.MarkSynced(ctx, "t1"))
	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, pending)

	// a re-save without changes keeps the synced flag
	require.NoError(t, repo.Save(ctx, snap))
	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, pending)

	// editing content resets it so the worker re-exports
	snap.Transactions[0].Description = "July salary (corrected)"
	require.NoError(t, repo.Save(ctx, snap))
	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, pending)

	// errored rows drop out of the pending pass
	require.NoError(t, repo.MarkSyncError(ctx, "t2"))
	pending, err = repo.GetPendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, pending)
}

func TestGetTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, testSnapshot()))

	tx, err := repo.GetTransaction(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, core.TypeTransfer, tx.Type)
	assert.Equal(t, "a1", tx.AccountID)

	_, err = repo.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

package core

import (
	"testing"
	"time"
)

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 30, 0, 0, time.UTC)

	w := PeriodWindow(PeriodWeekly, now)
	if w.Start == nil || !w.Start.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("weekly start wrong: %v", w.Start)
	}

	w = PeriodWindow(PeriodMonthly, now)
	if w.Start == nil || !w.Start.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly start wrong: %v", w.Start)
	}

	w = PeriodWindow(PeriodYearly, now)
	if w.Start == nil || !w.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("yearly start wrong: %v", w.Start)
	}

	w = PeriodWindow(PeriodTotal, now)
	if w.Start != nil || w.End != nil {
		t.Fatalf("total window must be unrestricted")
	}
}

func TestSummarize(t *testing.T) {
	txs := sampleTransactions() // income 50000.00, food 200.00, fuel 800.00, transfer 300.00

	s := Summarize(txs, Window{})
	if s.Income.Cents != 5000000 {
		t.Fatalf("income: expected 5000000, got %d", s.Income.Cents)
	}
	if s.Expense.Cents != 100000 {
		t.Fatalf("expense: expected 100000, got %d", s.Expense.Cents)
	}
	if s.Balance.Cents != 4900000 {
		t.Fatalf("balance: expected 4900000, got %d", s.Balance.Cents)
	}

	// transfers stay out of both sides
	onlyTransfer := []Transaction{txs[3]}
	s = Summarize(onlyTransfer, Window{})
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("transfer leaked into summary: %+v", s)
	}
}

func TestSummarizeNegativeBalance(t *testing.T) {
	txs := []Transaction{
		{Type: TypeIncome, Amount: Money{Cents: 100}, Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{Type: TypeExpense, Amount: Money{Cents: 500}, Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)},
	}
	s := Summarize(txs, Window{})
	if s.Balance.Cents != -400 {
		t.Fatalf("expected -400, got %d", s.Balance.Cents)
	}
}

func TestSummarizeAdditivity(t *testing.T) {
	txs := sampleTransactions()

	mid := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 7, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	first := Summarize(txs, Window{Start: &start, End: &mid})
	second := Summarize(txs, Window{Start: &after, End: &end})
	whole := Summarize(txs, Window{Start: &start, End: &end})

	if first.Income.Add(second.Income) != whole.Income {
		t.Fatalf("income not additive over disjoint windows")
	}
	if first.Expense.Add(second.Expense) != whole.Expense {
		t.Fatalf("expense not additive over disjoint windows")
	}
	if first.Balance.Add(second.Balance) != whole.Balance {
		t.Fatalf("balance not additive over disjoint windows")
	}
}

func TestCategoryTotals(t *testing.T) {
	txs := sampleTransactions()
	totals := CategoryTotals(txs)

	if len(totals) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(totals))
	}
	// first-seen order
	order := []Category{CategorySalary, CategoryFood, CategoryFuel, CategoryTransfer}
	for i, want := range order {
		if totals[i].Category != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, totals[i].Category)
		}
	}
	// transfer contributes count but no money
	tr := totals[3]
	if tr.Count != 1 || tr.Income.Cents != 0 || tr.Expense.Cents != 0 {
		t.Fatalf("transfer grouping wrong: %+v", tr)
	}
}

func TestCategoryShares(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Type: TypeExpense, Category: CategoryFood, Amount: Money{Cents: 20000}, Date: date},
		{Type: TypeExpense, Category: CategoryFuel, Amount: Money{Cents: 80000}, Date: date},
	}
	shares := CategoryShares(CategoryTotals(txs))
	if len(shares) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(shares))
	}
	// descending by amount: fuel 80%, food 20%
	if shares[0].Category != CategoryFuel || shares[0].Percent != 80.0 {
		t.Fatalf("expected fuel 80.0, got %s %v", shares[0].Category, shares[0].Percent)
	}
	if shares[1].Category != CategoryFood || shares[1].Percent != 20.0 {
		t.Fatalf("expected food 20.0, got %s %v", shares[1].Category, shares[1].Percent)
	}
}

func TestCategorySharesRounding(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Type: TypeExpense, Category: CategoryFood, Amount: Money{Cents: 100}, Date: date},
		{Type: TypeExpense, Category: CategoryFuel, Amount: Money{Cents: 200}, Date: date},
	}
	shares := CategoryShares(CategoryTotals(txs))
	// 200/300 = 66.666... -> 66.7, 100/300 = 33.333... -> 33.3
	if shares[0].Percent != 66.7 {
		t.Fatalf("expected 66.7, got %v", shares[0].Percent)
	}
	if shares[1].Percent != 33.3 {
		t.Fatalf("expected 33.3, got %v", shares[1].Percent)
	}
}

func TestCategorySharesZeroTotal(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	// only transfers: no income or expense total, so no rows at all
	txs := []Transaction{
		{Type: TypeTransfer, Category: CategoryTransfer, Amount: Money{Cents: 100}, Date: date},
	}
	if shares := CategoryShares(CategoryTotals(txs)); len(shares) != 0 {
		t.Fatalf("expected no rows, got %d", len(shares))
	}
}

func TestCategorySharesStableTies(t *testing.T) {
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		{Type: TypeExpense, Category: CategoryMovie, Amount: Money{Cents: 500}, Date: date},
		{Type: TypeExpense, Category: CategoryMedical, Amount: Money{Cents: 500}, Date: date},
	}
	shares := CategoryShares(CategoryTotals(txs))
	if shares[0].Category != CategoryMovie || shares[1].Category != CategoryMedical {
		t.Fatalf("ties must keep insertion order, got %s then %s", shares[0].Category, shares[1].Category)
	}
}

package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Period names a summary window relative to now.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodTotal   Period = "total"
)

// Window is a date range over transaction dates. Nil bounds are open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// PeriodWindow resolves a named period against now: weekly is the rolling
// last seven days, monthly runs from the first of the current month and
// yearly from January 1st. Total is unrestricted.
func PeriodWindow(p Period, now time.Time) Window {
	var start time.Time
	switch p {
	case PeriodWeekly:
		start = now.AddDate(0, 0, -7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return Window{}
	}
	end := now
	return Window{Start: &start, End: &end}
}

func (w Window) contains(t Transaction) bool {
	day := dateOnly(t.Date)
	if w.Start != nil && day.Before(dateOnly(*w.Start)) {
		return false
	}
	if w.End != nil && day.After(dateOnly(*w.End)) {
		return false
	}
	return true
}

// Summary aggregates income and expense over a window. Transfers are
// internal movements and count toward neither side; Balance is
// income − expense and may be negative.
type Summary struct {
	Income  Money
	Expense Money
	Balance Money
}

func Summarize(txs []Transaction, w Window) Summary {
	var s Summary
	for _, t := range txs {
		if !w.contains(t) {
			continue
		}
		switch t.Type {
		case TypeIncome:
			s.Income = s.Income.Add(t.Amount)
		case TypeExpense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// CategoryTotal aggregates one category across all transactions. Count
// increments for every transaction in the category regardless of type;
// only income/expense amounts feed the money fields.
type CategoryTotal struct {
	Category Category
	Income   Money
	Expense  Money
	Count    int
}

// CategoryTotals groups transactions by category in first-seen order.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	index := make(map[Category]int)
	var totals []CategoryTotal
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(totals)
			index[t.Category] = i
			totals = append(totals, CategoryTotal{Category: t.Category})
		}
		totals[i].Count++
		switch t.Type {
		case TypeIncome:
			totals[i].Income = totals[i].Income.Add(t.Amount)
		case TypeExpense:
			totals[i].Expense = totals[i].Expense.Add(t.Amount)
		}
	}
	return totals
}

// CategoryShare is a display row: one category's contribution to the total
// of its transaction type, as a percentage rounded to one decimal.
type CategoryShare struct {
	Category Category
	Type     TransactionType
	Amount   Money
	Percent  float64
}

// CategoryShares derives percentage rows from totals. Rows are emitted per
// type only when that type's overall total is nonzero, sorted descending by
// amount; equal amounts keep their insertion order.
func CategoryShares(totals []CategoryTotal) []CategoryShare {
	var incomeTotal, expenseTotal int64
	for _, t := range totals {
		incomeTotal += t.Income.Cents
		expenseTotal += t.Expense.Cents
	}

	var shares []CategoryShare
	shares = append(shares, sharesForType(totals, TypeIncome, incomeTotal)...)
	shares = append(shares, sharesForType(totals, TypeExpense, expenseTotal)...)
	return shares
}

func sharesForType(totals []CategoryTotal, typ TransactionType, total int64) []CategoryShare {
	if total == 0 {
		return nil
	}
	var rows []CategoryShare
	for _, t := range totals {
		amount := t.Income
		if typ == TypeExpense {
			amount = t.Expense
		}
		if amount.Cents == 0 {
			continue
		}
		pct := decimal.NewFromInt(amount.Cents).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(1)
		rows = append(rows, CategoryShare{
			Category: t.Category,
			Type:     typ,
			Amount:   amount,
			Percent:  pct.InexactFloat64(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.Cents > rows[j].Amount.Cents
	})
	return rows
}

package core

import "time"

// Filter selects transactions by attribute. Nil fields match everything on
// that dimension; present fields are ANDed.
type Filter struct {
	Type      *TransactionType
	Category  *Category
	Division  *Division
	StartDate *time.Time
	EndDate   *time.Time
}

// dateOnly drops the time of day so range bounds compare by calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Matches reports whether the transaction satisfies every present filter
// field. Date bounds are inclusive and compared at day granularity.
func (f Filter) Matches(t Transaction) bool {
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Division != nil && t.Division != *f.Division {
		return false
	}
	day := dateOnly(t.Date)
	if f.StartDate != nil && day.Before(dateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(dateOnly(*f.EndDate)) {
		return false
	}
	return true
}

// FilterTransactions returns the matching subsequence in original order.
func FilterTransactions(txs []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

package http

import (
	"net/http"
	"strings"

	"khata/internal/core"
)

type summaryResponse struct {
	Period       string  `json:"period"`
	IncomeCents  int64   `json:"income_cents"`
	Income       float64 `json:"income"`
	ExpenseCents int64   `json:"expense_cents"`
	Expense      float64 `json:"expense"`
	BalanceCents int64   `json:"balance_cents"`
	Balance      float64 `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period := core.Period(strings.TrimSpace(r.URL.Query().Get("period")))
	if period == "" {
		period = core.PeriodTotal
	}
	switch period {
	case core.PeriodWeekly, core.PeriodMonthly, core.PeriodYearly, core.PeriodTotal:
	default:
		writeDomainError(w, r, core.NewValidationError("unknown period %q", period))
		return
	}

	sum := s.ledger.Summarize(r.Context(), period)
	writeJSON(w, r, http.StatusOK, summaryResponse{
		Period:       string(period),
		IncomeCents:  sum.Income.Cents,
		Income:       sum.Income.Units(),
		ExpenseCents: sum.Expense.Cents,
		Expense:      sum.Expense.Units(),
		BalanceCents: sum.Balance.Cents,
		Balance:      sum.Balance.Units(),
	})
}

type categoryShareResponse struct {
	Category    string  `json:"category"`
	Type        string  `json:"type"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	Percent     float64 `json:"percent"`
}

type categoryTotalResponse struct {
	Category     string  `json:"category"`
	IncomeCents  int64   `json:"income_cents"`
	Income       float64 `json:"income"`
	ExpenseCents int64   `json:"expense_cents"`
	Expense      float64 `json:"expense"`
	Count        int     `json:"count"`
}

type categorySummaryResponse struct {
	Totals []categoryTotalResponse `json:"totals"`
	Shares []categoryShareResponse `json:"shares"`
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	totals := s.ledger.CategoryTotals(r.Context())
	shares := s.ledger.CategoryShares(r.Context())

	resp := categorySummaryResponse{
		Totals: make([]categoryTotalResponse, 0, len(totals)),
		Shares: make([]categoryShareResponse, 0, len(shares)),
	}
	for _, t := range totals {
		resp.Totals = append(resp.Totals, categoryTotalResponse{
			Category:     string(t.Category),
			IncomeCents:  t.Income.Cents,
			Income:       t.Income.Units(),
			ExpenseCents: t.Expense.Cents,
			Expense:      t.Expense.Units(),
			Count:        t.Count,
		})
	}
	for _, sh := range shares {
		resp.Shares = append(resp.Shares, categoryShareResponse{
			Category:    string(sh.Category),
			Type:        string(sh.Type),
			AmountCents: sh.Amount.Cents,
			Amount:      sh.Amount.Units(),
			Percent:     sh.Percent,
		})
	}

	writeJSON(w, r, http.StatusOK, resp)
}

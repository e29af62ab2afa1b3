package http

import (
	"net/http"
	"strings"
	"time"

	"khata/internal/core"
	"khata/internal/ledger"
)

type addTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Division    string `json:"division"`
	Description string `json:"description"`
	Date        string `json:"date"`
	AccountID   string `json:"account_id"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	tx, err := s.ledger.AddTransaction(r.Context(), ledger.TransactionInput{
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: cents},
		Category:    core.Category(req.Category),
		Division:    core.Division(req.Division),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		AccountID:   req.AccountID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f core.Filter

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.Valid() {
			writeDomainError(w, r, core.NewValidationError("unknown transaction type %q", v))
			return
		}
		f.Type = &typ
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		cat := core.Category(v)
		f.Category = &cat
	}
	if v := strings.TrimSpace(q.Get("division")); v != "" {
		div := core.Division(v)
		if !div.Valid() {
			writeDomainError(w, r, core.NewValidationError("unknown division %q", v))
			return
		}
		f.Division = &div
	}
	if v := strings.TrimSpace(q.Get("start_date")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		f.StartDate = &t
	}
	if v := strings.TrimSpace(q.Get("end_date")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		f.EndDate = &t
	}

	txs := s.ledger.FilterTransactions(r.Context(), f)
	writeJSON(w, r, http.StatusOK, toTransactionResponses(txs))
}

type editTransactionRequest struct {
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Division    *string `json:"division"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	AccountID   *string `json:"account_id"`
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req editTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var patch ledger.TransactionPatch
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if req.Category != nil {
		cat := core.Category(*req.Category)
		patch.Category = &cat
	}
	if req.Division != nil {
		div := core.Division(*req.Division)
		patch.Division = &div
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		patch.Description = &desc
	}
	if req.Date != nil {
		t, err := parseDate(*req.Date)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		patch.Date = &t
	}
	if req.AccountID != nil {
		patch.AccountID = req.AccountID
	}

	tx, err := s.ledger.EditTransaction(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

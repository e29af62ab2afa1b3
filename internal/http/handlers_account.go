package http

import (
	"net/http"
	"strings"
	"time"

	"khata/internal/core"
)

type createAccountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseNonNegativeCents(req.Balance)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	acct, err := s.ledger.CreateAccount(r.Context(), strings.TrimSpace(req.Name), core.AccountType(req.Type), core.Money{Cents: cents})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toAccountResponse(acct))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := s.ledger.Accounts(r.Context())
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, r, http.StatusOK, out)
}

type transferRequest struct {
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Description          string `json:"description"`
	Date                 string `json:"date"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	date := time.Now()
	if strings.TrimSpace(req.Date) != "" {
		date, err = parseDate(req.Date)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	tx, err := s.ledger.Transfer(r.Context(), req.SourceAccountID, req.DestinationAccountID,
		core.Money{Cents: cents}, strings.TrimSpace(req.Description), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toTransactionResponse(tx))
}

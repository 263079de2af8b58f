package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

type transactionPageResponse struct {
	Transactions []ledger.TransactionDTO `json:"transactions"`
	NextCursor   string                  `json:"next_cursor,omitempty"`
}

// BalanceGet returns the customer's current balance.
func BalanceGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), caller.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balanceResponse{Balance: balance})
	}
}

// BalanceTransactions pages through the customer's ledger, newest first.
func BalanceTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.History(r.Context(), ledger.HistoryInput{
			CustomerID: caller.CustomerID,
			Params:     params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactionPageResponse{
			Transactions: ledger.FromModels(page.Transactions),
			NextCursor:   page.NextCursor,
		})
	}
}

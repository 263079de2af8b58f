package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/payments"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type paySessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Method    string `json:"method"`
}

type topupResultResponse struct {
	Transaction *ledger.TransactionDTO `json:"transaction"`
	Payment     *payments.PaymentDTO   `json:"payment"`
}

// PaymentCreate settles a completed session that has no payment yet.
func PaymentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paySessionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := parseUUIDField(body.SessionID, "session_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.PaySessionInput{
			SessionID:  sessionID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		}
		if body.Method != "" {
			method, parseErr := parsePaymentMethod(body.Method)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.Method = method
		}

		payment, err := svc.PaySession(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payments.FromModel(payment))
	}
}

// PaymentList returns the customer's payments, optionally filtered by status.
func PaymentList(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.ListInput{CustomerID: caller.CustomerID}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := parsePaymentStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.Status = &status
		}

		rows, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments.FromModels(rows))
	}
}

// PaymentGet returns one payment, enforcing ownership.
func PaymentGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := uuidParam(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Get(r.Context(), payments.ActorInput{
			PaymentID:  paymentID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payments.FromModel(payment))
	}
}

type topupRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method"`
}

// BalanceTopup adds funds to the balance through the payment gateway.
func BalanceTopup(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body topupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.TopupInput{
			CustomerID: caller.CustomerID,
			Amount:     body.Amount,
		}
		if body.Method != "" {
			method, parseErr := parsePaymentMethod(body.Method)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.Method = method
		}

		result, err := svc.Topup(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, topupResultResponse{
			Transaction: ledger.FromModel(result.Transaction),
			Payment:     payments.FromModel(result.Payment),
		})
	}
}

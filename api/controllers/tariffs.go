package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type createTariffRequest struct {
	Name       string           `json:"name" validate:"required"`
	HourlyRate decimal.Decimal  `json:"hourly_rate" validate:"required"`
	DailyRate  *decimal.Decimal `json:"daily_rate"`
}

// TariffList returns tariff plans. Inactive plans are included only when
// include_inactive=true.
func TariffList(svc tariffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := !strings.EqualFold(r.URL.Query().Get("include_inactive"), "true")

		rows, err := svc.ListPlans(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tariffs.FromModels(rows))
	}
}

// TariffCreate creates a tariff plan. Admin only.
func TariffCreate(svc tariffs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createTariffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.CreatePlan(r.Context(), tariffs.CreateTariffInput{
			Name:       body.Name,
			HourlyRate: body.HourlyRate,
			DailyRate:  body.DailyRate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tariffs.FromModel(plan))
	}
}

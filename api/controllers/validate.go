package controllers

import (
	"net/http"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/vehicles"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type plateCheckRequest struct {
	LicensePlate string `json:"license_plate" validate:"required"`
}

// PlateCheck normalizes a license plate and reports whether it matches the
// registration format, without touching the caller's fleet. Used by signup
// forms before a vehicle is created.
func PlateCheck(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body plateCheckRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plate := vehicles.NormalizePlate(body.LicensePlate)
		responses.WriteSuccess(w, map[string]any{
			"license_plate": plate,
			"valid":         vehicles.ValidPlateFormat(plate),
		})
	}
}

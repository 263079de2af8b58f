package controllers

import (
	"net/http"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/vehicles"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type createVehicleRequest struct {
	LicensePlate string  `json:"license_plate" validate:"required"`
	Type         string  `json:"type" validate:"required"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	Color        *string `json:"color"`
}

type updateVehicleRequest struct {
	Type  *string `json:"type"`
	Brand *string `json:"brand"`
	Model *string `json:"model"`
	Color *string `json:"color"`
}

// VehicleCreate registers a vehicle under the authenticated customer.
func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleType, err := parseVehicleType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Create(r.Context(), vehicles.CreateInput{
			CustomerID:   caller.CustomerID,
			LicensePlate: body.LicensePlate,
			Type:         vehicleType,
			Brand:        body.Brand,
			Model:        body.Model,
			Color:        body.Color,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicles.FromModel(vehicle))
	}
}

// VehicleList returns the authenticated customer's vehicles.
func VehicleList(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), caller.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicles.FromModels(rows))
	}
}

// VehicleGet returns one vehicle, enforcing ownership.
func VehicleGet(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuidParam(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), vehicles.ActorInput{
			VehicleID:  vehicleID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicles.FromModel(vehicle))
	}
}

// VehicleUpdate patches the mutable vehicle fields.
func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuidParam(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vehicles.UpdateInput{
			VehicleID:  vehicleID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
			Brand:      body.Brand,
			Model:      body.Model,
			Color:      body.Color,
		}
		if body.Type != nil {
			vehicleType, err := parseVehicleType(*body.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Type = &vehicleType
		}

		vehicle, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicles.FromModel(vehicle))
	}
}

// VehicleDelete removes a vehicle that has no parking history.
func VehicleDelete(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuidParam(r, "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), vehicles.ActorInput{
			VehicleID:  vehicleID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

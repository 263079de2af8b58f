package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/bookings"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type createBookingRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required"`
	SpotID    string    `json:"spot_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type bookingPageResponse struct {
	Bookings   []bookings.BookingDTO `json:"bookings"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// BookingCreate reserves a spot and charges the estimate up front.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := parseUUIDField(body.VehicleID, "vehicle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spotID, err := parseUUIDField(body.SpotID, "spot_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Create(r.Context(), bookings.CreateInput{
			CustomerID: caller.CustomerID,
			VehicleID:  vehicleID,
			SpotID:     spotID,
			StartTime:  body.StartTime,
			EndTime:    body.EndTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bookings.FromModel(booking))
	}
}

// BookingConfirm moves a pending booking to confirmed.
func BookingConfirm(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc.Confirm, logg)
}

// BookingCancel cancels a booking and refunds the estimate.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc.Cancel, logg)
}

// BookingGet returns one booking, enforcing ownership.
func BookingGet(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingAction(svc.Get, logg)
}

// BookingList pages through the customer's bookings, newest first.
func BookingList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.List(r.Context(), bookings.ListInput{
			CustomerID: caller.CustomerID,
			Params:     params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingPageResponse{
			Bookings:   bookings.FromModels(page.Bookings),
			NextCursor: page.NextCursor,
		})
	}
}

func bookingAction(op func(context.Context, bookings.ActorInput) (*models.Booking, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := uuidParam(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := op(r.Context(), bookings.ActorInput{
			BookingID:  bookingID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookings.FromModel(booking))
	}
}

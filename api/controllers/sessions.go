package controllers

import (
	"net/http"
	"time"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/sessions"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type startSessionRequest struct {
	VehicleID string     `json:"vehicle_id" validate:"required"`
	SpotID    string     `json:"spot_id" validate:"required"`
	BookingID *string    `json:"booking_id"`
	EntryTime *time.Time `json:"entry_time"`
}

type endSessionRequest struct {
	ExitTime *time.Time `json:"exit_time"`
}

type sessionPageResponse struct {
	Sessions   []sessions.SessionDTO `json:"sessions"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// SessionStart opens a session, claiming the spot atomically.
func SessionStart(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body startSessionRequest
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

		input := sessions.StartInput{
			CustomerID: caller.CustomerID,
			VehicleID:  vehicleID,
			SpotID:     spotID,
			EntryTime:  body.EntryTime,
		}
		if body.BookingID != nil {
			bookingID, parseErr := parseUUIDField(*body.BookingID, "booking_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.BookingID = &bookingID
		}

		session, err := svc.Start(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessions.FromModel(session))
	}
}

// SessionEnd closes a session and settles its cost against the balance.
func SessionEnd(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := uuidParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body endSessionRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		session, err := svc.End(r.Context(), sessions.EndInput{
			SessionID:  sessionID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
			ExitTime:   body.ExitTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessions.FromModel(session))
	}
}

// SessionCost projects the running cost of an active session.
func SessionCost(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := uuidParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projection, err := svc.CalculateCost(r.Context(), sessions.ActorInput{
			SessionID:  sessionID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessions.CostFromProjection(projection))
	}
}

// SessionGet returns one session, enforcing ownership.
func SessionGet(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID, err := uuidParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Get(r.Context(), sessions.ActorInput{
			SessionID:  sessionID,
			CustomerID: caller.CustomerID,
			IsAdmin:    caller.IsAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessions.FromModel(session))
	}
}

// SessionList pages through the customer's sessions, newest first.
func SessionList(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.List(r.Context(), sessions.ListInput{
			CustomerID: caller.CustomerID,
			Params:     params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionPageResponse{
			Sessions:   sessions.FromModels(page.Sessions),
			NextCursor: page.NextCursor,
		})
	}
}

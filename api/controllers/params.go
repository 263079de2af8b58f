package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parklyapp/parkly-backend/api/middleware"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/pagination"
)

type actor struct {
	CustomerID uuid.UUID
	IsAdmin    bool
}

// actorFromRequest reads the authenticated identity seeded by the auth
// middleware. Requests that reach a protected handler without it are a
// wiring bug, surfaced as unauthorized rather than a panic.
func actorFromRequest(r *http.Request) (actor, error) {
	raw := middleware.CustomerIDFromContext(r.Context())
	if raw == "" {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid customer id")
	}
	return actor{CustomerID: id, IsAdmin: middleware.IsAdminFromContext(r.Context())}, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parseUUIDField(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parseVehicleType(value string) (enums.VehicleType, error) {
	t, err := enums.ParseVehicleType(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle type")
	}
	return t, nil
}

func parseSpotType(value string) (enums.SpotType, error) {
	t, err := enums.ParseSpotType(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid spot type")
	}
	return t, nil
}

func parsePaymentMethod(value string) (enums.PaymentMethod, error) {
	m, err := enums.ParsePaymentMethod(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return m, nil
}

func parsePaymentStatus(value string) (enums.PaymentStatus, error) {
	s, err := enums.ParsePaymentStatus(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
	}
	return s, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

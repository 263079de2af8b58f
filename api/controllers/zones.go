package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/parklyapp/parkly-backend/api/responses"
	"github.com/parklyapp/parkly-backend/api/validators"
	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/zones"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type createZoneRequest struct {
	Name       string   `json:"name" validate:"required"`
	Address    string   `json:"address" validate:"required"`
	TotalSpots int      `json:"total_spots" validate:"required,min=1"`
	TariffID   *string  `json:"tariff_id"`
	Amenities  []string `json:"amenities"`
}

type updateZoneRequest struct {
	Name       *string   `json:"name"`
	Address    *string   `json:"address"`
	TotalSpots *int      `json:"total_spots"`
	TariffID   *string   `json:"tariff_id"`
	Amenities  *[]string `json:"amenities"`
	IsActive   *bool     `json:"is_active"`
}

type createSpotRequest struct {
	SpotNumber string `json:"spot_number" validate:"required"`
	Type       string `json:"type"`
}

type updateSpotRequest struct {
	Type     *string `json:"type"`
	IsActive *bool   `json:"is_active"`
}

// ZoneList returns zones with their live availability. Inactive zones are
// included only when include_inactive=true.
func ZoneList(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := !strings.EqualFold(r.URL.Query().Get("include_inactive"), "true")

		details, err := svc.ListZones(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.ZonesFromDetails(details))
	}
}

// ZoneGet returns one zone with its live availability.
func ZoneGet(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, err := uuidParam(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetZone(r.Context(), zoneID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.ZoneFromDetail(detail))
	}
}

// ZoneSpots lists a zone's spots, optionally filtered by occupancy and type.
func ZoneSpots(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, err := uuidParam(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter zones.SpotFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("is_occupied")); raw != "" {
			occupied, parseErr := strconv.ParseBool(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid is_occupied"))
				return
			}
			filter.IsOccupied = &occupied
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			spotType, parseErr := parseSpotType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			filter.Type = &spotType
		}

		rows, err := svc.ListSpots(r.Context(), zoneID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.SpotsFromModels(rows))
	}
}

// ZoneAvailableSpots lists the spots free for a requested window, with the
// zone's rates attached when a tariff is bound.
func ZoneAvailableSpots(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, err := uuidParam(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		window, err := windowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.FreeSpotsForWindow(r.Context(), zoneID, window)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.SpotsWithRates(rows))
	}
}

// ZoneCreate creates a zone. Admin only.
func ZoneCreate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createZoneRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := zones.CreateZoneInput{
			Name:       body.Name,
			Address:    body.Address,
			TotalSpots: body.TotalSpots,
			Amenities:  body.Amenities,
		}
		if body.TariffID != nil {
			tariffID, err := parseUUIDField(*body.TariffID, "tariff_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.TariffID = &tariffID
		}

		zone, err := svc.CreateZone(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, zones.ZoneFromModel(zone))
	}
}

// ZoneUpdate patches a zone. Admin only.
func ZoneUpdate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, err := uuidParam(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateZoneRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := zones.UpdateZoneInput{
			ZoneID:     zoneID,
			Name:       body.Name,
			Address:    body.Address,
			TotalSpots: body.TotalSpots,
			Amenities:  body.Amenities,
			IsActive:   body.IsActive,
		}
		if body.TariffID != nil {
			tariffID, parseErr := parseUUIDField(*body.TariffID, "tariff_id")
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.TariffID = &tariffID
		}

		zone, err := svc.UpdateZone(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.ZoneFromModel(zone))
	}
}

// ZoneSpotCreate adds a spot to a zone. Admin only.
func ZoneSpotCreate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zoneID, err := uuidParam(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSpotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := zones.CreateSpotInput{
			ZoneID:     zoneID,
			SpotNumber: body.SpotNumber,
		}
		if body.Type != "" {
			spotType, parseErr := parseSpotType(body.Type)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.Type = spotType
		}

		spot, err := svc.CreateSpot(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, zones.SpotFromModel(spot))
	}
}

// SpotUpdate patches a spot. Admin only.
func SpotUpdate(svc zones.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spotID, err := uuidParam(r, "spotID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSpotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := zones.UpdateSpotInput{
			SpotID:   spotID,
			IsActive: body.IsActive,
		}
		if body.Type != nil {
			spotType, parseErr := parseSpotType(*body.Type)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, parseErr)
				return
			}
			input.Type = &spotType
		}

		spot, err := svc.UpdateSpot(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, zones.SpotFromModel(spot))
	}
}

func windowFromQuery(r *http.Request) (availability.Window, error) {
	start, err := timeQuery(r, "start_time")
	if err != nil {
		return availability.Window{}, err
	}
	end, err := timeQuery(r, "end_time")
	if err != nil {
		return availability.Window{}, err
	}
	return availability.Window{Start: start, End: end}, nil
}

func timeQuery(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return value, nil
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/api/responses"
	"github.com/mealbridge/mealbridge-backend/api/validators"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type donationCreateRequest struct {
	Address     string  `json:"address" validate:"required,min=1,max=300"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Volume      string  `json:"volume" validate:"required,oneof=small medium large"`
	Priority    string  `json:"priority" validate:"required,oneof=high medium low"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type donationTransitionRequest struct {
	Status        string  `json:"status" validate:"required,oneof=active completed declined"`
	DeclineReason *string `json:"decline_reason,omitempty" validate:"omitempty,max=500"`
}

type donationListResponse struct {
	Donations []donationView                 `json:"donations"`
	Meta      pagination.Meta                `json:"meta"`
	Counts    map[enums.DonationStatus]int64 `json:"counts"`
}

func DonationCreate(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload donationCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Create(r.Context(), actor, donations.CreateInput{
			Address:     validators.SanitizeString(payload.Address, 300),
			Latitude:    payload.Latitude,
			Longitude:   payload.Longitude,
			Volume:      enums.DonationVolume(payload.Volume),
			Priority:    enums.DonationPriority(payload.Priority),
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toDonationView(donation))
	}
}

func DonationList(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseDonationListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donationListResponse{
			Donations: toDonationViews(result.Donations),
			Meta:      result.Meta,
			Counts:    result.Counts,
		})
	}
}

func parseDonationListInput(r *http.Request) (donations.ListInput, error) {
	var input donations.ListInput

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDonationStatus(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		input.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		priority, err := enums.ParseDonationPriority(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority filter")
		}
		input.Priority = &priority
	}

	input.SortBy = strings.TrimSpace(r.URL.Query().Get("sort_by"))
	desc, err := validators.ParseQueryBool(r, "sort_desc", true)
	if err != nil {
		return input, err
	}
	input.SortDesc = desc

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
	if err != nil {
		return input, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	input.Page = pagination.Params{Page: page, Limit: limit}
	return input, nil
}

func DonationGet(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := uuid.Parse(chi.URLParam(r, "donationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donation id"))
			return
		}

		donation, err := svc.Get(r.Context(), actor, donationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDonationView(donation))
	}
}

// DonationTransition moves a donation through its lifecycle. Staff only; the
// route guard enforces the role before this handler runs.
func DonationTransition(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donationID, err := uuid.Parse(chi.URLParam(r, "donationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donation id"))
			return
		}

		var payload donationTransitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.Transition(r.Context(), actor, donationID, donations.TransitionInput{
			NewStatus:     enums.DonationStatus(payload.Status),
			DeclineReason: payload.DeclineReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDonationView(donation))
	}
}

// DonationMap returns the open donations for the pickup map.
func DonationMap(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListForMap(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"donations": toDonationViews(rows)})
	}
}

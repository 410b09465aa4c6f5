package controllers

import (
	"net/http"

	"github.com/nyudevops/shopcarts/api/responses"
	"github.com/nyudevops/shopcarts/api/validators"
	"github.com/nyudevops/shopcarts/internal/shopcarts"
	"github.com/nyudevops/shopcarts/pkg/logger"
)

// ShopcartCreate returns the caller's existing cart or creates one. Both cases answer 201.
func ShopcartCreate(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shopcarts.ShopcartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.CreateShopcart(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, shopcartURL(r, cart.ID), cart)
	}
}

// ShopcartList lists every shopcart, or only the one owned by ?user_id=.
func ShopcartList(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.OptionalQueryInt(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListShopcarts(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, list)
	}
}

func ShopcartGet(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetShopcart(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, cart)
	}
}

func ShopcartDelete(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteNoContent(w)
			return
		}

		if err := svc.DeleteShopcart(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

// ShopcartPlaceOrder hands the cart to the order service and deletes it on success.
func ShopcartPlaceOrder(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.PlaceOrder(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

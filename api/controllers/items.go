package controllers

import (
	"net/http"

	"github.com/nyudevops/shopcarts/api/responses"
	"github.com/nyudevops/shopcarts/api/validators"
	"github.com/nyudevops/shopcarts/internal/shopcarts"
	"github.com/nyudevops/shopcarts/pkg/logger"
)

func ItemList(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListItems(r.Context(), sid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, items)
	}
}

// ItemAdd adds an item to the cart; posting a SKU already in the cart increases its amount.
func ItemAdd(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, err := validators.PathInt(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload shopcarts.ShopcartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), sid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, itemURL(r, sid, item.ID), item)
	}
}

func ItemGet(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, itemID, err := itemPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), sid, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, item)
	}
}

func ItemUpdate(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, itemID, err := itemPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload shopcarts.ShopcartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), sid, itemID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, item)
	}
}

func ItemDelete(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, itemID, err := itemPath(r)
		if err != nil {
			responses.WriteNoContent(w)
			return
		}

		if err := svc.DeleteItem(r.Context(), sid, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

// ItemQuery searches items across all carts by sku, name, price and amount.
func ItemQuery(svc shopcarts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			filter shopcarts.ItemFilter
			err    error
		)
		if filter.SKU, err = validators.OptionalQueryInt(r, "sku"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.Amount, err = validators.OptionalQueryInt(r, "amount"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.Price, err = validators.OptionalQueryFloat(r, "price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Name = validators.OptionalQueryString(r, "name")

		items, err := svc.QueryItems(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, items)
	}
}

func itemPath(r *http.Request) (int, int, error) {
	sid, err := validators.PathInt(r, "id")
	if err != nil {
		return 0, 0, err
	}
	itemID, err := validators.PathInt(r, "item_id")
	if err != nil {
		return 0, 0, err
	}
	return sid, itemID, nil
}

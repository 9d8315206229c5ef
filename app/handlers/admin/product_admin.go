package admin

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/gorilla/mux"
)

type setActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ListProducts includes inactive products, unlike the storefront listing.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := repositories.Page{Page: helpers.QueryInt(r, "page", 1), Limit: helpers.QueryInt(r, "limit", 20)}
	products, err := h.admin.ListProducts(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, products)
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.admin.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req services.ProductInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	product, err := h.admin.CreateProduct(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.log.Infof("CreateProduct: created %s (%s)", product.ID, product.Slug)
	h.render.JSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req services.ProductInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, product)
}

func (h *AdminHandler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.admin.SetProductActive(r.Context(), id, *req.IsActive); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{"id": id, "isActive": *req.IsActive})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.admin.DeleteProduct(r.Context(), id); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.log.Infof("DeleteProduct: deleted %s", id)
	w.WriteHeader(http.StatusNoContent)
}

package admin

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/gorilla/mux"
)

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.admin.ListCategories(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CategoryInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	category, err := h.admin.CreateCategory(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.log.Infof("CreateCategory: created %s (%s)", category.ID, category.Slug)
	h.render.JSON(w, http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.CategoryInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	category, err := h.admin.UpdateCategory(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.admin.DeleteCategory(r.Context(), id); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.log.Infof("DeleteCategory: deleted %s", id)
	w.WriteHeader(http.StatusNoContent)
}

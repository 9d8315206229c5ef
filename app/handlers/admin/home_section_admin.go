package admin

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/gorilla/mux"
)

func (h *AdminHandler) ListHomeSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.admin.ListHomeSections(r.Context())
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, sections)
}

func (h *AdminHandler) CreateHomeSection(w http.ResponseWriter, r *http.Request) {
	var req services.HomeSectionInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	section, err := h.admin.CreateHomeSection(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, section)
}

// UpdateHomeSection replaces the section's items with the ones in the body.
func (h *AdminHandler) UpdateHomeSection(w http.ResponseWriter, r *http.Request) {
	var req services.HomeSectionInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	section, err := h.admin.UpdateHomeSection(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, section)
}

func (h *AdminHandler) DeleteHomeSection(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteHomeSection(r.Context(), mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

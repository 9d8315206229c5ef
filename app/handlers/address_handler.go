package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type AddressHandler struct {
	render   *render.Render
	accounts *services.AccountService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewAddressHandler(render *render.Render, accounts *services.AccountService, validate *validator.Validate, log *logrus.Entry) *AddressHandler {
	return &AddressHandler{render: render, accounts: accounts, validate: validate, log: log}
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.accounts.Addresses(r.Context(), caller(r).UserID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, addresses)
}

func (h *AddressHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req services.AddressInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	address, err := h.accounts.AddAddress(r.Context(), caller(r).UserID, req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, address)
}

func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req services.AddressInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	address, err := h.accounts.UpdateAddress(r.Context(), caller(r).UserID, mux.Vars(r)["id"], req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, address)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAddress(r.Context(), caller(r).UserID, mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.SetDefaultAddress(r.Context(), caller(r).UserID, mux.Vars(r)["id"]); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

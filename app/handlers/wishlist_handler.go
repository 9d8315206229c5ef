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

type WishlistHandler struct {
	render   *render.Render
	accounts *services.AccountService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewWishlistHandler(render *render.Render, accounts *services.AccountService, validate *validator.Validate, log *logrus.Entry) *WishlistHandler {
	return &WishlistHandler{render: render, accounts: accounts, validate: validate, log: log}
}

type wishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := h.accounts.Wishlist(r.Context(), caller(r).UserID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, items)
}

func (h *WishlistHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	if err := h.accounts.AddToWishlist(r.Context(), caller(r).UserID, req.ProductID); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WishlistHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.RemoveFromWishlist(r.Context(), caller(r).UserID, mux.Vars(r)["productId"]); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type CartHandler struct {
	render   *render.Render
	cart     *services.CartService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewCartHandler(render *render.Render, cart *services.CartService, validate *validator.Validate, log *logrus.Entry) *CartHandler {
	return &CartHandler{render: render, cart: cart, validate: validate, log: log}
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateCartRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.GetUserCart(r.Context(), caller(r).UserID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	view, err := h.cart.AddItem(r.Context(), caller(r).UserID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, view)
}

func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	view, err := h.cart.UpdateItem(r.Context(), caller(r).UserID, req.ItemID, req.Quantity)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("itemId")
	if itemID == "" {
		helpers.WriteError(h.render, w, h.log, apperr.Validation("itemId is required"))
		return
	}

	view, err := h.cart.RemoveItem(r.Context(), caller(r).UserID, itemID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, view)
}

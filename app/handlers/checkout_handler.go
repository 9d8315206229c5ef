package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type CheckoutHandler struct {
	render   *render.Render
	checkout *services.CheckoutService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewCheckoutHandler(render *render.Render, checkout *services.CheckoutService, validate *validator.Validate, log *logrus.Entry) *CheckoutHandler {
	return &CheckoutHandler{render: render, checkout: checkout, validate: validate, log: log}
}

type createOrderRequest struct {
	Items             []services.RequestedItem `json:"items" validate:"dive"`
	ShippingAddressID string                   `json:"shippingAddressId" validate:"required"`
	PaymentMethod     models.PaymentMethod     `json:"paymentMethod" validate:"required"`
}

type createPaymentOrderRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// verifyPaymentRequest keeps the field names the Razorpay checkout widget
// hands back to the page.
type verifyPaymentRequest struct {
	RazorpayOrderID   string           `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string           `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string           `json:"razorpay_signature"`
	ShippingAddressID string           `json:"shippingAddressId" validate:"required"`
	Subtotal          *decimal.Decimal `json:"subtotal"`
	ShippingCost      *decimal.Decimal `json:"shippingCost"`
	Tax               *decimal.Decimal `json:"tax"`
	Total             *decimal.Decimal `json:"total"`
}

func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	method := models.PaymentMethod(r.URL.Query().Get("paymentMethod"))
	if method == "" {
		method = models.PaymentMethodPrepaid
	}

	summary, err := h.checkout.Summary(r.Context(), caller(r).UserID, method)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, summary)
}

// CreateOrder places a COD order from the caller's cart.
func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	order, err := h.checkout.PlaceCODOrder(r.Context(), caller(r).UserID, services.PlaceOrderInput{
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     req.PaymentMethod,
		Items:             req.Items,
	})
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req createPaymentOrderRequest
	if err := helpers.DecodeJSON(r, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	payment, err := h.checkout.CreatePaymentOrder(r.Context(), caller(r).UserID, req.Amount)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, payment)
}

func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	order, err := h.checkout.VerifyAndPlaceOrder(r.Context(), caller(r).UserID, services.VerifyPaymentInput{
		GatewayOrderID:    req.RazorpayOrderID,
		PaymentID:         req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
		ShippingAddressID: req.ShippingAddressID,
		Total:             req.Total,
	})
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

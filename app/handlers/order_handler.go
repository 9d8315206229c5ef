package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render   *render.Render
	orders   *services.OrderService
	validate *validator.Validate
	log      *logrus.Entry
}

func NewOrderHandler(render *render.Render, orders *services.OrderService, validate *validator.Validate, log *logrus.Entry) *OrderHandler {
	return &OrderHandler{render: render, orders: orders, validate: validate, log: log}
}

type updateOrderRequest struct {
	ID             string                `json:"id" validate:"required"`
	Status         *models.OrderStatus   `json:"status"`
	PaymentStatus  *models.PaymentStatus `json:"paymentStatus"`
	TrackingNumber *string               `json:"trackingNumber" validate:"omitempty,max=100"`
}

// GetOrders returns one order when ?id= is given, otherwise a page of orders.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	rc := caller(r)
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		order, err := h.orders.Get(r.Context(), rc.UserID, rc.Role, id)
		if err != nil {
			helpers.WriteError(h.render, w, h.log, err)
			return
		}
		h.render.JSON(w, http.StatusOK, order)
		return
	}

	page := repositories.Page{Page: helpers.QueryInt(r, "page", 1), Limit: helpers.QueryInt(r, "limit", 20)}
	orders, err := h.orders.List(r.Context(), rc.UserID, rc.Role, models.OrderStatus(q.Get("status")), page)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	if req.Status == nil && req.PaymentStatus == nil && req.TrackingNumber == nil {
		helpers.WriteError(h.render, w, h.log, apperr.Validation("nothing to update"))
		return
	}

	order, err := h.orders.Update(r.Context(), caller(r).Role, services.OrderUpdate{
		ID:             req.ID,
		Status:         req.Status,
		PaymentStatus:  req.PaymentStatus,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, order)
}

// Confirmation renders the order confirmation page for the owner or an admin.
func (h *OrderHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	rc := caller(r)
	number := mux.Vars(r)["orderNumber"]

	order, err := h.orders.GetByNumber(r.Context(), rc.UserID, rc.Role, number)
	if err != nil {
		status := apperr.KindOf(err).Status()
		if status >= http.StatusInternalServerError {
			h.log.Errorf("Confirmation: failed to load order %s: %v", number, err)
		}
		h.render.HTML(w, status, "error", helpers.GetBaseData(r, "Order not found", map[string]interface{}{
			"Message": apperr.PublicMessage(err),
		}))
		return
	}

	h.render.HTML(w, http.StatusOK, "order_confirmation", helpers.GetBaseData(r, "Order "+order.OrderNumber, map[string]interface{}{
		"Order": order,
	}))
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusCancelled,
		models.OrderStatusRefunded,
	},
	models.OrderStatusConfirmed: {
		models.OrderStatusProcessing,
		models.OrderStatusCancelled,
		models.OrderStatusRefunded,
	},
	models.OrderStatusProcessing: {
		models.OrderStatusShipped,
		models.OrderStatusCancelled,
		models.OrderStatusRefunded,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
		models.OrderStatusRefunded,
	},
	models.OrderStatusDelivered: {
		models.OrderStatusRefunded,
	},
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending: {models.PaymentStatusPaid},
	models.PaymentStatusPaid:    {models.PaymentStatusRefunded},
}

// CanTransition reports whether an order may move from one status to another.
// Staying put is always allowed.
func CanTransition(from, to models.OrderStatus) bool {
	return from == to || lo.Contains(orderTransitions[from], to)
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	return from == to || lo.Contains(paymentTransitions[from], to)
}

type OrderUpdate struct {
	ID             string
	Status         *models.OrderStatus
	PaymentStatus  *models.PaymentStatus
	TrackingNumber *string
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

type OrderService struct {
	db    *gorm.DB
	repos Repositories
	log   *logrus.Entry
}

func NewOrderService(db *gorm.DB, repos Repositories, log *logrus.Entry) *OrderService {
	return &OrderService{db: db, repos: repos, log: log}
}

// visible hides orders of other users behind a not-found error.
func visible(order *models.Order, userID string, role models.Role) (*models.Order, error) {
	if order == nil || (role != models.RoleAdmin && order.UserID != userID) {
		return nil, apperr.NotFound("order not found")
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, userID string, role models.Role, id string) (*models.Order, error) {
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, persistence(err)
	}
	return visible(order, userID, role)
}

func (s *OrderService) GetByNumber(ctx context.Context, userID string, role models.Role, number string) (*models.Order, error) {
	order, err := s.repos.Orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, persistence(err)
	}
	return visible(order, userID, role)
}

// List returns the caller's orders, or every order for an admin.
func (s *OrderService) List(ctx context.Context, userID string, role models.Role, status models.OrderStatus, page repositories.Page) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown order status %q", status))
	}

	filter := repositories.OrderFilter{Status: status, Page: page}
	if role != models.RoleAdmin {
		filter.UserID = userID
	}

	orders, total, err := s.repos.Orders.List(ctx, filter)
	if err != nil {
		return nil, persistence(err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	n := page.Normalize()
	return &OrderPage{Orders: orders, Total: total, Page: n.Page, Limit: n.Limit}, nil
}

// Update applies an admin change to status, payment status or tracking number.
func (s *OrderService) Update(ctx context.Context, role models.Role, in OrderUpdate) (*models.Order, error) {
	if role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can update orders")
	}

	order, err := s.repos.Orders.GetByID(ctx, in.ID)
	if err != nil {
		return nil, persistence(err)
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	fields := map[string]interface{}{}

	if in.Status != nil {
		to := *in.Status
		if !to.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown order status %q", to))
		}
		if !CanTransition(order.Status, to) {
			return nil, apperr.Validation(fmt.Sprintf("cannot move order from %s to %s", order.Status, to))
		}
		if to != order.Status {
			fields["status"] = to
		}
	}

	if in.PaymentStatus != nil {
		to := *in.PaymentStatus
		if !to.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown payment status %q", to))
		}
		if !CanTransitionPayment(order.PaymentStatus, to) {
			return nil, apperr.Validation(fmt.Sprintf("cannot move payment from %s to %s", order.PaymentStatus, to))
		}
		if to != order.PaymentStatus {
			fields["payment_status"] = to
		}
	}

	if in.TrackingNumber != nil {
		tracking := strings.TrimSpace(*in.TrackingNumber)
		if tracking != order.TrackingNumber {
			fields["tracking_number"] = tracking
		}
	}

	if len(fields) == 0 {
		return order, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repos.Orders.UpdateFields(ctx, tx, order.ID, fields); err != nil {
			return err
		}
		if status, ok := fields["payment_status"]; ok && order.Payment != nil {
			return s.repos.Payments.UpdateStatus(ctx, tx, order.ID, status.(models.PaymentStatus))
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).Errorf("update order %s", order.OrderNumber)
		return nil, persistence(err)
	}

	s.log.Infof("order %s updated: %v", order.OrderNumber, fields)
	return s.repos.Orders.GetByID(ctx, order.ID)
}

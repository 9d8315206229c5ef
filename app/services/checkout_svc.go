package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxOrderNumberAttempts = 3

var (
	errOrderNumberTaken = errors.New("order number already taken")
	errIntentConsumed   = errors.New("payment intent already consumed")
	errCartChanged      = apperr.Validation("cart changed after payment was initiated")
)

type CheckoutSummary struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Cart          *CartView            `json:"cart"`
	Breakdown     calc.Breakdown       `json:"breakdown"`
}

type PaymentOrder struct {
	OrderID     string          `json:"orderId"`
	Amount      int64           `json:"amount"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Provider    string          `json:"provider"`
	KeyID       string          `json:"keyId,omitempty"`
	Token       string          `json:"token,omitempty"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
}

type RequestedItem struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderInput struct {
	ShippingAddressID string
	PaymentMethod     models.PaymentMethod
	Items             []RequestedItem
}

type VerifyPaymentInput struct {
	GatewayOrderID    string
	PaymentID         string
	Signature         string
	ShippingAddressID string
	// Total is the amount the client displayed. It is only compared, never used.
	Total *decimal.Decimal
}

type CheckoutService struct {
	db       *gorm.DB
	repos    Repositories
	gateway  gateway.Gateway
	rules    calc.PricingRules
	currency string
	numbers  *OrderNumberGenerator
	log      *logrus.Entry
}

func NewCheckoutService(
	db *gorm.DB,
	repos Repositories,
	gw gateway.Gateway,
	rules calc.PricingRules,
	currency string,
	numbers *OrderNumberGenerator,
	log *logrus.Entry,
) *CheckoutService {
	if numbers == nil {
		numbers = NewOrderNumberGenerator(nil)
	}
	return &CheckoutService{
		db:       db,
		repos:    repos,
		gateway:  gw,
		rules:    rules,
		currency: currency,
		numbers:  numbers,
		log:      log,
	}
}

func (s *CheckoutService) cartView(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.repos.Carts.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, persistence(err)
	}
	items, err := s.repos.CartItems.ListByCartID(ctx, nil, cart.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return buildCartView(cart.ID, items), nil
}

func (s *CheckoutService) Summary(ctx context.Context, userID string, method models.PaymentMethod) (*CheckoutSummary, error) {
	if !method.Valid() {
		return nil, apperr.Validation("paymentMethod must be COD or PREPAID")
	}

	view, err := s.cartView(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CheckoutSummary{
		PaymentMethod: method,
		Cart:          view,
		Breakdown:     s.rules.Quote(view.Subtotal, method),
	}, nil
}

// shippingAddress loads the address and checks it belongs to userID.
func (s *CheckoutService) shippingAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	if addressID == "" {
		return nil, apperr.Validation("shippingAddressId is required")
	}
	address, err := s.repos.Addresses.FindAddressByID(ctx, nil, addressID)
	if err != nil {
		return nil, persistence(err)
	}
	if address == nil {
		return nil, apperr.NotFound("address not found")
	}
	if address.UserID != userID {
		return nil, apperr.Forbidden("address belongs to another user")
	}
	return address, nil
}

// CreatePaymentOrder opens a gateway order for the PREPAID total of the
// current cart and records it as a payment intent.
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, userID string, amount *decimal.Decimal) (*PaymentOrder, error) {
	view, err := s.cartView(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Orderable()) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	breakdown := s.rules.Quote(view.Subtotal, models.PaymentMethodPrepaid)
	if amount != nil && !amount.Equal(breakdown.Total) {
		return nil, apperr.Validation("amount does not match cart total")
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	remote, err := s.gateway.CreateOrder(ctx, gateway.OrderRequest{
		Amount:   breakdown.Total,
		Currency: s.currency,
		Receipt:  receipt,
		Notes:    map[string]string{"user_id": userID},
	})
	if err != nil {
		s.log.Errorf("create gateway order for user %s: %v", userID, err)
		return nil, gatewayError(err)
	}

	intent := &models.PaymentIntent{
		UserID:         userID,
		Provider:       s.gateway.Provider(),
		GatewayOrderID: remote.ID,
		Receipt:        receipt,
		Amount:         breakdown.Total,
		AmountMinor:    calc.ToMinorUnits(breakdown.Total),
		Currency:       s.currency,
		Status:         models.IntentStatusCreated,
	}
	if err := s.repos.Payments.CreateIntent(ctx, intent); err != nil {
		return nil, persistence(err)
	}

	s.log.Infof("payment intent %s opened for user %s: %s %s", remote.ID, userID, breakdown.Total.StringFixed(2), s.currency)

	return &PaymentOrder{
		OrderID:     remote.ID,
		Amount:      remote.Amount,
		Total:       breakdown.Total,
		Currency:    s.currency,
		Provider:    s.gateway.Provider(),
		KeyID:       remote.PublicKey,
		Token:       remote.Token,
		RedirectURL: remote.RedirectURL,
	}, nil
}

// PlaceCODOrder turns the current cart into a cash-on-delivery order.
func (s *CheckoutService) PlaceCODOrder(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	switch in.PaymentMethod {
	case models.PaymentMethodCOD:
	case models.PaymentMethodPrepaid:
		return nil, apperr.Validation("prepaid orders must be placed through the payment endpoints")
	default:
		return nil, apperr.Validation("paymentMethod must be COD or PREPAID")
	}

	address, err := s.shippingAddress(ctx, userID, in.ShippingAddressID)
	if err != nil {
		return nil, err
	}

	if len(in.Items) > 0 {
		view, err := s.cartView(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !sameItems(view.Orderable(), in.Items) {
			return nil, apperr.Validation("items do not match the cart")
		}
	}

	order, err := s.materialize(ctx, userID, address, models.PaymentMethodCOD, nil, nil)
	if err != nil {
		return nil, err
	}
	s.log.Infof("COD order %s placed by user %s, total %s", order.OrderNumber, userID, order.Total.StringFixed(2))
	return order, nil
}

func lineKey(productID, variantID string) string {
	return productID + "/" + variantID
}

func sameItems(lines []CartLine, requested []RequestedItem) bool {
	want := make(map[string]int, len(lines))
	for _, l := range lines {
		want[lineKey(l.ProductID, l.VariantID)] += l.Quantity
	}
	got := make(map[string]int, len(requested))
	for _, r := range requested {
		got[lineKey(r.ProductID, r.VariantID)] += r.Quantity
	}
	if len(want) != len(got) {
		return false
	}
	for k, qty := range want {
		if got[k] != qty {
			return false
		}
	}
	return true
}

// VerifyAndPlaceOrder proves the payment with the gateway and only then
// creates the PREPAID order. A resubmission for an already paid gateway order
// returns the existing order.
func (s *CheckoutService) VerifyAndPlaceOrder(ctx context.Context, userID string, in VerifyPaymentInput) (*models.Order, error) {
	err := s.gateway.Verify(ctx, gateway.Confirmation{
		OrderID:   in.GatewayOrderID,
		PaymentID: in.PaymentID,
		Signature: in.Signature,
	})
	if err != nil {
		s.log.Warnf("payment verification failed for user %s gateway order %s: %v", userID, in.GatewayOrderID, err)
		return nil, gatewayError(err)
	}

	if order, err := s.existingOrder(ctx, userID, in.GatewayOrderID); order != nil || err != nil {
		return order, err
	}

	intent, err := s.repos.Payments.FindIntent(ctx, nil, in.GatewayOrderID)
	if err != nil {
		return nil, persistence(err)
	}
	if intent == nil || intent.UserID != userID {
		return nil, apperr.NotFound("payment order not found")
	}
	switch intent.Status {
	case models.IntentStatusCreated:
	case models.IntentStatusMismatched:
		return nil, apperr.Validation("payment is on hold for review, contact support")
	default:
		return nil, apperr.Validation("payment has already been processed")
	}

	address, err := s.shippingAddress(ctx, userID, in.ShippingAddressID)
	if err != nil {
		return nil, err
	}

	payment := &paymentDetails{intent: intent, confirmation: in}
	order, err := s.materialize(ctx, userID, address, models.PaymentMethodPrepaid, payment, in.Total)
	if errors.Is(err, errIntentConsumed) {
		existing, lookupErr := s.existingOrder(ctx, userID, in.GatewayOrderID)
		if existing == nil && lookupErr == nil {
			return nil, apperr.Validation("payment has already been processed")
		}
		return existing, lookupErr
	}
	if errors.Is(err, errCartChanged) {
		return nil, s.holdPayment(ctx, intent, in)
	}
	if err != nil {
		return nil, err
	}

	s.log.Infof("PREPAID order %s placed by user %s, gateway order %s", order.OrderNumber, userID, in.GatewayOrderID)
	return order, nil
}

// holdPayment records a verified payment whose cart no longer matches the
// intent amount so it can be refunded or reconciled.
func (s *CheckoutService) holdPayment(ctx context.Context, intent *models.PaymentIntent, in VerifyPaymentInput) error {
	held, err := s.repos.Payments.HoldIntent(ctx, intent.ID, in.PaymentID, in.Signature)
	if err != nil {
		s.log.WithError(err).Errorf("could not hold payment %s for gateway order %s", in.PaymentID, in.GatewayOrderID)
		return persistence(err)
	}
	if !held {
		return apperr.Validation("payment has already been processed")
	}

	s.log.WithFields(logrus.Fields{
		"user_id":            intent.UserID,
		"gateway_order_id":   in.GatewayOrderID,
		"gateway_payment_id": in.PaymentID,
		"amount":             intent.Amount.StringFixed(2),
	}).Error("payment captured but cart changed, held for refund")
	return errCartChanged
}

func (s *CheckoutService) existingOrder(ctx context.Context, userID, gatewayOrderID string) (*models.Order, error) {
	payment, err := s.repos.Payments.FindByGatewayOrderID(ctx, nil, gatewayOrderID)
	if err != nil {
		return nil, persistence(err)
	}
	if payment == nil {
		return nil, nil
	}

	order, err := s.repos.Orders.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, persistence(err)
	}
	if order == nil || order.UserID != userID {
		return nil, apperr.NotFound("payment order not found")
	}
	return order, nil
}

type paymentDetails struct {
	intent       *models.PaymentIntent
	confirmation VerifyPaymentInput
}

// materialize runs the order transaction, retrying with a fresh order number
// when the generated one collides with an existing order.
func (s *CheckoutService) materialize(ctx context.Context, userID string, address *models.Address, method models.PaymentMethod, payment *paymentDetails, clientTotal *decimal.Decimal) (*models.Order, error) {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order, err := s.materializeOnce(ctx, userID, address, method, payment, clientTotal)
		if errors.Is(err, errOrderNumberTaken) {
			s.log.Warnf("order number collision on attempt %d for user %s", attempt, userID)
			continue
		}
		if err != nil {
			err = persistence(err)
			switch {
			case errors.Is(err, errIntentConsumed), errors.Is(err, errCartChanged):
			case apperr.KindOf(err).Status() >= http.StatusInternalServerError:
				s.log.WithError(err).Errorf("checkout failed for user %s", userID)
			default:
				s.log.Infof("checkout rejected for user %s: %v", userID, err)
			}
			return nil, err
		}
		return order, nil
	}
	return nil, apperr.Persistence(fmt.Errorf("no free order number after %d attempts", maxOrderNumberAttempts))
}

func (s *CheckoutService) materializeOnce(ctx context.Context, userID string, address *models.Address, method models.PaymentMethod, payment *paymentDetails, clientTotal *decimal.Decimal) (*models.Order, error) {
	var order *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.repos.Carts.FindByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return apperr.Validation("cart is empty")
		}

		items, err := s.repos.CartItems.ListByCartID(ctx, tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.Validation("cart is empty")
		}

		productIDs := lo.Uniq(lo.Map(items, func(item models.CartItem, _ int) string { return item.ProductID }))
		locked, err := s.repos.Products.LockByIDs(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		var (
			orderItems []models.OrderItem
			consumed   []string
			subtotal   = decimal.Zero
		)
		for _, item := range items {
			product, ok := locked[item.ProductID]
			if !ok {
				continue
			}
			// Locked row carries the committed price and flags; images and
			// variants come from the preloaded association.
			live := *product
			if item.Product != nil {
				live.Images = item.Product.Images
				live.Variants = item.Product.Variants
			}

			line := resolveLine(item, &live)
			if !line.Available {
				continue
			}

			if err := s.decrementStock(ctx, tx, line); err != nil {
				return err
			}

			orderItems = append(orderItems, models.OrderItem{
				ProductID:    line.ProductID,
				ProductName:  line.Name,
				ProductSlug:  line.Slug,
				ProductImage: line.Image,
				VariantID:    line.VariantID,
				VariantName:  line.VariantName,
				Quantity:     line.Quantity,
				UnitPrice:    line.UnitPrice,
				Subtotal:     line.LineTotal,
			})
			consumed = append(consumed, item.ID)
			subtotal = subtotal.Add(line.LineTotal)
		}
		if len(orderItems) == 0 {
			return apperr.Validation("cart is empty")
		}

		breakdown := s.rules.Quote(subtotal, method)
		if payment != nil && !breakdown.Total.Equal(payment.intent.Amount) {
			return errCartChanged
		}
		if clientTotal != nil && !clientTotal.Equal(breakdown.Total) {
			return apperr.Validation("total does not match the server total")
		}

		order = &models.Order{
			OrderNumber:     s.numbers.Next(),
			UserID:          userID,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			PaymentMethod:   method,
			Subtotal:        breakdown.Subtotal,
			ShippingCost:    breakdown.ShippingCost,
			CodCharge:       breakdown.CodCharge,
			Tax:             breakdown.Tax,
			Total:           breakdown.Total,
			ShippingName:    address.Name,
			ShippingPhone:   address.Phone,
			ShippingAddress: address.FullLine(),
			ShippingCity:    address.City,
			ShippingState:   address.State,
			ShippingPincode: address.Pincode,
			ShippingCountry: address.Country,
		}
		if payment != nil {
			order.Status = models.OrderStatusConfirmed
			order.PaymentStatus = models.PaymentStatusPaid
		}

		if err := s.repos.Orders.Create(ctx, tx, order); err != nil {
			if repositories.IsDuplicateKey(err) {
				return fmt.Errorf("%w: %s", errOrderNumberTaken, order.OrderNumber)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := s.repos.OrderItems.CreateBulk(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = orderItems

		if payment != nil {
			record, err := s.recordPayment(ctx, tx, order, payment)
			if err != nil {
				return err
			}
			order.Payment = record
		}

		if err := s.repos.CartItems.DeleteByIDs(ctx, tx, cart.ID, consumed); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *CheckoutService) decrementStock(ctx context.Context, tx *gorm.DB, line CartLine) error {
	var (
		ok  bool
		err error
	)
	if line.VariantID != "" {
		ok, err = s.repos.Products.DecrementVariantStock(ctx, tx, line.VariantID, line.Quantity)
	} else {
		ok, err = s.repos.Products.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
	}
	if err != nil {
		return fmt.Errorf("failed to reserve stock for %s: %w", line.ProductID, err)
	}
	if !ok {
		return apperr.Validation(fmt.Sprintf("insufficient stock for %s", line.Name))
	}
	return nil
}

func (s *CheckoutService) recordPayment(ctx context.Context, tx *gorm.DB, order *models.Order, p *paymentDetails) (*models.Payment, error) {
	payload, err := json.Marshal(map[string]string{
		"order_id":   p.confirmation.GatewayOrderID,
		"payment_id": p.confirmation.PaymentID,
		"receipt":    p.intent.Receipt,
	})
	if err != nil {
		return nil, err
	}

	record := &models.Payment{
		OrderID:          order.ID,
		Provider:         p.intent.Provider,
		GatewayOrderID:   p.confirmation.GatewayOrderID,
		GatewayPaymentID: p.confirmation.PaymentID,
		GatewaySignature: p.confirmation.Signature,
		Amount:           order.Total,
		Currency:         p.intent.Currency,
		Status:           models.PaymentStatusPaid,
		Method:           models.PaymentMethodPrepaid,
		TransactedAt:     time.Now(),
		Payload:          datatypes.JSON(payload),
	}
	if err := s.repos.Payments.Create(ctx, tx, record); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, errIntentConsumed
		}
		return nil, err
	}

	ok, err := s.repos.Payments.ConsumeIntent(ctx, tx, p.intent.ID, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume payment intent: %w", err)
	}
	if !ok {
		return nil, errIntentConsumed
	}
	return record, nil
}

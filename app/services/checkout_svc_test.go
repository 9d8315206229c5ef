package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cod(addressID string) PlaceOrderInput {
	return PlaceOrderInput{ShippingAddressID: addressID, PaymentMethod: models.PaymentMethodCOD}
}

func TestCODOrderScenario(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "cod@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "bicycle", 600, 10)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 2)
	require.NoError(t, err)

	summary, err := f.checkout.Summary(f.ctx, u.ID, models.PaymentMethodCOD)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(1466).Equal(summary.Breakdown.Total))

	order, err := f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.NoError(t, err)

	require.Regexp(t, `^ORD-\d+$`, order.OrderNumber)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.True(t, decimal.NewFromInt(1200).Equal(order.Subtotal))
	require.True(t, order.ShippingCost.IsZero())
	require.True(t, decimal.NewFromInt(50).Equal(order.CodCharge))
	require.True(t, decimal.NewFromInt(216).Equal(order.Tax))
	require.True(t, decimal.NewFromInt(1466).Equal(order.Total))
	require.Equal(t, "12 MG Road, Flat 4B", order.ShippingAddress)
	require.Equal(t, "560001", order.ShippingPincode)
	require.Len(t, order.Items, 1)
	require.Nil(t, order.Payment)

	view, err := f.cart.GetUserCart(f.ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.Equal(t, 8, f.stock(t, p.ID))
	require.EqualValues(t, 0, f.count(t, &models.Payment{}))

	stored, err := f.repos.Orders.FindByNumber(f.ctx, order.OrderNumber)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(1466).Equal(stored.Total))
	require.Len(t, stored.Items, 1)
	require.Equal(t, "https://cdn.example.com/bicycle-1.jpg", stored.Items[0].ProductImage)
}

func TestPlaceCODOrderRejections(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "rej@example.com")
	stranger := f.user(t, "stranger@example.com")
	addr := f.address(t, u.ID)
	foreign := f.address(t, stranger.ID)
	p := f.product(t, "train", 700, 10)

	_, err := f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err), "empty cart")

	_, err = f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)

	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(foreign.ID))
	require.Equal(t, apperr.KindAuthorizationDenied, apperr.KindOf(err))

	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, PlaceOrderInput{ShippingAddressID: addr.ID, PaymentMethod: models.PaymentMethodPrepaid})
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	mismatch := cod(addr.ID)
	mismatch.Items = []RequestedItem{{ProductID: p.ID, Quantity: 3}}
	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, mismatch)
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	require.EqualValues(t, 0, f.count(t, &models.Order{}))

	matching := cod(addr.ID)
	matching.Items = []RequestedItem{{ProductID: p.ID, Quantity: 1}}
	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, matching)
	require.NoError(t, err)
}

func TestInsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "stock@example.com")
	addr := f.address(t, u.ID)
	plenty := f.product(t, "crayons", 100, 50)
	scarce := f.product(t, "rocket", 900, 1)

	_, err := f.cart.AddItem(f.ctx, u.ID, plenty.ID, "", 5)
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, u.ID, scarce.ID, "", 2)
	require.NoError(t, err)

	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	require.Contains(t, err.Error(), "insufficient stock")

	require.EqualValues(t, 0, f.count(t, &models.Order{}))
	require.Equal(t, 50, f.stock(t, plenty.ID))
	require.Equal(t, 1, f.stock(t, scarce.ID))
	require.EqualValues(t, 2, f.count(t, &models.CartItem{}))
}

func TestUnavailableLinesStayInCart(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "partial@example.com")
	addr := f.address(t, u.ID)
	ok := f.product(t, "doll", 1000, 5)
	gone := f.product(t, "car", 300, 5)

	_, err := f.cart.AddItem(f.ctx, u.ID, ok.ID, "", 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.ctx, u.ID, gone.ID, "", 1)
	require.NoError(t, err)
	require.NoError(t, f.repos.Products.SetActive(f.ctx, gone.ID, false))

	order, err := f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.True(t, order.ShippingCost.IsZero())

	view, err := f.cart.GetUserCart(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, gone.ID, view.Lines[0].ProductID)
}

func TestCheckoutRollsBackWhenCartClearFails(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "atomic@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "tent", 1500, 4)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 2)
	require.NoError(t, err)

	injected := errors.New("injected cart clear failure")
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_clear", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			_ = tx.AddError(injected)
		}
	}))

	_, err = f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Error(t, err)
	require.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	require.ErrorIs(t, err, injected)

	require.EqualValues(t, 0, f.count(t, &models.Order{}))
	require.EqualValues(t, 0, f.count(t, &models.OrderItem{}))
	require.EqualValues(t, 1, f.count(t, &models.CartItem{}))
	require.Equal(t, 4, f.stock(t, p.ID))
}

func TestOrderItemsKeepPurchaseTimeValues(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "snapshot@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "teddy", 800, 5)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)
	order, err := f.checkout.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.NoError(t, err)

	_, err = f.admin.UpdateProduct(f.ctx, p.ID, ProductInput{
		Name:     "Giant Teddy",
		Price:    decimal.NewFromInt(1200),
		Quantity: 9,
	})
	require.NoError(t, err)

	stored, err := f.repos.Orders.GetByID(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	item := stored.Items[0]
	require.Equal(t, "teddy", item.ProductName)
	require.True(t, decimal.NewFromInt(800).Equal(item.UnitPrice))
	require.True(t, decimal.NewFromInt(800).Equal(item.Subtotal))
	require.True(t, order.Total.Equal(stored.Total))
}

func signFor(orderID, paymentID string) string {
	return gateway.Sign(orderID, paymentID, testKeySecret)
}

func TestPrepaidOrderWithValidSignature(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "prepaid@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "scooter", 600, 10)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 2)
	require.NoError(t, err)

	expected := decimal.RequireFromString("1416")
	pay, err := f.checkout.CreatePaymentOrder(f.ctx, u.ID, &expected)
	require.NoError(t, err)
	require.Equal(t, int64(141600), pay.Amount)
	require.Equal(t, "razorpay", pay.Provider)
	require.Equal(t, "rzp_test_key", pay.KeyID)

	in := VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_T1",
		Signature:         signFor(pay.OrderID, "pay_T1"),
		ShippingAddressID: addr.ID,
		Total:             &expected,
	}
	order, err := f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, in)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusConfirmed, order.Status)
	require.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.True(t, order.CodCharge.IsZero())
	require.True(t, expected.Equal(order.Total))
	require.NotNil(t, order.Payment)

	payment, err := f.repos.Payments.FindByGatewayOrderID(f.ctx, nil, pay.OrderID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	require.Equal(t, order.ID, payment.OrderID)
	require.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.Equal(t, "pay_T1", payment.GatewayPaymentID)

	intent, err := f.repos.Payments.FindIntent(f.ctx, nil, pay.OrderID)
	require.NoError(t, err)
	require.Equal(t, models.IntentStatusConsumed, intent.Status)
	require.Equal(t, order.ID, *intent.OrderID)

	again, err := f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, in)
	require.NoError(t, err)
	require.Equal(t, order.ID, again.ID)
	require.EqualValues(t, 1, f.count(t, &models.Order{}))
}

func TestPrepaidOrderWithInvalidSignature(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "forged@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "swing", 600, 10)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 2)
	require.NoError(t, err)
	pay, err := f.checkout.CreatePaymentOrder(f.ctx, u.ID, nil)
	require.NoError(t, err)

	forged := signFor(pay.OrderID, "pay_OTHER")
	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_T1",
		Signature:         forged,
		ShippingAddressID: addr.ID,
	})
	require.Equal(t, apperr.KindPaymentVerificationFailed, apperr.KindOf(err))

	require.EqualValues(t, 0, f.count(t, &models.Order{}))
	require.EqualValues(t, 0, f.count(t, &models.Payment{}))
	require.EqualValues(t, 1, f.count(t, &models.CartItem{}))
	require.Equal(t, 10, f.stock(t, p.ID))
}

func TestPrepaidGuards(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "guards@example.com")
	thief := f.user(t, "thief@example.com")
	addr := f.address(t, u.ID)
	thiefAddr := f.address(t, thief.ID)
	p := f.product(t, "slide", 500, 10)

	_, err := f.checkout.CreatePaymentOrder(f.ctx, u.ID, nil)
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err), "empty cart")

	_, err = f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)

	wrong := decimal.NewFromInt(1)
	_, err = f.checkout.CreatePaymentOrder(f.ctx, u.ID, &wrong)
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	pay, err := f.checkout.CreatePaymentOrder(f.ctx, u.ID, nil)
	require.NoError(t, err)

	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, thief.ID, VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_X",
		Signature:         signFor(pay.OrderID, "pay_X"),
		ShippingAddressID: thiefAddr.ID,
	})
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	clientTotal := decimal.NewFromInt(10)
	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_Y",
		Signature:         signFor(pay.OrderID, "pay_Y"),
		ShippingAddressID: addr.ID,
		Total:             &clientTotal,
	})
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	_, err = f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)
	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_Z",
		Signature:         signFor(pay.OrderID, "pay_Z"),
		ShippingAddressID: addr.ID,
	})
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	require.Contains(t, err.Error(), "cart changed")

	require.EqualValues(t, 0, f.count(t, &models.Order{}))
	require.Equal(t, 10, f.stock(t, p.ID))
}

func TestCartChangeAfterPaymentHoldsPayment(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "changed@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "rocker", 500, 10)
	extra := f.product(t, "rattle", 120, 10)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)
	pay, err := f.checkout.CreatePaymentOrder(f.ctx, u.ID, nil)
	require.NoError(t, err)

	_, err = f.cart.AddItem(f.ctx, u.ID, extra.ID, "", 1)
	require.NoError(t, err)

	in := VerifyPaymentInput{
		GatewayOrderID:    pay.OrderID,
		PaymentID:         "pay_H1",
		Signature:         signFor(pay.OrderID, "pay_H1"),
		ShippingAddressID: addr.ID,
	}
	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, in)
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	require.Contains(t, err.Error(), "cart changed")

	require.EqualValues(t, 0, f.count(t, &models.Order{}))
	require.Equal(t, 10, f.stock(t, p.ID))

	intent, err := f.repos.Payments.FindIntent(f.ctx, nil, pay.OrderID)
	require.NoError(t, err)
	require.Equal(t, models.IntentStatusMismatched, intent.Status)
	require.Equal(t, "pay_H1", intent.GatewayPaymentID)
	require.Equal(t, in.Signature, intent.GatewaySignature)
	require.Nil(t, intent.OrderID)

	_, err = f.checkout.VerifyAndPlaceOrder(f.ctx, u.ID, in)
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))
	require.Contains(t, err.Error(), "on hold")

	dash, err := NewDashboardService(f.repos, logger.Discard()).Dashboard(f.ctx)
	require.NoError(t, err)
	require.Len(t, dash.HeldPayments, 1)
	require.Equal(t, pay.OrderID, dash.HeldPayments[0].GatewayOrderID)
}

func TestMisconfiguredGateway(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "nokeys@example.com")
	p := f.product(t, "ship", 400, 3)
	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)

	log := logger.Discard()
	gw := gateway.NewRazorpay(gateway.RazorpayConfig{}, log)
	svc := NewCheckoutService(f.db, f.repos, gw, calc.DefaultPricingRules(), "INR", nil, log)

	_, err = svc.CreatePaymentOrder(f.ctx, u.ID, nil)
	require.Equal(t, apperr.KindGatewayMisconfigured, apperr.KindOf(err))
	require.Equal(t, "payment gateway is not configured", apperr.PublicMessage(err))
	require.EqualValues(t, 0, f.count(t, &models.PaymentIntent{}))
}

func TestOrderNumberConflictRetries(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "retry@example.com")
	addr := f.address(t, u.ID)
	p := f.product(t, "bus", 300, 5)

	fixed := time.UnixMilli(1700000000000)
	taken := &models.Order{
		OrderNumber:   "ORD-1700000000000",
		UserID:        u.ID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: models.PaymentMethodCOD,
	}
	require.NoError(t, f.db.Create(taken).Error)

	log := logger.Discard()
	numbers := NewOrderNumberGenerator(func() time.Time { return fixed })
	svc := NewCheckoutService(f.db, f.repos, nil, calc.DefaultPricingRules(), "INR", numbers, log)

	_, err := f.cart.AddItem(f.ctx, u.ID, p.ID, "", 1)
	require.NoError(t, err)
	order, err := svc.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.NoError(t, err)
	require.Equal(t, "ORD-1700000000001", order.OrderNumber)
	require.Equal(t, 4, f.stock(t, p.ID))
}

func TestOrderNumberGeneratorIsMonotonic(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	g := NewOrderNumberGenerator(func() time.Time { return now })

	require.Equal(t, "ORD-1700000000000", g.Next())
	require.Equal(t, "ORD-1700000000001", g.Next())

	now = now.Add(-time.Second)
	require.Equal(t, "ORD-1700000000002", g.Next())

	now = time.UnixMilli(1700000005000)
	require.Equal(t, "ORD-1700000005000", g.Next())
}

func TestGatewayErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind apperr.Kind
	}{
		{gateway.ErrMisconfigured, apperr.KindGatewayMisconfigured},
		{gateway.ErrVerificationFailed, apperr.KindPaymentVerificationFailed},
		{fmt.Errorf("%w: 99.50 IDR has a fractional part", gateway.ErrUnsupportedAmount), apperr.KindValidationFailed},
		{gateway.ErrGateway, apperr.KindGateway},
	}
	for _, tt := range tests {
		require.Equal(t, tt.kind, apperr.KindOf(gatewayError(tt.err)), tt.err.Error())
	}
}

func TestCheckoutLogsOnlyServerFailuresAsErrors(t *testing.T) {
	f := newFixture(t)
	base, hook := test.NewNullLogger()
	svc := NewCheckoutService(f.db, f.repos, nil, calc.DefaultPricingRules(), "INR", nil, logrus.NewEntry(base))

	u := f.user(t, "levels@example.com")
	addr := f.address(t, u.ID)
	scarce := f.product(t, "kite", 300, 1)

	_, err := svc.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	_, err = f.cart.AddItem(f.ctx, u.ID, scarce.ID, "", 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", scarce.ID).Update("quantity", 0).Error)
	_, err = svc.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Equal(t, apperr.KindValidationFailed, apperr.KindOf(err))

	for _, entry := range hook.AllEntries() {
		require.NotEqual(t, logrus.ErrorLevel, entry.Level, entry.Message)
	}

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", scarce.ID).Update("quantity", 5).Error)
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			_ = tx.AddError(errors.New("injected order insert failure"))
		}
	}))
	_, err = svc.PlaceCODOrder(f.ctx, u.ID, cod(addr.ID))
	require.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

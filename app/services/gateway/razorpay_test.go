package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRazorpayCreateOrder(t *testing.T) {
	var got razorpayOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, testSecret, pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(razorpayOrder{
			ID:       "order_N1",
			Amount:   got.Amount,
			Currency: got.Currency,
			Receipt:  got.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	rp := NewRazorpay(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: testSecret, BaseURL: server.URL}, logger.Discard())
	order, err := rp.CreateOrder(context.Background(), OrderRequest{
		Amount:   decimal.RequireFromString("1416.50"),
		Currency: "INR",
		Receipt:  "rcpt_1",
	})
	require.NoError(t, err)

	require.Equal(t, int64(141650), got.Amount)
	require.Equal(t, "INR", got.Currency)
	require.Equal(t, "rcpt_1", got.Receipt)

	require.Equal(t, "order_N1", order.ID)
	require.Equal(t, int64(141650), order.Amount)
	require.Equal(t, "rzp_test_key", order.PublicKey)
}

func TestRazorpayCreateOrderRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer server.Close()

	rp := NewRazorpay(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL}, logger.Discard())
	_, err := rp.CreateOrder(context.Background(), OrderRequest{Amount: decimal.Zero, Currency: "INR", Receipt: "r"})

	require.ErrorIs(t, err, ErrGateway)
	require.ErrorContains(t, err, "atleast INR 1.00")
}

func TestRazorpayMisconfigured(t *testing.T) {
	rp := NewRazorpay(RazorpayConfig{}, logger.Discard())

	_, err := rp.CreateOrder(context.Background(), OrderRequest{Amount: decimal.NewFromInt(10), Currency: "INR"})
	require.ErrorIs(t, err, ErrMisconfigured)

	err = rp.Verify(context.Background(), Confirmation{OrderID: "o", PaymentID: "p", Signature: Sign("o", "p", "")})
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestRazorpayVerify(t *testing.T) {
	rp := NewRazorpay(RazorpayConfig{KeyID: "k", KeySecret: testSecret}, logger.Discard())
	ctx := context.Background()

	good := Confirmation{OrderID: "order_N1", PaymentID: "pay_P1", Signature: Sign("order_N1", "pay_P1", testSecret)}
	require.NoError(t, rp.Verify(ctx, good))

	bad := good
	bad.Signature = flipLast(good.Signature)
	err := rp.Verify(ctx, bad)
	require.True(t, errors.Is(err, ErrVerificationFailed))
}

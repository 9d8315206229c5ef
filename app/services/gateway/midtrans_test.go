package gateway

import (
	"context"
	"testing"

	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMidtransRequiresServerKey(t *testing.T) {
	m := NewMidtrans("", "", false, logger.Discard())

	_, err := m.CreateOrder(context.Background(), OrderRequest{Amount: decimal.NewFromInt(500), Currency: "IDR", Receipt: "rcpt_1"})
	require.ErrorIs(t, err, ErrMisconfigured)

	err = m.Verify(context.Background(), Confirmation{OrderID: "rcpt_1", PaymentID: "tx_1"})
	require.ErrorIs(t, err, ErrMisconfigured)
}

func TestMidtransRefusesFractionalAmounts(t *testing.T) {
	m := NewMidtrans("SB-Mid-server-test", "SB-Mid-client-test", false, logger.Discard())

	_, err := m.CreateOrder(context.Background(), OrderRequest{
		Amount:   decimal.RequireFromString("1415.50"),
		Currency: "IDR",
		Receipt:  "rcpt_2",
	})
	require.ErrorIs(t, err, ErrUnsupportedAmount)
	require.Contains(t, err.Error(), "1415.5")
}

func TestMidtransVerifyNeedsBothIDs(t *testing.T) {
	m := NewMidtrans("SB-Mid-server-test", "SB-Mid-client-test", false, logger.Discard())

	require.ErrorIs(t, m.Verify(context.Background(), Confirmation{OrderID: "rcpt_3"}), ErrVerificationFailed)
	require.ErrorIs(t, m.Verify(context.Background(), Confirmation{PaymentID: "tx_3"}), ErrVerificationFailed)
}

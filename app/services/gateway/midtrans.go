package gateway

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
)

const ProviderMidtrans = "midtrans"

// Midtrans has no client-side signature step; a payment is trusted only after
// the transaction is looked up server-side. Snap gross amounts are whole
// currency units, so totals with a fractional part are refused rather than
// rounded.
type Midtrans struct {
	serverKey string
	clientKey string
	snap      snap.Client
	core      coreapi.Client
	log       *logrus.Entry
}

func NewMidtrans(serverKey, clientKey string, production bool, log *logrus.Entry) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	m := &Midtrans{serverKey: serverKey, clientKey: clientKey, log: log}
	if serverKey != "" {
		m.snap.New(serverKey, env)
		m.core.New(serverKey, env)
	}
	return m
}

func (m *Midtrans) Provider() string {
	return ProviderMidtrans
}

func (m *Midtrans) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if m.serverKey == "" {
		return nil, ErrMisconfigured
	}

	if !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s %s has a fractional part", ErrUnsupportedAmount, req.Amount.String(), req.Currency)
	}

	gross := req.Amount.IntPart()
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.Receipt,
			GrossAmt: gross,
		},
	}

	resp, midtransErr := m.snap.CreateTransaction(snapReq)
	if midtransErr != nil {
		m.log.Errorf("create transaction %s: %s", req.Receipt, midtransErr.Error())
		return nil, fmt.Errorf("%w: %s", ErrGateway, midtransErr.Error())
	}

	m.log.Infof("created snap transaction %s", req.Receipt)

	return &Order{
		ID:          req.Receipt,
		Amount:      gross,
		Currency:    req.Currency,
		PublicKey:   m.clientKey,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (m *Midtrans) Verify(ctx context.Context, c Confirmation) error {
	if m.serverKey == "" {
		return ErrMisconfigured
	}
	if c.OrderID == "" || c.PaymentID == "" {
		return ErrVerificationFailed
	}

	status, midtransErr := m.core.CheckTransaction(c.OrderID)
	if midtransErr != nil {
		m.log.Errorf("check transaction %s: %s", c.OrderID, midtransErr.Error())
		return fmt.Errorf("%w: %s", ErrGateway, midtransErr.Error())
	}
	if status == nil || status.TransactionID != c.PaymentID {
		return ErrVerificationFailed
	}

	switch status.TransactionStatus {
	case "settlement":
		return nil
	case "capture":
		if status.FraudStatus == "accept" {
			return nil
		}
	}

	m.log.Warnf("transaction %s not settled: status=%s fraud=%s", c.OrderID, status.TransactionStatus, status.FraudStatus)
	return ErrVerificationFailed
}

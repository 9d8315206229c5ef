package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const ProviderRazorpay = "razorpay"

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type Razorpay struct {
	cfg    RazorpayConfig
	client *resty.Client
	log    *logrus.Entry
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func NewRazorpay(cfg RazorpayConfig, log *logrus.Entry) *Razorpay {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json")

	return &Razorpay{cfg: cfg, client: client, log: log}
}

func (r *Razorpay) Provider() string {
	return ProviderRazorpay
}

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if r.cfg.KeyID == "" || r.cfg.KeySecret == "" {
		return nil, ErrMisconfigured
	}

	body := razorpayOrderRequest{
		Amount:   calc.ToMinorUnits(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}

	var out razorpayOrder
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/v1/orders")
	if err != nil {
		r.log.Errorf("create order %s: %v", req.Receipt, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if resp.IsError() {
		description := gjson.GetBytes(resp.Body(), "error.description").String()
		if description == "" {
			description = resp.Status()
		}
		r.log.Errorf("create order %s: status %d: %s", req.Receipt, resp.StatusCode(), description)
		return nil, fmt.Errorf("%w: %s", ErrGateway, description)
	}

	if out.ID == "" {
		return nil, fmt.Errorf("%w: empty order id in response", ErrGateway)
	}

	r.log.Infof("created order %s for receipt %s (%d %s)", out.ID, req.Receipt, out.Amount, out.Currency)

	return &Order{
		ID:        out.ID,
		Amount:    out.Amount,
		Currency:  out.Currency,
		PublicKey: r.cfg.KeyID,
	}, nil
}

func (r *Razorpay) Verify(ctx context.Context, c Confirmation) error {
	if r.cfg.KeySecret == "" {
		return ErrMisconfigured
	}
	if !VerifySignature(c.OrderID, c.PaymentID, c.Signature, r.cfg.KeySecret) {
		r.log.Warnf("signature mismatch for order %s payment %s", c.OrderID, c.PaymentID)
		return ErrVerificationFailed
	}
	return nil
}

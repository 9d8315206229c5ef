package configs

import (
	"fmt"
	"time"

	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/sirupsen/logrus"
)

// NewPaymentGateway builds the provider selected by PAYMENT_PROVIDER. Missing
// credentials are reported when the gateway is used, not here.
func NewPaymentGateway(env ENV, log *logrus.Entry) (gateway.Gateway, error) {
	switch env.PaymentProvider {
	case gateway.ProviderRazorpay, "":
		return gateway.NewRazorpay(gateway.RazorpayConfig{
			KeyID:     env.RazorpayKeyID,
			KeySecret: env.RazorpayKeySecret,
			BaseURL:   env.RazorpayBaseURL,
			Timeout:   10 * time.Second,
		}, log), nil
	case gateway.ProviderMidtrans:
		return gateway.NewMidtrans(env.MidtransServerKey, env.MidtransClientKey, env.IsProduction(), log), nil
	}
	return nil, fmt.Errorf("unsupported PAYMENT_PROVIDER %q", env.PaymentProvider)
}

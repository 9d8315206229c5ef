package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindAuthenticationRequired, http.StatusUnauthorized},
		{KindAuthorizationDenied, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidationFailed, http.StatusBadRequest},
		{KindPaymentVerificationFailed, http.StatusBadRequest},
		{KindGatewayMisconfigured, http.StatusInternalServerError},
		{KindGateway, http.StatusInternalServerError},
		{KindPersistence, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.kind.String(), func(t *testing.T) {
			require.Equal(t, test.status, test.kind.Status())
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Validation("cart is empty"))
	require.Equal(t, KindValidationFailed, KindOf(err))
	require.Equal(t, "cart is empty", PublicMessage(err))

	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
}

func TestPersistenceHidesCause(t *testing.T) {
	err := Persistence(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	require.Equal(t, KindPersistence, KindOf(err))
	require.Equal(t, "internal server error", PublicMessage(err))
	require.ErrorContains(t, err, "connection refused")
}

func TestMisconfiguredMessage(t *testing.T) {
	err := Wrap(KindGatewayMisconfigured, "razorpay keys missing", errors.New("empty key"))
	require.Equal(t, "payment gateway is not configured", PublicMessage(err))
}

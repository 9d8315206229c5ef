package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Rakhulsr/kidstore/app/db/testdb"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testKeySecret = "whsec_test_secret"

type fixture struct {
	ctx      context.Context
	db       *gorm.DB
	repos    Repositories
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	admin    *AdminService
	catalog  *CatalogService
	account  *AccountService
}

// fakeRazorpay answers POST /v1/orders with sequential order ids.
func fakeRazorpay(t *testing.T) *httptest.Server {
	t.Helper()
	var seq int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       fmt.Sprintf("order_T%d", atomic.AddInt64(&seq, 1)),
			"amount":   body.Amount,
			"currency": body.Currency,
			"receipt":  body.Receipt,
			"status":   "created",
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	repos := NewRepositories(db)
	log := logger.Discard()
	server := fakeRazorpay(t)
	gw := gateway.NewRazorpay(gateway.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: testKeySecret,
		BaseURL:   server.URL,
	}, log)

	return &fixture{
		ctx:      context.Background(),
		db:       db,
		repos:    repos,
		cart:     NewCartService(repos, log),
		checkout: NewCheckoutService(db, repos, gw, calc.DefaultPricingRules(), "INR", nil, log),
		orders:   NewOrderService(db, repos, log),
		admin:    NewAdminService(repos, log),
		catalog:  NewCatalogService(repos, log),
		account:  NewAccountService(repos, log),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test " + email, Email: email}
	require.NoError(t, f.repos.Users.Create(f.ctx, u, "password123"))
	return u
}

func (f *fixture) address(t *testing.T, userID string) *models.Address {
	t.Helper()
	a := &models.Address{
		UserID:  userID,
		Name:    "Asha Rao",
		Phone:   "9876543210",
		Line1:   "12 MG Road",
		Line2:   "Flat 4B",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
	require.NoError(t, f.repos.Addresses.CreateAddress(f.ctx, a))
	return a
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Slug:     fmt.Sprintf("%s-%d", name, price),
		Price:    decimal.NewFromInt(price),
		Quantity: stock,
		IsActive: true,
		Images: []models.ProductImage{
			{URL: "https://cdn.example.com/" + name + "-2.jpg", Position: 2},
			{URL: "https://cdn.example.com/" + name + "-1.jpg", Position: 1},
		},
	}
	require.NoError(t, f.repos.Products.Create(f.ctx, p, nil))
	return p
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, "id = ?", productID).Error)
	return p.Quantity
}

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Rakhulsr/kidstore/app/db/testdb"
	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/Rakhulsr/kidstore/app/utils/renderer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const userHeader = "X-Test-User"

// headerSessions trusts a request header instead of a signed cookie.
type headerSessions struct {
	last string
}

func (s *headerSessions) GetUserID(r *http.Request) string { return r.Header.Get(userHeader) }

func (s *headerSessions) SetUserID(w http.ResponseWriter, r *http.Request, userID string) error {
	s.last = userID
	return nil
}

func (s *headerSessions) ClearSession(w http.ResponseWriter, r *http.Request) error {
	s.last = ""
	return nil
}

// stubGateway accepts the signature "valid" and nothing else.
type stubGateway struct {
	seq int64
}

func (g *stubGateway) Provider() string { return gateway.ProviderRazorpay }

func (g *stubGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	return &gateway.Order{
		ID:        fmt.Sprintf("order_S%d", atomic.AddInt64(&g.seq, 1)),
		Amount:    req.Amount.Shift(2).IntPart(),
		Currency:  req.Currency,
		PublicKey: "rzp_test_key",
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, c gateway.Confirmation) error {
	if c.Signature != "valid" {
		return gateway.ErrVerificationFailed
	}
	return nil
}

type server struct {
	t        *testing.T
	db       *gorm.DB
	router   http.Handler
	sessions *headerSessions
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.New(t)
	sessions := &headerSessions{}
	router := NewRouter(Dependencies{
		DB:       db,
		Gateway:  &stubGateway{},
		Pricing:  calc.DefaultPricingRules(),
		Currency: "INR",
		Sessions: sessions,
		Render:   renderer.New("../../templates", false),
		Logs:     DiscardLoggers(),
	})
	return &server{t: t, db: db, router: router, sessions: sessions}
}

func (s *server) do(method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (s *server) user(email string, role models.Role) *models.User {
	s.t.Helper()
	u := &models.User{Name: "User " + email, Email: email, Role: role}
	require.NoError(s.t, repositories.NewUserRepository(s.db).Create(context.Background(), u, "password123"))
	return u
}

func (s *server) address(userID string) *models.Address {
	s.t.Helper()
	a := &models.Address{
		UserID:  userID,
		Name:    "Asha Rao",
		Phone:   "9876543210",
		Line1:   "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Country: "India",
	}
	require.NoError(s.t, repositories.NewGormAddressRepository(s.db).CreateAddress(context.Background(), a))
	return a
}

func (s *server) product(name string, price int64, stock int) *models.Product {
	s.t.Helper()
	p := &models.Product{
		Name:     name,
		Slug:     strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Price:    decimal.NewFromInt(price),
		Quantity: stock,
		IsActive: true,
	}
	require.NoError(s.t, repositories.NewProductRepository(s.db).Create(context.Background(), p, nil))
	return p
}

// codOrder fills the cart and places a COD order for userID.
func (s *server) codOrder(userID string, product *models.Product, qty int) models.Order {
	s.t.Helper()
	address := s.address(userID)

	rec := s.do(http.MethodPost, "/api/cart", userID, map[string]interface{}{"productId": product.ID, "quantity": qty})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/orders", userID, map[string]interface{}{
		"shippingAddressId": address.ID,
		"paymentMethod":     "COD",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	decode(s.t, rec, &order)
	return order
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/cart", "/api/orders", "/api/addresses", "/api/checkout/summary", "/api/auth/me"} {
		rec := s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(http.MethodGet, "/api/cart", "no-such-user", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	s := newServer(t)
	customer := s.user("asha@example.com", models.RoleCustomer)

	rec := s.do(http.MethodPut, "/api/orders", customer.ID, map[string]interface{}{"id": "x", "status": "SHIPPED"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/dashboard", customer.ID, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCODCheckoutOverHTTP(t *testing.T) {
	s := newServer(t)
	customer := s.user("asha@example.com", models.RoleCustomer)
	product := s.product("Wooden Train", 600, 10)

	rec := s.do(http.MethodPost, "/api/cart", customer.ID, map[string]interface{}{"productId": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/checkout/summary?paymentMethod=COD", customer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Breakdown struct {
			Total decimal.Decimal `json:"total"`
		} `json:"breakdown"`
	}
	decode(t, rec, &summary)
	require.True(t, decimal.NewFromInt(1466).Equal(summary.Breakdown.Total), summary.Breakdown.Total.String())

	address := s.address(customer.ID)
	rec = s.do(http.MethodPost, "/api/orders", customer.ID, map[string]interface{}{
		"shippingAddressId": address.ID,
		"paymentMethod":     "COD",
		"items":             []map[string]interface{}{{"productId": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order models.Order
	decode(t, rec, &order)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.True(t, decimal.NewFromInt(1466).Equal(order.Total))
	require.Len(t, order.Items, 1)

	rec = s.do(http.MethodGet, "/api/cart", customer.ID, nil)
	var cart struct {
		Lines []json.RawMessage `json:"lines"`
	}
	decode(t, rec, &cart)
	require.Empty(t, cart.Lines)
}

func TestCreateOrderValidation(t *testing.T) {
	s := newServer(t)
	customer := s.user("asha@example.com", models.RoleCustomer)

	rec := s.do(http.MethodPost, "/api/orders", customer.ID, map[string]interface{}{"paymentMethod": "COD"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	require.Equal(t, "validation failed", body.Error)
	require.Contains(t, body.Fields, "shippingAddressId")

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	req.Header.Set(userHeader, customer.ID)
	res := httptest.NewRecorder()
	s.router.ServeHTTP(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestPrepaidCheckoutOverHTTP(t *testing.T) {
	s := newServer(t)
	customer := s.user("asha@example.com", models.RoleCustomer)
	product := s.product("Rattle", 600, 10)
	address := s.address(customer.ID)

	rec := s.do(http.MethodPost, "/api/cart", customer.ID, map[string]interface{}{"productId": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/payments/create-order", customer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payment struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
	}
	decode(t, rec, &payment)
	require.Equal(t, int64(141600), payment.Amount)

	verify := map[string]interface{}{
		"razorpay_order_id":   payment.OrderID,
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "forged",
		"shippingAddressId":   address.ID,
	}
	rec = s.do(http.MethodPost, "/api/payments/verify", customer.ID, verify)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	verify["razorpay_signature"] = "valid"
	rec = s.do(http.MethodPost, "/api/payments/verify", customer.ID, verify)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Success bool         `json:"success"`
		Order   models.Order `json:"order"`
	}
	decode(t, rec, &result)
	require.True(t, result.Success)
	require.Equal(t, models.PaymentStatusPaid, result.Order.PaymentStatus)
	require.Equal(t, models.OrderStatusConfirmed, result.Order.Status)

	rec = s.do(http.MethodPost, "/api/payments/verify", customer.ID, verify)
	require.Equal(t, http.StatusOK, rec.Code)
	var again struct {
		Order models.Order `json:"order"`
	}
	decode(t, rec, &again)
	require.Equal(t, result.Order.ID, again.Order.ID)
}

func TestOrderVisibility(t *testing.T) {
	s := newServer(t)
	owner := s.user("owner@example.com", models.RoleCustomer)
	stranger := s.user("stranger@example.com", models.RoleCustomer)
	admin := s.user("admin@example.com", models.RoleAdmin)
	order := s.codOrder(owner.ID, s.product("Blocks", 400, 5), 1)

	rec := s.do(http.MethodGet, "/api/orders?id="+order.ID, stranger.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders?id="+order.ID, owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders?id="+order.ID, admin.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders", stranger.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &page)
	require.Zero(t, page.Total)

	rec = s.do(http.MethodGet, "/orders/"+order.OrderNumber, stranger.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/orders/"+order.OrderNumber, owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), order.OrderNumber)
	require.Contains(t, rec.Body.String(), "₹")
}

func TestAdminUpdatesOrder(t *testing.T) {
	s := newServer(t)
	owner := s.user("owner@example.com", models.RoleCustomer)
	admin := s.user("admin@example.com", models.RoleAdmin)
	order := s.codOrder(owner.ID, s.product("Blocks", 400, 5), 1)

	rec := s.do(http.MethodPut, "/api/orders", admin.ID, map[string]interface{}{"id": order.ID, "status": "DELIVERED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/orders", admin.ID, map[string]interface{}{
		"id":             order.ID,
		"status":         "PROCESSING",
		"trackingNumber": " AWB123 ",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Order
	decode(t, rec, &updated)
	require.Equal(t, models.OrderStatusProcessing, updated.Status)
	require.Equal(t, "AWB123", updated.TrackingNumber)

	rec = s.do(http.MethodPut, "/api/orders", admin.ID, map[string]interface{}{"id": order.ID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminDashboardAndExport(t *testing.T) {
	s := newServer(t)
	owner := s.user("owner@example.com", models.RoleCustomer)
	admin := s.user("admin@example.com", models.RoleAdmin)
	s.codOrder(owner.ID, s.product("Blocks", 400, 5), 1)

	rec := s.do(http.MethodGet, "/api/admin/dashboard", admin.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard struct {
		TotalOrders  int64             `json:"totalOrders"`
		RecentOrders []json.RawMessage `json:"recentOrders"`
	}
	decode(t, rec, &dashboard)
	require.Equal(t, int64(1), dashboard.TotalOrders)
	require.Len(t, dashboard.RecentOrders, 1)

	rec = s.do(http.MethodGet, "/admin/dashboard", admin.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Recent orders")

	rec = s.do(http.MethodGet, "/api/admin/orders/export?status=PENDING", admin.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, xlsxType, rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = s.do(http.MethodGet, "/api/admin/orders/export?from=yesterday", admin.ID, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Asha Rao",
		"email":    "asha@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user models.User
	decode(t, rec, &user)
	require.Equal(t, user.ID, s.sessions.last)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Asha Again",
		"email":    "asha@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"email": "asha@example.com", "password": "wrong-pass"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]interface{}{"email": "asha@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/auth/me", user.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User          models.User `json:"user"`
		CartItemCount int         `json:"cartItemCount"`
	}
	decode(t, rec, &me)
	require.Equal(t, "asha@example.com", me.User.Email)
	require.Zero(t, me.CartItemCount)

	rec = s.do(http.MethodPost, "/api/auth/logout", user.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, s.sessions.last)
}

func TestCatalogAndAdminProducts(t *testing.T) {
	s := newServer(t)
	admin := s.user("admin@example.com", models.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/admin/categories", admin.ID, map[string]interface{}{"name": "Soft Toys"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category models.Category
	decode(t, rec, &category)
	require.Equal(t, "soft-toys", category.Slug)

	rec = s.do(http.MethodPost, "/api/admin/products", admin.ID, map[string]interface{}{
		"name":        "Teddy Bear",
		"price":       "499",
		"quantity":    3,
		"categoryIds": []string{category.ID},
		"images":      []map[string]interface{}{{"url": "https://cdn.example.com/teddy.jpg"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product models.Product
	decode(t, rec, &product)

	rec = s.do(http.MethodGet, "/api/products?category=soft-toys", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, rec, &page)
	require.Equal(t, int64(1), page.Total)

	rec = s.do(http.MethodPatch, "/api/admin/products/"+product.ID+"/active", admin.ID, map[string]interface{}{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/products/"+product.Slug, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddressesAndWishlist(t *testing.T) {
	s := newServer(t)
	customer := s.user("asha@example.com", models.RoleCustomer)
	stranger := s.user("ravi@example.com", models.RoleCustomer)
	product := s.product("Story Book", 299, 4)

	body := map[string]interface{}{
		"name":    "Asha Rao",
		"phone":   "9876543210",
		"line1":   "12 MG Road",
		"city":    "Bengaluru",
		"state":   "Karnataka",
		"pincode": "560001",
	}
	rec := s.do(http.MethodPost, "/api/addresses", customer.ID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var address models.Address
	decode(t, rec, &address)
	require.True(t, address.IsDefault)

	body["pincode"] = "56A001"
	rec = s.do(http.MethodPost, "/api/addresses", customer.ID, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/addresses/"+address.ID, stranger.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/wishlist", customer.ID, map[string]interface{}{"productId": product.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/wishlist", customer.ID, map[string]interface{}{"productId": product.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/wishlist", customer.ID, nil)
	var items []models.WishlistItem
	decode(t, rec, &items)
	require.Len(t, items, 1)

	rec = s.do(http.MethodDelete, "/api/wishlist/"+product.ID, customer.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/api/addresses/"+address.ID, customer.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

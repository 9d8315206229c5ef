package routes

import (
	"net/http"
	"time"

	"github.com/Rakhulsr/kidstore/app/handlers"
	"github.com/Rakhulsr/kidstore/app/handlers/admin"
	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/middlewares"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/calc"
	"github.com/Rakhulsr/kidstore/app/utils/logger"
	"github.com/Rakhulsr/kidstore/app/utils/sessions"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
	"gorm.io/gorm"
)

// Loggers holds one logger per component so log lines carry their origin.
type Loggers struct {
	HTTP     *logrus.Entry
	Checkout *logrus.Entry
	Admin    *logrus.Entry
	Store    *logrus.Entry
}

func NewLoggers(level string) Loggers {
	return Loggers{
		HTTP:     logger.NewLogger(level, logger.NewHTTPLogHook()),
		Checkout: logger.NewLogger(level, logger.NewCheckoutLogHook()),
		Admin:    logger.NewLogger(level, logger.NewAdminLogHook()),
		Store:    logger.NewLogger(level, logger.NewMainLogHook()),
	}
}

func DiscardLoggers() Loggers {
	return Loggers{
		HTTP:     logger.Discard(),
		Checkout: logger.Discard(),
		Admin:    logger.Discard(),
		Store:    logger.Discard(),
	}
}

type Dependencies struct {
	DB       *gorm.DB
	Gateway  gateway.Gateway
	Pricing  calc.PricingRules
	Currency string
	Sessions sessions.SessionStore
	Render   *render.Render

	// CSRFKey may be nil, which turns CSRF checks off.
	CSRFKey        []byte
	SecureCookies  bool
	RequestTimeout time.Duration
	StaticDir      string

	Numbers *services.OrderNumberGenerator
	Logs    Loggers
}

func NewRouter(deps Dependencies) *mux.Router {
	rnd := deps.Render
	validate := helpers.NewValidator()
	repos := services.NewRepositories(deps.DB)

	cartSvc := services.NewCartService(repos, deps.Logs.Store)
	catalogSvc := services.NewCatalogService(repos, deps.Logs.Store)
	accountSvc := services.NewAccountService(repos, deps.Logs.Store)
	orderSvc := services.NewOrderService(deps.DB, repos, deps.Logs.Checkout)
	checkoutSvc := services.NewCheckoutService(deps.DB, repos, deps.Gateway, deps.Pricing, deps.Currency, deps.Numbers, deps.Logs.Checkout)
	adminSvc := services.NewAdminService(repos, deps.Logs.Admin)
	dashboardSvc := services.NewDashboardService(repos, deps.Logs.Admin)

	productHandler := handlers.NewProductHandler(rnd, catalogSvc, deps.Logs.HTTP)
	authHandler := handlers.NewAuthHandler(rnd, accountSvc, cartSvc, deps.Sessions, validate, deps.Logs.HTTP)
	cartHandler := handlers.NewCartHandler(rnd, cartSvc, validate, deps.Logs.HTTP)
	addressHandler := handlers.NewAddressHandler(rnd, accountSvc, validate, deps.Logs.HTTP)
	wishlistHandler := handlers.NewWishlistHandler(rnd, accountSvc, validate, deps.Logs.HTTP)
	checkoutHandler := handlers.NewCheckoutHandler(rnd, checkoutSvc, validate, deps.Logs.Checkout)
	orderHandler := handlers.NewOrderHandler(rnd, orderSvc, validate, deps.Logs.Checkout)
	adminHandler := admin.NewAdminHandler(rnd, adminSvc, dashboardSvc, validate, deps.Logs.Admin)

	requireAuth := middlewares.RequireAuth(rnd)
	requireAdmin := middlewares.RequireAdmin(rnd, deps.Logs.HTTP)
	authed := func(h http.HandlerFunc) http.Handler { return requireAuth(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return requireAdmin(h) }

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	router := mux.NewRouter()
	router.Use(
		middlewares.RequestLogger(deps.Logs.HTTP),
		middlewares.RequestTimeout(timeout),
		middlewares.SessionContext(deps.Sessions, repos.Users, deps.Logs.HTTP),
		middlewares.CSRF(deps.CSRFKey, deps.SecureCookies, rnd),
	)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rnd.JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	if deps.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	router.HandleFunc("/", productHandler.Home).Methods(http.MethodGet)
	router.Handle("/orders/{orderNumber}", authed(orderHandler.Confirmation)).Methods(http.MethodGet)
	router.Handle("/admin/dashboard", adminOnly(adminHandler.GetDashboard)).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", productHandler.Products).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}", productHandler.ProductDetail).Methods(http.MethodGet)
	api.HandleFunc("/categories", productHandler.Categories).Methods(http.MethodGet)
	api.HandleFunc("/home", productHandler.HomeSections).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.Handle("/auth/me", authed(authHandler.Me)).Methods(http.MethodGet)

	api.Handle("/cart", authed(cartHandler.GetCart)).Methods(http.MethodGet)
	api.Handle("/cart", authed(cartHandler.AddToCart)).Methods(http.MethodPost)
	api.Handle("/cart", authed(cartHandler.UpdateCart)).Methods(http.MethodPut)
	api.Handle("/cart", authed(cartHandler.RemoveFromCart)).Methods(http.MethodDelete)

	api.Handle("/addresses", authed(addressHandler.ListAddresses)).Methods(http.MethodGet)
	api.Handle("/addresses", authed(addressHandler.AddAddress)).Methods(http.MethodPost)
	api.Handle("/addresses/{id}", authed(addressHandler.UpdateAddress)).Methods(http.MethodPut)
	api.Handle("/addresses/{id}", authed(addressHandler.DeleteAddress)).Methods(http.MethodDelete)
	api.Handle("/addresses/{id}/default", authed(addressHandler.SetDefaultAddress)).Methods(http.MethodPost)

	api.Handle("/wishlist", authed(wishlistHandler.GetWishlist)).Methods(http.MethodGet)
	api.Handle("/wishlist", authed(wishlistHandler.AddToWishlist)).Methods(http.MethodPost)
	api.Handle("/wishlist/{productId}", authed(wishlistHandler.RemoveFromWishlist)).Methods(http.MethodDelete)

	api.Handle("/checkout/summary", authed(checkoutHandler.Summary)).Methods(http.MethodGet)
	api.Handle("/orders", authed(checkoutHandler.CreateOrder)).Methods(http.MethodPost)
	api.Handle("/orders", authed(orderHandler.GetOrders)).Methods(http.MethodGet)
	api.Handle("/orders", adminOnly(orderHandler.UpdateOrder)).Methods(http.MethodPut)
	api.Handle("/payments/create-order", authed(checkoutHandler.CreatePaymentOrder)).Methods(http.MethodPost)
	api.Handle("/payments/verify", authed(checkoutHandler.VerifyPayment)).Methods(http.MethodPost)

	adm := api.PathPrefix("/admin").Subrouter()
	adm.Use(requireAdmin)

	adm.HandleFunc("/dashboard", adminHandler.GetDashboardData).Methods(http.MethodGet)
	adm.HandleFunc("/orders/export", adminHandler.ExportOrders).Methods(http.MethodGet)

	adm.HandleFunc("/categories", adminHandler.ListCategories).Methods(http.MethodGet)
	adm.HandleFunc("/categories", adminHandler.CreateCategory).Methods(http.MethodPost)
	adm.HandleFunc("/categories/{id}", adminHandler.UpdateCategory).Methods(http.MethodPut)
	adm.HandleFunc("/categories/{id}", adminHandler.DeleteCategory).Methods(http.MethodDelete)

	adm.HandleFunc("/products", adminHandler.ListProducts).Methods(http.MethodGet)
	adm.HandleFunc("/products", adminHandler.CreateProduct).Methods(http.MethodPost)
	adm.HandleFunc("/products/{id}", adminHandler.GetProduct).Methods(http.MethodGet)
	adm.HandleFunc("/products/{id}", adminHandler.UpdateProduct).Methods(http.MethodPut)
	adm.HandleFunc("/products/{id}", adminHandler.DeleteProduct).Methods(http.MethodDelete)
	adm.HandleFunc("/products/{id}/active", adminHandler.SetProductActive).Methods(http.MethodPatch)

	adm.HandleFunc("/home-sections", adminHandler.ListHomeSections).Methods(http.MethodGet)
	adm.HandleFunc("/home-sections", adminHandler.CreateHomeSection).Methods(http.MethodPost)
	adm.HandleFunc("/home-sections/{id}", adminHandler.UpdateHomeSection).Methods(http.MethodPut)
	adm.HandleFunc("/home-sections/{id}", adminHandler.DeleteHomeSection).Methods(http.MethodDelete)

	return router
}

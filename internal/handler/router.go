package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"orderdesk/internal/metrics"
	"orderdesk/internal/middleware"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Webhooks  *WebhookHandler
	Orders    *OrderHandler
	Customers *CustomerHandler
	Exports   *ExportHandler
	Health    *HealthHandler
}

// RouterConfig holds the cross-cutting dependencies of the router
type RouterConfig struct {
	Admin   middleware.Credentials
	Viewer  middleware.Credentials
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewRouter wires every route. Webhooks, health and metrics are public; the
// dashboard API needs admin credentials and the viewer listing accepts either.
func NewRouter(h Handlers, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
	)

	router.HandleFunc("/webhook/shopify", h.Webhooks.Shopify).Methods(http.MethodPost)
	router.HandleFunc("/webhook/shiprocket", h.Webhooks.Shiprocket).Methods(http.MethodPost)
	router.HandleFunc("/health", h.Health.HandleHealth).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.BasicAuth("Admin Login", cfg.Admin))

	api.HandleFunc("/orders", h.Orders.List).Methods(http.MethodGet)
	api.HandleFunc("/orders/status", h.Orders.UpdateStatus).Methods(http.MethodPost)
	api.HandleFunc("/orders/details", h.Orders.UpdateDetails).Methods(http.MethodPost)
	api.HandleFunc("/orders/bulk-delete", h.Orders.BulkDelete).Methods(http.MethodPost)
	api.HandleFunc("/orders/clear", h.Orders.Clear).Methods(http.MethodPost)
	api.HandleFunc("/reports/daily", h.Orders.DailySummary).Methods(http.MethodGet)

	api.HandleFunc("/customers", h.Customers.List).Methods(http.MethodGet)
	api.HandleFunc("/customers/{phone}", h.Customers.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{phone}/orders", h.Customers.Orders).Methods(http.MethodGet)
	api.HandleFunc("/customers/{phone}/notes", h.Customers.AddNote).Methods(http.MethodPost)

	api.HandleFunc("/export/{format}", h.Exports.Export).Methods(http.MethodGet)

	viewer := router.PathPrefix("/viewer").Subrouter()
	viewer.Use(middleware.BasicAuth("Viewer Login", cfg.Viewer, cfg.Admin))
	viewer.HandleFunc("/orders", h.Orders.Viewer).Methods(http.MethodGet)

	return router
}

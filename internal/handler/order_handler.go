package handler

import (
	"net/http"

	"orderdesk/internal/models"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

// OrderHandler handles the operator order dashboard
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrdersResponse is one dashboard view
type ListOrdersResponse struct {
	Status models.OrderStatus          `json:"status"`
	Count  int                         `json:"count"`
	Orders []*models.OrderWithCustomer `json:"orders"`
}

// orderFilters reads the dashboard filters shared by the operator and viewer listings
func orderFilters(r *http.Request, status models.OrderStatus) repository.OrderFilters {
	query := r.URL.Query()
	return repository.OrderFilters{
		Status:    status,
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		Search:    query.Get("search"),
		Payment:   query.Get("payment"),
		Delivery:  query.Get("delivery"),
		State:     query.Get("state"),
	}
}

// List handles GET /api/orders?status=Pending
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Known() {
		WriteValidationError(w, "invalid status: must be one of Pending, Confirmed, Cancelled, Call Again")
		return
	}

	h.list(w, r, status)
}

// Viewer handles GET /viewer/orders, the read-only listing of confirmed orders
func (h *OrderHandler) Viewer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.OrderStatusConfirmed)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, status models.OrderStatus) {
	orders, err := h.orderService.ListOrders(r.Context(), orderFilters(r, status))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, ListOrdersResponse{Status: status, Count: len(orders), Orders: orders})
}

// UpdateStatus handles POST /api/orders/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), &req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, map[string]string{"status": "success"})
}

// UpdateDetails handles POST /api/orders/details
func (h *OrderHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateDetailsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.orderService.UpdateDetails(r.Context(), &req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, map[string]string{"status": "success"})
}

// DeleteResponse reports how many orders were removed
type DeleteResponse struct {
	Status  string `json:"status"`
	Deleted int64  `json:"deleted"`
}

// BulkDelete handles POST /api/orders/bulk-delete
func (h *OrderHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req service.BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deleted, err := h.orderService.BulkDelete(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, DeleteResponse{Status: "success", Deleted: deleted})
}

// Clear handles POST /api/orders/clear?view=Confirmed
func (h *OrderHandler) Clear(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("view"))

	deleted, err := h.orderService.ClearStatus(r.Context(), status)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, DeleteResponse{Status: "success", Deleted: deleted})
}

// DailySummary handles GET /api/reports/daily
func (h *OrderHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orderService.DailySummary(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, map[string]interface{}{"days": summary})
}

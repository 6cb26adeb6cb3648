package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"orderdesk/internal/models"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

// CustomerHandler handles customer profile requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

var validCustomerFilters = map[string]bool{
	repository.CustomerFilterRepeat:   true,
	repository.CustomerFilterVIP:      true,
	repository.CustomerFilterHighRisk: true,
	repository.CustomerFilterNew:      true,
}

// List handles GET /api/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := repository.CustomerFilters{
		Search:    query.Get("search"),
		Filter:    query.Get("filter"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("order"),
	}
	if filters.Filter != "" && !validCustomerFilters[filters.Filter] {
		WriteValidationError(w, "invalid filter: must be one of repeat, vip, high_risk, new")
		return
	}

	list, err := h.customerService.ListCustomers(r.Context(), filters)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, list)
}

// Get handles GET /api/customers/{phone}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.GetCustomer(r.Context(), mux.Vars(r)["phone"])
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, customer)
}

// CustomerOrdersResponse lists a customer's order history
type CustomerOrdersResponse struct {
	Phone  string          `json:"phone"`
	Orders []*models.Order `json:"orders"`
}

// Orders handles GET /api/customers/{phone}/orders
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	orders, err := h.customerService.GetCustomerOrders(r.Context(), phone)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, CustomerOrdersResponse{Phone: phone, Orders: orders})
}

// AddNote handles POST /api/customers/{phone}/notes
func (h *CustomerHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req service.AddNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.customerService.AddNote(r.Context(), mux.Vars(r)["phone"], &req); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	WriteOK(w, map[string]string{"status": "success"})
}

package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"orderdesk/internal/export"
	"orderdesk/internal/logger"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

// ExportHandler serves order downloads
type ExportHandler struct {
	orderService *service.OrderService
}

// NewExportHandler creates a new export handler
func NewExportHandler(orderService *service.OrderService) *ExportHandler {
	return &ExportHandler{orderService: orderService}
}

// Export handles GET /api/export/{format}
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		WriteValidationError(w, "format must be one of csv, xlsx, pdf")
		return
	}

	query := r.URL.Query()
	filters := repository.ExportFilters{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		Status:    query.Get("status"),
		Delivery:  query.Get("delivery_type"),
	}

	orders, err := h.orderService.ExportOrders(r.Context(), filters)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	report := &export.Report{
		Orders:    orders,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
		Status:    filters.Status,
		Delivery:  filters.Delivery,
	}

	// Render fully before writing headers so a failure still yields a JSON error
	var buf bytes.Buffer
	if err := export.Write(&buf, format, report); err != nil {
		logger.FromContext(r.Context(), nil).Error("Export failed", zap.String("format", string(format)), zap.Error(err))
		WriteInternalError(w)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

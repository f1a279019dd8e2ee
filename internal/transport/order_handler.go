package transport

import (
	"encoding/json"
	"net/http"

	"product-catalog/internal/apierror"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderItemRequest is a requested order line. Quantity stays a float so the
// integer check happens in the placement flow rather than being masked by
// JSON decoding.
type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// OrderHandler handles HTTP requests for order placement and lookup
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
	redacted     bool
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger, redacted bool) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
		redacted:     redacted,
	}
}

// RegisterRoutes registers the order routes. The optional extra middleware
// (rate limiting) applies to placement only.
func (h *OrderHandler) RegisterRoutes(r chi.Router, extra ...func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			for _, mw := range extra {
				r.Use(mw)
			}
			r.Post("/", h.Place)
		})
		r.Get("/{id}", h.GetByID)
	})
}

// Place decodes the raw body keeping every top-level field name, so the
// placement flow can reject bodies carrying PII fields it must never store.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierror.Write(w, apierror.CodeValidationError, "invalid request body")
		return
	}

	fields := make([]string, 0, len(body))
	for k := range body {
		fields = append(fields, k)
	}

	var items []orderItemRequest
	if raw, ok := body["items"]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			apierror.Write(w, apierror.CodeValidationError, "items array required and must be non-empty")
			return
		}
	}

	lines := make([]service.RequestedLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, service.RequestedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		Lines:      lines,
		BodyFields: fields,
	})
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, apierror.CodeNotFound, "order not found")
		return
	}

	order, err := h.orderService.GetOrderByID(r.Context(), id)
	if err != nil {
		apierror.WriteError(w, err, h.redacted)
		return
	}

	RespondWithJSON(w, http.StatusOK, order)
}

// Package events publishes order lifecycle events. The publisher is injected
// into the order service so the protocol itself stays free of transport
// concerns; deployments without a broker use the nop implementation.
package events

import (
	"context"
	"encoding/json"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

const (
	EventOrderCreated = "OrderCreated"

	eventVersion = 1
	producerName = "catalog-api"
)

// Envelope wraps every event payload with routing and audit metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderItemPayload mirrors the order line snapshot on the wire.
type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderCreatedPayload is emitted once per successful placement.
type OrderCreatedPayload struct {
	OrderID string             `json:"order_id"`
	Items   []OrderItemPayload `json:"items"`
	Total   float64            `json:"total"`
	Status  string             `json:"status"`
}

// Publisher emits order events. Implementations must not block request
// handling; delivery is best-effort.
type Publisher interface {
	OrderCreated(ctx context.Context, order *domain.Order)
}

// NewOrderCreatedEnvelope builds the envelope for a placed order.
func NewOrderCreatedEnvelope(order *domain.Order) (Envelope, error) {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemPayload{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID: order.ID.String(),
		Items:   items,
		Total:   order.Total,
		Status:  order.Status,
	})
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:       uuid.New().String(),
		EventType:     EventOrderCreated,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: order.ID.String(),
		Payload:       payload,
	}, nil
}

// NopPublisher drops every event. Used when no broker is configured and in
// tests that do not care about events.
type NopPublisher struct{}

func (NopPublisher) OrderCreated(ctx context.Context, order *domain.Order) {}

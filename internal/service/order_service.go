package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"product-catalog/internal/apierror"
	"product-catalog/internal/domain"
	"product-catalog/internal/events"
	"product-catalog/internal/money"
	"product-catalog/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// piiDenylist holds request body fields that must never accompany an order.
// Orders are anonymous; the presence of any of these keys is a client error
// regardless of value. Keys are compared lowercase.
var piiDenylist = map[string]struct{}{
	"email":                {},
	"customeremail":        {},
	"customer_email":       {},
	"creditcard":           {},
	"credit_card":          {},
	"cardnumber":           {},
	"card_number":          {},
	"cvv":                  {},
	"ssn":                  {},
	"socialsecuritynumber": {},
	"phone":                {},
	"phonenumber":          {},
	"address":              {},
}

// PlaceOrderRequest is the decoded order submission. BodyFields carries every
// top-level key of the raw body so the PII guard can inspect fields the
// struct decoding would silently drop.
type PlaceOrderRequest struct {
	Lines      []RequestedLine
	BodyFields []string
}

// RequestedLine is one line as submitted. Quantity stays a float64 until
// validation so a fractional value can be rejected instead of truncated.
type RequestedLine struct {
	ProductID string
	Quantity  float64
}

// OrderService runs the order placement protocol and order lookups.
type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// PlaceOrder validates the request, reserves stock atomically and persists
// the order with an immutable price/name snapshot. The pass is single-shot:
// any failure rejects the whole order and no retries happen here.
func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	// Shape validation.
	if len(req.Lines) == 0 {
		return nil, apierror.New(apierror.CodeValidationError, "items array required and must be non-empty")
	}

	// PII guard: reject before touching any state.
	for _, field := range req.BodyFields {
		if _, denied := piiDenylist[strings.ToLower(field)]; denied {
			return nil, apierror.New(apierror.CodeValidationError,
				fmt.Sprintf("disallowed PII field %q in order body", field))
		}
	}

	// Parse ids. An unparseable id cannot reference any product.
	ids := make([]uuid.UUID, 0, len(req.Lines))
	for _, rl := range req.Lines {
		id, err := uuid.Parse(rl.ProductID)
		if err != nil {
			return nil, apierror.New(apierror.CodeNotFound,
				fmt.Sprintf("product %s not found", rl.ProductID))
		}
		ids = append(ids, id)
	}

	snapshots, err := s.productRepo.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock snapshots: %w", err)
	}

	// Per line, in request order: existence, then quantity, then an
	// optimistic stock pre-check. Nothing has been reserved yet.
	lines := make([]domain.OrderLine, 0, len(req.Lines))
	for i, rl := range req.Lines {
		id := ids[i]
		snap, ok := snapshots[id]
		if !ok {
			return nil, apierror.New(apierror.CodeNotFound,
				fmt.Sprintf("product %s not found", id))
		}
		// The upper bound keeps the float-to-int conversion below from
		// overflowing into a negative quantity.
		if rl.Quantity != math.Trunc(rl.Quantity) || rl.Quantity < 1 || rl.Quantity > math.MaxInt32 {
			return nil, apierror.New(apierror.CodeValidationError, "quantity must be integer >= 1")
		}
		qty := int(rl.Quantity)
		if qty > snap.Stock {
			return nil, apierror.New(apierror.CodeStockConflict,
				fmt.Sprintf("insufficient stock for product %s", id))
		}
		lines = append(lines, domain.OrderLine{ProductID: id, Quantity: qty})
	}

	// Atomic reservation. A matched count short of the line count means at
	// least one line lost a race since the pre-check; the reservation rolls
	// back and the order fails as a whole.
	matched, err := s.productRepo.ReserveAll(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}
	if matched != len(lines) {
		s.logger.Warn("Stock reservation lost a race",
			zap.Int("matched", matched),
			zap.Int("requested", len(lines)),
		)
		return nil, apierror.New(apierror.CodeStockConflict, "stock changed concurrently; order aborted")
	}

	// Snapshot from the pre-check fetch; never re-read live product state.
	items := make([]domain.OrderItem, 0, len(lines))
	var sum float64
	for _, line := range lines {
		snap := snapshots[line.ProductID]
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      snap.Name,
			Price:     snap.Price,
			Quantity:  line.Quantity,
		})
		sum += snap.Price * float64(line.Quantity)
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		Items:     items,
		Total:     money.Round(sum),
		Status:    domain.OrderStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total),
	)

	s.publisher.OrderCreated(ctx, order)

	return order, nil
}

// GetOrderByID returns the stored immutable snapshot verbatim.
func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, apierror.New(apierror.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

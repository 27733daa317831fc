package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/vendora/backend/internal/address"
	"github.com/vendora/backend/internal/domain"
)

// Store is the order persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, order *domain.Order, cartID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error)
	Transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, when time.Time) (bool, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, when time.Time) (bool, error)
	Accept(ctx context.Context, order *domain.Order, when time.Time) error
}

type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	VendorByUser(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error)
}

type Carts interface {
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
}

type Addresses interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error)
}

// Publisher sends one event to a single topic. Publishing is best
// effort everywhere in this package: a failure is logged, never
// returned to the caller, and never rolls back a committed write.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     Store
	catalog   Catalog
	carts     Carts
	addresses Addresses
	placed    Publisher
	status    Publisher
	logger    *slog.Logger
	now       func() time.Time

	placedCounter     metric.Int64Counter
	transitionCounter metric.Int64Counter
}

func NewService(store Store, catalog Catalog, carts Carts, addresses Addresses, placed, status Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("orders")
	placedCounter, err := meter.Int64Counter("orders.placed")
	if err != nil {
		logger.Warn("failed to create counter", "name", "orders.placed", "error", err)
	}
	transitionCounter, err := meter.Int64Counter("orders.transitions")
	if err != nil {
		logger.Warn("failed to create counter", "name", "orders.transitions", "error", err)
	}

	return &Service{
		store:             store,
		catalog:           catalog,
		carts:             carts,
		addresses:         addresses,
		placed:            placed,
		status:            status,
		logger:            logger,
		now:               time.Now,
		placedCounter:     placedCounter,
		transitionCounter: transitionCounter,
	}
}

type PlaceRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	DeliveryPhone   string `json:"delivery_phone"`
	PaymentMethod   string `json:"payment_method"`
}

// Place turns the customer's cart into an order. Every cart line is
// re-validated against live stock first, but nothing is deducted here:
// deduction happens when the vendor accepts. The order insert and the
// cart delete commit in one transaction.
func (s *Service) Place(ctx context.Context, customerID uuid.UUID, req PlaceRequest) (*domain.Order, error) {
	cart, err := s.carts.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, domain.NotFound("cart is empty")
	}

	payment := domain.PaymentCashOnDelivery
	if req.PaymentMethod != "" && req.PaymentMethod != string(domain.PaymentCashOnDelivery) {
		return nil, domain.Validation("unsupported payment method: %s", req.PaymentMethod)
	}

	for _, item := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsAvailable {
			return nil, domain.Validation("product no longer available: %s", item.ProductName)
		}
		if product.Stock < item.Quantity {
			return nil, domain.InsufficientStock("product out of stock: %s (requested %d, available %d)",
				product.Name, item.Quantity, product.Stock)
		}
	}

	deliveryAddress, deliveryPhone, err := s.resolveDelivery(ctx, customerID, req)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		VendorID:        cart.VendorID,
		Status:          domain.OrderStatusPlaced,
		PaymentMethod:   payment,
		TotalAmount:     cart.Total(),
		DeliveryAddress: deliveryAddress,
		DeliveryPhone:   deliveryPhone,
		CreatedAt:       s.now(),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	if err := s.store.Create(ctx, order, cart.ID); err != nil {
		return nil, err
	}

	s.count(ctx, s.placedCounter)
	s.publish(ctx, s.placed, order.ID.String(), domain.OrderPlacedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		VendorID:    order.VendorID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		Timestamp:   order.CreatedAt,
	})

	s.logger.Info("order placed",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"vendor_id", order.VendorID,
		"total_amount", order.TotalAmount,
	)

	return order, nil
}

// resolveDelivery picks the delivery destination: request fields win,
// then the customer's default address, then their first address.
func (s *Service) resolveDelivery(ctx context.Context, customerID uuid.UUID, req PlaceRequest) (string, string, error) {
	if req.DeliveryAddress != "" {
		return req.DeliveryAddress, req.DeliveryPhone, nil
	}

	saved, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return "", "", err
	}
	addr := address.Fallback(saved)
	if addr == nil {
		return "", "", domain.Validation("no delivery address provided and none on file")
	}

	phone := addr.Phone
	if req.DeliveryPhone != "" {
		phone = req.DeliveryPhone
	}
	return addr.Line(), phone, nil
}

// Accept flips PLACED -> ACCEPTED for the acting vendor's order,
// deducting stock for every line in the same transaction.
func (s *Service) Accept(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.vendorOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, domain.OrderStatusAccepted) {
		return nil, domain.InvalidState("order cannot be accepted")
	}

	if err := s.store.Accept(ctx, order, s.now()); err != nil {
		return nil, err
	}

	return s.finishTransition(ctx, orderID, "")
}

// Reject flips PLACED -> REJECTED and records the vendor's reason.
func (s *Service) Reject(ctx context.Context, userID, orderID uuid.UUID, reason string) (*domain.Order, error) {
	order, err := s.vendorOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, domain.OrderStatusRejected) {
		return nil, domain.InvalidState("order cannot be rejected")
	}

	ok, err := s.store.Reject(ctx, orderID, reason, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.InvalidState("order cannot be rejected")
	}

	return s.finishTransition(ctx, orderID, reason)
}

func (s *Service) MarkOutForDelivery(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return s.vendorTransition(ctx, userID, orderID, domain.OrderStatusOutForDelivery)
}

func (s *Service) MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return s.vendorTransition(ctx, userID, orderID, domain.OrderStatusDelivered)
}

func (s *Service) vendorTransition(ctx context.Context, userID, orderID uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	order, err := s.vendorOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, to) {
		return nil, domain.InvalidState("order cannot be %s", domain.TransitionVerb(to))
	}

	ok, err := s.store.Transition(ctx, orderID, order.Status, to, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.InvalidState("order cannot be %s", domain.TransitionVerb(to))
	}

	return s.finishTransition(ctx, orderID, "")
}

// Complete is the customer confirming a DELIVERED order.
func (s *Service) Complete(ctx context.Context, customerID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("order not found")
	}
	if order.CustomerID != customerID {
		return nil, domain.AccessDenied("order belongs to another customer")
	}
	if !domain.CanTransition(order.Status, domain.OrderStatusCompleted) {
		return nil, domain.InvalidState("order cannot be completed")
	}

	ok, err := s.store.Transition(ctx, orderID, order.Status, domain.OrderStatusCompleted, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.InvalidState("order cannot be completed")
	}

	return s.finishTransition(ctx, orderID, "")
}

// finishTransition reloads the order after a committed lifecycle write,
// bumps the transition counter and publishes the status event.
func (s *Service) finishTransition(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("order not found")
	}

	s.count(ctx, s.transitionCounter)
	s.publish(ctx, s.status, order.ID.String(), domain.OrderStatusChangedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		VendorID:   order.VendorID,
		Status:     order.Status,
		Reason:     reason,
		Timestamp:  s.now(),
	})

	s.logger.Info("order status changed",
		"order_id", order.ID,
		"status", order.Status,
	)

	return order, nil
}

// vendorOrder loads the order and checks the acting user owns the
// vendor it belongs to. A missing order is NotFound; an order owned by
// another vendor is AccessDenied, never NotFound.
func (s *Service) vendorOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	vendor, err := s.catalog.VendorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.NotFound("vendor profile not found")
	}

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("order not found")
	}
	if order.VendorID != vendor.ID {
		return nil, domain.AccessDenied("order belongs to another vendor")
	}

	return order, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error) {
	return s.store.ListByCustomer(ctx, customerID, status, limit, offset)
}

func (s *Service) ListVendorOrders(ctx context.Context, userID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error) {
	vendor, err := s.catalog.VendorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, domain.NotFound("vendor profile not found")
	}
	return s.store.ListByVendor(ctx, vendor.ID, status, limit, offset)
}

// Details returns the full order for its owning customer or owning
// vendor. Anyone else gets AccessDenied.
func (s *Service) Details(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NotFound("order not found")
	}

	if order.CustomerID == userID {
		return order, nil
	}

	vendor, err := s.catalog.VendorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if vendor != nil && vendor.ID == order.VendorID {
		return order, nil
	}

	return nil, domain.AccessDenied("order belongs to another user")
}

func (s *Service) publish(ctx context.Context, pub Publisher, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, event); err != nil {
		s.logger.Warn("failed to publish event", "key", key, "error", err)
	}
}

func (s *Service) count(ctx context.Context, counter metric.Int64Counter) {
	if counter != nil {
		counter.Add(ctx, 1)
	}
}

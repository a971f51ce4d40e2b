package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/pkg/utils"
)

type OrderItemInput struct {
	Product  string `json:"product"  binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput is the checkout body. Status and totalPrice sent by the
// client are ignored.
type CreateOrderInput struct {
	OrderItems       []OrderItemInput `json:"orderItems"       binding:"dive"`
	ShippingAddress1 string           `json:"shippingAddress1" binding:"omitempty,max=191"`
	ShippingAddress2 string           `json:"shippingAddress2" binding:"omitempty,max=191"`
	City             string           `json:"city"             binding:"omitempty,max=64"`
	Zip              string           `json:"zip"              binding:"omitempty,max=16"`
	Country          string           `json:"country"          binding:"omitempty,max=64"`
	Phone            string           `json:"phone"            binding:"omitempty,max=32"`
}

type OrderOptions struct {
	// Transactional writes items and order in one transaction.
	Transactional bool
	DefaultStatus string
}

type OrderService struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	tx       domain.Transactor
	opts     OrderOptions
	now      func() time.Time
	log      *zap.Logger
}

func NewOrderService(orders domain.OrderRepository, products domain.ProductRepository, tx domain.Transactor, opts OrderOptions, l *zap.Logger) *OrderService {
	if l == nil {
		l = zap.NewNop()
	}
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = domain.OrderStatusPending
	}
	return &OrderService{orders: orders, products: products, tx: tx, opts: opts, now: time.Now, log: l}
}

// Create prices every item at the product's current price and saves the
// order with the computed total.
func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*domain.Order, error) {
	ids := make([]string, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		if !utils.ValidID(it.Product) {
			return nil, domain.E(domain.KindInvalidInput, fmt.Sprintf("product %s not found", it.Product))
		}
		if it.Quantity <= 0 {
			return nil, domain.E(domain.KindInvalidInput, "quantity must be greater than 0")
		}
		ids = append(ids, it.Product)
	}

	o := &domain.Order{
		ID:               utils.NewID(),
		ShippingAddress1: in.ShippingAddress1,
		ShippingAddress2: in.ShippingAddress2,
		City:             in.City,
		Zip:              in.Zip,
		Country:          in.Country,
		Phone:            in.Phone,
		Status:           s.opts.DefaultStatus,
		TotalPrice:       decimal.Zero,
		UserID:           userID,
	}
	items := make([]domain.OrderItem, len(in.OrderItems))
	for i, it := range in.OrderItems {
		items[i] = domain.OrderItem{
			ID:        utils.NewID(),
			OrderID:   o.ID,
			Position:  i,
			Quantity:  it.Quantity,
			ProductID: it.Product,
		}
	}

	itemsSaved := false
	create := func(ctx context.Context) error {
		prices, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range items {
			p, ok := prices[items[i].ProductID]
			if !ok {
				return domain.E(domain.KindInvalidInput, fmt.Sprintf("product %s not found", items[i].ProductID))
			}
			items[i].UnitPrice = p.Price
			o.TotalPrice = o.TotalPrice.Add(p.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
		}
		if err := s.orders.CreateItems(ctx, items); err != nil {
			orderCreateFailures.WithLabelValues("items").Inc()
			return err
		}
		itemsSaved = true
		if err := s.orders.Create(ctx, o); err != nil {
			orderCreateFailures.WithLabelValues("order").Inc()
			return domain.Wrap(domain.KindOrderCreationFailed, "order cannot be created", err)
		}
		return nil
	}

	var err error
	if s.opts.Transactional && s.tx != nil {
		err = s.tx.WithinTx(ctx, create)
	} else {
		err = create(ctx)
		if err != nil && itemsSaved {
			orphanedItems.Add(float64(len(items)))
			s.log.Warn("order items left without order",
				zap.String("order_id", o.ID), zap.Int("items", len(items)), zap.Error(err))
		}
	}
	if err != nil {
		return nil, err
	}

	ordersCreated.Inc()
	s.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
		zap.String("total", o.TotalPrice.StringFixed(2)),
	)
	saved, err := s.orders.FindByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		o.Items = items
		return o, nil
	}
	return saved, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if !utils.ValidID(id) {
		return nil, domain.E(domain.KindNotFound, "order with the ID is not found")
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.E(domain.KindNotFound, "order with the ID is not found")
	}
	return o, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}

func (s *OrderService) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.orders.TotalSales(ctx)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.E(domain.KindInvalidInput, "status is required")
	}
	ok := false
	if utils.ValidID(id) {
		var err error
		if ok, err = s.orders.UpdateStatus(ctx, id, status); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.E(domain.KindNotFound, "order with the ID is not found")
	}
	s.log.Info("order status changed", zap.String("order_id", id), zap.String("status", status))
	return s.Get(ctx, id)
}

// PurgeOrphanItems deletes order items older than olderThan that never got an order.
func (s *OrderService) PurgeOrphanItems(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.orders.DeleteOrphanItems(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		purgedItems.Add(float64(n))
		s.log.Info("orphan order items purged", zap.Int64("count", n))
	}
	return n, nil
}

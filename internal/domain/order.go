package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "Pending"

// OrderItem belongs to exactly one Order. UnitPrice is the product price read
// when the order was created.
type OrderItem struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string          `gorm:"size:36;index;not null" json:"orderId"`
	Position  int             `gorm:"not null;default:0" json:"-"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	ProductID string          `gorm:"size:36;index;not null" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string { return "order_items" }

type Order struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID" json:"orderItems"`
	ShippingAddress1 string          `gorm:"size:191" json:"shippingAddress1"`
	ShippingAddress2 string          `gorm:"size:191" json:"shippingAddress2"`
	City             string          `gorm:"size:64" json:"city"`
	Zip              string          `gorm:"size:16" json:"zip"`
	Country          string          `gorm:"size:64" json:"country"`
	Phone            string          `gorm:"size:32" json:"phone"`
	Status           string          `gorm:"size:32;not null;default:Pending" json:"status"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"totalPrice"`
	UserID           string          `gorm:"size:36;index;not null" json:"userId"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"dateOrdered"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

type OrderRepository interface {
	CreateItems(ctx context.Context, items []OrderItem) error
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// ListByUser expands user name and items→product→category, newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	// TotalSales is zero when there are no orders.
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
	// DeleteOrphanItems removes items older than cutoff whose order was never saved.
	DeleteOrphanItems(ctx context.Context, cutoff time.Time) (int64, error)
}

// Transactor runs fn with a ctx whose repository calls share one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

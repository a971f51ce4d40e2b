package repo

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smarts8855/online-shop/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateItems writes all items in one batched insert.
func (r *OrderRepo) CreateItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(ctx, r.db).Omit(clause.Associations).CreateInBatches(&items, 200).Error
}

// Create saves the order row only; its items are written by CreateItems.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.expanded(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := r.expanded(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := conn(ctx, r.db).
		Preload("User", selectUserName).
		Preload("Items", orderByPosition).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderRepo) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := conn(ctx, r.db).Model(&domain.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Row().Scan(&total)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (r *OrderRepo) DeleteOrphanItems(ctx context.Context, cutoff time.Time) (int64, error) {
	res := conn(ctx, r.db).
		Where("created_at < ?", cutoff).
		Where("order_id NOT IN (?)", r.db.Model(&domain.Order{}).Select("id")).
		Delete(&domain.OrderItem{})
	return res.RowsAffected, res.Error
}

func (r *OrderRepo) expanded(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("User", selectUserName).
		Preload("Items", orderByPosition).
		Preload("Items.Product").
		Preload("Items.Product.Category")
}

func selectUserName(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }

func orderByPosition(db *gorm.DB) *gorm.DB { return db.Order("position asc") }

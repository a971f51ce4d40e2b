package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smarts8855/online-shop/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return conn(ctx, r.db).Omit("Category").Create(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := conn(ctx, r.db).Preload("Category").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := conn(ctx, r.db).First(&p, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []domain.Product
	if err := conn(ctx, r.db).Select("id", "name", "price").Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	ps := []domain.Product{}
	q := conn(ctx, r.db).Preload("Category")
	if len(categoryIDs) > 0 {
		q = q.Where("category_id IN ?", categoryIDs)
	}
	err := q.Order("created_at desc").Find(&ps).Error
	return ps, err
}

func (r *ProductRepo) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	ps := []domain.Product{}
	q := conn(ctx, r.db).Where("is_featured = ?", true).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&ps).Error
	return ps, err
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return conn(ctx, r.db).Omit("Category").Save(p).Error
}

// Delete leaves order items pointing at the product untouched.
func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Product{})
	return res.RowsAffected > 0, res.Error
}

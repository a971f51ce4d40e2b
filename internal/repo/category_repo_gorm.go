package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smarts8855/online-shop/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return conn(ctx, r.db).Create(c).Error
}

func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := conn(ctx, r.db).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	cs := []domain.Category{}
	err := conn(ctx, r.db).Order("created_at asc").Find(&cs).Error
	return cs, err
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return conn(ctx, r.db).Save(c).Error
}

// Delete leaves products pointing at the category untouched.
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Category{})
	return res.RowsAffected > 0, res.Error
}

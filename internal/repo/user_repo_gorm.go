package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smarts8855/online-shop/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return conn(ctx, r.db).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.db).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.db).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := conn(ctx, r.db).Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return conn(ctx, r.db).Save(u).Error
}

package domain

import (
	"context"
	"time"
)

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Icon      string    `gorm:"size:64" json:"icon"`
	Color     string    `gorm:"size:32" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

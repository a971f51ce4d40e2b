package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	Name             string          `gorm:"size:191;not null;index" json:"name"`
	ShortDescription string          `gorm:"size:255" json:"shortDescription"`
	LongDescription  string          `gorm:"type:text" json:"longDescription"`
	Brand            string          `gorm:"size:64" json:"brand"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CategoryID       string          `gorm:"size:36;index" json:"categoryId"`
	Category         *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CountInStock     int             `gorm:"not null;default:0" json:"countInStock"`
	Rating           float64         `gorm:"not null;default:0" json:"rating"`
	NumReviews       int             `gorm:"not null;default:0" json:"numReviews"`
	IsFeatured       bool            `gorm:"not null;default:false;index" json:"isFeatured"`
	Image            string          `gorm:"size:512" json:"image"`
	Images           []string        `gorm:"serializer:json;type:text" json:"images"`
	CreatedAt        time.Time       `json:"dateCreated"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	// FindByIDs returns the products that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	// List filters by category when categoryIDs is non-empty.
	List(ctx context.Context, categoryIDs []string) ([]Product, error)
	// Featured applies no limit when limit <= 0.
	Featured(ctx context.Context, limit int) ([]Product, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

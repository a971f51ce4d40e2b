package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/core/cache"
	"github.com/smarts8855/online-shop/internal/core/storage"
	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/pkg/utils"
)

const (
	keyProduct         = "product:"
	keyFeaturedProduct = "products:featured:"
)

type CategoryInput struct {
	Name  string `json:"name"  binding:"omitempty,max=64"`
	Icon  string `json:"icon"  binding:"required,max=64"`
	Color string `json:"color" binding:"required,max=32"`
}

// CategoryPatch replaces only the non-nil fields.
type CategoryPatch struct {
	Name  *string `json:"name"  binding:"omitempty,max=64"`
	Icon  *string `json:"icon"  binding:"omitempty,max=64"`
	Color *string `json:"color" binding:"omitempty,max=32"`
}

type ProductInput struct {
	Name             string
	ShortDescription string
	LongDescription  string
	Brand            string
	Price            decimal.Decimal
	CategoryID       string
	CountInStock     int
	Rating           float64
	NumReviews       int
	IsFeatured       bool
}

// ProductPatch replaces only the non-nil fields.
type ProductPatch struct {
	Name             *string
	ShortDescription *string
	LongDescription  *string
	Brand            *string
	Price            *decimal.Decimal
	CategoryID       *string
	CountInStock     *int
	Rating           *float64
	NumReviews       *int
	IsFeatured       *bool
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CatalogService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	files      storage.Store
	cache      *cache.Cache
	log        *zap.Logger
}

func NewCatalogService(categories domain.CategoryRepository, products domain.ProductRepository, files storage.Store, c *cache.Cache, l *zap.Logger) *CatalogService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CatalogService{categories: categories, products: products, files: files, cache: c, log: l}
}

// ---------- categories ----------

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	c := &domain.Category{
		ID:    utils.NewID(),
		Name:  strings.TrimSpace(in.Name),
		Icon:  in.Icon,
		Color: in.Color,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if !utils.ValidID(id) {
		return nil, domain.E(domain.KindNotFound, "category with the ID is not found")
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.E(domain.KindNotFound, "category with the ID is not found")
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, p CategoryPatch) (*domain.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx)
	return c, nil
}

// DeleteCategory leaves products that reference the category in place.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) (*DeleteResult, error) {
	ok := false
	if utils.ValidID(id) {
		var err error
		if ok, err = s.categories.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.E(domain.KindNotFound, "the category could not be found")
	}
	s.invalidateProducts(ctx)
	return &DeleteResult{Success: true, Message: "the category deleted successfully"}, nil
}

// ---------- products ----------

// CreateProduct validates everything before a file or a row is written.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, image *storage.Upload) (*domain.Product, error) {
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, domain.E(domain.KindInvalidInput, "provide the product image")
	}
	if err := storage.Check(*image, 0); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.E(domain.KindInvalidInput, "name is required")
	}
	found, err := s.products.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return nil, domain.E(domain.KindConflict, fmt.Sprintf("%s already exists", name))
	}

	uri, err := s.files.Save(ctx, *image)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:               utils.NewID(),
		Name:             name,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		Brand:            in.Brand,
		Price:            in.Price,
		CategoryID:       in.CategoryID,
		CountInStock:     in.CountInStock,
		Rating:           in.Rating,
		NumReviews:       in.NumReviews,
		IsFeatured:       in.IsFeatured,
		Image:            uri,
		Images:           []string{},
	}
	if err := s.products.Create(ctx, p); err != nil {
		if rmErr := s.files.Remove(ctx, uri); rmErr != nil {
			s.log.Warn("remove image after failed create", zap.String("uri", uri), zap.Error(rmErr))
		}
		return nil, err
	}
	if p.IsFeatured {
		s.invalidateFeatured(ctx)
	}
	s.log.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return s.GetProduct(ctx, p.ID)
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryIDs []string) ([]domain.Product, error) {
	ids := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(categoryIDs) > 0 && len(ids) == 0 {
		return []domain.Product{}, nil
	}
	return s.products.List(ctx, ids)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if !utils.ValidID(id) {
		return nil, domain.E(domain.KindNotFound, "product not found")
	}
	p, err := cache.GetOrLoadJSON(s.cache, ctx, keyProduct+id, 0, func(ctx context.Context) (*domain.Product, error) {
		p, err := s.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.E(domain.KindNotFound, "product not found")
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.E(domain.KindNotFound, "product not found")
	}
	return p, nil
}

// UpdateProduct keeps the current image unless a new one is uploaded.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch, image *storage.Upload) (*domain.Product, error) {
	if !utils.ValidID(id) {
		return nil, domain.E(domain.KindInvalidInput, "invalid product ID")
	}
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if image != nil {
		if err := storage.Check(*image, 0); err != nil {
			return nil, err
		}
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.E(domain.KindNotFound, "product not found")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.E(domain.KindInvalidInput, "name must not be empty")
		}
		p.Name = name
	}
	if patch.ShortDescription != nil {
		p.ShortDescription = *patch.ShortDescription
	}
	if patch.LongDescription != nil {
		p.LongDescription = *patch.LongDescription
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.CountInStock != nil {
		p.CountInStock = *patch.CountInStock
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.NumReviews != nil {
		p.NumReviews = *patch.NumReviews
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	newImage := ""
	if image != nil {
		uri, err := s.files.Save(ctx, *image)
		if err != nil {
			return nil, err
		}
		p.Image, newImage = uri, uri
	}
	p.Category = nil
	if err := s.products.Update(ctx, p); err != nil {
		if newImage != "" {
			if rmErr := s.files.Remove(ctx, newImage); rmErr != nil {
				s.log.Warn("remove image after failed update", zap.String("uri", newImage), zap.Error(rmErr))
			}
		}
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return s.GetProduct(ctx, id)
}

// UpdateGallery replaces the gallery. Every file is type-checked before any is stored.
func (s *CatalogService) UpdateGallery(ctx context.Context, id string, images []storage.Upload, maxImages int) (*domain.Product, error) {
	if !utils.ValidID(id) {
		return nil, domain.E(domain.KindInvalidInput, "invalid product ID")
	}
	if maxImages > 0 && len(images) > maxImages {
		return nil, domain.E(domain.KindInvalidInput, fmt.Sprintf("at most %d gallery images", maxImages))
	}
	for _, up := range images {
		if err := storage.Check(up, 0); err != nil {
			return nil, err
		}
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.E(domain.KindNotFound, "product not found")
	}

	uris := make([]string, 0, len(images))
	for _, up := range images {
		uri, err := s.files.Save(ctx, up)
		if err != nil {
			for _, done := range uris {
				_ = s.files.Remove(ctx, done)
			}
			return nil, err
		}
		uris = append(uris, uri)
	}
	p.Images = uris
	p.Category = nil
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return s.GetProduct(ctx, id)
}

// DeleteProduct leaves order items that reference the product in place.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (*DeleteResult, error) {
	ok := false
	if utils.ValidID(id) {
		var err error
		if ok, err = s.products.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, domain.E(domain.KindNotFound, "the product could not be found")
	}
	s.invalidateProduct(ctx, id)
	return &DeleteResult{Success: true, Message: "the product deleted successfully"}, nil
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	return s.products.Count(ctx)
}

// FeaturedProducts returns every featured product when limit <= 0.
func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit < 0 {
		limit = 0
	}
	ps, err := cache.GetOrLoadJSON(s.cache, ctx, fmt.Sprintf("%s%d", keyFeaturedProduct, limit), 0,
		func(ctx context.Context) (*[]domain.Product, error) {
			ps, err := s.products.Featured(ctx, limit)
			return &ps, err
		})
	if err != nil {
		return nil, err
	}
	if ps == nil {
		return []domain.Product{}, nil
	}
	return *ps, nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id string) error {
	if !utils.ValidID(id) {
		return domain.E(domain.KindInvalidInput, "invalid category")
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.E(domain.KindInvalidInput, "invalid category")
	}
	return nil
}

func (s *CatalogService) invalidateProduct(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, keyProduct+id); err != nil {
		s.log.Warn("cache invalidate", zap.String("product_id", id), zap.Error(err))
	}
	s.invalidateFeatured(ctx)
}

func (s *CatalogService) invalidateFeatured(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, keyFeaturedProduct); err != nil {
		s.log.Warn("cache invalidate featured", zap.Error(err))
	}
}

// invalidateProducts drops every cached product; they embed their category.
func (s *CatalogService) invalidateProducts(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, keyProduct); err != nil {
		s.log.Warn("cache invalidate products", zap.Error(err))
	}
	s.invalidateFeatured(ctx)
}

package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarts8855/online-shop/internal/core/storage"
	"github.com/smarts8855/online-shop/internal/domain"
)

func productInput(name, categoryID string) ProductInput {
	return ProductInput{
		Name:         name,
		Brand:        "Acme",
		Price:        decimal.RequireFromString("19.99"),
		CategoryID:   categoryID,
		CountInStock: 5,
		IsFeatured:   true,
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)

	p, err := svc.CreateProduct(ctx, productInput("Phone X", c.ID), png("front.png"))
	require.NoError(t, err)
	assert.Equal(t, "Phone X", p.Name)
	require.NotNil(t, p.Category)
	assert.Equal(t, c.ID, p.Category.ID)
	require.Len(t, f.files.saved, 1)
	assert.Equal(t, f.files.saved[0], p.Image)
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price))
}

func TestCreateProductRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)
	_, err := svc.CreateProduct(ctx, productInput("Phone X", c.ID), png("front.png"))
	require.NoError(t, err)

	gif := png("anim.gif")
	gif.ContentType = "image/gif"

	tests := []struct {
		name  string
		in    ProductInput
		image *storage.Upload
		want  error
		msg   string
	}{
		{"unknown category", productInput("Other", "f47ac10b-58cc-4372-a567-0e02b2c3d479"), png("a.png"), domain.ErrInvalidInput, "invalid category"},
		{"malformed category", productInput("Other", "abc"), png("a.png"), domain.ErrInvalidInput, "invalid category"},
		{"missing image", productInput("Other", c.ID), nil, domain.ErrInvalidInput, "provide the product image"},
		{"gif image", productInput("Other", c.ID), gif, storage.ErrInvalidFileType, "invalid image type"},
		{"duplicate name", productInput("Phone X", c.ID), png("b.png"), domain.ErrConflict, "Phone X already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in, tt.image)
			require.ErrorIs(t, err, tt.want)
			assert.EqualError(t, err, tt.msg)
		})
	}

	n, err := svc.CountProducts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Len(t, f.files.saved, 1, "no file is stored for a rejected product")
}

func TestCreateProductRemovesImageOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.seedCategory(t)
	svc := NewCatalogService(f.categories, failingProducts{f.products}, f.files, nil, nil)

	_, err := svc.CreateProduct(ctx, productInput("Phone X", c.ID), png("front.png"))
	require.Error(t, err)
	require.Len(t, f.files.saved, 1)
	assert.Equal(t, f.files.saved, f.files.removed)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()

	_, err := svc.GetProduct(ctx, "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.GetProduct(ctx, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)
	p, err := svc.CreateProduct(ctx, productInput("Phone X", c.ID), png("front.png"))
	require.NoError(t, err)

	name := "Phone XS"
	price := decimal.NewFromInt(25)
	up, err := svc.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name, Price: &price}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Phone XS", up.Name)
	assert.True(t, price.Equal(up.Price))
	assert.Equal(t, p.Image, up.Image, "image kept without a new upload")
	assert.Equal(t, "Acme", up.Brand)

	up, err = svc.UpdateProduct(ctx, p.ID, ProductPatch{}, png("back.png"))
	require.NoError(t, err)
	assert.NotEqual(t, p.Image, up.Image)

	_, err = svc.UpdateProduct(ctx, "abc", ProductPatch{}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	_, err = svc.UpdateProduct(ctx, p.ID, ProductPatch{CategoryID: &bad}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateProduct(ctx, bad, ProductPatch{}, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateGallery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)
	p := f.seedProduct(t, "Phone X", c.ID, 10)

	gif := png("c.gif")
	gif.ContentType = "image/gif"
	_, err := svc.UpdateGallery(ctx, p.ID, []storage.Upload{*png("a.png"), *gif}, 10)
	require.ErrorIs(t, err, storage.ErrInvalidFileType)
	assert.Empty(t, f.files.saved, "nothing stored when one file is rejected")

	_, err = svc.UpdateGallery(ctx, p.ID, []storage.Upload{*png("a.png"), *png("b.png"), *png("c.png")}, 2)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := svc.UpdateGallery(ctx, p.ID, []storage.Upload{*png("a.png"), *png("b.png")}, 10)
	require.NoError(t, err)
	assert.Equal(t, f.files.saved, got.Images)

	f.files.failAt = 4
	_, err = svc.UpdateGallery(ctx, p.ID, []storage.Upload{*png("d.png"), *png("e.png")}, 10)
	require.Error(t, err)
	assert.Equal(t, f.files.saved[2:], f.files.removed)
}

func TestDeleteAndCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)
	p := f.seedProduct(t, "Phone X", c.ID, 10)

	res, err := svc.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	_, err = svc.DeleteCategory(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "the category could not be found")

	kept, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, kept.CategoryID)

	res, err = svc.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "the product deleted successfully", res.Message)
	_, err = svc.DeleteProduct(ctx, p.ID)
	assert.EqualError(t, err, "the product could not be found")
	_, err = svc.DeleteProduct(ctx, "abc")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAndFeatured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	phones := f.seedCategory(t)
	books, err := svc.CreateCategory(ctx, CategoryInput{Name: "Books", Icon: "book", Color: "#111"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, productInput("Phone X", phones.ID), png("a.png"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, productInput("Go Book", books.ID), png("b.png"))
	require.NoError(t, err)
	f.seedProduct(t, "Plain", books.ID, 1)

	all, err := svc.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyBooks, err := svc.ListProducts(ctx, []string{books.ID, " "})
	require.NoError(t, err)
	assert.Len(t, onlyBooks, 2)

	none, err := svc.ListProducts(ctx, []string{""})
	require.NoError(t, err)
	assert.Empty(t, none)

	featured, err := svc.FeaturedProducts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
	featured, err = svc.FeaturedProducts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, featured, 2)
}

func TestUpdateCategoryPatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.catalog()
	c := f.seedCategory(t)

	color := "#f00"
	got, err := svc.UpdateCategory(ctx, c.ID, CategoryPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#f00", got.Color)
	assert.Equal(t, "Phones", got.Name)
	assert.Equal(t, "phone", got.Icon)

	_, err = svc.GetCategory(ctx, "abc")
	require.ErrorIs(t, err, domain.ErrNotFound)
	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

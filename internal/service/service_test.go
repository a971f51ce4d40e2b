package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smarts8855/online-shop/internal/core/auth"
	"github.com/smarts8855/online-shop/internal/core/database"
	"github.com/smarts8855/online-shop/internal/core/storage"
	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/internal/repo"
	"github.com/smarts8855/online-shop/pkg/utils"
)

type fixture struct {
	db         *gorm.DB
	users      *repo.UserRepo
	categories *repo.CategoryRepo
	products   *repo.ProductRepo
	orders     *repo.OrderRepo
	tx         *repo.Transactor
	files      *memStore
	jwt        *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return &fixture{
		db:         db,
		users:      repo.NewUserRepo(db),
		categories: repo.NewCategoryRepo(db),
		products:   repo.NewProductRepo(db),
		orders:     repo.NewOrderRepo(db),
		tx:         repo.NewTransactor(db),
		files:      &memStore{},
		jwt:        &auth.JWTer{Secret: []byte("test-secret"), Issuer: "online-shop", TTL: time.Hour},
	}
}

func (f *fixture) catalog() *CatalogService {
	return NewCatalogService(f.categories, f.products, f.files, nil, nil)
}

func (f *fixture) seedCategory(t *testing.T) *domain.Category {
	t.Helper()
	c, err := f.catalog().CreateCategory(context.Background(), CategoryInput{Name: "Phones", Icon: "phone", Color: "#000"})
	require.NoError(t, err)
	return c
}

func (f *fixture) seedProduct(t *testing.T, name, categoryID string, price int64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:         utils.NewID(),
		Name:       name,
		Price:      decimal.NewFromInt(price),
		CategoryID: categoryID,
		Images:     []string{},
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func png(name string) *storage.Upload {
	return &storage.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        4,
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("\x89PNG")), nil },
	}
}

type memStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	failAt  int
}

func (m *memStore) Save(_ context.Context, up storage.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAt > 0 && len(m.saved)+1 == m.failAt {
		return "", errors.New("disk full")
	}
	uri := "http://files.test/" + uuid.NewString() + "-" + up.Filename
	m.saved = append(m.saved, uri)
	return uri, nil
}

func (m *memStore) Remove(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, uri)
	return nil
}

// failingOrders fails the final order insert.
type failingOrders struct {
	domain.OrderRepository
}

func (failingOrders) Create(context.Context, *domain.Order) error {
	return errors.New("write conflict")
}

// failingProducts fails every insert.
type failingProducts struct {
	domain.ProductRepository
}

func (failingProducts) Create(context.Context, *domain.Product) error {
	return errors.New("insert failed")
}

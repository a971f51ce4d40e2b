package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smarts8855/online-shop/internal/core/storage"
	"github.com/smarts8855/online-shop/internal/domain"
	"github.com/smarts8855/online-shop/internal/service"
	httpez "github.com/smarts8855/online-shop/internal/transport/http/ez"
	mdw "github.com/smarts8855/online-shop/internal/transport/http/middleware"
)

// Module mounts /products and /category. Reads are public, writes need an admin.
type Module struct {
	svc        *service.CatalogService
	guards     mdw.Guards
	maxGallery int
	log        *zap.Logger
}

func New(svc *service.CatalogService, guards mdw.Guards, maxGallery int, l *zap.Logger) *Module {
	return &Module{svc: svc, guards: guards, maxGallery: maxGallery, log: l}
}

func (m *Module) Priority() int { return 10 }

type productForm struct {
	Name             string  `form:"name"             binding:"required,max=191"`
	ShortDescription string  `form:"shortDescription" binding:"omitempty,max=255"`
	LongDescription  string  `form:"longDescription"`
	Brand            string  `form:"brand"            binding:"omitempty,max=64"`
	Price            string  `form:"price"            binding:"required"`
	Category         string  `form:"category"         binding:"required"`
	CountInStock     int     `form:"countInStock"     binding:"gte=0,lte=255"`
	Rating           float64 `form:"rating"           binding:"gte=0,lte=5"`
	NumReviews       int     `form:"numReviews"       binding:"gte=0"`
	IsFeatured       bool    `form:"isFeatured"`
}

type productPatchForm struct {
	Name             *string  `form:"name"             binding:"omitempty,max=191"`
	ShortDescription *string  `form:"shortDescription" binding:"omitempty,max=255"`
	LongDescription  *string  `form:"longDescription"`
	Brand            *string  `form:"brand"            binding:"omitempty,max=64"`
	Price            *string  `form:"price"`
	Category         *string  `form:"category"`
	CountInStock     *int     `form:"countInStock"     binding:"omitempty,gte=0,lte=255"`
	Rating           *float64 `form:"rating"           binding:"omitempty,gte=0,lte=5"`
	NumReviews       *int     `form:"numReviews"       binding:"omitempty,gte=0"`
	IsFeatured       *bool    `form:"isFeatured"`
}

type listQuery struct {
	Categories string `form:"categories"`
}

func (m *Module) MountAPI(api *gin.RouterGroup) {
	m.mountProducts(httpez.New(api.Group("/products"), m.log))
	m.mountCategories(httpez.New(api.Group("/category"), m.log))
}

func (m *Module) mountProducts(e httpez.EZ) {
	admin := []gin.HandlerFunc{m.guards.Admin}

	httpez.RegisterAction(e, httpez.Action[productForm, *domain.Product]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindForm,
		Guards: admin,
		Handler: func(c *gin.Context, in *productForm) (*domain.Product, error) {
			price, err := parsePrice(in.Price)
			if err != nil {
				return nil, err
			}
			image, err := formFile(c, "image")
			if err != nil {
				return nil, err
			}
			return m.svc.CreateProduct(c.Request.Context(), service.ProductInput{
				Name:             in.Name,
				ShortDescription: in.ShortDescription,
				LongDescription:  in.LongDescription,
				Brand:            in.Brand,
				Price:            price,
				CategoryID:       in.Category,
				CountInStock:     in.CountInStock,
				Rating:           in.Rating,
				NumReviews:       in.NumReviews,
				IsFeatured:       in.IsFeatured,
			}, image)
		},
	})

	httpez.RegisterAction(e, httpez.Action[listQuery, []domain.Product]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQuery) ([]domain.Product, error) {
			var ids []string
			if in.Categories != "" {
				ids = strings.Split(in.Categories, ",")
			}
			return m.svc.ListProducts(c.Request.Context(), ids)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			return m.svc.GetProduct(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[productPatchForm, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindForm,
		Guards: admin,
		Handler: func(c *gin.Context, in *productPatchForm) (*domain.Product, error) {
			patch := service.ProductPatch{
				Name:             in.Name,
				ShortDescription: in.ShortDescription,
				LongDescription:  in.LongDescription,
				Brand:            in.Brand,
				CategoryID:       in.Category,
				CountInStock:     in.CountInStock,
				Rating:           in.Rating,
				NumReviews:       in.NumReviews,
				IsFeatured:       in.IsFeatured,
			}
			if in.Price != nil {
				price, err := parsePrice(*in.Price)
				if err != nil {
					return nil, err
				}
				patch.Price = &price
			}
			image, err := formFile(c, "image")
			if err != nil {
				return nil, err
			}
			return m.svc.UpdateProduct(c.Request.Context(), c.Param("id"), patch, image)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.DeleteResult]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) (*service.DeleteResult, error) {
			return m.svc.DeleteProduct(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/get/count",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			n, err := m.svc.CountProducts(c.Request.Context())
			if err != nil {
				return nil, err
			}
			return gin.H{"productCount": n}, nil
		},
	})

	// count 非数字时按 0 处理，即不限制条数
	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/get/featured/:count",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Product, error) {
			n, _ := strconv.Atoi(c.Param("count"))
			return m.svc.FeaturedProducts(c.Request.Context(), n)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/gallery-images/:id",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			form, err := c.MultipartForm()
			if err != nil {
				return nil, httpez.BadRequest("invalid multipart form")
			}
			files := form.File["images"]
			if len(files) == 0 {
				return nil, httpez.BadRequest("no files uploaded")
			}
			ups := make([]storage.Upload, 0, len(files))
			for _, fh := range files {
				ups = append(ups, storage.FromFileHeader(fh))
			}
			return m.svc.UpdateGallery(c.Request.Context(), c.Param("id"), ups, m.maxGallery)
		},
	})
}

func (m *Module) mountCategories(e httpez.EZ) {
	admin := []gin.HandlerFunc{m.guards.Admin}

	httpez.RegisterAction(e, httpez.Action[service.CategoryInput, *domain.Category]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Guards: admin,
		Handler: func(c *gin.Context, in *service.CategoryInput) (*domain.Category, error) {
			return m.svc.CreateCategory(c.Request.Context(), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Category, error) {
			return m.svc.ListCategories(c.Request.Context())
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.Category]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Category, error) {
			return m.svc.GetCategory(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[service.CategoryPatch, *domain.Category]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Guards: admin,
		Handler: func(c *gin.Context, in *service.CategoryPatch) (*domain.Category, error) {
			return m.svc.UpdateCategory(c.Request.Context(), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *service.DeleteResult]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Guards: admin,
		Handler: func(c *gin.Context, _ *struct{}) (*service.DeleteResult, error) {
			return m.svc.DeleteCategory(c.Request.Context(), c.Param("id"))
		},
	})
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, httpez.BadRequest("price must be a number")
	}
	return d, nil
}

// formFile 返回 nil 表示请求里没有该文件字段
func formFile(c *gin.Context, field string) (*storage.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, httpez.BadRequest("invalid multipart form")
	}
	up := storage.FromFileHeader(fh)
	return &up, nil
}

package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"storefront/internal/models"
	"storefront/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cache is the read-through cache used for product details.
type Cache interface {
	GetCached(ctx context.Context, key string, dest interface{}) error
	SetCached(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteCached(ctx context.Context, key string) error
}

// BlobStore stores uploaded files and returns their public URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type ProductInput struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	SubscriberPrice *decimal.Decimal `json:"subscriber_price"`
	Stock           int              `json:"stock" binding:"min=0"`
	CategoryID      *uint            `json:"category_id"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

var allowedImageTypes = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	UploadImage(ctx context.Context, id uint, filename string, data []byte) (*models.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	cache        Cache
	blobs        BlobStore
	cacheTTL     time.Duration
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, cache Cache, blobs BlobStore, cacheTTL time.Duration) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		blobs:        blobs,
		cacheTTL:     cacheTTL,
	}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productService) validate(ctx context.Context, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrBadRequest("name is required")
	}
	if input.Price.IsNegative() {
		return ErrBadRequest("price must not be negative")
	}
	if input.SubscriberPrice != nil && input.SubscriberPrice.IsNegative() {
		return ErrBadRequest("subscriber price must not be negative")
	}
	if input.Stock < 0 {
		return ErrBadRequest("stock must not be negative")
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.CategoryID); err != nil {
			return notFound(err, "category")
		}
	}
	return nil
}

func applyProductInput(product *models.Product, input ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.SubscriberPrice = decimal.NullDecimal{}
	if input.SubscriberPrice != nil {
		product.SubscriberPrice = decimal.NewNullDecimal(*input.SubscriberPrice)
	}
	product.Stock = input.Stock
	product.CategoryID = input.CategoryID
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	product := &models.Product{}
	applyProductInput(product, input)
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	key := productCacheKey(id)
	if s.cache != nil {
		var cached models.Product
		if err := s.cache.GetCached(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	if s.cache != nil {
		if err := s.cache.SetCached(ctx, key, product, s.cacheTTL); err != nil {
			log.Printf("Warning: failed to cache product %d: %v", id, err)
		}
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	applyProductInput(product, input)
	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "product")
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) UploadImage(ctx context.Context, id uint, filename string, data []byte) (*models.Product, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageTypes[ext] {
		return nil, ErrBadRequest("unsupported image type " + ext)
	}
	if len(data) == 0 {
		return nil, ErrBadRequest("image is empty")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), ext)
	url, err := s.blobs.Put(ctx, key, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	product.ImageURL = url
	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			log.Printf("Warning: failed to remove orphaned image %s: %v", key, delErr)
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return product, nil
}

// invalidate drops a product from the cache. Call it after every write.
func (s *productService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCached(ctx, productCacheKey(id)); err != nil {
		log.Printf("Warning: failed to invalidate product %d: %v", id, err)
	}
}

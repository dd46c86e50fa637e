package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/product-catalog/internal/cache"
	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	appErrors "github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	repository "github.com/aaravmahajanofficial/product-catalog/internal/repositories"
	"golang.org/x/sync/semaphore"
)

const (
	listFailed    = "Something went wrong while fetching products"
	searchFailed  = "Something went wrong while searching products"
	uploadsBusy   = "Too many uploads in progress, try again later"
	invalidPaging = "Invalid page or limit"
)

// Ingester processes an uploaded CSV file and removes it afterwards.
type Ingester interface {
	Ingest(ctx context.Context, path string) (*models.UploadResult, error)
}

type ProductService interface {
	UploadProducts(ctx context.Context, path string) (*models.UploadResult, error)
	ListProducts(ctx context.Context, page, limit int) ([]*models.Product, error)
	SearchProducts(ctx context.Context, filter models.SearchFilter) ([]*models.Product, error)
}

type productService struct {
	repo     repository.ProductRepository
	ingester Ingester
	cache    cache.Cache

	uploads  *semaphore.Weighted
	maxWait  time.Duration
	maxLimit int
	cacheTTL time.Duration
}

// NewProductService wires the catalog operations. c may be nil, in which case
// reads always go to the repository.
func NewProductService(repo repository.ProductRepository, ingester Ingester, c cache.Cache, cfg *config.Config) ProductService {
	maxConcurrent := cfg.Upload.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &productService{
		repo:     repo,
		ingester: ingester,
		cache:    c,
		uploads:  semaphore.NewWeighted(maxConcurrent),
		maxWait:  cfg.Upload.MaxWait,
		maxLimit: cfg.Pagination.MaxLimit,
		cacheTTL: cfg.Cache.DefaultTTL,
	}
}

func (s *productService) UploadProducts(ctx context.Context, path string) (*models.UploadResult, error) {
	logger := middleware.LoggerFromContext(ctx)

	if err := s.acquireUpload(ctx); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("Failed to remove rejected upload", slog.String("error", rmErr.Error()))
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, appErrors.BadRequestError("Upload cancelled").WithError(err)
		}
		logger.Warn("Upload rejected, no free slot", slog.Duration("waited", s.maxWait))
		return nil, appErrors.TooManyRequestsError(uploadsBusy).WithError(err)
	}
	defer s.uploads.Release(1)

	result, err := s.ingester.Ingest(ctx, path)
	if err != nil {
		return nil, err
	}

	if result.Success > 0 {
		s.invalidate(ctx)
	}

	return result, nil
}

// acquireUpload takes an upload slot, waiting at most maxWait for one.
func (s *productService) acquireUpload(ctx context.Context) error {
	if s.uploads.TryAcquire(1) {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.maxWait)
	defer cancel()

	return s.uploads.Acquire(waitCtx, 1)
}

func (s *productService) ListProducts(ctx context.Context, page, limit int) ([]*models.Product, error) {
	pagination, err := models.NewPagination(page, limit)
	if err != nil {
		return nil, err
	}
	if s.maxLimit > 0 && pagination.Limit > s.maxLimit {
		return nil, appErrors.ValidationError(invalidPaging)
	}

	generation := s.generation(ctx)
	key := cache.ListKey(generation, pagination)

	if products, ok := s.cached(ctx, key); ok {
		return products, nil
	}

	products, err := s.repo.ListProducts(ctx, pagination)
	if err != nil {
		return nil, appErrors.DatabaseError(listFailed).WithError(err)
	}

	s.store(ctx, key, products)

	return products, nil
}

func (s *productService) SearchProducts(ctx context.Context, filter models.SearchFilter) ([]*models.Product, error) {
	key := cache.SearchKey(s.generation(ctx), filter)

	if products, ok := s.cached(ctx, key); ok {
		return products, nil
	}

	products, err := s.repo.SearchProducts(ctx, filter)
	if err != nil {
		return nil, appErrors.DatabaseError(searchFailed).WithError(err)
	}

	s.store(ctx, key, products)

	return products, nil
}

// Cache failures are logged and otherwise ignored; the repository is the
// source of truth.

func (s *productService) generation(ctx context.Context) int64 {
	if s.cache == nil {
		return 0
	}

	var generation int64
	if _, err := s.cache.Get(ctx, cache.GenerationKey, &generation); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to read catalog generation", slog.String("error", err.Error()))
	}

	return generation
}

func (s *productService) cached(ctx context.Context, key string) ([]*models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}

	var products []*models.Product
	found, err := s.cache.Get(ctx, key, &products)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	if !found || products == nil {
		return nil, false
	}

	return products, true
}

func (s *productService) store(ctx context.Context, key string, products []*models.Product) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, products, s.cacheTTL); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *productService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if _, err := s.cache.Incr(ctx, cache.GenerationKey); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to bump catalog generation", slog.String("error", err.Error()))
	}
}

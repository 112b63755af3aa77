package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/pagination"
	pkgredis "github.com/voltline/voltline-backend/pkg/redis"
)

// Service exposes catalog read operations.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

// ListProductsInput captures the inputs needed to paginate and filter the
// catalog.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProductListResult wraps one page of catalog rows.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

type catalogRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Product, error)
}

type listCache interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CacheKey(parts ...string) string
}

type service struct {
	repo     catalogRepo
	logg     *logger.Logger
	cache    listCache
	cacheTTL time.Duration
}

// Option configures optional service behavior.
type Option func(*service)

// WithListCache caches catalog pages in Redis under the non-essential cache
// namespace. Cached pages may be purged at any time under memory pressure,
// so a miss always falls through to the database.
func WithListCache(cache listCache, ttl time.Duration) Option {
	return func(s *service) {
		if cache != nil && ttl > 0 {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

// NewService constructs a catalog service instance.
func NewService(repo catalogRepo, logg *logger.Logger, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{repo: repo, logg: logg}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// ListProducts returns one page of active products, newest first.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	cacheKey := s.listCacheKey(input)
	if cached := s.cachedPage(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	rows, err := s.repo.ListActive(ctx, input.Filters, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}

	rows, hasMore := pagination.TrimPage(rows, input.Pagination.Limit)

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dto, err := FromModel(&rows[i])
		if err != nil {
			// Skip malformed rows rather than failing the whole page.
			s.logg.Error(ctx, "skipping malformed product row", err)
			continue
		}
		dtos = append(dtos, *dto)
	}

	result := &ProductListResult{Products: dtos}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &encoded
	}

	s.storePage(ctx, cacheKey, result)
	return result, nil
}

// GetProduct loads one active product by id.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if !row.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return FromModel(row)
}

func (s *service) listCacheKey(input ListProductsInput) string {
	if s.cache == nil {
		return ""
	}
	category := "all"
	if input.Filters.Category != nil {
		category = *input.Filters.Category
	}
	fingerprint := fmt.Sprintf("cat=%s|q=%s|cur=%s|n=%d",
		category, input.Filters.Query, input.Pagination.Cursor, pagination.NormalizeLimit(input.Pagination.Limit))
	return s.cache.CacheKey("products", fingerprint)
}

func (s *service) cachedPage(ctx context.Context, key string) *ProductListResult {
	if key == "" {
		return nil
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNotFound(err) {
			s.logg.Error(ctx, "reading cached product page", err)
		}
		return nil
	}
	var result ProductListResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		s.logg.Error(ctx, "corrupt cached product page, ignoring", err)
		return nil
	}
	return &result
}

// storePage fills the cache with SetNX so concurrent requests for the same
// page keep the first writer's copy instead of racing overwrites.
func (s *service) storePage(ctx context.Context, key string, result *ProductListResult) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if _, err := s.cache.SetNX(ctx, key, string(payload), s.cacheTTL); err != nil && !pkgredis.IsQuotaExceeded(err) {
		s.logg.Error(ctx, "caching product page", err)
	}
}

package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	product "github.com/voltline/voltline-backend/internal/products"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
	pkgredis "github.com/voltline/voltline-backend/pkg/redis"
)

// CartDTO is the transport shape returned to controllers.
type CartDTO struct {
	Items      []Item `json:"items"`
	TotalItems int    `json:"total_items"`
}

// UpdateItemInput carries the mutable fields of one cart line. Nil fields
// are left untouched; a blank CustomSpecs clears the override so the item
// falls back to its product snapshot.
type UpdateItemInput struct {
	Quantity    *int
	CustomSpecs *string
}

// Service exposes the per-user cart operations. Each call loads the
// snapshot, applies one mutation, and persists the result.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, productID string, input UpdateItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
	PurgeNonEssential(ctx context.Context) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error)
}

type service struct {
	store     snapshotStore
	products  productLoader
	logg      *logger.Logger
	ttl       time.Duration
	onDegrade func()
}

// Option configures optional service behavior.
type Option func(*service)

// WithDegradeHook registers a callback invoked when a snapshot write is
// abandoned under storage quota pressure.
func WithDegradeHook(hook func()) Option {
	return func(s *service) {
		if hook != nil {
			s.onDegrade = hook
		}
	}
}

// NewService builds a cart service backed by the provided snapshot store and
// catalog.
func NewService(store snapshotStore, products productLoader, logg *logger.Logger, ttl time.Duration, opts ...Option) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	svc := &service{
		store:    store,
		products: products,
		logg:     logg,
		ttl:      ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Get loads the user's cart from its snapshot.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

// AddProduct resolves the product and adds a denormalized snapshot of it to
// the cart. Adding a product already in the cart increments its quantity.
func (s *service) AddProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	dto, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(Item{
		ProductID:      dto.ID.String(),
		Name:           dto.Name,
		Description:    dto.Description,
		Price:          dto.Price,
		Category:       dto.Category,
		Specifications: dto.Specifications,
		ImageURL:       dto.ImageURL,
		Quantity:       quantity,
	})

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

// UpdateItem applies quantity and specification changes to one cart line.
func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, productID string, input UpdateItemInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.IsInCart(productID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	if input.CustomSpecs != nil {
		cart.UpdateCustomSpecs(productID, input.CustomSpecs)
	}
	if input.Quantity != nil {
		cart.UpdateQuantity(productID, *input.Quantity)
	}

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

// RemoveItem drops one line from the cart. Removing an absent item succeeds.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(productID)

	if err := s.save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return toDTO(cart), nil
}

// Clear empties the cart and deletes its snapshot.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	raw, err := s.store.Get(ctx, s.store.CartKey(userID.String()))
	if pkgredis.IsNotFound(err) {
		return NewCart(nil), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// A corrupt snapshot resets the cart rather than wedging the user.
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "corrupt cart snapshot, resetting", err)
		return NewCart(nil), nil
	}
	return NewCart(items), nil
}

// save persists the lightweight snapshot. A write rejected for storage quota
// degrades: the persisted key is deleted, cache keys are purged, session keys
// stay untouched, and the in-memory cart survives for this request.
func (s *service) save(ctx context.Context, userID uuid.UUID, cart *Cart) error {
	key := s.store.CartKey(userID.String())

	payload, err := json.Marshal(cart.Items())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart snapshot")
	}

	err = s.store.Set(ctx, key, string(payload), s.ttl)
	if err == nil {
		return nil
	}
	if !pkgredis.IsQuotaExceeded(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Error(ctx, "cart snapshot rejected for storage quota, degrading",
		pkgerrors.Wrap(pkgerrors.CodeStorageQuota, err, "snapshot write rejected"))

	if delErr := s.store.Del(ctx, key); delErr != nil {
		s.logg.Error(ctx, "deleting cart snapshot during degrade", delErr)
	}
	if purgeErr := s.store.PurgeNonEssential(ctx); purgeErr != nil {
		s.logg.Error(ctx, "purging cache keys during degrade", purgeErr)
	}
	if s.onDegrade != nil {
		s.onDegrade()
	}
	return nil
}

func toDTO(cart *Cart) *CartDTO {
	return &CartDTO{
		Items:      cart.Items(),
		TotalItems: cart.TotalItems(),
	}
}

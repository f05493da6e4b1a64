package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogRepo "labcart/database/repository/catalog"
	"labcart/models"
	"labcart/utils"

	"github.com/go-redis/redis/v8"
)

// DefaultCartService keeps per-identity carts in Redis. The cart is created
// empty on first access and cleared only after a booking is durably
// committed.
type DefaultCartService struct {
	Client  *redis.Client
	Catalog catalogRepo.CatalogRepository
	Events  Publisher
}

func cartKey(userKey string) string {
	return utils.CartKeyPrefix + userKey
}

func (s *DefaultCartService) load(ctx context.Context, userKey string) ([]models.CartItem, error) {
	data, err := s.Client.Get(ctx, cartKey(userKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.CartItem{}, nil
		}
		return nil, NewStorageError(fmt.Sprintf("cart fetch failed: %v", err))
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, NewStorageError(fmt.Sprintf("cart parse failed: %v", err))
	}
	return items, nil
}

func (s *DefaultCartService) save(ctx context.Context, userKey string, items []models.CartItem) (models.Cart, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return models.Cart{}, NewStorageError(fmt.Sprintf("cart marshal failed: %v", err))
	}
	if err := s.Client.Set(ctx, cartKey(userKey), data, utils.CartTTL).Err(); err != nil {
		return models.Cart{}, NewStorageError(fmt.Sprintf("cart store failed: %v", err))
	}

	cart := models.Cart{UserKey: userKey, Items: items, UpdatedAt: time.Now()}
	if s.Events != nil {
		_ = s.Events.CartChanged(ctx, models.CartChangedEvent{
			UserKey:   userKey,
			ItemCount: len(items),
			At:        cart.UpdatedAt,
		})
	}
	return cart, nil
}

func (s *DefaultCartService) Get(ctx context.Context, userKey string) (models.Cart, error) {
	items, err := s.load(ctx, userKey)
	if err != nil {
		return models.Cart{}, err
	}
	return models.Cart{UserKey: userKey, Items: items}, nil
}

// AddItem resolves the catalog entry and appends it. Adding the same catalog
// entry twice is a no-op; items are immutable once added except for removal.
func (s *DefaultCartService) AddItem(ctx context.Context, userKey, testID string) (models.Cart, error) {
	test, err := s.Catalog.GetTestByID(ctx, testID)
	if err != nil {
		return models.Cart{}, NewValidationError(fmt.Sprintf("unknown catalog item %q", testID))
	}

	items, err := s.load(ctx, userKey)
	if err != nil {
		return models.Cart{}, err
	}
	for _, item := range items {
		if item.ID == test.ID {
			return models.Cart{UserKey: userKey, Items: items}, nil
		}
	}

	kind := test.Kind
	if kind == "" {
		kind = models.ItemKindTest
		if len(test.IncludedTestNames) > 0 {
			kind = models.ItemKindPackage
		}
	}
	items = append(items, models.CartItem{
		ID:                test.ID,
		Kind:              kind,
		Name:              test.Name,
		Category:          test.NormalizedCategory(),
		Price:             test.Price,
		LabPrices:         test.LabPrices,
		IncludedTestNames: test.IncludedTestNames,
	})
	return s.save(ctx, userKey, items)
}

func (s *DefaultCartService) RemoveItem(ctx context.Context, userKey, itemID string) (models.Cart, error) {
	items, err := s.load(ctx, userKey)
	if err != nil {
		return models.Cart{}, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return models.Cart{}, NewValidationError(fmt.Sprintf("item %q is not in the cart", itemID))
	}
	return s.save(ctx, userKey, kept)
}

func (s *DefaultCartService) Clear(ctx context.Context, userKey string) error {
	if err := s.Client.Del(ctx, cartKey(userKey)).Err(); err != nil {
		return NewStorageError(fmt.Sprintf("cart clear failed: %v", err))
	}
	if s.Events != nil {
		_ = s.Events.CartChanged(ctx, models.CartChangedEvent{
			UserKey: userKey,
			At:      time.Now(),
		})
	}
	return nil
}

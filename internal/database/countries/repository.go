// Package countries resolves country names and codes to country IDs.
//
// Lookups are cached in a fixed-size LRU since a feed run asks for the same
// handful of countries thousands of times.
package countries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/mrlokans/eventsync/internal/entities"
)

const cacheSize = 256

// Repository handles country lookups.
type Repository struct {
	db    *gorm.DB
	cache *lru.Cache[string, uint]
}

// NewRepository creates a new countries repository.
func NewRepository(db *gorm.DB) *Repository {
	cache, err := lru.New[string, uint](cacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Repository{db: db, cache: cache}
}

// IDByName returns the ID of the country whose name equals name,
// ignoring case.
func (r *Repository) IDByName(ctx context.Context, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, entities.ErrNotFound
	}
	return r.lookup(ctx, "name:"+strings.ToLower(name), "LOWER(name) = LOWER(?)", name)
}

// IDByCode returns the ID of the country with the ISO 3166 alpha-2 code.
func (r *Repository) IDByCode(ctx context.Context, code string) (uint, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, entities.ErrNotFound
	}
	return r.lookup(ctx, "code:"+code, "code = ?", code)
}

func (r *Repository) lookup(ctx context.Context, cacheKey, where string, arg string) (uint, error) {
	if id, ok := r.cache.Get(cacheKey); ok {
		return id, nil
	}

	var country entities.Country
	err := r.db.WithContext(ctx).Where(where, arg).First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, entities.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup country %q: %w", arg, err)
	}

	r.cache.Add(cacheKey, country.ID)
	return country.ID, nil
}

// List returns all countries ordered by name.
func (r *Repository) List(ctx context.Context) ([]entities.Country, error) {
	var list []entities.Country
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

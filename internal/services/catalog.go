package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm"

	"keepers-ledger/internal/cache"
	"keepers-ledger/internal/db"
	"keepers-ledger/internal/logger"
)

// CatalogFilter narrows a catalog listing. Filtering and pagination always
// happen in memory over the cached collection; the database only ever
// serves the full unfiltered set.
type CatalogFilter struct {
	Query    string
	Category string
	Page     int
	PerPage  int
}

// Catalog is the shared read-through-cache core behind every
// reference-data kind. The whole collection is cached under one fixed key
// with a fixed absolute TTL; every write refreshes storage first and then
// drops the cached collection, partition keys included. Collection sizes
// are small and writes are rare admin actions, so coarse invalidation and
// the un-locked populate race are both acceptable.
type Catalog[T db.CatalogRow] struct {
	db         *gorm.DB
	log        *logger.Logger
	cache      cache.Cache
	ttl        time.Duration
	kind       string
	partitions []string
	categoryOf func(T) string
}

func newCatalog[T db.CatalogRow](conn *gorm.DB, log *logger.Logger, c cache.Cache, ttl time.Duration, kind string) *Catalog[T] {
	return &Catalog[T]{
		db:    conn,
		log:   log.With("service", kind),
		cache: c,
		ttl:   ttl,
		kind:  kind,
	}
}

func (c *Catalog[T]) collectionKey() string {
	return "catalog:" + c.kind + ":all"
}

func (c *Catalog[T]) partitionKey(category string) string {
	return "catalog:" + c.kind + ":category:" + category
}

func (c *Catalog[T]) isPartition(category string) bool {
	for _, p := range c.partitions {
		if p == category {
			return true
		}
	}
	return false
}

func (c *Catalog[T]) cacheKeys() []string {
	keys := []string{c.collectionKey()}
	for _, p := range c.partitions {
		keys = append(keys, c.partitionKey(p))
	}
	return keys
}

// List applies the filter in memory on every call, cached or not. A
// category filter on a kind without a category dimension is rejected
// rather than silently ignored.
func (c *Catalog[T]) List(ctx context.Context, f CatalogFilter) ([]T, int64, error) {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	if category != "" && c.categoryOf == nil {
		return nil, 0, ErrInvalidArgument
	}
	rows, err := c.loadCollection(ctx, category)
	if err != nil {
		return nil, 0, err
	}
	if category != "" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if strings.EqualFold(c.categoryOf(row), category) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		filtered := rows[:0:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.RowName()), q) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	total := int64(len(rows))
	rows = paginate(rows, f.Page, f.PerPage)
	return rows, total, nil
}

// loadCollection is the read-through path. A category naming one of the
// kind's cache partitions reads its own key; everything else shares the
// collection key and leaves filtering to List. On a miss the full set is
// loaded from storage and the requested slice cached under the key that
// missed.
func (c *Catalog[T]) loadCollection(ctx context.Context, category string) ([]T, error) {
	key := c.collectionKey()
	partitioned := c.isPartition(category)
	if partitioned {
		key = c.partitionKey(category)
	}

	if raw, ok := c.cache.Get(ctx, key); ok {
		var rows []T
		if err := json.Unmarshal(raw, &rows); err == nil {
			return rows, nil
		}
		// Undecodable entry: drop it and fall through to storage.
		c.cache.Delete(ctx, key)
	}

	var rows []T
	if err := c.db.WithContext(ctx).Order("name asc").Find(&rows).Error; err != nil {
		c.log.Error("catalog load failed", "kind", c.kind, "error", err)
		return nil, err
	}
	if partitioned {
		matching := rows[:0:0]
		for _, row := range rows {
			if strings.EqualFold(c.categoryOf(row), category) {
				matching = append(matching, row)
			}
		}
		rows = matching
	}

	if raw, err := json.Marshal(rows); err == nil {
		c.cache.Set(ctx, key, raw, c.ttl)
	}
	return rows, nil
}

func (c *Catalog[T]) Get(ctx context.Context, id uint) (*T, error) {
	var row T
	err := c.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		c.log.Error("catalog lookup failed", "kind", c.kind, "id", id, "error", err)
		return nil, err
	}
	return &row, nil
}

// Create inserts a row after a pre-write name check. The check-then-insert
// window is accepted for these low-contention admin writes; the unique
// index on name still decides concurrent duplicates, surfacing the loser
// as a conflict.
func (c *Catalog[T]) Create(ctx context.Context, row *T) error {
	if err := c.ensureUniqueName(ctx, (*row).RowName(), 0); err != nil {
		return err
	}
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		c.log.Error("catalog create failed", "kind", c.kind, "name", (*row).RowName(), "error", err)
		return err
	}
	c.cache.Delete(ctx, c.cacheKeys()...)
	return nil
}

func (c *Catalog[T]) Update(ctx context.Context, row *T) error {
	id := (*row).RowID()
	if id == 0 {
		return ErrInvalidArgument
	}
	var existing T
	if err := c.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		c.log.Error("catalog lookup failed", "kind", c.kind, "id", id, "error", err)
		return err
	}
	if err := c.ensureUniqueName(ctx, (*row).RowName(), id); err != nil {
		return err
	}
	// Save writes every column; keep the original creation timestamp.
	if f := reflect.ValueOf(row).Elem().FieldByName("CreatedAt"); f.IsValid() {
		f.Set(reflect.ValueOf(existing).FieldByName("CreatedAt"))
	}
	if err := c.db.WithContext(ctx).Save(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		c.log.Error("catalog update failed", "kind", c.kind, "id", id, "error", err)
		return err
	}
	c.cache.Delete(ctx, c.cacheKeys()...)
	return nil
}

func (c *Catalog[T]) Delete(ctx context.Context, id uint) error {
	res := c.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		c.log.Error("catalog delete failed", "kind", c.kind, "id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	c.cache.Delete(ctx, c.cacheKeys()...)
	return nil
}

func (c *Catalog[T]) ensureUniqueName(ctx context.Context, name string, excludeID uint) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidArgument
	}
	var count int64
	err := c.db.WithContext(ctx).Model(new(T)).
		Where("lower(name) = lower(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	if err != nil {
		c.log.Error("catalog name check failed", "kind", c.kind, "name", name, "error", err)
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	return nil
}

func paginate[T any](rows []T, page, perPage int) []T {
	if perPage <= 0 {
		return rows
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(rows) {
		return nil
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

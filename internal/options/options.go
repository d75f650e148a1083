// Package options remembers category and subcategory strings a user has typed
// before, so they can be offered again as suggestions.
//
// Remember is a load-modify-store sequence with no lock around it: two
// concurrent calls on the same list can each read the old set and the later
// write wins, dropping the other value. Suggestions are a convenience, so this
// is accepted rather than guarded.
package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"wardrobe-client/internal/storage"
)

// List names a suggestion list. The value is its storage key.
type List string

const (
	Categories    List = "categories"
	Subcategories List = "subcategories"
)

// ParseList maps a list name to a List.
func ParseList(name string) (List, error) {
	switch List(name) {
	case Categories, Subcategories:
		return List(name), nil
	default:
		return "", fmt.Errorf("unknown option list %q", name)
	}
}

// Cache persists option lists in device storage.
type Cache struct {
	kv     storage.Store
	logger *slog.Logger
}

// NewCache creates an option cache over kv.
func NewCache(kv storage.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{kv: kv, logger: logger.With("component", "options")}
}

// Load returns the stored values in insertion order. A missing or corrupt
// list reads as empty.
func (c *Cache) Load(ctx context.Context, list List) ([]string, error) {
	raw, err := c.kv.Get(ctx, string(list))
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", list, err)
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		c.logger.Warn("Discarding corrupt option list", "list", list, "error", err)
		return []string{}, nil
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Remember appends value to list unless an identical (case-sensitive) entry
// is already present. Empty values are ignored.
func (c *Cache) Remember(ctx context.Context, list List, value string) error {
	if value == "" {
		return nil
	}

	values, err := c.Load(ctx, list)
	if err != nil {
		return err
	}
	for _, v := range values {
		if v == value {
			return nil
		}
	}
	values = append(values, value)

	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode %s: %w", list, err)
	}
	if err := c.kv.Set(ctx, string(list), raw); err != nil {
		return fmt.Errorf("store %s: %w", list, err)
	}

	c.logger.Debug("Remembered option", "list", list, "value", value, "size", len(values))
	return nil
}

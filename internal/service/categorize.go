package service

import (
	"context"
	"log/slog"
	"strings"

	"wardrobe-client/internal/model"
	"wardrobe-client/internal/options"
	"wardrobe-client/internal/session"
	"wardrobe-client/pkg/apierror"
)

// Categorization messages shown to the user.
const (
	MsgFillAllFields    = "Please fill all fields"
	MsgInvalidOwnership = "Ownership must be own or wishlist."
)

// CategorizeFlow assigns ownership and categories to a saved item and
// remembers the typed values as future suggestions.
type CategorizeFlow struct {
	backend  ItemBackend
	sessions *session.Store
	options  *options.Cache
	logger   *slog.Logger
}

// NewCategorizeFlow creates a categorize flow.
func NewCategorizeFlow(backend ItemBackend, sessions *session.Store, opts *options.Cache, logger *slog.Logger) *CategorizeFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategorizeFlow{
		backend:  backend,
		sessions: sessions,
		options:  opts,
		logger:   logger.With("component", "categorize"),
	}
}

// Validate checks c without touching the network and returns the trimmed form.
func (f *CategorizeFlow) Validate(itemID string, c model.Categorization) (model.Categorization, error) {
	c = model.Categorization{
		Ownership:   model.ParseOwnership(string(c.Ownership)),
		Category:    strings.TrimSpace(c.Category),
		Subcategory: strings.TrimSpace(c.Subcategory),
	}

	var missing []apierror.FieldError
	if strings.TrimSpace(itemID) == "" {
		missing = append(missing, apierror.FieldError{Field: "item_id", Message: "required"})
	}
	if c.Ownership == model.OwnershipUnset {
		missing = append(missing, apierror.FieldError{Field: "ownership", Message: "required"})
	}
	if c.Category == "" {
		missing = append(missing, apierror.FieldError{Field: "category", Message: "required"})
	}
	if c.Subcategory == "" {
		missing = append(missing, apierror.FieldError{Field: "subcategory", Message: "required"})
	}
	if len(missing) > 0 {
		return c, apierror.Validation(MsgFillAllFields, missing...)
	}
	if !c.Ownership.Valid() {
		return c, apierror.Validation(MsgInvalidOwnership,
			apierror.FieldError{Field: "ownership", Message: "must be own or wishlist"})
	}
	return c, nil
}

// Submit validates c, sends the assignment and, on success, remembers the
// category and subcategory. Failing to remember is logged, not returned.
func (f *CategorizeFlow) Submit(ctx context.Context, itemID string, c model.Categorization) error {
	c, err := f.Validate(itemID, c)
	if err != nil {
		return err
	}
	userID, err := f.sessions.UserID(ctx)
	if err != nil {
		return err
	}

	err = f.backend.AssignCategory(ctx, model.CategoryAssignment{
		ItemID:      itemID,
		Ownership:   c.Ownership,
		Category:    c.Category,
		Subcategory: c.Subcategory,
		UserID:      userID,
	})
	if err != nil {
		f.logger.Warn("Failed to assign category", "item_id", itemID, "kind", apierror.KindOf(err), "error", err)
		return err
	}

	if f.options != nil {
		if err := f.options.Remember(ctx, options.Categories, c.Category); err != nil {
			f.logger.Warn("Failed to remember category", "value", c.Category, "error", err)
		}
		if err := f.options.Remember(ctx, options.Subcategories, c.Subcategory); err != nil {
			f.logger.Warn("Failed to remember subcategory", "value", c.Subcategory, "error", err)
		}
	}

	f.logger.Info("Item categorized", "item_id", itemID, "ownership", c.Ownership, "category", c.Category)
	return nil
}

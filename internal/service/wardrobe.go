package service

import (
	"context"
	"log/slog"
	"strings"

	"wardrobe-client/internal/model"
	"wardrobe-client/internal/session"
	"wardrobe-client/pkg/apierror"
)

// WardrobeService browses saved items by ownership.
type WardrobeService struct {
	backend  ItemBackend
	sessions *session.Store
	logger   *slog.Logger
}

// NewWardrobeService creates a wardrobe service.
func NewWardrobeService(backend ItemBackend, sessions *session.Store, logger *slog.Logger) *WardrobeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WardrobeService{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("component", "wardrobe"),
	}
}

// Browse lists the user's items with the given ownership, filtered by the
// server. An unset ownership shows owned items.
func (s *WardrobeService) Browse(ctx context.Context, ownership model.Ownership) ([]model.Item, error) {
	if ownership == model.OwnershipUnset {
		ownership = model.OwnershipOwn
	}
	if !ownership.Valid() {
		return nil, apierror.Validation(MsgInvalidOwnership)
	}
	userID, err := s.sessions.UserID(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.backend.ListItemsByOwnership(ctx, userID, ownership)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Browsed wardrobe", "ownership", ownership, "count", len(items))
	return items, nil
}

// Greeting returns the name to greet the user with.
func (s *WardrobeService) Greeting(ctx context.Context) string {
	return s.sessions.DisplayName(ctx)
}

// Filter keeps items whose title, site, category or subcategory contains q,
// ignoring case. An empty q keeps everything.
func Filter(items []model.Item, q string) []model.Item {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		for _, field := range []string{item.Title, item.SiteName, item.Category, item.Subcategory} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

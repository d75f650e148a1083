package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/uid"
)

const (
	// ConfirmationPrefix is the prefix of delete confirmation tokens.
	ConfirmationPrefix = "del"

	// ConfirmationTTL is how long a delete confirmation stays valid.
	ConfirmationTTL = 5 * time.Minute

	// MsgConfirmationInvalid is returned for unknown, used or expired tokens.
	MsgConfirmationInvalid = "Delete confirmation not found or expired."
)

// DeleteConfirmation is the pending first step of a delete.
type DeleteConfirmation struct {
	Token     string    `json:"token"`
	ItemID    string    `json:"item_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeleteFlow is the two-step delete: Request issues a single-use token and
// nothing is sent until Confirm is called with it.
type DeleteFlow struct {
	backend ItemBackend
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]DeleteConfirmation
}

// NewDeleteFlow creates a delete flow with the default confirmation TTL.
func NewDeleteFlow(backend ItemBackend, logger *slog.Logger) *DeleteFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteFlow{
		backend: backend,
		logger:  logger.With("component", "delete"),
		ttl:     ConfirmationTTL,
		now:     time.Now,
		pending: make(map[string]DeleteConfirmation),
	}
}

// Request starts a delete of itemID.
func (f *DeleteFlow) Request(itemID string) DeleteConfirmation {
	c := DeleteConfirmation{
		Token:     uid.WithPrefix(ConfirmationPrefix),
		ItemID:    itemID,
		ExpiresAt: f.now().Add(f.ttl),
	}

	f.mu.Lock()
	f.pending[c.Token] = c
	f.mu.Unlock()

	f.logger.Debug("Delete requested", "item_id", itemID, "expires", c.ExpiresAt)
	return c
}

// Confirm deletes the item the token was issued for and returns its id.
// The token is consumed on success. If the backend call fails the token stays
// valid so the user can retry.
func (f *DeleteFlow) Confirm(ctx context.Context, token string) (string, error) {
	return f.ConfirmItem(ctx, "", token)
}

// ConfirmItem is Confirm with a check that the token was issued for itemID.
// A token for a different item is rejected and left pending.
func (f *DeleteFlow) ConfirmItem(ctx context.Context, itemID, token string) (string, error) {
	c, err := f.take(token, itemID)
	if err != nil {
		return "", err
	}

	if err := f.backend.DeleteItem(ctx, c.ItemID); err != nil {
		f.mu.Lock()
		if f.now().Before(c.ExpiresAt) {
			f.pending[c.Token] = c
		}
		f.mu.Unlock()
		f.logger.Warn("Failed to delete item", "item_id", c.ItemID, "kind", apierror.KindOf(err), "error", err)
		return "", err
	}

	f.logger.Info("Item deleted", "item_id", c.ItemID)
	return c.ItemID, nil
}

// Cancel discards a pending confirmation. It reports whether one existed.
func (f *DeleteFlow) Cancel(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[token]; !ok {
		return false
	}
	delete(f.pending, token)
	return true
}

// Pending returns the number of outstanding confirmations.
func (f *DeleteFlow) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Purge drops expired confirmations and returns how many were removed.
func (f *DeleteFlow) Purge() int {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	removed := 0
	for token, c := range f.pending {
		if !now.Before(c.ExpiresAt) {
			delete(f.pending, token)
			removed++
		}
	}
	return removed
}

// take removes and returns a live confirmation. A non-empty itemID must match.
func (f *DeleteFlow) take(token, itemID string) (DeleteConfirmation, error) {
	if !strings.HasPrefix(token, ConfirmationPrefix+"_") {
		return DeleteConfirmation{}, apierror.Validation(MsgConfirmationInvalid)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.pending[token]
	if !ok || (itemID != "" && c.ItemID != itemID) {
		return DeleteConfirmation{}, apierror.Validation(MsgConfirmationInvalid)
	}
	delete(f.pending, token)
	if !f.now().Before(c.ExpiresAt) {
		return DeleteConfirmation{}, apierror.Validation(MsgConfirmationInvalid)
	}
	return c, nil
}

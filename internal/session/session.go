// Package session persists the signed-in user's identity in device storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wardrobe-client/internal/model"
	"wardrobe-client/internal/storage"
	"wardrobe-client/pkg/apierror"
)

// Storage keys, shared with every earlier install of the app.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyFirstName = "first_name"
)

// Store reads and writes the session keys.
type Store struct {
	kv     storage.Store
	logger *slog.Logger
}

// NewStore creates a session store over kv.
func NewStore(kv storage.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger.With("component", "session")}
}

// Load returns the current session. A missing or unreadable user id is an
// auth error; name fields are best effort.
func (s *Store) Load(ctx context.Context) (*model.Session, error) {
	userID, err := s.UserID(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		UserID:      userID,
		Username:    s.optional(ctx, KeyUsername),
		DisplayName: s.optional(ctx, KeyFirstName),
	}, nil
}

// UserID returns the stored user id or an auth error.
func (s *Store) UserID(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, KeyUserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read user id", "error", err)
		}
		return "", apierror.Auth("")
	}
	if len(raw) == 0 {
		return "", apierror.Auth("")
	}
	return string(raw), nil
}

// DisplayName returns the stored first name, or the default greeting name.
func (s *Store) DisplayName(ctx context.Context) string {
	if name := s.optional(ctx, KeyFirstName); name != "" {
		return name
	}
	return model.DefaultDisplayName
}

// Save persists all session keys.
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	if sess.UserID == "" {
		return apierror.Auth("")
	}
	values := []struct{ key, value string }{
		{KeyUserID, sess.UserID},
		{KeyUsername, sess.Username},
		{KeyFirstName, sess.DisplayName},
	}
	for _, v := range values {
		if err := s.kv.Set(ctx, v.key, []byte(v.value)); err != nil {
			return fmt.Errorf("save session %s: %w", v.key, err)
		}
	}
	s.logger.Info("Session saved", "user_id", sess.UserID)
	return nil
}

// Clear removes the session keys. Suggestion lists are kept.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range []string{KeyUserID, KeyUsername, KeyFirstName} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear session %s: %w", key, err)
		}
	}
	s.logger.Info("Session cleared")
	return nil
}

func (s *Store) optional(ctx context.Context, key string) string {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read session key", "key", key, "error", err)
		}
		return ""
	}
	return string(raw)
}

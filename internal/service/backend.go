package service

import (
	"context"

	"wardrobe-client/internal/model"
)

// ItemBackend is the subset of the backend client the item flows use.
type ItemBackend interface {
	SaveItem(ctx context.Context, rawURL, userID string) (*model.Item, error)
	ListItems(ctx context.Context, userID string) ([]model.Item, error)
	ListItemsByOwnership(ctx context.Context, userID string, ownership model.Ownership) ([]model.Item, error)
	AssignCategory(ctx context.Context, a model.CategoryAssignment) error
	DeleteItem(ctx context.Context, itemID string) error
}

// AuthBackend is the subset of the backend client the auth flows use.
type AuthBackend interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error)
	SocialLogin(ctx context.Context, profile model.SocialProfile) (*model.AuthResult, error)
}

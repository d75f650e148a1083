package backend

import (
	"context"
	"net/http"
	"net/url"

	"wardrobe-client/internal/model"
	"wardrobe-client/pkg/apierror"
)

type saveItemRequest struct {
	URL    string `json:"url"`
	UserID string `json:"users_id"`
}

// SaveItem submits a product URL for server-side extraction.
func (c *Client) SaveItem(ctx context.Context, rawURL, userID string) (*model.Item, error) {
	const fallback = "Could not save item."

	var item model.Item
	err := c.do(ctx, call{
		op:       "save_item",
		method:   http.MethodPost,
		path:     "/save-item/",
		body:     saveItemRequest{URL: rawURL, UserID: userID},
		out:      &item,
		fallback: fallback,
	})
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, apierror.Application(http.StatusOK, "", fallback)
	}
	return &item, nil
}

// ListItems returns every item the user has saved.
func (c *Client) ListItems(ctx context.Context, userID string) ([]model.Item, error) {
	var items []model.Item
	err := c.do(ctx, call{
		op:       "list_items",
		method:   http.MethodGet,
		path:     "/items/" + url.PathEscape(userID),
		out:      &items,
		fallback: "Could not load items.",
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// ListItemsByOwnership returns the user's items filtered server-side.
func (c *Client) ListItemsByOwnership(ctx context.Context, userID string, ownership model.Ownership) ([]model.Item, error) {
	var items []model.Item
	err := c.do(ctx, call{
		op:       "list_items_by_ownership",
		method:   http.MethodGet,
		path:     "/items/" + url.PathEscape(userID) + "/ownership/" + url.PathEscape(string(ownership)),
		out:      &items,
		fallback: "Could not load items.",
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// AssignCategory overwrites an item's ownership and categories.
func (c *Client) AssignCategory(ctx context.Context, a model.CategoryAssignment) error {
	return c.do(ctx, call{
		op:       "assign_category",
		method:   http.MethodPost,
		path:     "/items/assign-category/",
		body:     a,
		fallback: "Failed to save.",
	})
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, call{
		op:       "delete_item",
		method:   http.MethodDelete,
		path:     "/items/" + url.PathEscape(itemID),
		fallback: "Unable to delete item.",
	})
}

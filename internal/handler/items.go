package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wardrobe-client/internal/lifetime"
	"wardrobe-client/internal/model"
	"wardrobe-client/internal/service"
	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/response"
)

// ItemHandler exposes the capture, categorize, delete and share flows.
// Every backend call runs in the current view scope, so work started before
// a sign-out never lands in the next session's list.
type ItemHandler struct {
	pipeline   *service.CapturePipeline
	categorize *service.CategorizeFlow
	deletes    *service.DeleteFlow
	wardrobe   *service.WardrobeService
	views      *lifetime.Slot
}

// NewItemHandler creates an item handler.
func NewItemHandler(
	pipeline *service.CapturePipeline,
	categorize *service.CategorizeFlow,
	deletes *service.DeleteFlow,
	wardrobe *service.WardrobeService,
	views *lifetime.Slot,
) *ItemHandler {
	return &ItemHandler{
		pipeline:   pipeline,
		categorize: categorize,
		deletes:    deletes,
		wardrobe:   wardrobe,
		views:      views,
	}
}

// CaptureRequest is the body of POST /api/v1/capture.
type CaptureRequest struct {
	URL string `json:"url"`
}

// Capture handles POST /api/v1/capture
func (h *ItemHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := lifetime.Run(r.Context(), h.views.Current(), func(ctx context.Context) (*service.CaptureResult, error) {
		return h.pipeline.Submit(ctx, req.URL)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if res.Duplicate {
		response.OK(w, res)
		return
	}
	response.Created(w, res)
}

// List handles GET /api/v1/items
//
// Without ?ownership= it returns the capture list as loaded. With it, the
// wardrobe tab is fetched from the backend. ?q= filters either locally.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	ownership := model.ParseOwnership(r.URL.Query().Get("ownership"))

	var items []model.Item
	if ownership == model.OwnershipUnset {
		items = h.pipeline.Items()
	} else {
		var err error
		items, err = lifetime.Run(r.Context(), h.views.Current(), func(ctx context.Context) ([]model.Item, error) {
			return h.wardrobe.Browse(ctx, ownership)
		})
		if err != nil {
			writeError(w, err)
			return
		}
	}

	items = service.Filter(items, q)
	response.List(w, items, len(items), q)
}

// Refresh handles POST /api/v1/items/refresh
func (h *ItemHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	items, err := lifetime.Run(r.Context(), h.views.Current(), h.pipeline.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	response.List(w, items, len(items), "")
}

// Categorize handles POST /api/v1/items/{id}/category
func (h *ItemHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var req model.Categorization
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	_, err := lifetime.Run(r.Context(), h.views.Current(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.categorize.Submit(ctx, itemID, req)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Submit already validated and trimmed; mirror the stored values locally.
	c, _ := h.categorize.Validate(itemID, req)
	h.pipeline.Update(itemID, func(item *model.Item) {
		item.Ownership = c.Ownership
		item.Category = c.Category
		item.Subcategory = c.Subcategory
	})

	response.OK(w, map[string]interface{}{
		"item_id":     itemID,
		"ownership":   c.Ownership,
		"category":    c.Category,
		"subcategory": c.Subcategory,
	})
}

// RequestDelete handles POST /api/v1/items/{id}/delete-request
func (h *ItemHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	response.Created(w, h.deletes.Request(itemID))
}

// ConfirmDelete handles DELETE /api/v1/items/{id}?confirm={token}
func (h *ItemHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("confirm")
	if token == "" {
		writeError(w, apierror.BadRequest("confirm token is required"))
		return
	}

	_, err := lifetime.Run(r.Context(), h.views.Current(), func(ctx context.Context) (string, error) {
		return h.deletes.ConfirmItem(ctx, itemID, token)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.pipeline.Remove(itemID)
	response.NoContent(w)
}

// CancelDelete handles DELETE /api/v1/delete-requests/{token}
func (h *ItemHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	if !h.deletes.Cancel(chi.URLParam(r, "token")) {
		writeError(w, apierror.NotFound(service.MsgConfirmationInvalid))
		return
	}
	response.NoContent(w)
}

// ShareResponse is the share sheet payload for one item.
type ShareResponse struct {
	Text  string `json:"text"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Share handles GET /api/v1/items/{id}/share
func (h *ItemHandler) Share(w http.ResponseWriter, r *http.Request) {
	item, ok := h.pipeline.Find(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, apierror.NotFound("Unable to share the item."))
		return
	}
	response.OK(w, ShareResponse{
		Text:  item.ShareText(),
		Title: item.Title,
		URL:   item.SourceURL,
	})
}

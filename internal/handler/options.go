package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wardrobe-client/internal/options"
	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/response"
)

// OptionsHandler serves category and subcategory suggestions.
type OptionsHandler struct {
	cache *options.Cache
}

// NewOptionsHandler creates an options handler.
func NewOptionsHandler(cache *options.Cache) *OptionsHandler {
	return &OptionsHandler{cache: cache}
}

// List handles GET /api/v1/options/{list}
func (h *OptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := options.ParseList(chi.URLParam(r, "list"))
	if err != nil {
		writeError(w, apierror.NotFound(err.Error()))
		return
	}

	values, err := h.cache.Load(r.Context(), list)
	if err != nil {
		writeError(w, apierror.ServiceUnavailable("suggestions are unavailable"))
		return
	}
	response.List(w, values, len(values), "")
}

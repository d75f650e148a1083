package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"wardrobe-client/pkg/apierror"
	"wardrobe-client/pkg/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierror.BadRequest("invalid request body")
	}
	return nil
}

// writeError renders err. Work dropped because the session changed while it
// was running is reported as a conflict rather than an internal error.
func writeError(w http.ResponseWriter, err error) {
	if _, ok := apierror.As(err); !ok && errors.Is(err, context.Canceled) {
		err = &apierror.Error{
			Kind:       apierror.KindInternal,
			StatusCode: http.StatusConflict,
			Code:       "VIEW_CLOSED",
			Message:    "The session changed before the request finished.",
		}
	}
	response.Error(w, err)
}

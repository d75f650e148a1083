package handler

import (
	"context"
	"net/http"

	"wardrobe-client/internal/lifetime"
	"wardrobe-client/internal/model"
	"wardrobe-client/internal/service"
	"wardrobe-client/pkg/response"
)

// SessionHandler exposes sign-in, sign-up and sign-out.
type SessionHandler struct {
	auth     *service.AuthService
	pipeline *service.CapturePipeline
	views    *lifetime.Slot
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(auth *service.AuthService, pipeline *service.CapturePipeline, views *lifetime.Slot) *SessionHandler {
	return &SessionHandler{auth: auth, pipeline: pipeline, views: views}
}

// SessionResponse is the signed-in user as shown to the front end.
type SessionResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Greeting  string `json:"greeting"`
}

func newSessionResponse(s *model.Session) SessionResponse {
	return SessionResponse{
		UserID:    s.UserID,
		Username:  s.Username,
		FirstName: s.DisplayName,
		Greeting:  s.Greeting(),
	}
}

// Login handles POST /api/v1/session/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.signIn(w, r, func(ctx context.Context) (*model.Session, error) {
		return h.auth.Login(ctx, req)
	})
}

// Signup handles POST /api/v1/session/signup
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.signIn(w, r, func(ctx context.Context) (*model.Session, error) {
		return h.auth.Signup(ctx, req)
	})
}

// Social handles POST /api/v1/session/social
func (h *SessionHandler) Social(w http.ResponseWriter, r *http.Request) {
	var req model.SocialProfile
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	h.signIn(w, r, func(ctx context.Context) (*model.Session, error) {
		return h.auth.SocialLogin(ctx, req)
	})
}

// Logout handles POST /api/v1/session/logout
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.views.Renew()
	h.pipeline.Reset()
	response.NoContent(w)
}

// Current handles GET /api/v1/session
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, err := h.auth.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, newSessionResponse(sess))
}

// signIn runs an auth flow and, on success, starts a fresh view for the new
// user: in-flight work from the previous session is discarded. The new user's
// items are loaded before responding so the first capture sees them.
// A failed load does not fail the sign-in.
func (h *SessionHandler) signIn(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (*model.Session, error)) {
	sess, err := fn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	scope := h.views.Renew()
	h.pipeline.Reset()
	_, _ = lifetime.Run(r.Context(), scope, h.pipeline.Refresh)
	response.OK(w, newSessionResponse(sess))
}

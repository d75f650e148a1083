package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"wardrobe-client/internal/model"
	"wardrobe-client/internal/session"
	"wardrobe-client/pkg/apierror"
)

// Auth messages shown to the user.
const (
	MsgLoginFieldsRequired  = "Please enter both email/username and password."
	MsgPasswordTooShort     = "Password must be at least 6 characters."
	MsgSignupFieldsRequired = "Email, username, and password are required."
	MsgSocialLoginFailed    = "Could not complete social login."
)

// MinPasswordLength is the shortest password accepted for email login.
const MinPasswordLength = 6

// AuthService signs users in and out and keeps the device session.
type AuthService struct {
	backend  AuthBackend
	sessions *session.Store
	logger   *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(backend AuthBackend, sessions *session.Store, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
	}
}

// Login signs in with an email or username and a password.
func (s *AuthService) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	creds.EmailOrUsername = strings.TrimSpace(creds.EmailOrUsername)
	if creds.EmailOrUsername == "" || creds.Password == "" {
		return nil, apierror.Validation(MsgLoginFieldsRequired)
	}
	if len(creds.Password) < MinPasswordLength {
		return nil, apierror.Validation(MsgPasswordTooShort,
			apierror.FieldError{Field: "password", Message: "too short"})
	}

	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "email", res, "Invalid credentials.")
}

// Signup creates an account and signs in to it.
func (s *AuthService) Signup(ctx context.Context, reg model.Registration) (*model.Session, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	if reg.Email == "" || reg.Username == "" || reg.Password == "" {
		return nil, apierror.Validation(MsgSignupFieldsRequired)
	}

	res, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "signup", res, "Could not create account.")
}

// SocialLogin signs in with a profile from an identity provider. A missing
// first name becomes "User" and a missing username falls back to the email.
func (s *AuthService) SocialLogin(ctx context.Context, profile model.SocialProfile) (*model.Session, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Username = strings.TrimSpace(profile.Username)
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)
	if profile.Username == "" {
		profile.Username = profile.Email
	}
	if profile.FirstName == "" {
		profile.FirstName = model.DefaultDisplayName
	}
	if profile.Email == "" && profile.Username == "" {
		return nil, apierror.Validation(MsgSocialLoginFailed)
	}

	res, err := s.backend.SocialLogin(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, "social", res, MsgSocialLoginFailed)
}

// Logout clears the device session. Suggestion lists survive.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Current returns the signed-in session or an auth error.
func (s *AuthService) Current(ctx context.Context) (*model.Session, error) {
	return s.sessions.Load(ctx)
}

func (s *AuthService) establish(ctx context.Context, method string, res *model.AuthResult, fallback string) (*model.Session, error) {
	if res == nil || res.UserID == "" {
		return nil, apierror.Application(http.StatusOK, "", fallback)
	}
	sess := res.Session()
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Error("Failed to persist session", "method", method, "error", err)
		return nil, apierror.InternalError(apierror.GenericMessage)
	}
	s.logger.Info("Signed in", "method", method, "user_id", sess.UserID)
	return &sess, nil
}

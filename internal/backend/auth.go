package backend

import (
	"context"
	"net/http"

	"wardrobe-client/internal/model"
	"wardrobe-client/pkg/apierror"
)

// Login exchanges credentials for the user's identity.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		path:     "/token/",
		body:     creds,
		out:      &out,
		fallback: "Invalid credentials.",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResult, error) {
	var out model.AuthResult
	err := c.do(ctx, call{
		op:       "register",
		method:   http.MethodPost,
		path:     "/register/",
		body:     reg,
		out:      &out,
		fallback: "Could not create account.",
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SocialLogin signs in with a profile obtained from an identity provider.
// The server's message is not shown for this flow; any rejection, including
// a success status without a user id, reads the same to the user.
func (c *Client) SocialLogin(ctx context.Context, profile model.SocialProfile) (*model.AuthResult, error) {
	const fallback = "Could not complete social login."

	var out model.AuthResult
	err := c.do(ctx, call{
		op:       "social_login",
		method:   http.MethodPost,
		path:     "/social-login",
		body:     profile,
		out:      &out,
		fallback: fallback,
	})
	if err != nil {
		if apiErr, ok := apierror.As(err); ok && apiErr.Kind == apierror.KindApplication {
			return nil, apierror.Application(apiErr.Upstream, "", fallback)
		}
		return nil, err
	}
	if out.UserID == "" {
		return nil, apierror.Application(http.StatusOK, "", fallback)
	}
	return &out, nil
}

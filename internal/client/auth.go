package client

import (
	"context"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Signup registers a new account. The confirmation mismatch is the one
// validation handled client-side, as an immediate block before any
// network call. On success the session store is updated in a single
// atomic write.
func (c *Client) Signup(ctx context.Context, name, email, password, confirmPassword string) (model.Session, error) {
	if password != confirmPassword {
		return model.Session{}, apierror.NewValidation("passwords do not match", nil)
	}

	req := signupRequest{Name: name, Email: email, Password: password}
	if err := validateRequest(req); err != nil {
		return model.Session{}, err
	}

	var resp authResponse
	if err := c.post(ctx, "signup", "/api/auth/signup", req, &resp); err != nil {
		return model.Session{}, err
	}
	return c.establishSession(ctx, resp)
}

// Login authenticates and, on success, writes token and user into the
// session store together.
func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	req := loginRequest{Email: email, Password: password}
	if err := validateRequest(req); err != nil {
		return model.Session{}, err
	}

	var resp authResponse
	if err := c.post(ctx, "login", "/api/auth/login", req, &resp); err != nil {
		return model.Session{}, err
	}
	return c.establishSession(ctx, resp)
}

func (c *Client) establishSession(ctx context.Context, resp authResponse) (model.Session, error) {
	if resp.Token == "" || resp.User == nil {
		return model.Session{}, &apierror.Error{
			Kind:    apierror.MalformedResponse,
			Message: "auth response missing token or user",
		}
	}

	sess := model.Session{Token: resp.Token, User: resp.User}
	if c.session != nil {
		if err := c.session.Set(ctx, sess); err != nil {
			return model.Session{}, err
		}
	}
	return sess, nil
}

// Logout clears the local session. It is idempotent and performs no
// server-side revocation; the backend issues stateless tokens.
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil {
		return nil
	}
	return c.session.Clear(ctx)
}

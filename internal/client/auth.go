package client

import (
	"context"
	"net/http"

	"dentixpro/internal/apperr"
	"dentixpro/internal/model"
)

// Auth defines the account operations
type Auth interface {
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, name string) (*ProfileResponse, error)
	ChangePassword(ctx context.Context, req *PasswordChange) error
}

type authClient struct {
	client *BaseClient
}

func NewAuthClient(client *BaseClient) Auth {
	return &authClient{client: client}
}

// Login reports a rejected email/password pair as ErrInvalidCredentials.
func (c *authClient) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	resp, err := c.client.Post(ctx, "/auth/login", req)
	if err != nil {
		return nil, refine(err, http.StatusUnauthorized, apperr.ErrInvalidCredentials)
	}

	var out AuthResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup reports an already registered email as ErrDuplicateEmail.
func (c *authClient) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	resp, err := c.client.Post(ctx, "/auth/signup", req)
	if err != nil {
		return nil, refine(err, http.StatusConflict, apperr.ErrDuplicateEmail)
	}

	var out AuthResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *authClient) Me(ctx context.Context) (*model.User, error) {
	resp, err := c.client.Get(ctx, "/users/me")
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := DecodeResponse(resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *authClient) UpdateProfile(ctx context.Context, name string) (*ProfileResponse, error) {
	resp, err := c.client.Put(ctx, "/users/me", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *authClient) ChangePassword(ctx context.Context, req *PasswordChange) error {
	resp, err := c.client.Put(ctx, "/users/me/password", req)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

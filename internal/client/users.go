package client

import (
	"context"
	"net/http"
	"net/url"

	"dentixpro/internal/apperr"
	"dentixpro/internal/model"
)

// Users defines the admin user directory operations
type Users interface {
	List(ctx context.Context, opts ListOptions) (*model.Page[model.User], error)
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest) (*model.User, error)
	ResetPassword(ctx context.Context, id, newPassword string) error
}

type usersClient struct {
	client *BaseClient
}

func NewUsersClient(client *BaseClient) Users {
	return &usersClient{client: client}
}

func (c *usersClient) List(ctx context.Context, opts ListOptions) (*model.Page[model.User], error) {
	resp, err := c.client.Get(ctx, "/users"+opts.encode())
	if err != nil {
		return nil, err
	}

	var page model.Page[model.User]
	if err := DecodeResponse(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *usersClient) Get(ctx context.Context, id string) (*model.User, error) {
	resp, err := c.client.Get(ctx, "/users/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := DecodeResponse(resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update reports an email held by another account as ErrDuplicateEmail.
func (c *usersClient) Update(ctx context.Context, id string, req *UpdateUserRequest) (*model.User, error) {
	resp, err := c.client.Put(ctx, "/users/"+url.PathEscape(id), req)
	if err != nil {
		return nil, refine(err, http.StatusConflict, apperr.ErrDuplicateEmail)
	}

	var out ProfileResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *usersClient) ResetPassword(ctx context.Context, id, newPassword string) error {
	path := "/users/" + url.PathEscape(id) + "/reset-password"
	resp, err := c.client.Put(ctx, path, map[string]string{"new_password": newPassword})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

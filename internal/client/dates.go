package client

import (
	"context"
	"fmt"
	"net/url"

	"dentixpro/internal/model"
)

// Dates defines the appointment operations
type Dates interface {
	Create(ctx context.Context, req *CreateDateRequest) (*model.Appointment, error)
	CancelOwn(ctx context.Context, id string) error
	ListOwn(ctx context.Context, opts ListOptions) (*model.Page[model.Appointment], error)

	// admin only
	ListAll(ctx context.Context, opts ListOptions) (*model.Page[model.Appointment], error)
	Update(ctx context.Context, id string, req *UpdateDateRequest) (*model.Appointment, error)
	Complete(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
}

type datesClient struct {
	client *BaseClient
}

func NewDatesClient(client *BaseClient) Dates {
	return &datesClient{client: client}
}

func (c *datesClient) Create(ctx context.Context, req *CreateDateRequest) (*model.Appointment, error) {
	resp, err := c.client.Post(ctx, "/dates", req)
	if err != nil {
		return nil, err
	}

	var out CreateDateResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out.Date, nil
}

func (c *datesClient) CancelOwn(ctx context.Context, id string) error {
	resp, err := c.client.Delete(ctx, "/dates/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

func (c *datesClient) ListOwn(ctx context.Context, opts ListOptions) (*model.Page[model.Appointment], error) {
	return c.list(ctx, "/users/me/dates", opts)
}

func (c *datesClient) ListAll(ctx context.Context, opts ListOptions) (*model.Page[model.Appointment], error) {
	return c.list(ctx, "/admin/dates", opts)
}

func (c *datesClient) list(ctx context.Context, path string, opts ListOptions) (*model.Page[model.Appointment], error) {
	resp, err := c.client.Get(ctx, path+opts.encode())
	if err != nil {
		return nil, err
	}

	var page model.Page[model.Appointment]
	if err := DecodeResponse(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *datesClient) Update(ctx context.Context, id string, req *UpdateDateRequest) (*model.Appointment, error) {
	resp, err := c.client.Put(ctx, "/admin/dates/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out UpdateDateResponse
	if err := DecodeResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out.Date, nil
}

func (c *datesClient) Complete(ctx context.Context, id string) error {
	return c.adminAction(ctx, id, "complete")
}

func (c *datesClient) Cancel(ctx context.Context, id string) error {
	return c.adminAction(ctx, id, "cancel")
}

func (c *datesClient) adminAction(ctx context.Context, id, action string) error {
	path := fmt.Sprintf("/admin/dates/%s/%s", url.PathEscape(id), action)
	resp, err := c.client.Put(ctx, path, nil)
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}

package client

import (
	"net/url"
	"strconv"

	"dentixpro/internal/model"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Rol      model.Role `json:"rol,omitempty"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Msg         string     `json:"msg,omitempty"`
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

type ProfileResponse struct {
	Msg  string     `json:"msg"`
	User model.User `json:"user"`
}

type PasswordChange struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

type CreateDateRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

type CreateDateResponse struct {
	Msg  string            `json:"msg"`
	Date model.Appointment `json:"date"`
}

// UpdateDateRequest is the admin edit of an appointment. Nil fields are left
// unchanged.
type UpdateDateRequest struct {
	Title       *string       `json:"title,omitempty"`
	Date        *string       `json:"date,omitempty"`
	Time        *string       `json:"time,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *model.Status `json:"status,omitempty"`
}

type UpdateDateResponse struct {
	Msg  string            `json:"msg"`
	Date model.Appointment `json:"date"`
}

// UpdateUserRequest is the admin edit of an account. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name  *string     `json:"name,omitempty"`
	Email *string     `json:"email,omitempty"`
	Rol   *model.Role `json:"rol,omitempty"`
}

// ListOptions are the query parameters shared by the list endpoints. Zero
// values are omitted.
type ListOptions struct {
	Page     int
	PageSize int
	Status   model.Status
	DateFrom string
	DateTo   string
	Role     model.Role
}

func (o ListOptions) encode() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.DateFrom != "" {
		q.Set("date_from", o.DateFrom)
	}
	if o.DateTo != "" {
		q.Set("date_to", o.DateTo)
	}
	if o.Role != "" {
		q.Set("rol", string(o.Role))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

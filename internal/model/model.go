// Package model holds the clinic entities shared by the API server and the
// front end, and the closed enumerations used on both sides of the wire.
package model

import (
	"slices"
	"time"
)

type User struct {
	ID           string    `json:"userId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"rol"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type Appointment struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session is the authenticated principal held by the front end.
type Session struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"rol"`
	IssuedAt time.Time `json:"issuedAt"`
}

func NewSession(u User, issuedAt time.Time) Session {
	return Session{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		IssuedAt: issuedAt,
	}
}

// HasRole reports whether the session role is one of roles. An empty set
// admits any authenticated role.
func (s Session) HasRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, s.Role)
}

func (s Session) User() User {
	return User{ID: s.UserID, Name: s.Name, Email: s.Email, Role: s.Role}
}

type Pagination struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewPage[T any](data []T, total, page, pageSize int) Page[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Page[T]{
		Data: data,
		Pagination: Pagination{
			TotalItems:  total,
			TotalPages:  pages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
	}
}

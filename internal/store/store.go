package store

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentixpro/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	// ErrStale means the row was no longer in the expected state.
	ErrStale = errors.New("stale state")
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type UserFilter struct {
	Role     model.Role
	Page     int
	PageSize int
}

type AppointmentFilter struct {
	UserID   string
	Status   model.Status
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
}

const (
	MaxPageSize = 1000
	// MaxPage keeps (page-1)*MaxPageSize inside int.
	MaxPage = math.MaxInt / MaxPageSize
)

// ClampPage bounds a 1-based page and its size to [1, MaxPage] and
// [1, MaxPageSize].
func ClampPage(page, pageSize int) (int, int) {
	return min(max(page, 1), MaxPage), min(max(pageSize, 1), MaxPageSize)
}

// Offset returns the number of rows to skip for a 1-based page.
func Offset(page, pageSize int) int {
	page, pageSize = ClampPage(page, pageSize)
	return (page - 1) * pageSize
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// conds accumulates numbered WHERE clauses and their arguments.
type conds struct {
	parts []string
	args  []any
}

// add appends expr, which must contain a single %d for the placeholder index.
func (c *conds) add(expr string, v any) {
	c.args = append(c.args, v)
	c.parts = append(c.parts, fmt.Sprintf(expr, len(c.args)))
}

func (c *conds) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

func (c *conds) limit(page, pageSize int) string {
	page, pageSize = ClampPage(page, pageSize)
	c.args = append(c.args, pageSize, Offset(page, pageSize))
	n := len(c.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}

// Package memstore implements the API repository in memory for development
// and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

// DB is a mutex-guarded in-memory repository.
type DB struct {
	mu           sync.Mutex
	users        []*model.User
	appointments []*model.Appointment
	now          func() time.Time
}

func New() *DB {
	return &DB{now: time.Now}
}

// --- users ---

func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = db.now().UTC()
	}
	u.CreatedAt = cp.CreatedAt
	db.users = append(db.users, &cp)
	return nil
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (db *DB) UserByID(ctx context.Context, id string) (*model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.userLocked(id)
	if u == nil {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (db *DB) userLocked(id string) *model.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (db *DB) UpdateUserName(ctx context.Context, id, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.userLocked(id)
	if u == nil {
		return store.ErrNotFound
	}
	u.Name = name
	return nil
}

func (db *DB) UpdateUser(ctx context.Context, u *model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur := db.userLocked(u.ID)
	if cur == nil {
		return store.ErrNotFound
	}
	for _, other := range db.users {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	return nil
}

func (db *DB) SetPassword(ctx context.Context, id, hash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.userLocked(id)
	if u == nil {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (db *DB) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var matched []model.User
	for _, u := range db.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		matched = append(matched, *u)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, f.Page, f.PageSize), len(matched), nil
}

// --- appointments ---

func (db *DB) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.slotTakenLocked(a.Date, a.Time) {
		return store.ErrDuplicate
	}
	cp := *a
	now := db.now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	a.CreatedAt, a.UpdatedAt = cp.CreatedAt, cp.UpdatedAt
	db.appointments = append(db.appointments, &cp)
	return nil
}

func (db *DB) SlotTaken(ctx context.Context, date, hhmm string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.slotTakenLocked(date, hhmm), nil
}

func (db *DB) slotTakenLocked(date, hhmm string) bool {
	return db.slotHeldLocked(date, hhmm, "")
}

// slotHeldLocked reports whether an active appointment other than except
// occupies the slot.
func (db *DB) slotHeldLocked(date, hhmm, except string) bool {
	for _, a := range db.appointments {
		if a.ID != except && a.Date == date && a.Time == hhmm && a.Status != model.StatusCancelled {
			return true
		}
	}
	return false
}

func (db *DB) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.appointments {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (db *DB) ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var matched []model.Appointment
	for _, a := range db.appointments {
		switch {
		case f.UserID != "" && a.UserID != f.UserID:
			continue
		case f.Status != "" && a.Status != f.Status:
			continue
		case f.DateFrom != "" && a.Date < f.DateFrom:
			continue
		case f.DateTo != "" && a.Date > f.DateTo:
			continue
		}
		matched = append(matched, *a)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date < matched[j].Date
		}
		return matched[i].Time < matched[j].Time
	})
	return paginate(matched, f.Page, f.PageSize), len(matched), nil
}

func (db *DB) SetAppointmentStatus(ctx context.Context, id string, from, to model.Status) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.appointments {
		if a.ID != id {
			continue
		}
		if a.Status != from {
			return store.ErrStale
		}
		a.Status = to
		a.UpdatedAt = db.now().UTC()
		return nil
	}
	return store.ErrNotFound
}

func (db *DB) UpdateAppointment(ctx context.Context, a *model.Appointment, from model.Status) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, cur := range db.appointments {
		if cur.ID != a.ID {
			continue
		}
		if cur.Status != from {
			return store.ErrStale
		}
		if a.Status != model.StatusCancelled && db.slotHeldLocked(a.Date, a.Time, a.ID) {
			return store.ErrDuplicate
		}
		cur.Title, cur.Description = a.Title, a.Description
		cur.Date, cur.Time, cur.Status = a.Date, a.Time, a.Status
		cur.UpdatedAt = db.now().UTC()
		a.UpdatedAt = cur.UpdatedAt
		return nil
	}
	return store.ErrNotFound
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	page, pageSize = store.ClampPage(page, pageSize)
	start := store.Offset(page, pageSize)
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + min(pageSize, len(items)-start)
	return items[start:end]
}

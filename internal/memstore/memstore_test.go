package memstore

import (
	"context"
	"errors"
	"math"
	"testing"

	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

func TestUsers(t *testing.T) {
	db := New()
	ctx := context.Background()

	u := &model.User{ID: "u1", Email: "juan@example.com", Name: "Juan Pérez", Role: model.RoleUser}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}

	dup := &model.User{ID: "u2", Email: "JUAN@example.com"}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := db.UserByEmail(ctx, "juan@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	got.Name = "mutated"
	again, _ := db.UserByID(ctx, "u1")
	if again.Name != "Juan Pérez" {
		t.Error("returned user aliases stored record")
	}

	if err := db.UpdateUserName(ctx, "missing", "X"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = db.CreateUser(ctx, &model.User{ID: "a1", Email: "admin@example.com", Role: model.RoleAdmin})
	admins, total, err := db.ListUsers(ctx, store.UserFilter{Role: model.RoleAdmin, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(admins) != 1 || admins[0].ID != "a1" {
		t.Errorf("admins: total=%d got=%v", total, admins)
	}
}

func TestAppointments(t *testing.T) {
	db := New()
	ctx := context.Background()

	mk := func(id, user, date, tm string) *model.Appointment {
		return &model.Appointment{ID: id, UserID: user, Title: "Limpieza dental", Date: date, Time: tm, Status: model.StatusPending}
	}
	for _, a := range []*model.Appointment{
		mk("a3", "u1", "2025-03-12", "09:00"),
		mk("a1", "u1", "2025-03-10", "10:00"),
		mk("a2", "u2", "2025-03-10", "09:00"),
	} {
		if err := db.CreateAppointment(ctx, a); err != nil {
			t.Fatalf("create %s: %v", a.ID, err)
		}
	}

	if err := db.CreateAppointment(ctx, mk("dup", "u2", "2025-03-10", "09:00")); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected slot conflict, got %v", err)
	}

	all, total, _ := db.ListAppointments(ctx, store.AppointmentFilter{Page: 1, PageSize: 10})
	if total != 3 {
		t.Fatalf("total: got %d", total)
	}
	if all[0].ID != "a2" || all[1].ID != "a1" || all[2].ID != "a3" {
		t.Errorf("order: got %s %s %s", all[0].ID, all[1].ID, all[2].ID)
	}

	own, _, _ := db.ListAppointments(ctx, store.AppointmentFilter{UserID: "u1", DateTo: "2025-03-11", Page: 1, PageSize: 10})
	if len(own) != 1 || own[0].ID != "a1" {
		t.Errorf("own filtered: got %v", own)
	}

	page2, _, _ := db.ListAppointments(ctx, store.AppointmentFilter{Page: 2, PageSize: 2})
	if len(page2) != 1 || page2[0].ID != "a3" {
		t.Errorf("page 2: got %v", page2)
	}

	if err := db.SetAppointmentStatus(ctx, "a2", model.StatusPending, model.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := db.SetAppointmentStatus(ctx, "a2", model.StatusPending, model.StatusCompleted); !errors.Is(err, store.ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if taken, _ := db.SlotTaken(ctx, "2025-03-10", "09:00"); taken {
		t.Error("cancelled appointment should free its slot")
	}
	if err := db.SetAppointmentStatus(ctx, "nope", model.StatusPending, model.StatusCompleted); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	items := []int{1, 2, 3}
	tests := []struct {
		name           string
		page, pageSize int
		want           int
	}{
		{"past the end", 5, 2, 0},
		{"huge page", math.MaxInt / 10, 10, 0},
		{"max page", store.MaxPage, store.MaxPageSize, 0},
		{"negative page", -3, 2, 2},
		{"huge size", 1, math.MaxInt, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paginate(items, tt.page, tt.pageSize); len(got) != tt.want {
				t.Errorf("expected %d items, got %v", tt.want, got)
			}
		})
	}
}

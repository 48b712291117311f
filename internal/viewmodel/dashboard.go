package viewmodel

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"dentixpro/internal/apperr"
	"dentixpro/internal/client"
	"dentixpro/internal/model"
)

// LoadPageSize is how many records a dashboard fetches in one request.
const LoadPageSize = 1000

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock "today" is taken from.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func find(items []model.Appointment, id string) (model.Appointment, error) {
	i := slices.IndexFunc(items, func(a model.Appointment) bool { return a.ID == id })
	if i < 0 {
		return model.Appointment{}, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	return items[i], nil
}

// UserDashboard shows a patient's own appointments and lets them cancel
// pending ones.
type UserDashboard struct {
	dates  client.Dates
	opts   options
	dialog Dialog

	mu    sync.RWMutex
	items []model.Appointment
}

func NewUserDashboard(dates client.Dates, opts ...Option) *UserDashboard {
	return &UserDashboard{dates: dates, opts: buildOptions(opts)}
}

// Load replaces the list with the server's. The last load to finish wins.
func (d *UserDashboard) Load(ctx context.Context) error {
	page, err := d.dates.ListOwn(ctx, client.ListOptions{Page: 1, PageSize: LoadPageSize})
	if err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}
	d.mu.Lock()
	d.items = page.Data
	d.mu.Unlock()
	return nil
}

func (d *UserDashboard) snapshot() []model.Appointment {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.items)
}

func (d *UserDashboard) All() []model.Appointment { return d.snapshot() }

func (d *UserDashboard) Upcoming() []model.Appointment {
	return Upcoming(d.snapshot(), Today(d.opts.now()))
}

func (d *UserDashboard) Past() []model.Appointment {
	return Past(d.snapshot(), Today(d.opts.now()))
}

func (d *UserDashboard) Dialog() *Dialog { return &d.dialog }

// RequestCancel opens the confirmation for cancelling id.
func (d *UserDashboard) RequestCancel(id string) (Intent, error) {
	a, err := find(d.snapshot(), id)
	if err != nil {
		return Intent{}, err
	}
	if _, err := model.Transition(a.Status, model.ActionCancel, model.RoleUser, true); err != nil {
		return Intent{}, err
	}
	i := Intent{Action: model.ActionCancel, Appointment: a}
	return i, d.dialog.open(i)
}

// Confirm cancels the awaiting appointment and reloads the list.
func (d *UserDashboard) Confirm(ctx context.Context) error {
	return d.dialog.confirm(ctx, func(ctx context.Context, i Intent) error {
		if err := d.dates.CancelOwn(ctx, i.Appointment.ID); err != nil {
			return fmt.Errorf("cancel appointment: %w", err)
		}
		return d.Load(ctx)
	})
}

func (d *UserDashboard) Dismiss() { d.dialog.Dismiss() }

// AdminDashboard shows every appointment joined with its patient and lets
// an admin complete or cancel pending ones.
type AdminDashboard struct {
	dates  client.Dates
	users  client.Users
	opts   options
	dialog Dialog

	mu     sync.RWMutex
	rows   []Row
	filter Filter
}

func NewAdminDashboard(dates client.Dates, users client.Users, opts ...Option) *AdminDashboard {
	return &AdminDashboard{
		dates:  dates,
		users:  users,
		opts:   buildOptions(opts),
		filter: Filter{Tab: TabAll},
	}
}

// Load fetches all appointments and users and joins them.
func (d *AdminDashboard) Load(ctx context.Context) error {
	all := client.ListOptions{Page: 1, PageSize: LoadPageSize}
	dates, err := d.dates.ListAll(ctx, all)
	if err != nil {
		return fmt.Errorf("load appointments: %w", err)
	}
	users, err := d.users.List(ctx, all)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	rows := Join(dates.Data, users.Data)
	d.mu.Lock()
	d.rows = rows
	d.mu.Unlock()
	return nil
}

func (d *AdminDashboard) SetFilter(f Filter) {
	if f.Tab == "" {
		f.Tab = TabAll
	}
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()
}

func (d *AdminDashboard) Filter() Filter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

// Visible returns the rows selected by the current filter, newest first.
func (d *AdminDashboard) Visible() []Row {
	d.mu.RLock()
	rows, f := d.rows, d.filter
	d.mu.RUnlock()
	return Apply(rows, f, Today(d.opts.now()))
}

func (d *AdminDashboard) Summary() Summary {
	d.mu.RLock()
	rows := d.rows
	d.mu.RUnlock()
	return Summarize(rows, Today(d.opts.now()))
}

func (d *AdminDashboard) Dialog() *Dialog { return &d.dialog }

func (d *AdminDashboard) RequestComplete(id string) (Intent, error) {
	return d.request(id, model.ActionComplete)
}

func (d *AdminDashboard) RequestCancel(id string) (Intent, error) {
	return d.request(id, model.ActionCancel)
}

func (d *AdminDashboard) request(id string, action model.Action) (Intent, error) {
	d.mu.RLock()
	var (
		row Row
		ok  bool
	)
	for _, r := range d.rows {
		if r.ID == id {
			row, ok = r, true
			break
		}
	}
	d.mu.RUnlock()
	if !ok {
		return Intent{}, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	if _, err := model.Transition(row.Status, action, model.RoleAdmin, false); err != nil {
		return Intent{}, err
	}
	i := Intent{Action: action, Appointment: row.Appointment}
	return i, d.dialog.open(i)
}

// Confirm commits the awaiting action and reloads everything.
func (d *AdminDashboard) Confirm(ctx context.Context) error {
	return d.dialog.confirm(ctx, func(ctx context.Context, i Intent) error {
		var err error
		if i.Action == model.ActionComplete {
			err = d.dates.Complete(ctx, i.Appointment.ID)
		} else {
			err = d.dates.Cancel(ctx, i.Appointment.ID)
		}
		if err != nil {
			return fmt.Errorf("%s appointment: %w", i.Action, err)
		}
		return d.Load(ctx)
	})
}

func (d *AdminDashboard) Dismiss() { d.dialog.Dismiss() }

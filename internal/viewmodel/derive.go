// Package viewmodel turns appointment lists into what the dashboards show:
// tab partitions, filters, search, ordering and summary counts. The
// derivations are pure; the dashboards hold state and talk to the API.
package viewmodel

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"dentixpro/internal/model"
)

// Upcoming keeps pending appointments dated today or later, in input order.
func Upcoming(items []model.Appointment, today string) []model.Appointment {
	var out []model.Appointment
	for _, a := range items {
		if a.Status == model.StatusPending && a.Date >= today {
			out = append(out, a)
		}
	}
	return out
}

// Past keeps closed appointments and pending ones whose date has gone by.
// Together with Upcoming it partitions items.
func Past(items []model.Appointment, today string) []model.Appointment {
	var out []model.Appointment
	for _, a := range items {
		if a.Status.Terminal() || (a.Status == model.StatusPending && a.Date < today) {
			out = append(out, a)
		}
	}
	return out
}

type Tab string

const (
	TabAll       Tab = "all"
	TabToday     Tab = "today"
	TabUpcoming  Tab = "upcoming"
	TabCompleted Tab = "completed"
	TabCancelled Tab = "cancelled"
)

func Tabs() []Tab {
	return []Tab{TabAll, TabToday, TabUpcoming, TabCompleted, TabCancelled}
}

func ParseTab(s string) (Tab, error) {
	if s == "" {
		return TabAll, nil
	}
	for _, t := range Tabs() {
		if string(t) == strings.ToLower(s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

func (t Tab) Label() string {
	switch t {
	case TabToday:
		return "Hoy"
	case TabUpcoming:
		return "Próximas"
	case TabCompleted:
		return "Completadas"
	case TabCancelled:
		return "Canceladas"
	}
	return "Todas"
}

func (t Tab) admits(a model.Appointment, today string) bool {
	switch t {
	case TabToday:
		return a.Date == today
	case TabUpcoming:
		return a.Status == model.StatusPending && a.Date > today
	case TabCompleted:
		return a.Status == model.StatusCompleted
	case TabCancelled:
		return a.Status == model.StatusCancelled
	}
	return true
}

// Row is an appointment joined with its patient, as the admin sees it.
type Row struct {
	model.Appointment
	PatientName  string `json:"userName"`
	PatientEmail string `json:"userEmail"`
}

// Filter is the admin dashboard's view selection. All parts must match.
type Filter struct {
	Tab    Tab
	Status model.Status
	Search string
}

// Matches reports whether query occurs, ignoring case, in the title, patient
// name, patient email or long date of r. An empty query matches everything.
func Matches(r Row, query string) bool {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{r.Title, r.PatientName, r.PatientEmail, LongDate(r.Date)} {
		if strings.Contains(fold.String(field), q) {
			return true
		}
	}
	return false
}

// Apply filters rows by f and orders them newest first (date, then time).
func Apply(rows []Row, f Filter, today string) []Row {
	tab := f.Tab
	if tab == "" {
		tab = TabAll
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !tab.admits(r.Appointment, today) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !Matches(r, f.Search) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out
}

type Summary struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Summarize counts rows per admin tab, ignoring status filter and search.
func Summarize(rows []Row, today string) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		if TabToday.admits(r.Appointment, today) {
			s.Today++
		}
		if TabUpcoming.admits(r.Appointment, today) {
			s.Upcoming++
		}
		switch r.Status {
		case model.StatusCompleted:
			s.Completed++
		case model.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// Count returns how many rows tab holds.
func (s Summary) Count(t Tab) int {
	switch t {
	case TabToday:
		return s.Today
	case TabUpcoming:
		return s.Upcoming
	case TabCompleted:
		return s.Completed
	case TabCancelled:
		return s.Cancelled
	}
	return s.Total
}

const (
	UnknownPatient = "Usuario desconocido"
	UnknownEmail   = "Email no disponible"
)

// Join attaches patient name and email to each appointment.
func Join(items []model.Appointment, users []model.User) []Row {
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	rows := make([]Row, len(items))
	for i, a := range items {
		r := Row{Appointment: a, PatientName: UnknownPatient, PatientEmail: UnknownEmail}
		if u, ok := byID[a.UserID]; ok {
			if u.Name != "" {
				r.PatientName = u.Name
			}
			if u.Email != "" {
				r.PatientEmail = u.Email
			}
		}
		rows[i] = r
	}
	return rows
}

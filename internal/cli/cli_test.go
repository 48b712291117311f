package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentixpro/internal/apperr"
	"dentixpro/internal/cli"
	"dentixpro/internal/handler"
	"dentixpro/internal/memstore"
	"dentixpro/internal/model"
	"dentixpro/internal/viewmodel"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)

func clock() time.Time { return now }

func newServer(t *testing.T) string {
	t.Helper()
	h := handler.New(memstore.New(), "cli-test", time.Hour, handler.WithClock(clock))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv.URL
}

// terminal is one user's machine: its own state directory on its own fs.
type terminal struct {
	url string
	fs  afero.Fs
}

func newTerminal(url string) *terminal {
	return &terminal{url: url, fs: afero.NewMemMapFs()}
}

type result struct {
	out, errOut string
	err         error
}

func (r result) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, r.err, r.errOut)
	require.NoError(t, json.Unmarshal([]byte(r.out), v), r.out)
}

func (term *terminal) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	app := &cli.App{Fs: term.fs, In: strings.NewReader(stdin), Out: &out, Err: &errOut, Now: clock}
	args = append(args, "--api-url", term.url, "--state-dir", "/state")
	err := cli.Execute(context.Background(), app, args)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (term *terminal) register(t *testing.T, name, email string, extra ...string) {
	t.Helper()
	args := append([]string{"register", "--name", name, "--email", email,
		"--password", "testpass123", "--confirm", "testpass123"}, extra...)
	r := term.run(t, "", args...)
	require.NoError(t, r.err, r.errOut)
}

func (term *terminal) book(t *testing.T, service, date, hhmm string) model.Appointment {
	t.Helper()
	var a model.Appointment
	term.run(t, "", "book", "--service", service, "--date", date, "--time", hhmm, "-o", "json").decode(t, &a)
	return a
}

type dashboard struct {
	Upcoming []model.Appointment `json:"upcoming"`
	Past     []model.Appointment `json:"past"`
}

type adminList struct {
	Summary viewmodel.Summary `json:"summary"`
	Data    []viewmodel.Row   `json:"data"`
}

func TestRegisterBookAndDashboard(t *testing.T) {
	juan := newTerminal(newServer(t))

	var s model.Session
	juan.run(t, "", "register", "--name", "Juan Pérez", "--email", "juan@example.com",
		"--password", "testpass123", "--confirm", "testpass123", "-o", "json").decode(t, &s)
	assert.Equal(t, "juan@example.com", s.Email)
	assert.Equal(t, model.RoleUser, s.Role)

	a := juan.book(t, "1", "2025-03-10", "09:00")
	assert.Equal(t, "Limpieza dental", a.Title)
	assert.Equal(t, model.StatusPending, a.Status)

	var d dashboard
	juan.run(t, "", "dashboard", "-o", "json").decode(t, &d)
	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, a.ID, d.Upcoming[0].ID)
	assert.Empty(t, d.Past)

	r := juan.run(t, "", "dashboard")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "lunes 10 de marzo de 2025")
	assert.Contains(t, r.out, "Próximas citas (1)")
}

func TestLoginPromptsForMissingFields(t *testing.T) {
	url := newServer(t)
	newTerminal(url).register(t, "Juan Pérez", "juan@example.com")

	other := newTerminal(url)
	r := other.run(t, "juan@example.com\ntestpass123\n", "login")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.errOut, "Email:")
	assert.Contains(t, r.out, "Juan Pérez")

	r = other.run(t, "", "login", "--email", "juan@example.com", "--password", "wrongpass1")
	assert.ErrorIs(t, r.err, apperr.ErrInvalidCredentials)
	assert.Contains(t, r.errOut, "Credenciales inválidas")
}

func TestProtectedCommandsRequireLogin(t *testing.T) {
	anon := newTerminal(newServer(t))
	for _, args := range [][]string{{"dashboard"}, {"whoami"}, {"cancel", "x"}, {"admin", "list"}} {
		r := anon.run(t, "", args...)
		assert.ErrorIs(t, r.err, cli.ErrLoginRequired, args)
		assert.Contains(t, r.errOut, "dentix login")
	}

	r := anon.run(t, "", "services")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Endodoncia")
}

func TestAdminCommandsRejectPatients(t *testing.T) {
	juan := newTerminal(newServer(t))
	juan.register(t, "Juan Pérez", "juan@example.com")

	r := juan.run(t, "", "admin", "list")
	assert.ErrorIs(t, r.err, apperr.ErrForbidden)
	assert.Contains(t, r.errOut, "Acceso denegado")
}

func TestCancelAsksForConfirmation(t *testing.T) {
	juan := newTerminal(newServer(t))
	juan.register(t, "Juan Pérez", "juan@example.com")
	a := juan.book(t, "3", "2025-03-11", "10:00")

	r := juan.run(t, "n\n", "cancel", a.ID)
	require.NoError(t, r.err)
	assert.Contains(t, r.errOut, "Extracción dental")

	var d dashboard
	juan.run(t, "", "dashboard", "-o", "json").decode(t, &d)
	require.Len(t, d.Upcoming, 1)

	r = juan.run(t, "s\n", "cancel", a.ID)
	require.NoError(t, r.err, r.errOut)

	juan.run(t, "", "dashboard", "-o", "json").decode(t, &d)
	assert.Empty(t, d.Upcoming)
	require.Len(t, d.Past, 1)
	assert.Equal(t, model.StatusCancelled, d.Past[0].Status)

	r = juan.run(t, "", "cancel", a.ID, "--yes")
	assert.ErrorIs(t, r.err, model.ErrTerminalStatus)
}

func TestAdminListAndComplete(t *testing.T) {
	url := newServer(t)
	juan := newTerminal(url)
	juan.register(t, "Juan Pérez", "juan@example.com")
	ana := newTerminal(url)
	ana.register(t, "Ana Gómez", "ana@example.com")
	admin := newTerminal(url)
	admin.register(t, "Dra. López", "admin@example.com", "--rol", "admin")

	target := juan.book(t, "1", "2025-03-10", "09:00")
	ana.book(t, "2", "2025-03-12", "11:00")

	var l adminList
	admin.run(t, "", "admin", "list", "--search", "juan", "-o", "json").decode(t, &l)
	require.Len(t, l.Data, 1)
	assert.Equal(t, "Juan Pérez", l.Data[0].PatientName)
	assert.Equal(t, 2, l.Summary.Upcoming)

	r := admin.run(t, "", "admin", "complete", target.ID, "--yes")
	require.NoError(t, r.err, r.errOut)

	admin.run(t, "", "admin", "list", "--tab", "completed", "-o", "json").decode(t, &l)
	require.Len(t, l.Data, 1)
	assert.Equal(t, target.ID, l.Data[0].ID)
	assert.Equal(t, 1, l.Summary.Upcoming)

	r = admin.run(t, "", "admin", "list", "--tab", "tomorrow")
	assert.Error(t, r.err)

	var users model.Page[model.User]
	admin.run(t, "", "admin", "users", "--rol", "user", "-o", "json").decode(t, &users)
	assert.Equal(t, 2, users.Pagination.TotalItems)
	assert.Equal(t, "Ana Gómez", users.Data[0].Name)
}

func TestAdminEditReschedules(t *testing.T) {
	url := newServer(t)
	juan := newTerminal(url)
	juan.register(t, "Juan Pérez", "juan@example.com")
	admin := newTerminal(url)
	admin.register(t, "Dra. López", "admin@example.com", "--rol", "admin")

	a := juan.book(t, "1", "2025-03-10", "09:00")
	juan.book(t, "2", "2025-03-10", "10:00")

	var got model.Appointment
	admin.run(t, "", "admin", "edit", a.ID, "--time", "11:00", "-o", "json").decode(t, &got)
	assert.Equal(t, "11:00", got.Time)
	assert.Equal(t, "2025-03-10", got.Date)

	r := admin.run(t, "", "admin", "edit", a.ID, "--time", "10:00")
	assert.ErrorIs(t, r.err, apperr.ErrConflict)

	r = admin.run(t, "", "admin", "edit", a.ID)
	assert.Error(t, r.err)

	r = juan.run(t, "", "admin", "edit", a.ID, "--time", "12:00")
	assert.ErrorIs(t, r.err, apperr.ErrForbidden)
}

func TestLogoutEndsSession(t *testing.T) {
	juan := newTerminal(newServer(t))
	juan.register(t, "Juan Pérez", "juan@example.com")

	r := juan.run(t, "", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "juan@example.com")

	require.NoError(t, juan.run(t, "", "logout").err)
	assert.ErrorIs(t, juan.run(t, "", "whoami").err, cli.ErrLoginRequired)
}

func TestProfileCommands(t *testing.T) {
	juan := newTerminal(newServer(t))
	juan.register(t, "Juan Pérez", "juan@example.com")

	var s model.Session
	juan.run(t, "", "profile", "set-name", "Juan P. Pérez", "-o", "json").decode(t, &s)
	assert.Equal(t, "Juan P. Pérez", s.Name)

	r := juan.run(t, "", "profile", "password", "--current", "testpass123", "--new", "newpass456", "--confirm", "newpass456")
	require.NoError(t, r.err, r.errOut)

	other := newTerminal(juan.url)
	require.NoError(t, other.run(t, "", "login", "--email", "juan@example.com", "--password", "newpass456").err)
}

func TestValidationIsReportedAsWarning(t *testing.T) {
	term := newTerminal(newServer(t))
	r := term.run(t, "", "register", "--name", "Jo", "--email", "bad", "--password", "short", "--confirm", "short")
	assert.ErrorIs(t, r.err, apperr.ErrValidation)
	assert.Contains(t, r.errOut, "Revisa los datos")
	assert.Contains(t, r.errOut, "name:")
}

package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentixpro/internal/apperr"
	"dentixpro/internal/client"
	"dentixpro/internal/handler"
	"dentixpro/internal/memstore"
	"dentixpro/internal/model"
)

type memCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memCreds) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memCreds) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func (m *memCreds) set(tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
}

func newAPI(t *testing.T) (*client.API, *memCreds) {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local) }
	h := handler.New(memstore.New(), "client-test", time.Hour, handler.WithClock(clock))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	creds := &memCreds{}
	base := client.New(srv.URL+"/", client.WithCredentials(creds), client.WithTimeout(5*time.Second))
	return client.NewAPI(base), creds
}

func signup(t *testing.T, api *client.API, creds *memCreds, name, email string, rol model.Role) *client.AuthResponse {
	t.Helper()
	resp, err := api.Auth.Signup(context.Background(), &client.SignupRequest{
		Name: name, Email: email, Password: "testpass123", Rol: rol,
	})
	require.NoError(t, err)
	creds.set(resp.AccessToken)
	return resp
}

func TestSignupLoginAndMe(t *testing.T) {
	api, creds := newAPI(t)
	ctx := context.Background()

	resp := signup(t, api, creds, "Juan Pérez", "juan@example.com", "")
	assert.Equal(t, "Usuario creado exitosamente", resp.Msg)
	assert.Equal(t, model.RoleUser, resp.User.Role)

	creds.set("")
	login, err := api.Auth.Login(ctx, &client.LoginRequest{Email: "juan@example.com", Password: "testpass123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, resp.User.ID, login.User.ID)

	creds.set(login.AccessToken)
	me, err := api.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", me.Name)

	prof, err := api.Auth.UpdateProfile(ctx, "Juan Carlos Pérez")
	require.NoError(t, err)
	assert.Equal(t, "Juan Carlos Pérez", prof.User.Name)
}

func TestLoginRejectedIsInvalidCredentials(t *testing.T) {
	api, creds := newAPI(t)
	signup(t, api, creds, "Juan Pérez", "juan@example.com", "")

	_, err := api.Auth.Login(context.Background(), &client.LoginRequest{Email: "juan@example.com", Password: "wrongpass"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, apperr.ErrUnauthorized)

	n := apperr.Notify(err)
	assert.Equal(t, "Credenciales inválidas", n.Message)
	assert.False(t, n.ForceLogout)
}

func TestSignupDuplicateEmail(t *testing.T) {
	api, creds := newAPI(t)
	signup(t, api, creds, "Juan Pérez", "juan@example.com", "")

	_, err := api.Auth.Signup(context.Background(), &client.SignupRequest{
		Name: "Otro Juan", Email: "juan@example.com", Password: "testpass123",
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.NotErrorIs(t, err, apperr.ErrConflict)
}

func TestUnauthorizedClearsCredentials(t *testing.T) {
	api, creds := newAPI(t)
	creds.set("not-a-real-token")

	_, err := api.Dates.ListAll(context.Background(), client.ListOptions{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Empty(t, creds.Token())
	assert.Equal(t, 1, creds.cleared)
	assert.True(t, apperr.Notify(err).ForceLogout)
}

func TestForbiddenKeepsCredentials(t *testing.T) {
	api, creds := newAPI(t)
	resp := signup(t, api, creds, "Juan Pérez", "juan@example.com", "")

	_, err := api.Users.List(context.Background(), client.ListOptions{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, resp.AccessToken, creds.Token())
}

func TestValidationCarriesServerMessage(t *testing.T) {
	api, creds := newAPI(t)
	signup(t, api, creds, "Juan Pérez", "juan@example.com", "")

	_, err := api.Dates.Create(context.Background(), &client.CreateDateRequest{
		Title: "Hola", Date: "2025-03-10", Time: "09:00",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "El título debe tener al menos 5 caracteres", apiErr.RemoteMessage())
}

func TestDatesFlow(t *testing.T) {
	api, creds := newAPI(t)
	ctx := context.Background()
	user := signup(t, api, creds, "Juan Pérez", "juan@example.com", "")

	a, err := api.Dates.Create(ctx, &client.CreateDateRequest{
		Title: "Limpieza dental", Date: "2025-03-10", Time: "09:00", Description: "rutina",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, user.User.ID, a.UserID)

	_, err = api.Dates.Create(ctx, &client.CreateDateRequest{
		Title: "Revisión general", Date: "2025-03-10", Time: "09:00",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	page, err := api.Dates.ListOwn(ctx, client.ListOptions{Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Pagination.TotalItems)
	assert.Equal(t, 5, page.Pagination.PageSize)

	require.NoError(t, api.Dates.CancelOwn(ctx, a.ID))
	err = api.Dates.CancelOwn(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	page, err = api.Dates.ListOwn(ctx, client.ListOptions{Status: model.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
}

func TestAdminActions(t *testing.T) {
	api, creds := newAPI(t)
	ctx := context.Background()

	signup(t, api, creds, "Juan Pérez", "juan@example.com", "")
	a, err := api.Dates.Create(ctx, &client.CreateDateRequest{Title: "Limpieza dental", Date: "2025-03-10", Time: "09:00"})
	require.NoError(t, err)

	signup(t, api, creds, "Dra. López", "admin@example.com", model.RoleAdmin)
	require.NoError(t, api.Dates.Complete(ctx, a.ID))
	assert.ErrorIs(t, api.Dates.Cancel(ctx, a.ID), apperr.ErrValidation)

	all, err := api.Dates.ListAll(ctx, client.ListOptions{PageSize: 1000})
	require.NoError(t, err)
	require.Len(t, all.Data, 1)
	assert.Equal(t, model.StatusCompleted, all.Data[0].Status)

	users, err := api.Users.List(ctx, client.ListOptions{Role: model.RoleUser})
	require.NoError(t, err)
	require.Len(t, users.Data, 1)
	assert.Equal(t, "juan@example.com", users.Data[0].Email)
}

func TestAdminEdits(t *testing.T) {
	api, creds := newAPI(t)
	ctx := context.Background()

	juan := signup(t, api, creds, "Juan Pérez", "juan@example.com", "")
	a, err := api.Dates.Create(ctx, &client.CreateDateRequest{Title: "Limpieza dental", Date: "2025-03-10", Time: "09:00"})
	require.NoError(t, err)
	_, err = api.Dates.Create(ctx, &client.CreateDateRequest{Title: "Limpieza dental", Date: "2025-03-10", Time: "10:00"})
	require.NoError(t, err)

	signup(t, api, creds, "Dra. López", "admin@example.com", model.RoleAdmin)

	title, hhmm := "Revisión general", "11:00"
	got, err := api.Dates.Update(ctx, a.ID, &client.UpdateDateRequest{Title: &title, Time: &hhmm})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, hhmm, got.Time)

	taken := "10:00"
	_, err = api.Dates.Update(ctx, a.ID, &client.UpdateDateRequest{Time: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	done := model.StatusCompleted
	_, err = api.Dates.Update(ctx, a.ID, &client.UpdateDateRequest{Status: &done})
	require.NoError(t, err)
	reopen := model.StatusPending
	_, err = api.Dates.Update(ctx, a.ID, &client.UpdateDateRequest{Status: &reopen})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	u, err := api.Users.Get(ctx, juan.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", u.Email)

	_, err = api.Users.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	dup := "admin@example.com"
	_, err = api.Users.Update(ctx, juan.User.ID, &client.UpdateUserRequest{Email: &dup})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	name := "Juan P. Pérez"
	u, err = api.Users.Update(ctx, juan.User.ID, &client.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)

	require.NoError(t, api.Users.ResetPassword(ctx, juan.User.ID, "resetpass1"))
	assert.ErrorIs(t, api.Users.ResetPassword(ctx, juan.User.ID, "short"), apperr.ErrValidation)

	_, err = api.Auth.Login(ctx, &client.LoginRequest{Email: "juan@example.com", Password: "resetpass1"})
	require.NoError(t, err)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	creds := &memCreds{token: "tok"}
	api := client.NewAPI(client.New(srv.URL, client.WithCredentials(creds)))
	_, err := api.Auth.Me(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	assert.Equal(t, "tok", creds.Token())
	assert.True(t, apperr.Notify(err).Retryable)
}

func TestBearerHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":"u1","name":"Ana","email":"a@b.com","rol":"admin"}`))
	}))
	defer srv.Close()

	creds := &memCreds{token: "abc"}
	u, err := client.NewAuthClient(client.New(srv.URL, client.WithCredentials(creds))).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	a := client.New("http://x", client.WithTimeout(3*time.Second), client.WithHTTPClient(http.DefaultClient))
	b := client.New("http://x", client.WithHTTPClient(http.DefaultClient), client.WithTimeout(3*time.Second))

	assert.Zero(t, http.DefaultClient.Timeout)
	for _, c := range []*client.BaseClient{a, b} {
		assert.NotSame(t, http.DefaultClient, c.HTTPClient)
		assert.Equal(t, 3*time.Second, c.HTTPClient.Timeout)
	}

	plain := client.New("http://x", client.WithHTTPClient(http.DefaultClient))
	assert.Same(t, http.DefaultClient, plain.HTTPClient)
}

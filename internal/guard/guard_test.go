package guard_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentixpro/internal/client"
	"dentixpro/internal/guard"
	"dentixpro/internal/handler"
	"dentixpro/internal/memstore"
	"dentixpro/internal/model"
	"dentixpro/internal/session"
)

type fakeState struct {
	status session.Status
	sess   *model.Session
}

func (f fakeState) Status() session.Status { return f.status }

func (f fakeState) Current() (model.Session, bool) {
	if f.sess == nil {
		return model.Session{}, false
	}
	return *f.sess, true
}

func TestEvaluate(t *testing.T) {
	user := &model.Session{UserID: "u1", Role: model.RoleUser}
	admin := &model.Session{UserID: "a1", Role: model.RoleAdmin}

	anon := fakeState{status: session.Anonymous}
	resolving := fakeState{status: session.Resolving}
	asUser := fakeState{status: session.Authenticated, sess: user}
	asAdmin := fakeState{status: session.Authenticated, sess: admin}

	tests := []struct {
		name  string
		state fakeState
		path  string
		want  guard.Decision
	}{
		{"public while anonymous", anon, guard.Home, guard.Decision{Kind: guard.Allow}},
		{"login while resolving", resolving, guard.Login, guard.Decision{Kind: guard.Allow}},
		{"dashboard while resolving", resolving, guard.Dash, guard.Decision{Kind: guard.Loading}},
		{"admin while resolving", resolving, guard.Admin, guard.Decision{Kind: guard.Loading}},
		{"dashboard anonymous", anon, guard.Dash, guard.Decision{Kind: guard.Redirect, To: guard.Login}},
		{"booking anonymous", anon, guard.Book, guard.Decision{Kind: guard.Redirect, To: guard.Login}},
		{"dashboard as user", asUser, guard.Dash, guard.Decision{Kind: guard.Allow}},
		{"booking as admin", asAdmin, guard.Book, guard.Decision{Kind: guard.Allow}},
		{"admin as user", asUser, guard.Admin, guard.Decision{Kind: guard.Redirect, To: guard.Home}},
		{"admin as admin", asAdmin, guard.Admin, guard.Decision{Kind: guard.Allow}},
		{"unknown", asAdmin, "/nope", guard.Decision{Kind: guard.NotFound}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Evaluate(tt.state, tt.path))
		})
	}
}

func TestRouteTable(t *testing.T) {
	r, ok := guard.Lookup(guard.Admin)
	require.True(t, ok)
	assert.False(t, r.Public())
	assert.Equal(t, []model.Role{model.RoleAdmin}, r.Roles)

	for _, p := range []string{guard.Home, guard.Login, guard.Register} {
		r, ok := guard.Lookup(p)
		require.True(t, ok)
		assert.True(t, r.Public(), p)
	}
	assert.Len(t, guard.Routes(), 6)
}

type countingIndicator struct{ starts, stops int }

func (c *countingIndicator) Start() { c.starts++ }
func (c *countingIndicator) Stop()  { c.stops++ }

func newStore(t *testing.T, url string, fs afero.Fs) *session.Store {
	t.Helper()
	v, err := session.OpenVault(fs, "/state")
	require.NoError(t, err)
	return session.NewStore(v, client.NewAuthClient(client.New(url, client.WithCredentials(v))))
}

func TestEnterResolvesStoredSession(t *testing.T) {
	h := handler.New(memstore.New(), "guard-test", time.Hour)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	fs := afero.NewMemMapFs()
	first := newStore(t, srv.URL, fs)
	_, err := first.Signup(context.Background(), session.Profile{
		Name: "Juan Pérez", Email: "juan@example.com", Password: "testpass123", Confirm: "testpass123",
	})
	require.NoError(t, err)

	// a fresh process over the same state directory
	st := newStore(t, srv.URL, fs)
	require.Equal(t, session.Resolving, st.Status())

	ind := &countingIndicator{}
	g := guard.New(st, guard.WithIndicator(ind))

	assert.Equal(t, guard.Decision{Kind: guard.Allow}, g.Enter(context.Background(), guard.Dash))
	assert.Equal(t, 1, ind.starts)
	assert.Equal(t, 1, ind.stops)

	assert.Equal(t, guard.Decision{Kind: guard.Redirect, To: guard.Home}, g.Enter(context.Background(), guard.Admin))
	assert.Equal(t, 1, ind.starts)
}

func TestEnterDemotesRejectedToken(t *testing.T) {
	h := handler.New(memstore.New(), "guard-test", time.Hour)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	fs := afero.NewMemMapFs()
	v, err := session.OpenVault(fs, "/state")
	require.NoError(t, err)
	require.NoError(t, v.Save("forged", model.Session{UserID: "x", Role: model.RoleAdmin}))

	st := newStore(t, srv.URL, fs)
	g := guard.New(st)
	assert.Equal(t, guard.Decision{Kind: guard.Redirect, To: guard.Login}, g.Enter(context.Background(), guard.Admin))
	assert.Equal(t, session.Anonymous, st.Status())
}

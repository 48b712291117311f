// Package guard decides whether a screen may be shown for the current
// session, and where to send the user when it may not.
package guard

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"dentixpro/internal/model"
	"dentixpro/internal/session"
)

const (
	Home     = "/"
	Login    = "/login"
	Register = "/register"
	Dash     = "/dashboard"
	Book     = "/agendar-cita"
	Admin    = "/admin"
)

// Route is one entry of the navigation table. A route with no roles is public.
type Route struct {
	Path     string
	Roles    []model.Role
	Fallback string
}

func (r Route) Public() bool { return len(r.Roles) == 0 }

var table = []Route{
	{Path: Home},
	{Path: Login},
	{Path: Register},
	{Path: Dash, Roles: []model.Role{model.RoleUser, model.RoleAdmin}, Fallback: Home},
	{Path: Book, Roles: []model.Role{model.RoleUser, model.RoleAdmin}, Fallback: Home},
	{Path: Admin, Roles: []model.Role{model.RoleAdmin}, Fallback: Home},
}

func Routes() []Route { return slices.Clone(table) }

func Lookup(path string) (Route, bool) {
	i := slices.IndexFunc(table, func(r Route) bool { return r.Path == path })
	if i < 0 {
		return Route{}, false
	}
	return table[i], true
}

type Kind int

const (
	Loading Kind = iota
	Allow
	Redirect
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return "not-found"
}

type Decision struct {
	Kind Kind
	To   string
}

// State is the read side of the session store.
type State interface {
	Status() session.Status
	Current() (model.Session, bool)
}

// Evaluate decides what to do with a navigation to path. It never redirects
// while the session is still resolving.
func Evaluate(st State, path string) Decision {
	r, ok := Lookup(path)
	if !ok {
		return Decision{Kind: NotFound}
	}
	if r.Public() {
		return Decision{Kind: Allow}
	}
	if st.Status() == session.Resolving {
		return Decision{Kind: Loading}
	}
	s, ok := st.Current()
	if !ok {
		return Decision{Kind: Redirect, To: Login}
	}
	if !s.HasRole(r.Roles...) {
		return Decision{Kind: Redirect, To: r.Fallback}
	}
	return Decision{Kind: Allow}
}

// Resolver is a State that can settle itself.
type Resolver interface {
	State
	Resolve(ctx context.Context)
}

// Indicator is shown while the session resolves. *spinner.Spinner satisfies it.
type Indicator interface {
	Start()
	Stop()
}

type nopIndicator struct{}

func (nopIndicator) Start() {}
func (nopIndicator) Stop()  {}

type Guard struct {
	store     Resolver
	indicator Indicator
	log       *zap.Logger
}

type Option func(*Guard)

func WithIndicator(i Indicator) Option { return func(g *Guard) { g.indicator = i } }

func WithLogger(l *zap.Logger) Option { return func(g *Guard) { g.log = l } }

func New(store Resolver, opts ...Option) *Guard {
	g := &Guard{store: store, indicator: nopIndicator{}, log: zap.NewNop()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Enter resolves the session if needed, with the indicator running, and
// returns the settled decision for path.
func (g *Guard) Enter(ctx context.Context, path string) Decision {
	d := Evaluate(g.store, path)
	if d.Kind == Loading {
		g.indicator.Start()
		g.store.Resolve(ctx)
		g.indicator.Stop()
		d = Evaluate(g.store, path)
	}
	g.log.Debug("navigation", zap.String("route", path), zap.Stringer("decision", d.Kind), zap.String("to", d.To))
	return d
}

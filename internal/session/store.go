// Package session owns the front end's authenticated principal: who is
// logged in, with which role, and the durable token that proves it.
package session

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"dentixpro/internal/apperr"
	"dentixpro/internal/client"
	"dentixpro/internal/model"
)

type Status int

const (
	Resolving Status = iota
	Authenticated
	Anonymous
)

func (s Status) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	}
	return "anonymous"
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Profile is the signup form.
type Profile struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	Role     model.Role
}

func (p Profile) validate() error {
	var fe apperr.FieldErrors
	if len([]rune(strings.TrimSpace(p.Name))) < 3 {
		fe = append(fe, apperr.Field("name", "El nombre debe tener al menos 3 caracteres"))
	}
	if !emailRe.MatchString(strings.TrimSpace(p.Email)) {
		fe = append(fe, apperr.Field("email", "Email inválido"))
	}
	if len(p.Password) < 8 {
		fe = append(fe, apperr.Field("password", "La contraseña debe tener al menos 8 caracteres"))
	}
	if p.Password != p.Confirm {
		fe = append(fe, apperr.Field("confirmPassword", "Las contraseñas no coinciden"))
	}
	return fe.OrNil()
}

// Store is the session state machine. It is safe for concurrent use.
type Store struct {
	vault *Vault
	api   client.Auth
	log   *zap.Logger
	now   func() time.Time

	mu        sync.Mutex
	resolving bool
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// NewStore starts in Resolving when the vault holds a token and in Anonymous
// otherwise. Call Resolve to settle it.
func NewStore(vault *Vault, api client.Auth, opts ...Option) *Store {
	s := &Store{
		vault:     vault,
		api:       api,
		log:       zap.NewNop(),
		now:       time.Now,
		resolving: vault.Token() != "",
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open builds a Store and resolves any stored session.
func Open(ctx context.Context, vault *Vault, api client.Auth, opts ...Option) *Store {
	s := NewStore(vault, api, opts...)
	s.Resolve(ctx)
	return s
}

func (s *Store) Status() Status {
	s.mu.Lock()
	resolving := s.resolving
	s.mu.Unlock()
	if resolving {
		return Resolving
	}
	if _, ok := s.Current(); ok {
		return Authenticated
	}
	return Anonymous
}

// Current returns the cached session without any network call.
func (s *Store) Current() (model.Session, bool) {
	return s.vault.Record()
}

// Resolve re-validates the stored token against the API. Any failure demotes
// the store to Anonymous without surfacing an error.
func (s *Store) Resolve(ctx context.Context) {
	defer s.settle()

	tok := s.vault.Token()
	if tok == "" {
		return
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		s.log.Debug("stored session rejected", zap.Error(err))
		s.clear()
		return
	}

	issued := s.now()
	if rec, ok := s.vault.Record(); ok && !rec.IssuedAt.IsZero() {
		issued = rec.IssuedAt
	}
	if err := s.vault.Save(tok, model.NewSession(*u, issued)); err != nil {
		s.log.Warn("refresh session", zap.Error(err))
	}
}

func (s *Store) settle() {
	s.mu.Lock()
	s.resolving = false
	s.mu.Unlock()
}

func (s *Store) Login(ctx context.Context, email, password string) (model.Session, error) {
	var fe apperr.FieldErrors
	if strings.TrimSpace(email) == "" {
		fe = append(fe, apperr.Field("email", "El email es requerido"))
	}
	if password == "" {
		fe = append(fe, apperr.Field("password", "La contraseña es requerida"))
	}
	if err := fe.OrNil(); err != nil {
		return model.Session{}, err
	}

	resp, err := s.api.Login(ctx, &client.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}
	return s.establish(resp)
}

// Signup validates p locally and registers the account. A valid session is
// established on success, as after Login.
func (s *Store) Signup(ctx context.Context, p Profile) (model.Session, error) {
	if err := p.validate(); err != nil {
		return model.Session{}, err
	}

	resp, err := s.api.Signup(ctx, &client.SignupRequest{
		Name:     strings.TrimSpace(p.Name),
		Email:    strings.TrimSpace(p.Email),
		Password: p.Password,
		Rol:      p.Role,
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("signup: %w", err)
	}
	return s.establish(resp)
}

func (s *Store) establish(resp *client.AuthResponse) (model.Session, error) {
	sess := model.NewSession(resp.User, s.now())
	if err := s.vault.Save(resp.AccessToken, sess); err != nil {
		return model.Session{}, fmt.Errorf("store session: %w", err)
	}
	s.settle()
	s.log.Info("session established", zap.String("user_id", sess.UserID), zap.String("rol", string(sess.Role)))
	return sess, nil
}

// Logout forgets the session locally. It cannot fail.
func (s *Store) Logout() {
	s.clear()
	s.settle()
}

func (s *Store) clear() {
	if err := s.vault.Clear(); err != nil {
		s.log.Warn("clear session", zap.Error(err))
	}
}

// UpdateProfile renames the current user and refreshes the cached record.
func (s *Store) UpdateProfile(ctx context.Context, name string) (model.Session, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 3 {
		return model.Session{}, apperr.Field("name", "El nombre debe tener al menos 3 caracteres")
	}
	cur, ok := s.Current()
	if !ok {
		return model.Session{}, apperr.ErrUnauthorized
	}

	resp, err := s.api.UpdateProfile(ctx, name)
	if err != nil {
		return model.Session{}, fmt.Errorf("update profile: %w", err)
	}
	sess := model.NewSession(resp.User, cur.IssuedAt)
	if err := s.vault.Save(s.vault.Token(), sess); err != nil {
		return model.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

func (s *Store) ChangePassword(ctx context.Context, current, next, confirm string) error {
	var fe apperr.FieldErrors
	if current == "" {
		fe = append(fe, apperr.Field("current_password", "La contraseña actual es requerida"))
	}
	if len(next) < 8 {
		fe = append(fe, apperr.Field("new_password", "La nueva contraseña debe tener al menos 8 caracteres"))
	}
	if next != confirm {
		fe = append(fe, apperr.Field("confirmPassword", "Las contraseñas no coinciden"))
	}
	if err := fe.OrNil(); err != nil {
		return err
	}
	if err := s.api.ChangePassword(ctx, &client.PasswordChange{Current: current, New: next}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

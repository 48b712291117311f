package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"dentixpro/internal/model"
)

// Durable keys, one file each under the vault directory.
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// Vault is the durable client-side session storage. Reads are served from an
// in-memory mirror; writes go to the filesystem first.
type Vault struct {
	mu    sync.RWMutex
	fs    afero.Fs
	dir   string
	token string
	rec   *model.Session
}

// OpenVault loads any stored session from dir. A half-written or unreadable
// pair is discarded so the vault never holds a token without its user.
func OpenVault(fs afero.Fs, dir string) (*Vault, error) {
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	v := &Vault{fs: fs, dir: dir}

	tok, terr := afero.ReadFile(fs, v.path(TokenKey))
	raw, uerr := afero.ReadFile(fs, v.path(UserKey))
	if errors.Is(terr, os.ErrNotExist) && errors.Is(uerr, os.ErrNotExist) {
		return v, nil
	}

	var rec model.Session
	if terr != nil || uerr != nil || json.Unmarshal(raw, &rec) != nil ||
		strings.TrimSpace(string(tok)) == "" || rec.UserID == "" {
		return v, v.Clear()
	}
	v.token = strings.TrimSpace(string(tok))
	v.rec = &rec
	return v, nil
}

func (v *Vault) path(key string) string {
	return filepath.Join(v.dir, key)
}

func (v *Vault) Token() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.token
}

// Record returns the cached user record, if any.
func (v *Vault) Record() (model.Session, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.rec == nil || v.token == "" {
		return model.Session{}, false
	}
	return *v.rec, true
}

func (v *Vault) Save(token string, rec model.Session) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.write(UserKey, raw); err != nil {
		return err
	}
	if err := v.write(TokenKey, []byte(token)); err != nil {
		return err
	}
	v.token = token
	v.rec = &rec
	return nil
}

// write replaces key atomically.
func (v *Vault) write(key string, data []byte) error {
	tmp := v.path(key) + ".tmp"
	if err := afero.WriteFile(v.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := v.fs.Rename(tmp, v.path(key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Clear forgets the session. The mirror is emptied even when removing the
// files fails.
func (v *Vault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.token = ""
	v.rec = nil

	var errs []error
	for _, key := range []string{TokenKey, UserKey} {
		if err := v.fs.Remove(v.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

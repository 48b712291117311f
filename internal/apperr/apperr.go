// Package apperr defines the error taxonomy shared by the front end layers
// and the notification each kind of error turns into.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrNetwork            = errors.New("network error")
)

// FieldError is a local validation failure on a single input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func Field(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg}
}

// FieldErrors collects every failing field of a form.
type FieldErrors []*FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() []error {
	out := make([]error, len(fe))
	for i, e := range fe {
		out[i] = e
	}
	return out
}

// OrNil returns nil for an empty collection so callers can return it directly.
func (fe FieldErrors) OrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Notification is the user-visible form of an error.
type Notification struct {
	Level       Level
	Title       string
	Message     string
	Retryable   bool
	ForceLogout bool
}

// Notify translates err into the notification the presentation layer shows.
func Notify(err error) Notification {
	var msg string
	var remote interface{ RemoteMessage() string }
	if errors.As(err, &remote) {
		msg = remote.RemoteMessage()
	}
	orDefault := func(def string) string {
		if msg != "" {
			return msg
		}
		return def
	}

	switch {
	case err == nil:
		return Notification{Level: LevelInfo}
	case errors.Is(err, ErrUnauthorized):
		return Notification{
			Level:       LevelError,
			Title:       "Sesión expirada",
			Message:     "Vuelve a iniciar sesión para continuar.",
			ForceLogout: true,
		}
	case errors.Is(err, ErrInvalidCredentials):
		return Notification{Level: LevelError, Title: "Error al iniciar sesión", Message: orDefault("Credenciales inválidas")}
	case errors.Is(err, ErrDuplicateEmail):
		return Notification{Level: LevelError, Title: "Error al registrarse", Message: orDefault("Ya existe un usuario con este email")}
	case errors.Is(err, ErrValidation):
		if msg == "" {
			msg = err.Error()
		}
		return Notification{Level: LevelWarning, Title: "Revisa los datos", Message: msg}
	case errors.Is(err, ErrForbidden):
		return Notification{Level: LevelError, Title: "Acceso denegado", Message: orDefault("No tienes permiso para esta acción.")}
	case errors.Is(err, ErrNotFound):
		return Notification{Level: LevelError, Title: "No encontrado", Message: orDefault("El recurso solicitado no existe.")}
	case errors.Is(err, ErrConflict):
		return Notification{Level: LevelError, Title: "Conflicto", Message: orDefault("La operación entra en conflicto con el estado actual.")}
	case errors.Is(err, ErrNetwork):
		return Notification{
			Level:     LevelError,
			Title:     "Error de conexión",
			Message:   "No se pudo contactar con el servidor. Inténtalo de nuevo.",
			Retryable: true,
		}
	}
	return Notification{Level: LevelError, Title: "Error", Message: orDefault(err.Error()), Retryable: true}
}

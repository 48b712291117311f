package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type remoteErr struct {
	kind error
	msg  string
}

func (e remoteErr) Error() string         { return e.msg }
func (e remoteErr) RemoteMessage() string { return e.msg }
func (e remoteErr) Is(target error) bool  { return target == e.kind }

func TestFieldErrorsMatchValidation(t *testing.T) {
	var fe FieldErrors
	assert.NoError(t, fe.OrNil())

	fe = append(fe, Field("date", "requerido"), Field("time", "requerido"))
	err := fe.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "date: requerido; time: requerido", err.Error())

	var single *FieldError
	assert.True(t, errors.As(err, &single))
	assert.Equal(t, "date", single.Field)
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		title       string
		retryable   bool
		forceLogout bool
	}{
		{"unauthorized", fmt.Errorf("list: %w", ErrUnauthorized), "Sesión expirada", false, true},
		{"credentials", ErrInvalidCredentials, "Error al iniciar sesión", false, false},
		{"duplicate", ErrDuplicateEmail, "Error al registrarse", false, false},
		{"validation", Field("title", "muy corto"), "Revisa los datos", false, false},
		{"network", fmt.Errorf("get: %w", ErrNetwork), "Error de conexión", true, false},
		{"unknown", errors.New("boom"), "Error", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notify(tt.err)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.retryable, n.Retryable)
			assert.Equal(t, tt.forceLogout, n.ForceLogout)
		})
	}
}

func TestNotifyPrefersRemoteMessage(t *testing.T) {
	n := Notify(remoteErr{kind: ErrConflict, msg: "Este horario ya está ocupado"})
	assert.Equal(t, "Conflicto", n.Title)
	assert.Equal(t, "Este horario ya está ocupado", n.Message)
}

package viewmodel

import (
	"context"
	"errors"
	"sync"

	"dentixpro/internal/model"
)

type DialogState int

const (
	Idle DialogState = iota
	Awaiting
	Committing
)

func (s DialogState) String() string {
	switch s {
	case Awaiting:
		return "awaiting"
	case Committing:
		return "committing"
	}
	return "idle"
}

var (
	ErrDialogBusy = errors.New("a confirmation is already open")
	ErrNoPending  = errors.New("nothing to confirm")
)

// Intent is the action waiting for the user's confirmation.
type Intent struct {
	Action      model.Action
	Appointment model.Appointment
}

// Prompt is the question shown to the user.
func (i Intent) Prompt() string {
	if i.Action == model.ActionComplete {
		return "¿Marcar la cita \"" + i.Appointment.Title + "\" como completada?"
	}
	return "¿Cancelar la cita \"" + i.Appointment.Title + "\"? Esta acción no se puede deshacer."
}

// Dialog is a two-step confirmation: Idle -> Awaiting -> Committing -> Idle.
type Dialog struct {
	mu     sync.Mutex
	state  DialogState
	intent Intent
}

func (d *Dialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Intent returns the pending action while the dialog is open.
func (d *Dialog) Intent() (Intent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.intent, d.state != Idle
}

func (d *Dialog) open(i Intent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Idle {
		return ErrDialogBusy
	}
	d.state = Awaiting
	d.intent = i
	return nil
}

// Dismiss closes an awaiting dialog. It has no effect while committing.
func (d *Dialog) Dismiss() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Awaiting {
		d.state = Idle
		d.intent = Intent{}
	}
}

// confirm runs commit for the awaiting intent. The dialog returns to Idle
// whether or not commit succeeds.
func (d *Dialog) confirm(ctx context.Context, commit func(context.Context, Intent) error) error {
	d.mu.Lock()
	if d.state != Awaiting {
		d.mu.Unlock()
		return ErrNoPending
	}
	d.state = Committing
	intent := d.intent
	d.mu.Unlock()

	err := commit(ctx, intent)

	d.mu.Lock()
	d.state = Idle
	d.intent = Intent{}
	d.mu.Unlock()
	return err
}

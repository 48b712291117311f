package viewmodel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dentixpro/internal/apperr"
	"dentixpro/internal/client"
	"dentixpro/internal/model"
)

// BookingForm is the "agendar cita" form.
type BookingForm struct {
	ServiceID   int
	Date        string
	Time        string
	Description string
}

func (f BookingForm) AvailableTimes() []string {
	return model.TimeSlots()
}

// Validate checks the form against the catalog and today's date.
func (f BookingForm) Validate(today string) error {
	var fe apperr.FieldErrors
	if f.ServiceID == 0 {
		fe = append(fe, apperr.Field("service", "Selecciona un servicio"))
	} else if _, ok := model.ServiceByID(f.ServiceID); !ok {
		fe = append(fe, apperr.Field("service", "Servicio no disponible"))
	}

	switch {
	case strings.TrimSpace(f.Date) == "":
		fe = append(fe, apperr.Field("date", "Selecciona una fecha"))
	case !model.ValidDate(f.Date):
		fe = append(fe, apperr.Field("date", "Formato de fecha inválido. Use YYYY-MM-DD"))
	case f.Date < today:
		fe = append(fe, apperr.Field("date", "La fecha no puede estar en el pasado"))
	}

	switch {
	case strings.TrimSpace(f.Time) == "":
		fe = append(fe, apperr.Field("time", "Selecciona una hora"))
	case !model.IsOfferedSlot(f.Time):
		fe = append(fe, apperr.Field("time", "Horario no disponible"))
	}
	return fe.OrNil()
}

// Request builds the API request; the appointment title is the service name.
func (f BookingForm) Request() (*client.CreateDateRequest, error) {
	svc, ok := model.ServiceByID(f.ServiceID)
	if !ok {
		return nil, apperr.Field("service", "Servicio no disponible")
	}
	return &client.CreateDateRequest{
		Title:       svc.Name,
		Date:        f.Date,
		Time:        f.Time,
		Description: strings.TrimSpace(f.Description),
	}, nil
}

// Submit validates the form and books the appointment.
func (f BookingForm) Submit(ctx context.Context, dates client.Dates, now time.Time) (*model.Appointment, error) {
	if err := f.Validate(Today(now)); err != nil {
		return nil, err
	}
	req, err := f.Request()
	if err != nil {
		return nil, err
	}
	a, err := dates.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	return a, nil
}

package viewmodel

import (
	"fmt"
	"time"

	"dentixpro/internal/model"
)

var weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LongDate renders a YYYY-MM-DD date the way the clinic writes it, e.g.
// "lunes 10 de marzo de 2025". Unparseable input is returned unchanged.
func LongDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// Today returns the calendar date of now in its own location.
func Today(now time.Time) string {
	return model.DateOf(now)
}

package model

import (
	"regexp"
	"slices"
	"time"
)

// Service is a bookable clinic service.
type Service struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration"`
}

var services = []Service{
	{ID: 1, Name: "Limpieza dental", DurationMinutes: 30},
	{ID: 2, Name: "Revisión general", DurationMinutes: 20},
	{ID: 3, Name: "Extracción dental", DurationMinutes: 45},
	{ID: 4, Name: "Tratamiento de caries", DurationMinutes: 40},
	{ID: 5, Name: "Blanqueamiento dental", DurationMinutes: 60},
	{ID: 6, Name: "Ortodoncia", DurationMinutes: 30},
	{ID: 7, Name: "Radiografía dental", DurationMinutes: 15},
	{ID: 8, Name: "Endodoncia", DurationMinutes: 90},
}

var timeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "13:00", "15:00", "15:30",
	"16:00", "16:30", "17:00", "17:30", "18:00",
}

// Services returns a copy of the service catalog.
func Services() []Service {
	return slices.Clone(services)
}

func ServiceByID(id int) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// TimeSlots returns a copy of the bookable start times.
func TimeSlots() []string {
	return slices.Clone(timeSlots)
}

func IsOfferedSlot(t string) bool {
	return slices.Contains(timeSlots, t)
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func ValidTime(s string) bool {
	return timeRe.MatchString(s)
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// StartsAt combines the appointment date and time in loc.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
}

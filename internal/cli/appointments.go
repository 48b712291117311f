package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dentixpro/internal/guard"
	"dentixpro/internal/model"
	"dentixpro/internal/viewmodel"
)

func newServicesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "Listar los servicios y horarios de la clínica",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services := model.Services()
			if a.jsonOutput() {
				return a.writeJSON(map[string]any{"services": services, "times": model.TimeSlots()})
			}
			tw := a.newTable(table.Row{"#", "Servicio", "Duración"})
			for _, s := range services {
				tw.AppendRow(table.Row{s.ID, s.Name, fmt.Sprintf("%d min", s.DurationMinutes)})
			}
			tw.Render()
			fmt.Fprintln(a.Out, "Horarios:", strings.Join(model.TimeSlots(), " "))
			return nil
		},
	}
}

func newBookCmd(a *App) *cobra.Command {
	var form viewmodel.BookingForm
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Agendar una cita",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Book); err != nil {
				return err
			}
			ap, err := form.Submit(cmd.Context(), a.api.Dates, a.Now())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return a.writeJSON(ap)
			}
			a.success("Cita agendada: %s el %s a las %s", ap.Title, viewmodel.LongDate(ap.Date), ap.Time)
			a.appointmentTable("", []model.Appointment{*ap})
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&form.ServiceID, "service", 0, "Número del servicio (ver 'dentix services')")
	f.StringVar(&form.Date, "date", "", "Fecha YYYY-MM-DD")
	f.StringVar(&form.Time, "time", "", "Hora HH:MM")
	f.StringVar(&form.Description, "description", "", "Notas para la clínica")
	return cmd
}

func newDashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Ver mis citas próximas y pasadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Dash); err != nil {
				return err
			}
			dash := viewmodel.NewUserDashboard(a.api.Dates, viewmodel.WithClock(a.Now))
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			up, past := dash.Upcoming(), dash.Past()
			if a.jsonOutput() {
				return a.writeJSON(map[string]any{"upcoming": orEmpty(up), "past": orEmpty(past)})
			}
			a.appointmentTable(fmt.Sprintf("Próximas citas (%d)", len(up)), up)
			a.appointmentTable(fmt.Sprintf("Historial (%d)", len(past)), past)
			return nil
		},
	}
}

func newCancelCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancelar una de mis citas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Dash); err != nil {
				return err
			}
			dash := viewmodel.NewUserDashboard(a.api.Dates, viewmodel.WithClock(a.Now))
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			intent, err := dash.RequestCancel(args[0])
			if err != nil {
				return err
			}
			return a.confirmIntent(cmd, intent, yes, dash)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "No pedir confirmación")
	return cmd
}

// dialogOwner is a dashboard with an open confirmation dialog.
type dialogOwner interface {
	Confirm(ctx context.Context) error
	Dismiss()
}

// confirmIntent asks before committing unless yes is set. Declining leaves
// the dialog closed and is not an error.
func (a *App) confirmIntent(cmd *cobra.Command, intent viewmodel.Intent, yes bool, d dialogOwner) error {
	if !yes {
		ok, err := a.confirm(intent.Prompt())
		if err != nil || !ok {
			d.Dismiss()
			if err == nil {
				faint.Fprintln(a.Err, "Operación descartada.")
			}
			return err
		}
	}
	if err := d.Confirm(cmd.Context()); err != nil {
		return err
	}
	if a.jsonOutput() {
		return a.writeJSON(map[string]string{"_id": intent.Appointment.ID, "status": string(statusAfter(intent.Action))})
	}
	a.success("Cita \"%s\" %s", intent.Appointment.Title, intent.Action.Label())
	return nil
}

func statusAfter(action model.Action) model.Status {
	if action == model.ActionComplete {
		return model.StatusCompleted
	}
	return model.StatusCancelled
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

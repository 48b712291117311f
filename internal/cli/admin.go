package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dentixpro/internal/client"
	"dentixpro/internal/guard"
	"dentixpro/internal/model"
	"dentixpro/internal/viewmodel"
)

func newAdminCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Panel de administración de la clínica",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			return a.enter(cmd.Context(), guard.Admin)
		},
	}
	cmd.AddCommand(
		newAdminListCmd(a),
		newAdminActionCmd(a, model.ActionComplete),
		newAdminActionCmd(a, model.ActionCancel),
		newAdminEditCmd(a),
		newAdminUsersCmd(a),
	)
	return cmd
}

func (a *App) adminDashboard(cmd *cobra.Command) (*viewmodel.AdminDashboard, error) {
	dash := viewmodel.NewAdminDashboard(a.api.Dates, a.api.Users, viewmodel.WithClock(a.Now))
	if err := dash.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return dash, nil
}

func newAdminListCmd(a *App) *cobra.Command {
	var tab, status, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Listar todas las citas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f viewmodel.Filter
			var err error
			if f.Tab, err = viewmodel.ParseTab(tab); err != nil {
				return err
			}
			if status != "" && status != "all" {
				if f.Status, err = model.ParseStatus(status); err != nil {
					return err
				}
			}
			f.Search = search

			dash, err := a.adminDashboard(cmd)
			if err != nil {
				return err
			}
			dash.SetFilter(f)
			rows, sum := dash.Visible(), dash.Summary()
			if a.jsonOutput() {
				return a.writeJSON(map[string]any{"summary": sum, "data": orEmpty(rows)})
			}
			a.tabBar(f.Tab, sum)
			a.rowTable(rows)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&tab, "tab", string(viewmodel.TabAll), "Pestaña (all|today|upcoming|completed|cancelled)")
	f.StringVar(&status, "status", "", "Estado (pending|completed|cancelled)")
	f.StringVar(&search, "search", "", "Buscar por servicio, paciente, email o fecha")
	return cmd
}

// tabBar prints every tab with its count and highlights the active one.
func (a *App) tabBar(active viewmodel.Tab, sum viewmodel.Summary) {
	parts := make([]string, 0, len(viewmodel.Tabs()))
	for _, t := range viewmodel.Tabs() {
		label := fmt.Sprintf("%s (%d)", t.Label(), sum.Count(t))
		if t == active {
			label = color.New(color.Bold, color.Underline).Sprint(label)
		}
		parts = append(parts, label)
	}
	fmt.Fprintln(a.Out, strings.Join(parts, "  "))
}

func newAdminActionCmd(a *App, action model.Action) *cobra.Command {
	var yes bool
	use, short := "complete <id>", "Marcar una cita como completada"
	if action == model.ActionCancel {
		use, short = "cancel <id>", "Cancelar una cita"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.adminDashboard(cmd)
			if err != nil {
				return err
			}
			var intent viewmodel.Intent
			if action == model.ActionComplete {
				intent, err = dash.RequestComplete(args[0])
			} else {
				intent, err = dash.RequestCancel(args[0])
			}
			if err != nil {
				return err
			}
			return a.confirmIntent(cmd, intent, yes, dash)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "No pedir confirmación")
	return cmd
}

func newAdminEditCmd(a *App) *cobra.Command {
	var title, date, hhmm, description, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Editar o reprogramar una cita",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req client.UpdateDateRequest
			f := cmd.Flags()
			if f.Changed("title") {
				req.Title = &title
			}
			if f.Changed("date") {
				req.Date = &date
			}
			if f.Changed("time") {
				req.Time = &hhmm
			}
			if f.Changed("description") {
				req.Description = &description
			}
			if f.Changed("status") {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				req.Status = &st
			}
			if req == (client.UpdateDateRequest{}) {
				return fmt.Errorf("nada que actualizar: use --title, --date, --time, --description o --status")
			}

			ap, err := a.api.Dates.Update(cmd.Context(), args[0], &req)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return a.writeJSON(ap)
			}
			a.success("Cita actualizada: %s el %s a las %s", ap.Title, viewmodel.LongDate(ap.Date), ap.Time)
			a.appointmentTable("", []model.Appointment{*ap})
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "Nuevo servicio o título")
	f.StringVar(&date, "date", "", "Nueva fecha YYYY-MM-DD")
	f.StringVar(&hhmm, "time", "", "Nueva hora HH:MM")
	f.StringVar(&description, "description", "", "Nuevas notas")
	f.StringVar(&status, "status", "", "Nuevo estado (completed|cancelled)")
	return cmd
}

func newAdminUsersCmd(a *App) *cobra.Command {
	var rol string
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Listar los usuarios registrados",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.ListOptions{Page: page, PageSize: pageSize}
			if rol != "" {
				r, err := model.ParseRole(rol)
				if err != nil {
					return err
				}
				opts.Role = r
			}
			res, err := a.api.Users.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return a.writeJSON(res)
			}
			tw := a.newTable(table.Row{"ID", "Nombre", "Email", "Rol"})
			for _, u := range res.Data {
				tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role})
			}
			tw.AppendFooter(table.Row{"", "", "Total", res.Pagination.TotalItems})
			tw.Render()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rol, "rol", "", "Filtrar por rol (user|admin)")
	f.IntVar(&page, "page", 1, "Página")
	f.IntVar(&pageSize, "page-size", 10, "Usuarios por página")
	return cmd
}

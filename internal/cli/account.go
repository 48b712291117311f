package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dentixpro/internal/guard"
	"dentixpro/internal/model"
	"dentixpro/internal/session"
)

func newLoginCmd(a *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Iniciar sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = a.orPrompt(email, "Email: "); err != nil {
				return err
			}
			if password, err = a.orPrompt(password, "Contraseña: "); err != nil {
				return err
			}
			s, err := a.store.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.showSession(s, "¡Bienvenido, %s!", s.Name)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email de la cuenta")
	cmd.Flags().StringVar(&password, "password", "", "Contraseña")
	return cmd
}

func newRegisterCmd(a *App) *cobra.Command {
	var p session.Profile
	var rol string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Crear una cuenta",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Name, err = a.orPrompt(p.Name, "Nombre completo: "); err != nil {
				return err
			}
			if p.Email, err = a.orPrompt(p.Email, "Email: "); err != nil {
				return err
			}
			if p.Password, err = a.orPrompt(p.Password, "Contraseña: "); err != nil {
				return err
			}
			if p.Confirm, err = a.orPrompt(p.Confirm, "Confirmar contraseña: "); err != nil {
				return err
			}
			if rol != "" {
				if p.Role, err = model.ParseRole(rol); err != nil {
					return err
				}
			}
			s, err := a.store.Signup(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.showSession(s, "Cuenta creada. ¡Bienvenido, %s!", s.Name)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "Nombre completo")
	f.StringVar(&p.Email, "email", "", "Email")
	f.StringVar(&p.Password, "password", "", "Contraseña (mínimo 8 caracteres)")
	f.StringVar(&p.Confirm, "confirm", "", "Repetir la contraseña")
	f.StringVar(&rol, "rol", "", "Rol de la cuenta (user|admin)")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cerrar sesión",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Logout()
			a.success("Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostrar la sesión actual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Dash); err != nil {
				return err
			}
			s, _ := a.store.Current()
			return a.showSession(s, "")
		},
	}
}

func newProfileCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Gestionar el perfil",
	}

	setName := &cobra.Command{
		Use:   "set-name <nombre>",
		Short: "Cambiar el nombre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Dash); err != nil {
				return err
			}
			s, err := a.store.UpdateProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.showSession(s, "Información actualizada")
		},
	}

	var current, next, confirm string
	password := &cobra.Command{
		Use:   "password",
		Short: "Cambiar la contraseña",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.enter(cmd.Context(), guard.Dash); err != nil {
				return err
			}
			var err error
			if current, err = a.orPrompt(current, "Contraseña actual: "); err != nil {
				return err
			}
			if next, err = a.orPrompt(next, "Nueva contraseña: "); err != nil {
				return err
			}
			if confirm, err = a.orPrompt(confirm, "Confirmar nueva contraseña: "); err != nil {
				return err
			}
			if err := a.store.ChangePassword(cmd.Context(), current, next, confirm); err != nil {
				return err
			}
			a.success("Contraseña actualizada")
			return nil
		},
	}
	password.Flags().StringVar(&current, "current", "", "Contraseña actual")
	password.Flags().StringVar(&next, "new", "", "Nueva contraseña")
	password.Flags().StringVar(&confirm, "confirm", "", "Repetir la nueva contraseña")

	cmd.AddCommand(setName, password)
	return cmd
}

func (a *App) showSession(s model.Session, headline string, args ...any) error {
	if a.jsonOutput() {
		return a.writeJSON(s)
	}
	if headline != "" {
		a.success(headline, args...)
	}
	tw := a.newTable(table.Row{"Nombre", "Email", "Rol", "Desde"})
	tw.AppendRow(table.Row{s.Name, s.Email, s.Role, s.IssuedAt.Format("2006-01-02 15:04")})
	tw.Render()
	return nil
}

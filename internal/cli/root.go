// Package cli is the dentix command line front end: every screen of the
// clinic app is a cobra command rendering tables or JSON.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dentixpro/internal/apperr"
	"dentixpro/internal/client"
	"dentixpro/internal/config"
	"dentixpro/internal/guard"
	"dentixpro/internal/logger"
	"dentixpro/internal/session"
)

// ErrLoginRequired is returned by protected commands when nobody is logged in.
var ErrLoginRequired = errors.New("inicia sesión con 'dentix login' para continuar")

// App carries the IO endpoints and the wired front end for one invocation.
type App struct {
	Fs  afero.Fs
	In  io.Reader
	Out io.Writer
	Err io.Writer
	Now func() time.Time

	cfg   *config.Config
	log   *zap.Logger
	store *session.Store
	api   *client.API
	guard *guard.Guard
	lines *bufio.Reader
}

func NewApp() *App {
	return &App{
		Fs:  afero.NewOsFs(),
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		Now: time.Now,
	}
}

// setup wires config, session and API client. It runs before every command.
func (a *App) setup() error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = zap.NewNop()
	if cfg.Verbose {
		logger.SetLevel(zapcore.DebugLevel)
		a.log = logger.Get()
	}

	vault, err := session.OpenVault(a.Fs, cfg.StateDir)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	base := client.New(cfg.APIURL,
		client.WithCredentials(vault),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(a.log),
	)
	a.api = client.NewAPI(base)
	a.store = session.NewStore(vault, a.api.Auth, session.WithLogger(a.log), session.WithClock(a.Now))

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.Err))
	spin.Suffix = " Verificando sesión..."
	a.guard = guard.New(a.store, guard.WithIndicator(spin), guard.WithLogger(a.log))
	return nil
}

// enter runs the navigation guard for route and turns a refusal into an error.
func (a *App) enter(ctx context.Context, route string) error {
	d := a.guard.Enter(ctx, route)
	switch d.Kind {
	case guard.Allow:
		return nil
	case guard.Redirect:
		if d.To == guard.Login {
			return ErrLoginRequired
		}
		return fmt.Errorf("%w: esta sección requiere permisos de administrador", apperr.ErrForbidden)
	}
	return fmt.Errorf("ruta desconocida %s", route)
}

func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dentix",
		Short:         "DentixPro: citas de la clínica dental desde la terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	if err := config.Init(root.PersistentFlags()); err != nil {
		fmt.Fprintf(a.Err, "Error initializing config: %v\n", err)
	}

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newServicesCmd(a),
		newBookCmd(a),
		newDashboardCmd(a),
		newCancelCmd(a),
		newAdminCmd(a),
	)
	return root
}

// Execute runs the root command and reports a failure as a notification.
func Execute(ctx context.Context, a *App, args []string) error {
	root := NewRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	err := root.ExecuteContext(ctx)
	if err != nil {
		a.report(err)
	}
	return err
}

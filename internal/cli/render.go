package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"dentixpro/internal/apperr"
	"dentixpro/internal/model"
	"dentixpro/internal/viewmodel"
)

var (
	boldGreen  = color.New(color.FgGreen, color.Bold)
	boldRed    = color.New(color.FgRed, color.Bold)
	boldYellow = color.New(color.FgYellow, color.Bold)
	faint      = color.New(color.Faint)
)

func (a *App) jsonOutput() bool {
	return a.cfg != nil && a.cfg.OutputFormat == "json"
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) newTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(a.Out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	return tw
}

// success prints a confirmation in table mode; JSON mode stays machine-readable.
func (a *App) success(format string, args ...any) {
	if a.jsonOutput() {
		return
	}
	boldGreen.Fprintf(a.Out, "✔ "+format+"\n", args...)
}

func (a *App) report(err error) {
	if errors.Is(err, ErrLoginRequired) {
		boldYellow.Fprintln(a.Err, "Inicia sesión:", err)
		return
	}
	n := apperr.Notify(err)
	c := boldRed
	if n.Level == apperr.LevelWarning {
		c = boldYellow
	}
	c.Fprintf(a.Err, "%s: ", n.Title)
	fmt.Fprintln(a.Err, n.Message)
	if n.ForceLogout {
		faint.Fprintln(a.Err, "Ejecuta 'dentix login' para iniciar una nueva sesión.")
	}
	if n.Retryable {
		faint.Fprintln(a.Err, "Puedes volver a intentarlo.")
	}
}

func (a *App) prompt(label string) (string, error) {
	if a.lines == nil {
		a.lines = bufio.NewReader(a.In)
	}
	fmt.Fprint(a.Err, label)
	line, err := a.lines.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// orPrompt returns v, or asks for it when the flag was left empty.
func (a *App) orPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return a.prompt(label)
}

func (a *App) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " [s/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "s", "si", "sí", "y", "yes":
		return true, nil
	}
	return false, nil
}

func statusCell(s model.Status) string {
	switch s {
	case model.StatusPending:
		return color.YellowString(s.Label())
	case model.StatusCompleted:
		return color.GreenString(s.Label())
	case model.StatusCancelled:
		return color.RedString(s.Label())
	}
	return s.Label()
}

func (a *App) appointmentTable(title string, items []model.Appointment) {
	if title != "" {
		color.New(color.Bold).Fprintln(a.Out, title)
	}
	if len(items) == 0 {
		faint.Fprintln(a.Out, "  No hay citas.")
		return
	}
	tw := a.newTable(table.Row{"ID", "Servicio", "Fecha", "Hora", "Estado", "Notas"})
	for _, ap := range items {
		tw.AppendRow(table.Row{ap.ID, ap.Title, viewmodel.LongDate(ap.Date), ap.Time, statusCell(ap.Status), ap.Description})
	}
	tw.Render()
}

func (a *App) rowTable(rows []viewmodel.Row) {
	if len(rows) == 0 {
		faint.Fprintln(a.Out, "No hay citas que coincidan con el filtro.")
		return
	}
	tw := a.newTable(table.Row{"ID", "Paciente", "Email", "Servicio", "Fecha", "Hora", "Estado"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.ID, r.PatientName, r.PatientEmail, r.Title, viewmodel.LongDate(r.Date), r.Time, statusCell(r.Status)})
	}
	tw.Render()
}

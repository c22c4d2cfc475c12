package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/adiazny/calendar-events/internal/pkg/agenda"
	"github.com/adiazny/calendar-events/internal/pkg/config"
	"github.com/adiazny/calendar-events/internal/pkg/events"
	"github.com/adiazny/calendar-events/internal/pkg/render"
)

// runtime is built once per invocation in Before and shared by every command.
type runtime struct {
	cfg    *config.Config
	log    *logrus.Entry
	agenda *agenda.Agenda
	format render.Format
	out    io.Writer
}

func main() {
	rt := &runtime{out: os.Stdout}

	app := &cli.App{
		Name:  "calendar",
		Usage: "Browse and edit events on a remote calendar API.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(render.FormatText),
				Usage:   "Output format: text, json or yaml.",
				EnvVars: []string{"CALENDAR_FORMAT"},
			},
		},
		Before: rt.setup,
		Commands: []*cli.Command{
			listCommand(rt),
			dayCommand(rt),
			addCommand(rt),
			editCommand(rt),
			deleteCommand(rt),
			shareCommand(rt),
			exportCommand(rt),
			watchCommand(rt),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rt.log != nil {
			rt.log.WithError(err).Error("command failed")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (rt *runtime) setup(c *cli.Context) error {
	_, err := maxprocs.Set()
	if err != nil {
		return fmt.Errorf("error setting GOMAXPROCS %w", err)
	}

	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	rt.format = format

	envVars, err := config.Load()
	if err != nil {
		return err
	}
	rt.cfg = envVars

	// stdout carries command output, so logs go to stderr.
	rt.log = envVars.NewLogger("calendar")
	rt.log.Logger.SetOutput(os.Stderr)

	store := &events.Client{
		Log:    rt.log,
		Config: events.Config{BaseURL: envVars.BaseURL},
		HTTP: &http.Client{
			Timeout: envVars.Timeout,
		},
	}
	rt.agenda = agenda.New(rt.log, store, envVars.Palette())

	return nil
}

func (rt *runtime) print(v any) error {
	return render.Write(rt.out, rt.format, v)
}

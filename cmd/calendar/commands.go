package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/adiazny/calendar-events/internal/pkg/agenda"
	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/export"
	"github.com/adiazny/calendar-events/internal/pkg/render"
	"github.com/adiazny/calendar-events/internal/pkg/share"
)

func listCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show every day that has events.",
		Action: func(c *cli.Context) error {
			view := rt.agenda.Load(c.Context)
			if rt.format == render.FormatText {
				return rt.print(view.Markers)
			}
			return rt.print(view)
		},
	}
}

func dayCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "day",
		Usage:     "Show the events of one day.",
		ArgsUsage: "YYYY-MM-DD",
		Action: func(c *cli.Context) error {
			rt.agenda.Load(c.Context)

			view, err := rt.agenda.SelectDay(c.Args().First())
			if err != nil {
				return err
			}
			return rt.print(view.Selection)
		},
	}
}

func addCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a new event.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "description"},
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "time", Required: true, Usage: "HH:MM"},
		},
		Action: func(c *cli.Context) error {
			clock, err := calendar.ParseClock(c.String("time"))
			if err != nil {
				return err
			}

			input := calendar.EventInput{
				Title:       c.String("title"),
				Description: c.String("description"),
				Date:        c.String("date"),
				Time:        clock,
			}

			if _, err := rt.agenda.Add(c.Context, input); err != nil {
				return mutationError("failed to add event", "event saved", err)
			}

			return rt.showDay(input.Date)
		},
	}
}

func editCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit the title, time or description of an event. Omitted fields keep their value.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title"},
			&cli.StringFlag{Name: "time", Usage: "HH:MM"},
			&cli.StringFlag{Name: "description"},
		},
		Action: func(c *cli.Context) error {
			id := calendar.ID(c.Args().First())

			if _, err := rt.agenda.Refresh(c.Context); err != nil {
				return err
			}

			existing, ok := rt.agenda.Find(id)
			if !ok {
				return fmt.Errorf("no event with id %q", id)
			}

			edit := agenda.Edit{
				Title:       existing.Title,
				Time:        existing.Time.Short(),
				Description: existing.Description,
			}
			if c.IsSet("title") {
				edit.Title = c.String("title")
			}
			if c.IsSet("time") {
				edit.Time = c.String("time")
			}
			if c.IsSet("description") {
				edit.Description = c.String("description")
			}

			if _, err := rt.agenda.Edit(c.Context, id, edit); err != nil {
				return mutationError("failed to edit event", "event saved", err)
			}

			return rt.showDay(existing.Date)
		},
	}
}

func deleteCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an event.",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			id := calendar.ID(c.Args().First())

			view, err := rt.agenda.Delete(c.Context, id)
			if err != nil {
				return mutationError("failed to delete event. Please try again", "event deleted", err)
			}

			fmt.Fprintln(os.Stderr, "Event deleted successfully!")

			if rt.format == render.FormatText {
				return rt.print(view.Markers)
			}
			return rt.print(view)
		},
	}
}

func shareCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "share",
		Usage:     "Print a mailto: link for an event, or publish it to SHARE_TOPIC_ARN.",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "publish", Usage: "Publish to the SNS topic instead of printing a link."},
		},
		Action: func(c *cli.Context) error {
			if _, err := rt.agenda.Refresh(c.Context); err != nil {
				return err
			}

			id := calendar.ID(c.Args().First())
			event, ok := rt.agenda.Find(id)
			if !ok {
				return fmt.Errorf("no event with id %q", id)
			}

			if !c.Bool("publish") {
				_, err := fmt.Fprintln(rt.out, share.MailtoURL(event))
				return err
			}

			awsConfig, err := cfg.LoadDefaultConfig(c.Context)
			if err != nil {
				return fmt.Errorf("error loading AWS config %w", err)
			}

			publisher := &share.Publisher{
				Log:      rt.log,
				SNS:      sns.NewFromConfig(awsConfig),
				TopicARN: rt.cfg.TopicARN,
			}

			messageID, err := publisher.PublishEvent(c.Context, event)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(rt.out, messageID)
			return err
		},
	}
}

func exportCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every event as an iCalendar (.ics) file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file, stdout if empty."},
		},
		Action: func(c *cli.Context) error {
			view, err := rt.agenda.Refresh(c.Context)
			if err != nil {
				return err
			}

			loc, err := rt.cfg.Location()
			if err != nil {
				return err
			}

			exporter := &export.Exporter{Location: loc}

			path := c.String("out")
			if path == "" {
				return exporter.Write(rt.out, view.Events)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("error creating %s %w", path, err)
			}

			if err := exporter.Write(f, view.Events); err != nil {
				f.Close()
				return err
			}

			rt.log.WithField("file", path).WithField("count", len(view.Events)).Info("events exported")

			return f.Close()
		},
	}
}

func watchCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print today's agenda now and then on a cron schedule.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schedule", Value: "0 7 * * *", Usage: "Cron expression, evaluated in TIMEZONE."},
		},
		Action: func(c *cli.Context) error {
			loc, err := rt.cfg.Location()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			show := func() {
				if err := rt.showToday(ctx, loc); err != nil {
					rt.log.WithError(err).Error("failed to show today's agenda")
				}
			}

			scheduler := cron.New(
				cron.WithLocation(loc),
				cron.WithChain(watchWrappers()...),
			)
			if _, err := scheduler.AddFunc(c.String("schedule"), show); err != nil {
				return fmt.Errorf("error parsing schedule %q %w", c.String("schedule"), err)
			}

			show()

			scheduler.Start()
			rt.log.WithField("schedule", c.String("schedule")).Info("watching")

			<-ctx.Done()
			<-scheduler.Stop().Done()

			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		},
	}
}

// watchWrappers skip a scheduled run while the previous one is still
// printing, so slow refreshes never interleave output.
func watchWrappers() []cron.JobWrapper {
	return []cron.JobWrapper{cron.SkipIfStillRunning(cron.DiscardLogger)}
}

// mutationError tells a rejected mutation apart from one the store accepted
// but whose follow-up fetch failed. Retrying the latter would repeat it.
func mutationError(failed, done string, err error) error {
	if errors.Is(err, agenda.ErrStaleView) {
		return fmt.Errorf("%s, but the calendar could not be refreshed: %w", done, err)
	}
	return fmt.Errorf("%s: %w", failed, err)
}

// showDay prints one day from the current view without fetching again.
func (rt *runtime) showDay(date string) error {
	view, err := rt.agenda.SelectDay(date)
	if err != nil {
		return err
	}
	return rt.print(view.Selection)
}

func (rt *runtime) showToday(ctx context.Context, loc *time.Location) error {
	if _, err := rt.agenda.Refresh(ctx); err != nil {
		return err
	}
	return rt.showDay(time.Now().In(loc).Format(calendar.DateLayout))
}

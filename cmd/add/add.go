// Package add implements the add command.
package add

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tphakala/duckwatch/internal/app"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/sighting"
	"github.com/tphakala/duckwatch/internal/viewmodel"
)

type options struct {
	date        string
	time        string
	species     string
	description string
	count       string
}

// Command creates the command that submits a new sighting.
func Command(ctx *app.Context) *cobra.Command {
	return newCommand(ctx, time.Now)
}

func newCommand(ctx *app.Context, clock func() time.Time) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Report a new duck sighting",
		Long: "Validate and submit a new sighting. Date and time default to now, " +
			"species defaults to the first species the backend knows.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(ctx.Settings)
			if err != nil {
				return err
			}
			defer a.Close()

			// the form reads date and time in this zone, so "now" must be shown in it
			loc, err := ctx.Settings.Form.Location()
			if err != nil {
				return err
			}

			if err := a.Form.LoadSpeciesOnce(cmd.Context()); err != nil {
				return fmt.Errorf("could not load species: %w", err)
			}
			return submit(cmd, a.Form, opts, clock().In(loc))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.date, "date", "", "Date of the sighting, D.M.YYYY (default today)")
	flags.StringVar(&opts.time, "time", "", "Time of the sighting, H:MM (default now)")
	flags.StringVar(&opts.species, "species", "", "Species name")
	flags.StringVar(&opts.description, "description", "", "What was seen")
	flags.StringVar(&opts.count, "count", sighting.DefaultCount, "Number of ducks")

	return cmd
}

// submit fills the form the way the dialog would and submits it.
func submit(cmd *cobra.Command, form *viewmodel.FormViewModel, opts options, now time.Time) error {
	form.Open()

	form.SetDate(now)
	form.SetTime(now)
	values := map[sighting.Field]string{
		sighting.FieldDate:        opts.date,
		sighting.FieldTime:        opts.time,
		sighting.FieldSpecies:     opts.species,
		sighting.FieldDescription: opts.description,
		sighting.FieldCount:       opts.count,
	}
	for _, field := range sighting.FormFields {
		value := values[field]
		if value == "" && !cmd.Flags().Changed(string(field)) {
			continue
		}
		if err := form.UpdateField(field, value); err != nil {
			return err
		}
	}

	err := form.Submit(cmd.Context())
	if err == nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Sighting saved.")
		return err
	}

	if errors.IsValidation(err) {
		printFieldErrors(cmd.ErrOrStderr(), form.Draft().Errors)
	}
	return err
}

func printFieldErrors(w io.Writer, fe sighting.FieldErrors) {
	for _, field := range fe.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", field, fe[field])
	}
}

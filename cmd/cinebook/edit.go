package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/preview"
	"github.com/dharsanguruparan/cinebook/internal/processing"
	"github.com/dharsanguruparan/cinebook/internal/staging"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

// formFlag binds one command-line flag to a MovieForm field.
type formFlag struct {
	name  string
	usage string
	field func(*model.MovieForm) *string
}

var formFlags = []formFlag{
	{"title", "Title", func(f *model.MovieForm) *string { return &f.Title }},
	{"description", "Description", func(f *model.MovieForm) *string { return &f.Description }},
	{"genre", "Comma separated genres", func(f *model.MovieForm) *string { return &f.Genre }},
	{"duration", "Duration in minutes", func(f *model.MovieForm) *string { return &f.Duration }},
	{"rating", "Certificate, for example PG-13", func(f *model.MovieForm) *string { return &f.Rating }},
	{"release-date", "Release date (YYYY-MM-DD)", func(f *model.MovieForm) *string { return &f.ReleaseDate }},
	{"director", "Director", func(f *model.MovieForm) *string { return &f.Director }},
	{"producer", "Producer", func(f *model.MovieForm) *string { return &f.Producer }},
	{"writer", "Writer", func(f *model.MovieForm) *string { return &f.Writer }},
	{"average-rating", "Average rating from 0 to 10", func(f *model.MovieForm) *string { return &f.AverageRating }},
	{"status", "NOW_SHOWING, COMING_SOON or ENDED", func(f *model.MovieForm) *string { return &f.StateOfMovie }},
	{"age-restriction", "Age restriction badge", func(f *model.MovieForm) *string { return &f.AgeRestriction }},
	{"plot-summary", "Plot summary", func(f *model.MovieForm) *string { return &f.PlotSummary }},
	{"price", "Base ticket price", func(f *model.MovieForm) *string { return &f.BasePrice }},
	{"booking-start", "Booking start date (YYYY-MM-DD)", func(f *model.MovieForm) *string { return &f.BookingStartDate }},
	{"booking-end", "Booking end date (YYYY-MM-DD)", func(f *model.MovieForm) *string { return &f.BookingEndDate }},
	{"locations", "Comma separated cinema locations", func(f *model.MovieForm) *string { return &f.AvailableAtLocations }},
	{"cast", "Comma separated cast", func(f *model.MovieForm) *string { return &f.Cast }},
}

// movieFlags collects the form fields and media files of add and update.
type movieFlags struct {
	form    model.MovieForm
	posters []string
	trailer string
}

func (m *movieFlags) register(fs *pflag.FlagSet) {
	m.form = model.NewMovieForm()
	for _, f := range formFlags {
		p := f.field(&m.form)
		fs.StringVar(p, f.name, *p, f.usage)
	}
	fs.StringSliceVar(&m.posters, "poster", nil, "Poster image file, repeatable")
	fs.StringVar(&m.trailer, "trailer", "", "Trailer video file")
}

// overlay copies the fields whose flags were set onto base.
func (m *movieFlags) overlay(fs *pflag.FlagSet, base model.MovieForm) model.MovieForm {
	for _, f := range formFlags {
		if fs.Changed(f.name) {
			*f.field(&base) = *f.field(&m.form)
		}
	}
	return base
}

func newAddCmd(a *app) *cobra.Command {
	var flags movieFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie with its posters and trailer",
		Example: `  cinebook add --title "The Avengers" --genre "Action, Sci-Fi" --duration 143 \
    --release-date 2012-05-04 --price 12.50 --poster front.jpg --poster back.jpg --trailer trailer.mp4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.submit(cmd, &flags, func(buf *staging.Buffer) *view.CreateView {
				v := view.NewCreateView(buf)
				v.SetForm(flags.form)
				return v
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var flags movieFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a movie; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.gateway.GetByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("update movie %s: %w", args[0], err)
			}
			return a.submit(cmd, &flags, func(buf *staging.Buffer) *view.CreateView {
				v := view.NewEditView(current, buf)
				v.SetForm(flags.overlay(cmd.Flags(), v.Form()))
				return v
			})
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// submit stages the media files, waits for their previews and sends the
// form through the view built by newView.
func (a *app) submit(cmd *cobra.Command, flags *movieFlags, newView func(*staging.Buffer) *view.CreateView) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	// Nothing renders the previews here, so files are only sniffed.
	pool := processing.New(a.cfg.PreviewWorkers,
		processing.WithLogger(a.logger),
		processing.WithEncoder(preview.Sniff))
	pool.Start(ctx)
	buf := staging.New(pool)

	for _, path := range flags.posters {
		f, err := staging.OpenLocal(path)
		if err != nil {
			return fmt.Errorf("poster: %w", err)
		}
		buf.AddImages(f)
	}
	if flags.trailer != "" {
		f, err := staging.OpenLocal(flags.trailer)
		if err != nil {
			return fmt.Errorf("trailer: %w", err)
		}
		buf.SetVideo(f)
	}
	if err := buf.WaitPreviews(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	reportStaged(out, buf)

	v := newView(buf)
	saved, err := v.Submit(ctx, a.gateway)
	if err != nil {
		if v.Editing() {
			return fmt.Errorf("failed to update movie: %w", err)
		}
		return fmt.Errorf("failed to add movie: %w", err)
	}
	if v.Editing() {
		fmt.Fprintf(out, "Movie %s updated successfully!\n", saved.ID)
	} else {
		fmt.Fprintf(out, "Movie added successfully! (id %s)\n", saved.ID)
	}
	return nil
}

// reportStaged prints one line per staged file with its sniffed media type.
func reportStaged(w io.Writer, buf *staging.Buffer) {
	line := func(kind string, e staging.Entry) {
		detail := preview.MediaType(e.Preview)
		if e.State == staging.PreviewFailed {
			detail = "no preview: " + e.Err.Error()
		}
		fmt.Fprintf(w, "staged %s %s (%s, %s)\n", kind, e.File.Name(), humanize.Bytes(uint64(e.File.Size())), detail)
	}
	for _, e := range buf.Images() {
		line("poster", e)
	}
	if e, ok := buf.Video(); ok {
		line("trailer", e)
	}
}

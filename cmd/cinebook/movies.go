package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

func newListCmd(a *app) *cobra.Command {
	var status, genre string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies, optionally filtered by status and genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewListView()
			if err := v.Load(cmd.Context(), a.gateway); err != nil {
				return fmt.Errorf("list movies: %w", err)
			}
			if err := v.SetStatus(status); err != nil {
				return err
			}
			v.SetGenre(genre)

			movies := v.Movies()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(movies)
			}
			if v.Empty() {
				fmt.Fprintln(out, "No movies yet.")
				return nil
			}
			if len(movies) == 0 {
				fmt.Fprintln(out, "No movies match these filters.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tGENRE\tDURATION\tPRICE")
			for _, m := range movies {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.StateOfMovie.Label(),
					m.Genre, model.FormatDuration(m.Duration), model.FormatPrice(m.BasePrice))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			t := v.Tally()
			fmt.Fprintf(out, "\n%d total, %d now showing, %d coming soon, %d ended\n",
				t.Total, t.NowShowing, t.ComingSoon, t.Ended)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "NOW_SHOWING, COMING_SOON, ENDED or ALL")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre token, for example Action")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the matching movies as JSON")
	return cmd
}

func newGenresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "Print the genre vocabulary of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewListView()
			if err := v.Load(cmd.Context(), a.gateway); err != nil {
				return fmt.Errorf("list movies: %w", err)
			}
			for _, g := range v.Genres() {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var poster int
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := view.NewDetailView(args[0])
			if err := v.Load(cmd.Context(), a.gateway); err != nil {
				return fmt.Errorf("show movie %s: %w", args[0], err)
			}
			if poster != 0 && !v.SelectPoster(poster-1) {
				return fmt.Errorf("poster %d out of range 1-%d", poster, v.Carousel().Position.Total)
			}
			m, _ := v.Movie()
			printMovie(cmd.OutOrStdout(), m, v)
			return nil
		},
	}
	cmd.Flags().IntVar(&poster, "poster", 0, "Poster to show, starting at 1")
	return cmd
}

func printMovie(w io.Writer, m model.Movie, v *view.DetailView) {
	fmt.Fprintf(w, "%s (%s)\n", m.Title, m.ID)
	fmt.Fprintf(w, "%s · %s · %s\n", m.StateOfMovie.Label(), m.Genre, model.FormatDuration(m.Duration))
	if badge := m.AgeBadge(); badge != "" {
		fmt.Fprintf(w, "Rated %s\n", badge)
	}
	if d := m.ReleaseDate.Long(); d != "" {
		fmt.Fprintf(w, "Released %s\n", d)
	}
	fmt.Fprintf(w, "Price %s · %s\n", model.FormatPrice(m.BasePrice), model.Pluralize(m.TotalBookings, "booking"))
	if m.AverageRating != 0 {
		fmt.Fprintf(w, "Rating %.1f / 10\n", m.AverageRating)
	}
	if len(m.Cast) > 0 {
		fmt.Fprintf(w, "Cast %s\n", strings.Join(m.Cast, ", "))
	}
	if s := m.Synopsis(); s != "" {
		fmt.Fprintf(w, "\n%s\n", s)
	}

	c := v.Carousel()
	fmt.Fprintln(w)
	if c.Multiple() {
		fmt.Fprintf(w, "Poster %d/%d %s\n", c.Position.Current, c.Position.Total, v.Poster())
	} else {
		fmt.Fprintf(w, "Poster %s\n", v.Poster())
	}
	if m.TrailerURL != "" {
		fmt.Fprintf(w, "Trailer %s\n", m.TrailerURL)
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := view.NewDetailView(args[0])
			if err := v.Load(cmd.Context(), a.gateway); err != nil {
				return fmt.Errorf("delete movie %s: %w", args[0], err)
			}
			m, _ := v.Movie()
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Are you sure you want to delete %q?", m.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := v.Delete(cmd.Context(), a.gateway); err != nil {
				return fmt.Errorf("delete movie %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Movie deleted successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

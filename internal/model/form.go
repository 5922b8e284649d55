package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Ratings are the certificate options offered by the create form.
var Ratings = []string{"G", "PG", "PG-13", "R", "NC-17"}

// MovieForm holds the raw text of the create/update form. Every field is a
// string so a failed submit can re-render exactly what the user typed.
type MovieForm struct {
	Title                string
	Description          string
	Genre                string
	Duration             string
	Rating               string
	ReleaseDate          string
	Director             string
	Producer             string
	Writer               string
	AverageRating        string
	StateOfMovie         string
	AgeRestriction       string
	PlotSummary          string
	BasePrice            string
	BookingStartDate     string
	BookingEndDate       string
	AvailableAtLocations string
	Cast                 string
}

// NewMovieForm returns a form carrying the defaults of a blank entry.
func NewMovieForm() MovieForm {
	return MovieForm{
		Rating:         "PG-13",
		AgeRestriction: "PG-13",
		StateOfMovie:   string(StatusNowShowing),
	}
}

// FormFromMovie pre-fills a form for editing an existing record.
func FormFromMovie(m Movie) MovieForm {
	f := MovieForm{
		Title:                m.Title,
		Description:          m.Description,
		Genre:                m.Genre,
		Duration:             strconv.Itoa(m.Duration),
		Rating:               m.Rating,
		ReleaseDate:          m.ReleaseDate.String(),
		Director:             m.Director,
		Producer:             m.Producer,
		Writer:               m.Writer,
		StateOfMovie:         string(m.StateOfMovie),
		AgeRestriction:       m.AgeRestriction,
		PlotSummary:          m.PlotSummary,
		BasePrice:            strconv.FormatFloat(m.BasePrice, 'f', -1, 64),
		BookingStartDate:     m.BookingStartDate.String(),
		BookingEndDate:       m.BookingEndDate.String(),
		AvailableAtLocations: strings.Join(m.AvailableAtLocations, ", "),
		Cast:                 strings.Join(m.Cast, ", "),
	}
	if m.AverageRating != 0 {
		f.AverageRating = strconv.FormatFloat(m.AverageRating, 'f', -1, 64)
	}
	return f
}

// FormError lists the fields that could not be converted.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid movie form: " + strings.Join(parts, "; ")
}

// Movie converts the form into a record. Total bookings start at zero.
func (f MovieForm) Movie() (Movie, error) {
	bad := map[string]string{}
	required := func(name, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			bad[name] = "required"
		}
		return value
	}

	m := Movie{
		Title:                required("title", f.Title),
		Description:          strings.TrimSpace(f.Description),
		Genre:                required("genre", f.Genre),
		Rating:               strings.TrimSpace(f.Rating),
		Director:             strings.TrimSpace(f.Director),
		Producer:             strings.TrimSpace(f.Producer),
		Writer:               strings.TrimSpace(f.Writer),
		StateOfMovie:         Status(strings.TrimSpace(f.StateOfMovie)),
		AgeRestriction:       strings.TrimSpace(f.AgeRestriction),
		PlotSummary:          strings.TrimSpace(f.PlotSummary),
		AvailableAtLocations: SplitList(f.AvailableAtLocations),
		Cast:                 SplitList(f.Cast),
	}

	if v := required("duration", f.Duration); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			bad["duration"] = "must be a whole number of minutes"
		}
		m.Duration = n
	}
	if v := required("basePrice", f.BasePrice); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			bad["basePrice"] = "must be a non-negative number"
		}
		m.BasePrice = p
	}
	if v := strings.TrimSpace(f.AverageRating); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 10 {
			bad["averageRating"] = "must be between 0 and 10"
		}
		m.AverageRating = r
	}
	if m.StateOfMovie == "" {
		m.StateOfMovie = StatusNowShowing
	} else if !m.StateOfMovie.Valid() {
		bad["stateOfMovie"] = fmt.Sprintf("unknown state %q", f.StateOfMovie)
	}

	dates := []struct {
		name string
		raw  string
		dst  *Date
	}{
		{"releaseDate", f.ReleaseDate, &m.ReleaseDate},
		{"bookingStartDate", f.BookingStartDate, &m.BookingStartDate},
		{"bookingEndDate", f.BookingEndDate, &m.BookingEndDate},
	}
	for _, d := range dates {
		raw := strings.TrimSpace(d.raw)
		if d.name == "releaseDate" {
			raw = required(d.name, d.raw)
		}
		if raw == "" {
			continue
		}
		parsed, err := ParseDate(raw)
		if err != nil {
			bad[d.name] = "must be a date (YYYY-MM-DD)"
			continue
		}
		*d.dst = parsed
	}

	if len(bad) > 0 {
		return Movie{}, &FormError{Fields: bad}
	}
	return m, nil
}

package filter

import "github.com/dharsanguruparan/cinebook/internal/model"

// Engine memoizes the derived values of a list view. Every mutation
// recomputes them, so readers always see values consistent with the latest
// collection and selectors.
type Engine struct {
	movies   []model.Movie
	criteria Criteria
	genres   []string
	filtered []model.Movie
	tally    Tally
}

// NewEngine returns an engine over an empty collection with both selectors
// set to All.
func NewEngine() *Engine {
	e := &Engine{criteria: Criteria{Status: All, Genre: All}}
	e.recompute()
	return e
}

// SetMovies replaces the source collection.
func (e *Engine) SetMovies(movies []model.Movie) {
	e.movies = append([]model.Movie(nil), movies...)
	e.recompute()
}

// SetStatus changes the status selector. Unknown statuses are rejected and
// leave the selector unchanged.
func (e *Engine) SetStatus(status string) error {
	s, err := ParseStatus(status)
	if err != nil {
		return err
	}
	e.criteria.Status = s
	e.recompute()
	return nil
}

// SetGenre changes the genre selector. Any token is accepted; one that is not
// in the vocabulary simply selects nothing.
func (e *Engine) SetGenre(genre string) {
	if genre == "" {
		genre = All
	}
	e.criteria.Genre = genre
	e.recompute()
}

// Criteria returns the current selectors.
func (e *Engine) Criteria() Criteria { return e.criteria }

// Movies returns the unfiltered collection.
func (e *Engine) Movies() []model.Movie { return e.movies }

// Genres returns the derived genre vocabulary.
func (e *Engine) Genres() []string { return e.genres }

// Filtered returns the movies matching both selectors.
func (e *Engine) Filtered() []model.Movie { return e.filtered }

// Tally returns the per-status counts of the whole collection.
func (e *Engine) Tally() Tally { return e.tally }

func (e *Engine) recompute() {
	e.genres = Genres(e.movies)
	e.filtered = Apply(e.movies, e.criteria)
	e.tally = Count(e.movies)
}

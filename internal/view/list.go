package view

import (
	"context"
	"sync"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/filter"
	"github.com/dharsanguruparan/cinebook/internal/model"
)

// ListView is the catalog page: the collection plus its status and genre
// selectors.
type ListView struct {
	State State[[]model.Movie]

	mu     sync.Mutex
	engine *filter.Engine
}

// NewListView returns a view in the Loading phase with both selectors on ALL.
func NewListView() *ListView {
	return &ListView{engine: filter.NewEngine()}
}

// Load fetches the collection. A load that settles after a newer Load began
// is discarded.
func (v *ListView) Load(ctx context.Context, gw catalog.Gateway) error {
	ticket := v.State.Begin()
	movies, err := gw.ListAll(ctx)
	if err != nil {
		v.State.Fail(ticket, err)
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.State.Resolve(ticket, movies) {
		v.engine.SetMovies(movies)
	}
	return nil
}

// SetStatus selects a status or ALL.
func (v *ListView) SetStatus(status string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.SetStatus(status)
}

// SetGenre selects a genre token or ALL.
func (v *ListView) SetGenre(genre string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.engine.SetGenre(genre)
}

// Criteria returns the active selectors.
func (v *ListView) Criteria() filter.Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Criteria()
}

// Movies returns the filtered collection.
func (v *ListView) Movies() []model.Movie {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Filtered()
}

// Genres returns the genre vocabulary, ALL first.
func (v *ListView) Genres() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Genres()
}

// Tally counts the whole collection per status.
func (v *ListView) Tally() filter.Tally {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engine.Tally()
}

// Empty reports whether the loaded collection has no movies at all, as
// opposed to none matching the selectors.
func (v *ListView) Empty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.engine.Movies()) == 0
}

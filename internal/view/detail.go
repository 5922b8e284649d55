package view

import (
	"context"
	"errors"
	"sync"

	"github.com/dharsanguruparan/cinebook/internal/carousel"
	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/model"
)

// DetailView is one movie's page: the record, a carousel over its posters
// and the trailer toggle.
type DetailView struct {
	State State[model.Movie]

	mu          sync.Mutex
	id          string
	posters     *carousel.Carousel[string]
	showTrailer bool
}

// NewDetailView returns a Loading view for id.
func NewDetailView(id string) *DetailView {
	return &DetailView{id: id, posters: carousel.New[string](nil)}
}

// ID returns the movie id the view was opened for.
func (v *DetailView) ID() string { return v.id }

// Load fetches the movie. The carousel is rebuilt over its posters, or over
// the placeholder poster when it has none, and starts at the first one.
func (v *DetailView) Load(ctx context.Context, gw catalog.Gateway) error {
	ticket := v.State.Begin()
	m, err := gw.GetByID(ctx, v.id)
	if err != nil {
		v.State.Fail(ticket, err)
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.State.Resolve(ticket, m) {
		v.posters = carousel.New(m.Posters())
		v.showTrailer = false
	}
	return nil
}

// NotFound reports whether the last load failed because the movie is gone.
func (v *DetailView) NotFound() bool {
	return errors.Is(v.State.Err(), catalog.ErrNotFound)
}

// Movie returns the loaded record.
func (v *DetailView) Movie() (model.Movie, bool) {
	phase, m, _ := v.State.Snapshot()
	return m, phase == Ready
}

// NextPoster advances the carousel.
func (v *DetailView) NextPoster() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.posters.Advance()
}

// PrevPoster moves the carousel back.
func (v *DetailView) PrevPoster() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.posters.Retreat()
}

// SelectPoster jumps to a thumbnail. Out-of-range indices are ignored.
func (v *DetailView) SelectPoster(i int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.posters.Select(i)
}

// Poster returns the active poster URL.
func (v *DetailView) Poster() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, _ := v.posters.Current()
	return p
}

// Carousel exposes position and thumbnails for rendering.
func (v *DetailView) Carousel() CarouselSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return CarouselSnapshot{
		Current:    v.posters.Index(),
		Next:       v.posters.NextIndex(),
		Prev:       v.posters.PrevIndex(),
		Position:   v.posters.Position(),
		Thumbnails: v.posters.Thumbnails(),
	}
}

// CarouselSnapshot is a read-only copy of the poster carousel.
type CarouselSnapshot struct {
	Current    int
	Next       int
	Prev       int
	Position   carousel.Position
	Thumbnails []carousel.Thumbnail[string]
}

// Multiple reports whether there is more than one poster to cycle through.
func (c CarouselSnapshot) Multiple() bool { return c.Position.Total > 1 }

// ToggleTrailer flips trailer visibility. Movies without a trailer never
// show one.
func (v *DetailView) ToggleTrailer() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showTrailer = !v.showTrailer
	return v.trailerVisibleLocked()
}

// SetTrailerVisible sets trailer visibility directly.
func (v *DetailView) SetTrailerVisible(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showTrailer = show
}

// TrailerVisible reports whether the trailer player should be shown.
func (v *DetailView) TrailerVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.trailerVisibleLocked()
}

func (v *DetailView) trailerVisibleLocked() bool {
	m, ok := v.Movie()
	return ok && v.showTrailer && m.TrailerURL != ""
}

// Delete removes the movie from the catalog.
func (v *DetailView) Delete(ctx context.Context, gw catalog.Gateway) error {
	return gw.DeleteByID(ctx, v.id)
}

package view

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/catalog/catalogtest"
	"github.com/dharsanguruparan/cinebook/internal/filter"
	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/processing"
	"github.com/dharsanguruparan/cinebook/internal/staging"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func movies() []model.Movie {
	return []model.Movie{
		{Title: "A", Genre: "Action, Drama", StateOfMovie: model.StatusNowShowing,
			PosterURLs: []string{"p1", "p2", "p3"}, TrailerURL: "t.mp4"},
		{Title: "B", Genre: "Comedy", StateOfMovie: model.StatusComingSoon},
		{Title: "C", Genre: "Drama", StateOfMovie: model.StatusNowShowing, TotalBookings: 40},
	}
}

func backend(t *testing.T, seed ...model.Movie) (*catalog.Client, *catalogtest.Server) {
	t.Helper()
	srv := catalogtest.NewServer(seed...)
	t.Cleanup(srv.Close)
	return catalog.New(srv.CollectionURL(), catalog.WithLogger(quiet)), srv
}

// gatedGateway blocks ListAll and GetByID until released, so tests can
// interleave two loads.
type gatedGateway struct {
	catalog.Gateway
	calls chan chan []model.Movie
}

func (g *gatedGateway) ListAll(context.Context) ([]model.Movie, error) {
	reply := make(chan []model.Movie)
	g.calls <- reply
	return <-reply, nil
}

// hookGateway runs during before delegating Create.
type hookGateway struct {
	catalog.Gateway
	during func()
}

func (g hookGateway) Create(ctx context.Context, m model.Movie, posters []catalog.Attachment, trailer catalog.Attachment) (model.Movie, error) {
	g.during()
	return g.Gateway.Create(ctx, m, posters, trailer)
}

type inlineScheduler struct{}

func (inlineScheduler) Submit(job processing.Job) { job.Done("data:x", nil) }

type file struct{ name string }

func (f file) Name() string { return f.name }
func (f file) Size() int64  { return 1 }
func (f file) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte("x"))), nil
}

func TestStateIgnoresStaleTickets(t *testing.T) {
	var s State[string]
	assert.Equal(t, Loading, s.Phase())

	first := s.Begin()
	second := s.Begin()
	assert.False(t, s.Resolve(first, "old"))
	assert.False(t, s.Fail(first, errors.New("old")))
	assert.Equal(t, Loading, s.Phase())

	assert.True(t, s.Resolve(second, "new"))
	phase, data, err := s.Snapshot()
	assert.Equal(t, Ready, phase)
	assert.Equal(t, "new", data)
	assert.NoError(t, err)

	third := s.Begin()
	boom := errors.New("boom")
	assert.True(t, s.Fail(third, boom))
	assert.Equal(t, Failed, s.Phase())
	assert.ErrorIs(t, s.Err(), boom)
	_, data, _ = s.Snapshot()
	assert.Equal(t, "new", data, "earlier data stays readable")
}

func TestListViewLoadAndFilter(t *testing.T) {
	gw, _ := backend(t, movies()...)
	v := NewListView()
	assert.Equal(t, Loading, v.State.Phase())

	require.NoError(t, v.Load(context.Background(), gw))
	assert.Equal(t, Ready, v.State.Phase())
	assert.Len(t, v.Movies(), 3)
	assert.Equal(t, []string{filter.All, "Action", "Drama", "Comedy"}, v.Genres())
	assert.Equal(t, filter.Tally{Total: 3, NowShowing: 2, ComingSoon: 1}, v.Tally())

	require.NoError(t, v.SetStatus(string(model.StatusNowShowing)))
	v.SetGenre("Drama")
	got := v.Movies()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "C", got[1].Title)

	assert.Error(t, v.SetStatus("SOLD_OUT"))
	assert.Equal(t, string(model.StatusNowShowing), v.Criteria().Status)
	assert.False(t, v.Empty())
}

func TestListViewFailure(t *testing.T) {
	gw, srv := backend(t)
	srv.FailNext("GET", 503)
	v := NewListView()

	err := v.Load(context.Background(), gw)
	require.Error(t, err)
	assert.Equal(t, Failed, v.State.Phase())
	assert.True(t, v.Empty())
}

func TestListViewDropsStaleLoad(t *testing.T) {
	gw := &gatedGateway{calls: make(chan chan []model.Movie)}
	v := NewListView()

	done := make(chan error, 2)
	go func() { done <- v.Load(context.Background(), gw) }()
	slow := <-gw.calls
	go func() { done <- v.Load(context.Background(), gw) }()
	fast := <-gw.calls

	fast <- movies()[:1]
	require.NoError(t, <-done)
	slow <- movies()
	require.NoError(t, <-done)

	require.Len(t, v.Movies(), 1)
	assert.Equal(t, "A", v.Movies()[0].Title)
}

func TestDetailViewCarousel(t *testing.T) {
	gw, _ := backend(t, movies()...)
	v := NewDetailView("1")
	require.NoError(t, v.Load(context.Background(), gw))

	m, ok := v.Movie()
	require.True(t, ok)
	assert.Equal(t, "A", m.Title)
	assert.Equal(t, "p1", v.Poster())

	v.PrevPoster()
	assert.Equal(t, "p3", v.Poster())
	v.NextPoster()
	v.NextPoster()
	assert.Equal(t, "p2", v.Poster())

	assert.False(t, v.SelectPoster(3))
	assert.Equal(t, "p2", v.Poster())
	assert.True(t, v.SelectPoster(0))

	snap := v.Carousel()
	assert.True(t, snap.Multiple())
	assert.Equal(t, 1, snap.Next)
	assert.Equal(t, 2, snap.Prev)
	assert.Equal(t, 3, snap.Position.Total)
	assert.True(t, snap.Thumbnails[0].Active)

	assert.False(t, v.TrailerVisible())
	assert.True(t, v.ToggleTrailer())
	assert.False(t, v.ToggleTrailer())
}

func TestDetailViewPlaceholderAndNoTrailer(t *testing.T) {
	gw, _ := backend(t, movies()...)
	v := NewDetailView("2")
	require.NoError(t, v.Load(context.Background(), gw))

	assert.Equal(t, model.PlaceholderPoster, v.Poster())
	assert.True(t, v.NextPoster())
	assert.Equal(t, model.PlaceholderPoster, v.Poster())
	assert.False(t, v.Carousel().Multiple())

	v.SetTrailerVisible(true)
	assert.False(t, v.TrailerVisible())
}

func TestDetailViewNotFoundAfterDelete(t *testing.T) {
	gw, _ := backend(t, movies()...)
	ctx := context.Background()
	v := NewDetailView("3")
	require.NoError(t, v.Load(ctx, gw))
	require.NoError(t, v.Delete(ctx, gw))

	err := v.Load(ctx, gw)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.True(t, v.NotFound())
	_, ok := v.Movie()
	assert.False(t, ok)
}

func TestCreateViewSubmit(t *testing.T) {
	gw, srv := backend(t)
	buf := staging.New(inlineScheduler{})
	v := NewCreateView(buf)
	assert.False(t, v.Editing())
	assert.Equal(t, "PG-13", v.Form().Rating)

	form := v.Form()
	form.Title = "Heat"
	form.Genre = "Crime"
	form.Duration = "170"
	form.ReleaseDate = "1995-12-15"
	form.BasePrice = "9.5"
	form.Cast = "Al Pacino, Robert De Niro"
	v.SetForm(form)
	buf.AddImages(file{"a.png"}, file{"b.png"})
	buf.SetVideo(file{"t.mp4"})

	saved, err := v.Submit(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, model.ID("1"), saved.ID)
	assert.Len(t, saved.PosterURLs, 2)

	stored, ok := srv.Movie("1")
	require.True(t, ok)
	assert.Equal(t, []string{"Al Pacino", "Robert De Niro"}, stored.Cast)
	assert.Equal(t, 9.5, stored.BasePrice)

	assert.Zero(t, buf.Len())
	_, staged := buf.Video()
	assert.False(t, staged)
	assert.Empty(t, v.Form().Title)
	assert.False(t, v.Submitting())
}

func TestCreateViewFormErrorKeepsStaging(t *testing.T) {
	gw, srv := backend(t)
	buf := staging.New(inlineScheduler{})
	v := NewCreateView(buf)
	buf.AddImages(file{"a.png"})

	_, err := v.Submit(context.Background(), gw)
	var fe *model.FormError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields, "title")
	assert.Equal(t, 1, buf.Len())
	assert.Zero(t, srv.Len())
}

func TestCreateViewGatewayFailureDiscardsStaging(t *testing.T) {
	gw, srv := backend(t)
	srv.FailNext("POST", 500)
	buf := staging.New(inlineScheduler{})
	v := NewCreateView(buf)
	form := v.Form()
	form.Title, form.Genre, form.Duration, form.ReleaseDate, form.BasePrice = "X", "Y", "90", "2024-01-01", "5"
	v.SetForm(form)
	buf.AddImages(file{"a.png"})

	_, err := v.Submit(context.Background(), gw)
	var te *catalog.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, buf.Len())
	assert.Equal(t, "X", v.Form().Title, "form keeps what the user typed")
}

func TestEditViewKeepsUnformedFields(t *testing.T) {
	gw, srv := backend(t, movies()...)
	ctx := context.Background()
	m, err := gw.GetByID(ctx, "3")
	require.NoError(t, err)

	v := NewEditView(m, staging.New(inlineScheduler{}))
	assert.True(t, v.Editing())
	form := v.Form()
	form.Title = "C (restored)"
	form.Duration = "100"
	form.ReleaseDate = "2020-02-02"
	form.BasePrice = "7"
	v.SetForm(form)

	saved, err := v.Submit(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, "C (restored)", saved.Title)
	stored, _ := srv.Movie("3")
	assert.Equal(t, 40, stored.TotalBookings)
	assert.Equal(t, "C (restored)", v.Form().Title)
}

func TestCreateViewKeepsMediaStagedDuringSubmit(t *testing.T) {
	gw, srv := backend(t)
	buf := staging.New(inlineScheduler{})
	v := NewCreateView(buf)
	form := v.Form()
	form.Title, form.Genre, form.Duration, form.ReleaseDate, form.BasePrice = "X", "Y", "90", "2024-01-01", "5"
	v.SetForm(form)
	buf.AddImages(file{"sent.png"})

	var lateID []uuid.UUID
	hooked := hookGateway{Gateway: gw, during: func() {
		lateID = buf.AddImages(file{"late.png"})
	}}
	_, err := v.Submit(context.Background(), hooked)
	require.NoError(t, err)

	uploads := srv.Uploads("1")
	require.Len(t, uploads, 1)
	assert.Equal(t, "sent.png", uploads[0].Filename)

	images := buf.Images()
	require.Len(t, images, 1)
	assert.Equal(t, lateID[0], images[0].ID)
	assert.Equal(t, "late.png", images[0].File.Name())
}

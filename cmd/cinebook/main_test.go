package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/catalog/catalogtest"
	"github.com/dharsanguruparan/cinebook/internal/model"
)

func newBackend(t *testing.T) *catalogtest.Server {
	t.Helper()
	backend := catalogtest.NewServer(
		model.Movie{Title: "Alpha", Genre: "Action, Drama", StateOfMovie: model.StatusNowShowing, Duration: 125,
			ReleaseDate: model.NewDate(2024, time.May, 1), BasePrice: 12.5, TotalBookings: 7, PosterURLs: []string{"http://cdn/a1.jpg", "http://cdn/a2.jpg"},
			Cast: []string{"Ann"}},
		model.Movie{Title: "Beta", Genre: "Comedy", StateOfMovie: model.StatusComingSoon, Duration: 90},
	)
	t.Cleanup(backend.Close)
	return backend
}

func execute(t *testing.T, backend *catalogtest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--api-url", backend.CollectionURL(), "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestListCommand(t *testing.T) {
	backend := newBackend(t)
	out, err := execute(t, backend, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "2h 5m")
	assert.Contains(t, out, "2 total, 1 now showing, 1 coming soon, 0 ended")

	out, err = execute(t, backend, "", "list", "--genre", "Drama")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.NotContains(t, out, "Beta")

	out, err = execute(t, backend, "", "list", "--status", "ENDED")
	require.NoError(t, err)
	assert.Contains(t, out, "No movies match these filters.")

	_, err = execute(t, backend, "", "list", "--status", "SOLD_OUT")
	assert.ErrorContains(t, err, "unknown status")
}

func TestListCommandJSON(t *testing.T) {
	backend := newBackend(t)
	out, err := execute(t, backend, "", "list", "--json", "--status", "COMING_SOON")
	require.NoError(t, err)
	var movies []model.Movie
	require.NoError(t, json.Unmarshal([]byte(out), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Beta", movies[0].Title)
}

func TestListCommandBackendDown(t *testing.T) {
	backend := newBackend(t)
	backend.FailNext(http.MethodGet, http.StatusServiceUnavailable)
	_, err := execute(t, backend, "", "list")
	var transport *catalog.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusServiceUnavailable, transport.Status)
}

func TestGenresCommand(t *testing.T) {
	out, err := execute(t, newBackend(t), "", "genres")
	require.NoError(t, err)
	assert.Equal(t, "ALL\nAction\nDrama\nComedy\n", out)
}

func TestShowCommand(t *testing.T) {
	backend := newBackend(t)
	out, err := execute(t, backend, "", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha (1)")
	assert.Contains(t, out, "Released May 1, 2024")
	assert.Contains(t, out, "Price $12.50 · 7 bookings")
	assert.Contains(t, out, "Poster 1/2 http://cdn/a1.jpg")

	out, err = execute(t, backend, "", "show", "1", "--poster", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Poster 2/2 http://cdn/a2.jpg")

	_, err = execute(t, backend, "", "show", "1", "--poster", "3")
	assert.ErrorContains(t, err, "poster 3 out of range 1-2")

	out, err = execute(t, backend, "", "show", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Poster "+model.PlaceholderPoster)

	_, err = execute(t, backend, "", "show", "99")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteCommand(t *testing.T) {
	backend := newBackend(t)
	out, err := execute(t, backend, "n\n", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `Are you sure you want to delete "Beta"?`)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 2, backend.Len())

	out, err = execute(t, backend, "yes\n", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Movie deleted successfully!")
	assert.Equal(t, 1, backend.Len())

	_, err = execute(t, backend, "", "delete", "2", "--yes")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = execute(t, backend, "", "delete", "1", "-y")
	require.NoError(t, err)
	assert.Zero(t, backend.Len())
}

func TestAddCommand(t *testing.T) {
	backend := newBackend(t)
	poster := writeFile(t, "front.png", []byte("\x89PNG\r\n\x1a\nrest"))
	trailer := writeFile(t, "clip.mp4", []byte("not really a video"))

	out, err := execute(t, backend, "", "add",
		"--title", "Gamma", "--genre", "Drama, Thriller", "--duration", "101",
		"--release-date", "2024-06-01", "--price", "9.5", "--cast", "Cy, Di",
		"--poster", poster, "--trailer", trailer)
	require.NoError(t, err)
	assert.Contains(t, out, "staged poster front.png (12 B, image/png)")
	assert.Contains(t, out, "staged trailer clip.mp4 (18 B, video/mp4)")
	assert.Contains(t, out, "Movie added successfully! (id 3)")

	m, ok := backend.Movie("3")
	require.True(t, ok)
	assert.Equal(t, "Gamma", m.Title)
	assert.Equal(t, model.StatusNowShowing, m.StateOfMovie)
	assert.Equal(t, "PG-13", m.Rating)
	assert.Equal(t, []string{"Cy", "Di"}, m.Cast)

	uploads := backend.Uploads("3")
	require.Len(t, uploads, 2)
	assert.Equal(t, "front.png", uploads[0].Filename)
	assert.Equal(t, "image/png", uploads[0].ContentType)
	assert.Equal(t, "clip.mp4", uploads[1].Filename)
}

func TestAddCommandInvalidForm(t *testing.T) {
	backend := newBackend(t)
	_, err := execute(t, backend, "", "add", "--genre", "Drama", "--duration", "abc")
	var formErr *model.FormError
	require.ErrorAs(t, err, &formErr)
	assert.Contains(t, formErr.Fields, "title")
	assert.Contains(t, formErr.Fields, "duration")
	assert.Equal(t, 2, backend.Len())

	_, err = execute(t, backend, "", "add", "--title", "X", "--poster", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUpdateCommand(t *testing.T) {
	backend := newBackend(t)
	out, err := execute(t, backend, "", "update", "1", "--price", "15", "--status", "ENDED")
	require.NoError(t, err)
	assert.Contains(t, out, "Movie 1 updated successfully!")

	m, ok := backend.Movie("1")
	require.True(t, ok)
	assert.Equal(t, "Alpha", m.Title)
	assert.Equal(t, 15.0, m.BasePrice)
	assert.Equal(t, model.StatusEnded, m.StateOfMovie)
	assert.Equal(t, 7, m.TotalBookings)
	assert.Equal(t, []string{"http://cdn/a1.jpg", "http://cdn/a2.jpg"}, m.PosterURLs)

	_, err = execute(t, backend, "", "update", "42", "--price", "1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES": true, "\n": false, "": false, "nope\n": false} {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(input), &out, "Proceed?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
		assert.Equal(t, "Proceed? [y/N] ", out.String())
	}
}

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/cinebook/internal/model"
)

func TestEngineRecomputesOnEveryChange(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, []string{All}, e.Genres())
	assert.Empty(t, e.Filtered())

	e.SetMovies(scenario())
	assert.Len(t, e.Filtered(), 2)
	assert.Equal(t, []string{All, "Action", "Sci-Fi", "Drama"}, e.Genres())
	assert.Equal(t, 1, e.Tally().NowShowing)

	require.NoError(t, e.SetStatus("ENDED"))
	require.Len(t, e.Filtered(), 1)
	assert.Equal(t, model.ID("2"), e.Filtered()[0].ID)

	e.SetGenre("Action")
	assert.Empty(t, e.Filtered())

	require.NoError(t, e.SetStatus(All))
	require.Len(t, e.Filtered(), 1)
	assert.Equal(t, model.ID("1"), e.Filtered()[0].ID)

	e.SetMovies(nil)
	assert.Empty(t, e.Filtered())
	assert.Equal(t, Criteria{Status: All, Genre: "Action"}, e.Criteria())
}

func TestEngineRejectsUnknownStatus(t *testing.T) {
	e := NewEngine()
	e.SetMovies(scenario())
	assert.Error(t, e.SetStatus("SOLD_OUT"))
	assert.Equal(t, All, e.Criteria().Status)
	assert.Len(t, e.Filtered(), 2)
}

func TestEngineDoesNotAliasInput(t *testing.T) {
	movies := scenario()
	e := NewEngine()
	e.SetMovies(movies)
	movies[0].StateOfMovie = model.StatusEnded
	require.NoError(t, e.SetStatus("ENDED"))
	assert.Len(t, e.Filtered(), 1)
}

// Package filter derives the list view of the catalog from the loaded
// collection and the user's status and genre selectors.
package filter

import (
	"fmt"

	"github.com/dharsanguruparan/cinebook/internal/model"
)

// All is the selector value that disables a criterion.
const All = "ALL"

// Criteria are the two independent selectors of the list view. Empty values
// behave like All.
type Criteria struct {
	Status string
	Genre  string
}

func (c Criteria) status() string {
	if c.Status == "" {
		return All
	}
	return c.Status
}

func (c Criteria) genre() string {
	if c.Genre == "" {
		return All
	}
	return c.Genre
}

// Match reports whether m satisfies both selectors. Genres match on whole
// comma-separated tokens, so "Action" does not select "Action-Adventure".
func (c Criteria) Match(m model.Movie) bool {
	if s := c.status(); s != All && string(m.StateOfMovie) != s {
		return false
	}
	if g := c.genre(); g != All && !m.HasGenre(g) {
		return false
	}
	return true
}

// Apply returns the movies matching c in their original order. The input is
// never modified.
func Apply(movies []model.Movie, c Criteria) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if c.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Genres derives the genre vocabulary: All followed by every distinct genre
// token in first-seen order.
func Genres(movies []model.Movie) []string {
	seen := make(map[string]struct{})
	out := []string{All}
	for _, m := range movies {
		for _, g := range m.Genres() {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
		}
	}
	return out
}

// ParseStatus validates a status selector. Blank input selects All.
func ParseStatus(s string) (string, error) {
	if s == "" || s == All {
		return All, nil
	}
	if !model.Status(s).Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return s, nil
}

// Tally counts the collection per status, as shown in the stats bar.
type Tally struct {
	Total      int
	NowShowing int
	ComingSoon int
	Ended      int
}

// Count builds a Tally over movies.
func Count(movies []model.Movie) Tally {
	t := Tally{Total: len(movies)}
	for _, m := range movies {
		switch m.StateOfMovie {
		case model.StatusNowShowing:
			t.NowShowing++
		case model.StatusComingSoon:
			t.ComingSoon++
		case model.StatusEnded:
			t.Ended++
		}
	}
	return t
}

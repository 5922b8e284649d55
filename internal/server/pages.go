package server

import (
	"github.com/dharsanguruparan/cinebook/internal/filter"
	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/staging"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

// page carries what the layout needs.
type page struct {
	Title  string
	Flash  string
	Notice string
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type listPage struct {
	page
	Movies   []model.Movie
	Genres   []string
	Statuses []option
	Criteria filter.Criteria
	Tally    filter.Tally
	Failed   bool
	Empty    bool
}

type detailPage struct {
	page
	Movie       model.Movie
	Poster      string
	Carousel    view.CarouselSnapshot
	ShowTrailer bool
}

type addPage struct {
	page
	Form     model.MovieForm
	Errors   map[string]string
	Images   []staging.Entry
	Video    *staging.Entry
	Ratings  []string
	Statuses []option
}

type errorPage struct {
	page
	Message string
}

func statusFilters(selected string) []option {
	out := []option{{Value: filter.All, Label: "All", Selected: selected == filter.All}}
	for _, s := range model.Statuses {
		out = append(out, option{Value: string(s), Label: s.Label(), Selected: selected == string(s)})
	}
	return out
}

func statusChoices(selected string) []option {
	out := make([]option, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		out = append(out, option{Value: string(s), Label: s.Label(), Selected: selected == string(s)})
	}
	return out
}

func newAddPage(v *view.CreateView) addPage {
	form := v.Form()
	p := addPage{
		page:     page{Title: "Add Movie"},
		Form:     form,
		Images:   v.Staging().Images(),
		Ratings:  model.Ratings,
		Statuses: statusChoices(form.StateOfMovie),
	}
	if e, ok := v.Staging().Video(); ok {
		p.Video = &e
	}
	return p
}

package view

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/staging"
)

// ErrSubmitting is returned when Submit is called while a submit is running.
var ErrSubmitting = errors.New("submit already in progress")

// CreateView is the add-movie page, also used to edit an existing movie: the
// form fields plus the staged posters and trailer.
type CreateView struct {
	mu         sync.Mutex
	id         string
	orig       model.Movie
	form       model.MovieForm
	staged     *staging.Buffer
	submitting bool
}

// NewCreateView returns a blank form over buf.
func NewCreateView(buf *staging.Buffer) *CreateView {
	return &CreateView{form: model.NewMovieForm(), staged: buf}
}

// NewEditView returns a form pre-filled from m. Submitting it updates m.
func NewEditView(m model.Movie, buf *staging.Buffer) *CreateView {
	return &CreateView{id: string(m.ID), orig: m, form: model.FormFromMovie(m), staged: buf}
}

// Editing reports whether the view updates an existing movie.
func (v *CreateView) Editing() bool { return v.id != "" }

// Form returns the current field values.
func (v *CreateView) Form() model.MovieForm {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// SetForm replaces the field values.
func (v *CreateView) SetForm(f model.MovieForm) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form = f
}

// Staging returns the media buffer.
func (v *CreateView) Staging() *staging.Buffer { return v.staged }

// Submitting reports whether a submit is in flight.
func (v *CreateView) Submitting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitting
}

// Reset clears the form back to its defaults and discards staged media.
func (v *CreateView) Reset() {
	v.mu.Lock()
	v.form = model.NewMovieForm()
	v.mu.Unlock()
	v.staged.Reset()
}

// Submit converts the form and sends it with the staged media. A form that
// does not convert returns *model.FormError and keeps everything staged.
// Once the gateway has been called the media it was sent are discarded
// whatever the outcome; on success the form is cleared as well.
func (v *CreateView) Submit(ctx context.Context, gw catalog.Gateway) (model.Movie, error) {
	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return model.Movie{}, ErrSubmitting
	}
	form := v.form
	v.mu.Unlock()

	m, err := form.Movie()
	if err != nil {
		return model.Movie{}, err
	}

	v.mu.Lock()
	if v.submitting {
		v.mu.Unlock()
		return model.Movie{}, ErrSubmitting
	}
	v.submitting = true
	v.mu.Unlock()

	images := v.staged.Images()
	sent := make([]uuid.UUID, 0, len(images)+1)
	posters := make([]catalog.Attachment, len(images))
	for i, e := range images {
		posters[i] = e.File
		sent = append(sent, e.ID)
	}
	var trailer catalog.Attachment
	if e, ok := v.staged.Video(); ok {
		trailer = e.File
		sent = append(sent, e.ID)
	}

	var saved model.Movie
	if v.id == "" {
		saved, err = gw.Create(ctx, m, posters, trailer)
	} else {
		// Fields the form does not carry are kept from the loaded record.
		m.ID = v.orig.ID
		m.TotalBookings = v.orig.TotalBookings
		m.PosterURLs = v.orig.PosterURLs
		m.TrailerURL = v.orig.TrailerURL
		saved, err = gw.Update(ctx, v.id, m, posters, trailer)
	}

	// Files staged while the request was in flight were not sent and stay.
	v.staged.Remove(sent...)
	v.mu.Lock()
	v.submitting = false
	if err == nil {
		if v.id == "" {
			v.form = model.NewMovieForm()
		} else {
			v.form = model.FormFromMovie(saved)
		}
	}
	v.mu.Unlock()
	if err != nil {
		return model.Movie{}, err
	}
	return saved, nil
}

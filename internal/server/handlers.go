package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/filter"
	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/preview"
	"github.com/dharsanguruparan/cinebook/internal/staging"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

// previewWait bounds how long a staging post waits for previews before
// redirecting; slower previews show as pending.
const previewWait = 2 * time.Second

const (
	noticeAdded        = "Movie added successfully!"
	noticeAddFailed    = "Failed to add movie. Please try again."
	noticeDeleted      = "Movie deleted successfully!"
	noticeDeleteFailed = "Failed to delete movie."
	noticeFixFields    = "Please fix the highlighted fields."
	noticeListFailed   = "Failed to load movies. Please try again later."
	noticeNotFound     = "Movie not found"
)

func (s *Server) handleList(c echo.Context) error {
	v := view.NewListView()
	p := listPage{page: page{Title: "Movies", Flash: takeFlash(c)}}
	if err := v.Load(c.Request().Context(), s.gateway); err != nil {
		p.Failed = true
		p.Notice = noticeListFailed
		p.Statuses = statusFilters(filter.All)
		p.Criteria = v.Criteria()
		return c.Render(http.StatusBadGateway, "list", p)
	}
	// An unknown status leaves the selector on ALL.
	_ = v.SetStatus(c.QueryParam("status"))
	v.SetGenre(c.QueryParam("genre"))

	p.Criteria = v.Criteria()
	p.Movies = v.Movies()
	p.Genres = v.Genres()
	p.Tally = v.Tally()
	p.Empty = v.Empty()
	p.Statuses = statusFilters(p.Criteria.Status)
	return c.Render(http.StatusOK, "list", p)
}

func (s *Server) handleDetail(c echo.Context) error {
	v := view.NewDetailView(c.Param("id"))
	if err := v.Load(c.Request().Context(), s.gateway); err != nil {
		if v.NotFound() {
			return c.Render(http.StatusNotFound, "error",
				errorPage{page: page{Title: "Not found"}, Message: noticeNotFound})
		}
		return c.Render(http.StatusBadGateway, "error",
			errorPage{page: page{Title: "Error"}, Message: "Failed to load movie. Please try again later."})
	}
	if raw := c.QueryParam("poster"); raw != "" {
		if i, err := strconv.Atoi(raw); err == nil {
			v.SelectPoster(i)
		}
	}
	v.SetTrailerVisible(c.QueryParam("trailer") == "1")

	m, _ := v.Movie()
	return c.Render(http.StatusOK, "detail", detailPage{
		page:        page{Title: m.Title, Flash: takeFlash(c)},
		Movie:       m,
		Poster:      v.Poster(),
		Carousel:    v.Carousel(),
		ShowTrailer: v.TrailerVisible(),
	})
}

func (s *Server) handleDelete(c echo.Context) error {
	id := c.Param("id")
	if err := view.NewDetailView(id).Delete(c.Request().Context(), s.gateway); err != nil {
		setFlash(c, noticeDeleteFailed)
		return c.Redirect(http.StatusSeeOther, "/movies/"+url.PathEscape(id))
	}
	s.logger.Info("movie deleted", slog.String("id", id))
	setFlash(c, noticeDeleted)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleAddForm(c echo.Context) error {
	v := s.session(c)
	p := newAddPage(v)
	p.Flash = takeFlash(c)
	return c.Render(http.StatusOK, "add", p)
}

// handleStage serves both upload buttons: every selected file is staged.
func (s *Server) handleStage(c echo.Context) error {
	v := s.session(c)
	if err := s.readAddForm(c, v, true); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), previewWait)
	defer cancel()
	_ = v.Staging().WaitPreviews(ctx)
	return c.Redirect(http.StatusSeeOther, "/add-movie")
}

// handleMedia streams a staged file of the visitor's own session. Previews of
// videos and large images point here instead of inlining the bytes.
func (s *Server) handleMedia(c echo.Context) error {
	id, err := uuid.Parse(c.Param("entry"))
	if err != nil {
		return echo.ErrNotFound
	}
	e, ok := s.session(c).Staging().Entry(id)
	if !ok {
		return echo.ErrNotFound
	}
	rc, err := e.File.Open(c.Request().Context())
	if err != nil {
		return fmt.Errorf("open staged %s: %w", id, err)
	}
	defer rc.Close()

	h := c.Response().Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set(echo.HeaderCacheControl, "private, no-store")
	return c.Stream(http.StatusOK, servedType(e), rc)
}

// servedType only lets image and video types through; anything else is sent
// as an opaque download.
func servedType(e staging.Entry) string {
	mediaType := preview.MediaType(e.Preview)
	if mediaType == "" {
		if typed, ok := e.File.(interface{ ContentType() string }); ok {
			mediaType = preview.MediaType(typed.ContentType())
		}
	}
	if strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/") {
		return mediaType
	}
	return echo.MIMEOctetStream
}

func (s *Server) handleRemovePoster(c echo.Context) error {
	v := s.session(c)
	if err := s.readAddForm(c, v, false); err != nil {
		return err
	}
	if id, err := uuid.Parse(c.Param("entry")); err == nil {
		v.Staging().RemoveImage(id)
	}
	return c.Redirect(http.StatusSeeOther, "/add-movie")
}

func (s *Server) handleRemoveTrailer(c echo.Context) error {
	v := s.session(c)
	if err := s.readAddForm(c, v, false); err != nil {
		return err
	}
	v.Staging().ClearVideo()
	return c.Redirect(http.StatusSeeOther, "/add-movie")
}

func (s *Server) handleReset(c echo.Context) error {
	s.session(c).Reset()
	return c.Redirect(http.StatusSeeOther, "/add-movie")
}

func (s *Server) handleSubmit(c echo.Context) error {
	v := s.session(c)
	if err := s.readAddForm(c, v, true); err != nil {
		return err
	}
	saved, err := v.Submit(c.Request().Context(), s.gateway)
	if err == nil {
		s.logger.Info("movie added", slog.String("id", string(saved.ID)), slog.String("title", saved.Title))
		setFlash(c, noticeAdded)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	p := newAddPage(v)
	var formErr *model.FormError
	var rejected *catalog.ValidationError
	switch {
	case errors.As(err, &formErr):
		p.Errors = formErr.Fields
		p.Notice = noticeFixFields
		return c.Render(http.StatusUnprocessableEntity, "add", p)
	case errors.Is(err, view.ErrSubmitting):
		p.Notice = "This movie is already being submitted."
		return c.Render(http.StatusConflict, "add", p)
	case errors.As(err, &rejected):
		p.Notice = noticeAddFailed
		return c.Render(http.StatusUnprocessableEntity, "add", p)
	default:
		p.Notice = noticeAddFailed
		return c.Render(http.StatusBadGateway, "add", p)
	}
}

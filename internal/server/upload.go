package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharsanguruparan/cinebook/internal/preview"
	"github.com/dharsanguruparan/cinebook/internal/staging"
	"github.com/dharsanguruparan/cinebook/internal/storage"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

// maxFieldBytes caps a single text field of the add-movie form.
const maxFieldBytes = 64 << 10

var errTooLarge = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload too large")

// readAddForm applies one post of the add-movie form to v: text fields
// replace the form values and, when stage is set, files are staged. Every
// button on the page posts the whole form, so whatever the user typed
// survives uploads and removals.
func (s *Server) readAddForm(c echo.Context, v *view.CreateView, stage bool) error {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, s.cfg.MaxUploadBytes)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		values, err := c.FormParams()
		if err != nil {
			return mapBodyError(err)
		}
		applyForm(v, values)
		return nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expecting multipart form")
	}
	values := url.Values{}
	var images []staging.File
	var video staging.File
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			discardAll(images, video)
			return mapBodyError(err)
		}
		name := part.FormName()
		switch {
		case name == "posters" || name == "trailer":
			if part.FileName() == "" || !stage {
				// Browsers send an empty part for an untouched file input.
				part.Close()
				continue
			}
			f, err := s.stagePart(r.Context(), part)
			if err != nil {
				discardAll(images, video)
				return err
			}
			if name == "posters" {
				images = append(images, f)
			} else {
				if video != nil {
					discard(video)
				}
				video = f
			}
		default:
			raw, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			part.Close()
			if err != nil {
				discardAll(images, video)
				return mapBodyError(err)
			}
			values.Add(name, string(raw))
		}
	}

	applyForm(v, values)
	v.Staging().AddImages(images...)
	if video != nil {
		v.Staging().SetVideo(video)
	}
	return nil
}

// stagePart streams one uploaded file into the blob store.
func (s *Server) stagePart(ctx context.Context, part *multipart.Part) (*storage.BlobFile, error) {
	defer part.Close()
	name := filepath.Base(part.FileName())

	br := bufio.NewReaderSize(part, 512)
	// Peek fills the buffer so the type can be sniffed before the upload
	// starts; short files simply return fewer bytes.
	head, _ := br.Peek(512)
	contentType := preview.DetectType(head, name)

	key := "staged/" + uuid.NewString() + strings.ToLower(filepath.Ext(name))
	counter := &countingReader{r: br}
	if err := s.blobs.Put(ctx, key, counter, -1, contentType); err != nil {
		_ = s.blobs.Delete(ctx, key)
		if bodyErr := mapBodyError(err); bodyErr == errTooLarge {
			return nil, bodyErr
		}
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}
	return storage.NewBlobFile(s.blobs, key, name, counter.n, contentType, s.logger), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func mapBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errTooLarge
	}
	return echo.NewHTTPError(http.StatusBadRequest, "failed to read form").SetInternal(err)
}

func discard(f staging.File) {
	if d, ok := f.(staging.Discarder); ok {
		d.Discard()
	}
}

func discardAll(images []staging.File, video staging.File) {
	for _, f := range images {
		discard(f)
	}
	if video != nil {
		discard(video)
	}
}

// applyForm copies posted fields onto the view's form. Posts without any
// field, such as a bare remove button, leave the form untouched.
func applyForm(v *view.CreateView, values url.Values) {
	if len(values) == 0 {
		return
	}
	f := v.Form()
	fields := map[string]*string{
		"title":                &f.Title,
		"description":          &f.Description,
		"genre":                &f.Genre,
		"duration":             &f.Duration,
		"rating":               &f.Rating,
		"releaseDate":          &f.ReleaseDate,
		"director":             &f.Director,
		"producer":             &f.Producer,
		"writer":               &f.Writer,
		"averageRating":        &f.AverageRating,
		"stateOfMovie":         &f.StateOfMovie,
		"ageRestriction":       &f.AgeRestriction,
		"plotSummary":          &f.PlotSummary,
		"basePrice":            &f.BasePrice,
		"bookingStartDate":     &f.BookingStartDate,
		"bookingEndDate":       &f.BookingEndDate,
		"availableAtLocations": &f.AvailableAtLocations,
		"cast":                 &f.Cast,
	}
	for name, dst := range fields {
		if vs, ok := values[name]; ok && len(vs) > 0 {
			*dst = vs[0]
		}
	}
	v.SetForm(f)
}

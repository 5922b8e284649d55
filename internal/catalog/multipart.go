package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/dharsanguruparan/cinebook/internal/model"
	"github.com/dharsanguruparan/cinebook/internal/preview"
)

// Multipart field names the backend expects.
const (
	FieldMovie   = "cinemaBooking"
	FieldPosters = "posters"
	FieldTrailer = "trailer"
)

// Attachment is a file to upload alongside the movie record.
type Attachment interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// streamUpload writes the multipart body into a pipe so large trailers are
// never held in memory. The returned content type carries the boundary.
func streamUpload(ctx context.Context, m model.Movie, posters []Attachment, trailer Attachment) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(ctx, mw, m, posters, trailer))
	}()
	return pr, mw.FormDataContentType()
}

func writeUpload(ctx context.Context, mw *multipart.Writer, m model.Movie, posters []Attachment, trailer Attachment) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode movie: %w", err)
	}
	if err := mw.WriteField(FieldMovie, string(payload)); err != nil {
		return err
	}
	for _, p := range posters {
		if err := writeFile(ctx, mw, FieldPosters, p); err != nil {
			return err
		}
	}
	if trailer != nil {
		if err := writeFile(ctx, mw, FieldTrailer, trailer); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFile(ctx context.Context, mw *multipart.Writer, field string, a Attachment) error {
	rc, err := a.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.Name(), err)
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 512)
	head, _ := br.Peek(512)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		field, escapeQuotes(a.Name())))
	h.Set("Content-Type", preview.DetectType(head, a.Name()))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, br); err != nil {
		return fmt.Errorf("upload %s: %w", a.Name(), err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

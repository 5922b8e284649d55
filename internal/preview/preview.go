// Package preview describes staged media for display before anything is
// uploaded. Small images become inline data URLs; everything else is reduced
// to its media type and served from where it is staged.
package preview

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("empty file")

// sniffLen is how many bytes http.DetectContentType looks at.
const sniffLen = 512

// DefaultInlineLimit is the largest image Encoder inlines by default.
const DefaultInlineLimit = 1 << 20

// Encoder returns a preview function. Images of at most limit bytes are
// encoded as data URLs; any other file yields its media type alone. Only the
// sniffed head is read from files that are not inlined.
func Encoder(limit int64) func(r io.Reader, name string) (string, error) {
	return func(r io.Reader, name string) (string, error) {
		return describe(r, name, limit)
	}
}

// Sniff returns the media type of r without reading past its head.
func Sniff(r io.Reader, name string) (string, error) {
	return describe(r, name, 0)
}

func describe(r io.Reader, name string, limit int64) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if n == 0 {
		return "", ErrEmpty
	}
	head = head[:n]
	contentType := DetectType(head, name)
	if limit <= 0 || int64(n) > limit || !strings.HasPrefix(contentType, "image/") {
		return contentType, nil
	}

	var buf bytes.Buffer
	buf.Write(head)
	// One byte past the limit tells an oversized image apart.
	rest, err := io.Copy(&buf, io.LimitReader(r, limit-int64(n)+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if int64(n)+rest > limit {
		return contentType, nil
	}
	return dataURL(contentType, buf.Bytes()), nil
}

func dataURL(contentType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(contentType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(contentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// IsInline reports whether a preview carries the content as a data URL.
func IsInline(p string) bool {
	return strings.HasPrefix(p, "data:")
}

// MediaType returns the bare media type of a preview, inline or not.
func MediaType(p string) string {
	mediaType, _, _ := strings.Cut(strings.TrimPrefix(p, "data:"), ";")
	return strings.TrimSpace(mediaType)
}

// DetectType sniffs the leading bytes of data and consults the extension of
// name when the sniffer cannot tell.
func DetectType(data []byte, name string) string {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	contentType := http.DetectContentType(head)
	if contentType != "application/octet-stream" && !strings.HasPrefix(contentType, "text/plain") {
		return contentType
	}
	ext := strings.ToLower(filepath.Ext(name))
	if byExt, ok := mediaTypes[ext]; ok {
		return byExt
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return contentType
}

// mediaTypes covers formats the system MIME table often lacks.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
}

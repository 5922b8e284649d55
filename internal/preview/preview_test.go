package preview

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncoderInlinesSmallImages(t *testing.T) {
	p, err := Encoder(DefaultInlineLimit)(bytes.NewReader(pngHeader), "poster.bin")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "data:image/png;base64,"), p)
	assert.True(t, IsInline(p))
	assert.Equal(t, "image/png", MediaType(p))
}

func TestEncoderInlinesImageAtLimit(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), make([]byte, 2048-len(pngHeader))...)
	p, err := Encoder(2048)(bytes.NewReader(data), "poster.png")
	require.NoError(t, err)
	assert.True(t, IsInline(p))
}

// countingReader records how much of the input was consumed.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestEncoderSummarizesLargeImages(t *testing.T) {
	data := append(append([]byte{}, pngHeader...), make([]byte, 4096)...)
	src := &countingReader{r: bytes.NewReader(data)}
	p, err := Encoder(2048)(src, "poster.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", p)
	assert.False(t, IsInline(p))
	assert.LessOrEqual(t, src.n, 2049+sniffLen)
}

func TestEncoderNeverInlinesVideo(t *testing.T) {
	src := &countingReader{r: io.LimitReader(zeros{}, 50<<20)}
	p, err := Encoder(DefaultInlineLimit)(src, "trailer.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", p)
	assert.Equal(t, sniffLen, src.n)
}

type zeros struct{}

func (zeros) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestSniffFallsBackToExtension(t *testing.T) {
	p, err := Sniff(strings.NewReader("not really a video"), "trailer.mp4")
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", p)

	p, err = Sniff(bytes.NewReader(pngHeader), "poster.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", p, "Sniff never inlines")
}

func TestEncoderRejectsEmptyInput(t *testing.T) {
	_, err := Encoder(DefaultInlineLimit)(strings.NewReader(""), "empty.png")
	assert.ErrorIs(t, err, ErrEmpty)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestEncoderReportsReadErrors(t *testing.T) {
	_, err := Sniff(failingReader{}, "poster.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poster.png")
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "text/plain", MediaType("text/plain; charset=utf-8"))
	assert.Equal(t, "image/gif", MediaType("data:image/gif;base64,R0lG"))
	assert.Empty(t, MediaType(""))
}

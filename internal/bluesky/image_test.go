package bluesky

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveImage(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// noisePNG encodes an incompressible image so the result is guaranteed to sit
// well above the blob ceiling.
func noisePNG(t *testing.T, side int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareSmallImagePassthrough(t *testing.T) {
	body := []byte("tiny-jpeg-bytes")
	srv := serveImage(t, "image/jpeg", body)

	p := NewImagePreparer(srv.Client())
	data, mime, err := p.Prepare(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, "image/jpeg", mime)
}

func TestPrepareStripsContentTypeParams(t *testing.T) {
	srv := serveImage(t, "image/png; charset=binary", []byte("png-bytes"))

	p := NewImagePreparer(srv.Client())
	_, mime, err := p.Prepare(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestPrepareNonImageMimeFallsBackToJPEG(t *testing.T) {
	srv := serveImage(t, "application/octet-stream", []byte("who knows"))

	p := NewImagePreparer(srv.Client())
	_, mime, err := p.Prepare(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestPrepareNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	p := NewImagePreparer(srv.Client())
	_, _, err := p.Prepare(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestPrepareEmptyBodyIsError(t *testing.T) {
	srv := serveImage(t, "image/jpeg", nil)

	p := NewImagePreparer(srv.Client())
	_, _, err := p.Prepare(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestPrepareShrinksOversizedImage(t *testing.T) {
	original := noisePNG(t, 1600)
	require.Greater(t, len(original), maxBlobBytes, "fixture must exceed the blob ceiling")

	srv := serveImage(t, "image/png", original)

	p := NewImagePreparer(srv.Client())
	data, mime, err := p.Prepare(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime, "shrunk output is re-encoded as JPEG")
	assert.LessOrEqual(t, len(data), maxBlobBytes)
	assert.Less(t, len(data), len(original))
}

// An oversized payload that is not decodable image data is passed through
// untouched; the remote network gets to reject it.
func TestPrepareUndecodableOversizedPassthrough(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	junk := make([]byte, maxBlobBytes+256)
	rng.Read(junk)
	srv := serveImage(t, "image/jpeg", junk)

	p := NewImagePreparer(srv.Client())
	data, mime, err := p.Prepare(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, junk, data)
	assert.Equal(t, "image/jpeg", mime)
}

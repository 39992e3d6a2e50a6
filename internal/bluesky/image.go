package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// maxBlobBytes is the network's blob size ceiling.
	maxBlobBytes = 1_000_000
	// maxFetchBytes bounds how much of a webcam response we will read.
	maxFetchBytes = 32 << 20

	shrinkAttempts    = 5
	initialQuality    = 75
	qualityStep       = 10
	initialMaxDim     = 1280
	dimShrinkFactor   = 0.8
	fallbackImageMime = "image/jpeg"
)

// ImagePreparer fetches a remote image and, when it exceeds the blob size
// ceiling, re-encodes it smaller as JPEG.
type ImagePreparer struct {
	client *http.Client
}

func NewImagePreparer(client *http.Client) *ImagePreparer {
	return &ImagePreparer{client: client}
}

// Prepare downloads the image and returns bytes plus MIME type, shrunk under
// the blob ceiling when possible. Unrecognized content types are passed
// through as JPEG best-effort: the remote network is the final judge of bad
// blobs. When the shrink attempts run out, the smallest attempt is returned
// rather than failing the publish.
func (p *ImagePreparer) Prepare(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", err
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("image fetch returned empty body")
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if !strings.HasPrefix(mime, "image/") {
		mime = fallbackImageMime
	}

	if len(raw) <= maxBlobBytes {
		return raw, mime, nil
	}
	return shrink(raw, mime)
}

// shrink re-encodes the image at stepped-down quality and dimension until it
// fits under the ceiling or attempts are exhausted.
func shrink(raw []byte, mime string) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		// Can't decode it; send the original and let the network decide.
		return raw, mime, nil
	}

	best := raw
	bestMime := mime
	maxDim := float64(initialMaxDim)
	quality := initialQuality

	for attempt := 0; attempt < shrinkAttempts; attempt++ {
		scaled := scaleDown(src, int(maxDim))
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
			return best, bestMime, nil
		}
		if buf.Len() <= maxBlobBytes {
			return buf.Bytes(), fallbackImageMime, nil
		}
		if buf.Len() < len(best) {
			best = buf.Bytes()
			bestMime = fallbackImageMime
		}
		quality -= qualityStep
		maxDim *= dimShrinkFactor
	}
	return best, bestMime, nil
}

// scaleDown constrains the longest edge to maxDim, preserving aspect ratio.
func scaleDown(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > w {
		longest = h
	}
	if longest <= maxDim {
		if rgba, ok := src.(*image.RGBA); ok {
			return rgba
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
		return dst
	}
	scale := float64(maxDim) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

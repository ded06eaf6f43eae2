// Package imageload fetches and decodes images for layers that reference
// them by URL.
//
// Supported references:
//
//	https://host/tile.png   HTTP(S) GET, honoring the request context
//	file:///data/tile.png   local file
//	data:image/png;base64,… inline data URL
//	tiles/tile.png          plain path, relative to the base directory
//
// The payload is sniffed before decoding; non-image content is rejected
// with ErrNotImage regardless of what the server claims.
package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/gogpu/geolayer"
	"github.com/gogpu/geolayer/internal/image"
)

var (
	// ErrUnsupportedScheme is returned for URL schemes the loader cannot
	// fetch.
	ErrUnsupportedScheme = errors.New("imageload: unsupported URL scheme")

	// ErrNotImage is returned when the fetched payload is not an image.
	ErrNotImage = errors.New("imageload: payload is not an image")

	// ErrTooLarge is returned when the payload exceeds the byte limit.
	ErrTooLarge = errors.New("imageload: payload too large")

	// ErrHTTPStatus is returned for non-2xx HTTP responses.
	ErrHTTPStatus = errors.New("imageload: unexpected HTTP status")

	// ErrMalformedDataURL is returned for data URLs without a payload.
	ErrMalformedDataURL = errors.New("imageload: malformed data URL")
)

// DefaultMaxBytes is the default payload limit.
const DefaultMaxBytes = 64 << 20

// Loader implements geolayer.ImageLoader. It is safe for concurrent use.
type Loader struct {
	client   *http.Client
	maxBytes int64
	maxSide  int
	baseDir  string
	progress func(url string, size int64) io.Writer
}

var _ geolayer.ImageLoader = (*Loader)(nil)

// New creates a loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadImage fetches, sniffs and decodes the image at url.
func (l *Loader) LoadImage(ctx context.Context, url string) (*geolayer.Bitmap, error) {
	data, err := l.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	kind, _ := filetype.Match(data)
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s (detected %s)", ErrNotImage, url, kind.MIME.Value)
	}

	dec, err := image.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("imageload: %s: %w", url, err)
	}
	if l.maxSide > 0 {
		dec = image.FitDecoded(dec, l.maxSide)
	}
	geolayer.Logger().Debug("imageload: decoded", "url", url, "mime", kind.MIME.Value,
		"width", dec.Width, "height", dec.Height, "bytes", len(data))

	return geolayer.NewBitmapFromPix(dec.Width, dec.Height, dec.Pix)
}

// Fetch returns the raw bytes referenced by url.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	u, err := neturl.Parse(url)
	if err != nil || len(u.Scheme) <= 1 {
		// Plain paths, including Windows drive letters.
		return l.readFile(url)
	}
	switch u.Scheme {
	case "http", "https":
		return l.get(ctx, url)
	case "file":
		return l.readFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("imageload: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imageload: get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %s", ErrHTTPStatus, url, resp.Status)
	}
	if resp.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%w: %s: %d bytes", ErrTooLarge, url, resp.ContentLength)
	}

	var body io.Reader = resp.Body
	if l.progress != nil {
		if w := l.progress(url, resp.ContentLength); w != nil {
			if c, ok := w.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}
			body = io.TeeReader(body, w)
		}
	}
	return l.readLimited(url, body)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if l.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageload: %w", err)
	}
	defer func() { _ = f.Close() }()
	return l.readLimited(path, f)
}

func (l *Loader) readLimited(name string, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imageload: read %s: %w", name, err)
	}
	if n > l.maxBytes {
		return nil, fmt.Errorf("%w: %s: more than %d bytes", ErrTooLarge, name, l.maxBytes)
	}
	return buf.Bytes(), nil
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func decodeDataURL(url string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok {
		return nil, ErrMalformedDataURL
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
		}
		return data, nil
	}
	s, err := neturl.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
	}
	return []byte(s), nil
}

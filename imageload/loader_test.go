package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gogpu/geolayer"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadHTTP(t *testing.T) {
	defer goleak.VerifyNone(t)

	data := pngBytes(t, 3, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "image/*" {
			http.Error(w, "bad accept header", http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/tile.png":
			// Wrong content type on purpose: sniffing decides.
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write(data)
		case "/text":
			_, _ = w.Write([]byte("hello, not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(WithHTTPClient(srv.Client()))
	ctx := context.Background()

	bm, err := l.LoadImage(ctx, srv.URL+"/tile.png")
	require.NoError(t, err)
	require.Equal(t, 3, bm.Width())
	require.Equal(t, 2, bm.Height())
	require.Equal(t, geolayer.RGB(10, 20, 30), bm.Pixel(2, 1))

	_, err = l.LoadImage(ctx, srv.URL+"/missing.png")
	require.ErrorIs(t, err, ErrHTTPStatus)

	_, err = l.LoadImage(ctx, srv.URL+"/text")
	require.ErrorIs(t, err, ErrNotImage)

	srv.CloseClientConnections()
	srv.Client().CloseIdleConnections()
}

func TestLoadHTTPHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(WithHTTPClient(srv.Client())).LoadImage(ctx, srv.URL+"/slow.png")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadHTTPTooLarge(t *testing.T) {
	data := pngBytes(t, 64, 64, color.NRGBA{A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	_, err := New(WithHTTPClient(srv.Client()), WithMaxBytes(16)).LoadImage(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTooLarge)
}

type recordingWriter struct {
	mu     sync.Mutex
	n      int
	closed bool
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.n += len(p)
	return len(p), nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestLoadHTTPProgress(t *testing.T) {
	data := pngBytes(t, 8, 8, color.NRGBA{G: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	rec := &recordingWriter{}
	var gotSize int64
	l := New(WithHTTPClient(srv.Client()), WithProgress(func(url string, size int64) io.Writer {
		gotSize = size
		return rec
	}))
	_, err := l.LoadImage(context.Background(), srv.URL+"/p.png")
	require.NoError(t, err)
	require.Equal(t, len(data), rec.n)
	require.Equal(t, int64(len(data)), gotSize)
	require.True(t, rec.closed)
}

func TestLoadFileAndPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 2, 2, color.NRGBA{B: 255, A: 255}), 0o600))

	ctx := context.Background()
	bm, err := New().LoadImage(ctx, "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	require.Equal(t, geolayer.RGB(0, 0, 255), bm.Pixel(0, 0))

	bm, err = New(WithBaseDir(dir)).LoadImage(ctx, "a.png")
	require.NoError(t, err)
	require.Equal(t, 2, bm.Width())

	_, err = New().LoadImage(ctx, filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}

func TestLoadDataURL(t *testing.T) {
	data := pngBytes(t, 1, 1, color.NRGBA{R: 255, A: 128})
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	bm, err := New().LoadImage(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, geolayer.RGBA(255, 0, 0, 128), bm.Pixel(0, 0))

	_, err = New().LoadImage(context.Background(), "data:image/png;base64")
	require.ErrorIs(t, err, ErrMalformedDataURL)

	_, err = New().LoadImage(context.Background(), "data:image/png;base64,!!!")
	require.ErrorIs(t, err, ErrMalformedDataURL)
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := New().LoadImage(context.Background(), "ftp://example.com/a.png")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLoadMaxSide(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 40, 10, color.NRGBA{A: 255}), 0o600))

	bm, err := New(WithMaxSide(20)).LoadImage(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 20, bm.Width())
	require.Equal(t, 5, bm.Height())
}

package imageload

import (
	"io"
	"net/http"
)

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http and https URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithMaxBytes limits the payload size. Non-positive values keep the
// default.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithMaxSide downscales decoded images so neither side exceeds n pixels.
// Zero disables scaling.
func WithMaxSide(n int) Option {
	return func(l *Loader) {
		l.maxSide = n
	}
}

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithProgress installs a per-download progress sink. fn is called once
// per HTTP response with the content length (-1 when unknown); the
// returned writer receives the body as it is read and is closed afterwards
// when it implements io.Closer. Returning nil disables progress for that
// download.
func WithProgress(fn func(url string, size int64) io.Writer) Option {
	return func(l *Loader) {
		l.progress = fn
	}
}

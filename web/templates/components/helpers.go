package components

import (
	"context"
	"io"

	"rifas-storefront/internal/middleware"

	"github.com/a-h/templ"
)

// getCSRFToken gets the CSRF token from the request context
func getCSRFToken(ctx context.Context) string {
	return middleware.GetCSRFToken(ctx)
}

// Writer accumulates the first write error so components can emit markup
// without checking every call
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup
func (w *Writer) Raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

// Text writes HTML-escaped text, safe in element bodies and quoted attributes
func (w *Writer) Text(s string) {
	w.Raw(templ.EscapeString(s))
}

// URL writes a sanitized, escaped URL for href and src attributes
func (w *Writer) URL(u string) {
	w.Text(string(templ.URL(u)))
}

// Render writes a child component
func (w *Writer) Render(ctx context.Context, c templ.Component) {
	if w.err == nil && c != nil {
		w.err = c.Render(ctx, w.w)
	}
}

func (w *Writer) Err() error {
	return w.err
}

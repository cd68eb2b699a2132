// Package consult implements the "consult my numbers" lookup widget.
package consult

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"rifas-storefront/internal/models"
)

// NoticeDuration is how long a notice stays visible
const NoticeDuration = 3 * time.Second

const (
	MsgEmailRequired = "Por favor, ingresa un correo electrónico."
	MsgForbidden     = "No tienes permisos para realizar esta acción"
	MsgRequestFailed = "Error en la solicitud"
	MsgUnexpected    = "Ocurrió un error"
	MsgSuccess       = "Consulta exitosa"
)

// Looker asks the raffle API to send the numbers bought with an email
type Looker interface {
	ConsultNumbers(ctx context.Context, raffleID, email string) (*models.LookupResult, error)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown under the lookup form
type Notice struct {
	Kind      NoticeKind
	Text      string
	ExpiresAt time.Time
}

// Widget holds the lookup form state of one visitor
type Widget struct {
	looker   Looker
	raffleID string
	now      func() time.Time

	mu     sync.Mutex
	email  string
	notice *Notice
}

// NewWidget creates a widget for raffleID. A nil clock uses time.Now.
func NewWidget(looker Looker, raffleID string, clock func() time.Time) *Widget {
	if clock == nil {
		clock = time.Now
	}
	return &Widget{looker: looker, raffleID: raffleID, now: clock}
}

// SubmitEmail looks up the numbers bought with email and returns the notice
// to display. An empty email never reaches the API.
func (w *Widget) SubmitEmail(ctx context.Context, email string) Notice {
	email = strings.TrimSpace(email)

	w.mu.Lock()
	w.email = email
	w.mu.Unlock()

	if email == "" {
		return w.show(NoticeError, MsgEmailRequired)
	}

	result, err := w.looker.ConsultNumbers(ctx, w.raffleID, email)
	if err != nil {
		return w.show(NoticeError, errorMessage(err))
	}

	w.mu.Lock()
	w.email = ""
	w.mu.Unlock()

	text := MsgSuccess
	if result != nil && result.Message != "" {
		text = result.Message
	}
	return w.show(NoticeSuccess, text)
}

func (w *Widget) show(kind NoticeKind, text string) Notice {
	notice := Notice{Kind: kind, Text: text, ExpiresAt: w.now().Add(NoticeDuration)}

	w.mu.Lock()
	w.notice = &notice
	w.mu.Unlock()

	return notice
}

// Notice returns the active notice, if it has not expired yet
func (w *Widget) Notice() (Notice, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.notice == nil {
		return Notice{}, false
	}
	if !w.now().Before(w.notice.ExpiresAt) {
		w.notice = nil
		return Notice{}, false
	}
	return *w.notice, true
}

// Email returns the current input value; it is cleared after a successful lookup
func (w *Widget) Email() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.email
}

func errorMessage(err error) string {
	var rejection *models.RejectionError
	var apiErr *models.APIError

	switch {
	case errors.As(err, &rejection):
		if rejection.Message != "" {
			return rejection.Message
		}
		return MsgForbidden
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return MsgRequestFailed
	}
	return MsgUnexpected
}

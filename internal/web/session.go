package web

import (
	"errors"
	"net/http"

	"fxconvert/internal/converter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionCookieName = "fxconvert_session"

var ErrSessionRejected = errors.New("no capacity for a new session")

// SessionStore keeps one converter per browser session.
type SessionStore interface {
	Get(id uuid.UUID) (*converter.Converter, bool)
	Set(id uuid.UUID, conv *converter.Converter) bool
	Delete(id uuid.UUID)
}

// ConverterFactory builds the converter of a new session.
type ConverterFactory func(sessionID uuid.UUID) *converter.Converter

// session returns the converter bound to the request's cookie. A missing, malformed or
// expired session gets a fresh converter, which is mounted right away. ErrSessionRejected
// is returned when the store won't keep a new session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*converter.Converter, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
			if conv, ok := h.store.Get(id); ok && !conv.Disposed() {
				return conv, nil
			}
		}
	}

	id := uuid.New()
	conv := h.newConverter(id)
	if !h.store.Set(id, conv) || conv.Disposed() {
		conv.Dispose()
		logrus.WithField("session", id).Warn("Session cache rejected new session")
		return nil, ErrSessionRejected
	}
	if h.sessionsCreated != nil {
		h.sessionsCreated.Inc()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Fetches outlive the request that created the session.
	conv.Mount(h.ctx)
	logrus.WithField("session", id).Debug("Session created")
	return conv, nil
}

package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"fxconvert/internal/converter"
	"fxconvert/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/page.html"))

type Handler struct {
	ctx             context.Context
	store           SessionStore
	newConverter    ConverterFactory
	sessionsCreated prometheus.Counter
}

// NewHandler builds the web host. ctx bounds every rates fetch the sessions issue and
// should live as long as the application. sessionsCreated may be nil.
func NewHandler(ctx context.Context, store SessionStore, newConverter ConverterFactory, sessionsCreated prometheus.Counter) *Handler {
	return &Handler{
		ctx:             ctx,
		store:           store,
		newConverter:    newConverter,
		sessionsCreated: sessionsCreated,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/amount", h.SetAmount)
	r.Post("/source", h.SetSource)
	r.Post("/target", h.SetTarget)
	r.Post("/swap", h.Swap)
	r.Post("/retry", h.Retry)
}

type pageData struct {
	converter.View
	Loading bool
	Failed  bool
	Ready   bool
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	view := conv.View()
	data := pageData{
		View:    view,
		Loading: view.Phase == converter.PhaseLoading,
		Failed:  view.Phase == converter.PhaseError,
		Ready:   view.Phase == converter.PhaseReady,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logrus.WithError(err).Error("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// SetAmount ignores rejected input; the page keeps showing the previous amount.
func (h *Handler) SetAmount(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	if !conv.SetAmountText(r.PostFormValue("amount")) {
		logrus.WithField("amount", r.PostFormValue("amount")).Debug("Amount input rejected")
	}
	redirectHome(w, r)
}

func (h *Handler) SetSource(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	if err := conv.SetSource(r.PostFormValue("code")); err != nil && handleSelectError(w, err) {
		return
	}
	redirectHome(w, r)
}

func (h *Handler) SetTarget(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	if err := conv.SetTarget(r.PostFormValue("code")); err != nil && handleSelectError(w, err) {
		return
	}
	redirectHome(w, r)
}

func (h *Handler) Swap(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	if err := conv.Switch(); err != nil {
		logrus.WithError(err).Debug("Swap ignored")
	}
	redirectHome(w, r)
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.sessionOrError(w, r)
	if !ok {
		return
	}
	if _, err := conv.Retry(h.ctx); err != nil {
		logrus.WithError(err).Debug("Retry ignored")
	}
	redirectHome(w, r)
}

// sessionOrError writes a 503 when no session can be bound to the request.
func (h *Handler) sessionOrError(w http.ResponseWriter, r *http.Request) (*converter.Converter, bool) {
	conv, err := h.session(w, r)
	if err != nil {
		w.Header().Set("Retry-After", "5")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return conv, true
}

// handleSelectError writes a 400 for unknown codes and reports whether it did. Selecting
// before the rates are loaded just re-renders the page.
func handleSelectError(w http.ResponseWriter, err error) bool {
	if errors.Is(err, domain.ErrUnknownCurrency) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return true
	}
	logrus.WithError(err).Debug("Currency selection ignored")
	return false
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

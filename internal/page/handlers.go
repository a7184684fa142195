package page

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/zen-figurl/internal/logfields"
	"github.com/ziadkadry99/zen-figurl/internal/route"
)

// DefaultProbeWait bounds how long a site page waits for the first probe
// before rendering.
const DefaultProbeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the home and site pages and the visit API.
type Handler struct {
	store     *Store
	renderer  *Renderer
	probeWait time.Duration
}

// NewHandler creates a Handler. probeWait <= 0 uses DefaultProbeWait.
func NewHandler(store *Store, renderer *Renderer, probeWait time.Duration) *Handler {
	if probeWait <= 0 {
		probeWait = DefaultProbeWait
	}
	return &Handler{store: store, renderer: renderer, probeWait: probeWait}
}

// visitMessage is the websocket and JSON representation of a visit.
type visitMessage struct {
	Type  string      `json:"type"`
	ID    string      `json:"id"`
	Route route.Route `json:"route"`
	View  View        `json:"view"`
	HTML  string      `json:"html,omitempty"`
}

// RegisterRoutes mounts the pages and the visit API. Any path without a
// route renders the home page.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.handleHome)
	r.Get(route.HomePath, h.handleHome)
	r.Get(route.SitePath, h.handleSite)
	r.NotFound(h.handleHome)

	r.Get("/visits/{id}/status", h.handleStatus)
	r.Get("/api/visits/{id}", h.handleVisit)
	r.Post("/api/visits/{id}/build", h.handleBuild)
	r.Post("/api/visits/{id}/navigate", h.handleNavigate)
	r.Post("/api/visits/{id}/back", h.handleBack)
	r.Get("/ws/visits/{id}", h.handleWebSocket)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "", View{Kind: KindHome, Page: route.PageHome})
}

func (h *Handler) handleSite(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Create(r.URL.RequestURI())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.probeWait)
	v.WaitProbe(ctx)
	cancel()

	view := v.View()
	slog.Info("Site page",
		logfields.VisitID(v.ID),
		logfields.SiteURI(view.SiteURI),
		logfields.SiteURL(view.SiteURL),
		logfields.Status(string(view.Kind)))
	h.renderPage(w, v.ID, view)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.renderer.Fragment(&buf, v.View()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handler) handleVisit(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.message(v, false))
}

func (h *Handler) handleBuild(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	// The request outlives this handler.
	done, err := v.Build(context.WithoutCancel(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		select {
		case <-done:
		case <-r.Context().Done():
			return
		}
	}
	writeJSON(w, http.StatusAccepted, h.message(v, false))
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	var rt route.Route
	if err := json.NewDecoder(r.Body).Decode(&rt); err != nil {
		http.Error(w, "invalid route: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := v.Navigate(rt); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.waitProbe(r.Context(), v)
	writeJSON(w, http.StatusOK, h.message(v, false))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	if !v.Back() {
		http.Error(w, "no previous location", http.StatusConflict)
		return
	}
	h.waitProbe(r.Context(), v)
	writeJSON(w, http.StatusOK, h.message(v, false))
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visit(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", logfields.VisitID(v.ID), logfields.Error(err))
		return
	}
	defer conn.Close()

	views, stop := v.Watch()
	defer stop()

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("Websocket read", logfields.VisitID(v.ID), logfields.Error(err))
				}
				return
			}
		}
	}()

	if err := conn.WriteJSON(h.message(v, true)); err != nil {
		return
	}
	for {
		select {
		case <-gone:
			return
		case _, open := <-views:
			if !open {
				return
			}
			if err := conn.WriteJSON(h.message(v, true)); err != nil {
				slog.Debug("Websocket write", logfields.VisitID(v.ID), logfields.Error(err))
				return
			}
		}
	}
}

func (h *Handler) visit(w http.ResponseWriter, r *http.Request) (*Visit, bool) {
	v, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "visit not found", http.StatusNotFound)
	}
	return v, ok
}

func (h *Handler) waitProbe(ctx context.Context, v *Visit) {
	ctx, cancel := context.WithTimeout(ctx, h.probeWait)
	defer cancel()
	v.WaitProbe(ctx)
}

func (h *Handler) message(v *Visit, withHTML bool) visitMessage {
	view := v.View()
	msg := visitMessage{Type: "view", ID: v.ID, Route: v.Route(), View: view}
	if withHTML {
		var buf bytes.Buffer
		if err := h.renderer.Fragment(&buf, view); err != nil {
			slog.Error("Rendering view fragment", logfields.VisitID(v.ID), logfields.Error(err))
		}
		msg.HTML = buf.String()
	}
	return msg
}

func (h *Handler) renderPage(w http.ResponseWriter, visitID string, v View) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, visitID, v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

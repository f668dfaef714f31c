package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers routes on a chi router. The websocket handler is
// mounted alongside the JSON read endpoints.
func NewRouter(handler *Handler, wsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Get("/sports", handler.Sports)
	r.Get("/sports/{sport}/scoreboard", func(w http.ResponseWriter, req *http.Request) {
		handler.Scoreboard(w, req, chi.URLParam(req, "sport"))
	})
	if wsHandler != nil {
		r.Handle("/ws", wsHandler)
	}
	return r
}

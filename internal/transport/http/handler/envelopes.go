package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-matchmaker/internal/logger"
	"github.com/go-matchmaker/internal/transport/http/view"
)

// MessageEnvelope is the JSON body of the non-HTML endpoints.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// renderPage writes an HTML page, consuming any pending flash notice.
func renderPage(w http.ResponseWriter, r *http.Request, views *view.Renderer, name string, data view.Data) {
	if data.Flash == "" {
		data.Flash = popFlash(w, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Render(w, name, data); err != nil {
		logger.FromRequest(r).Err(err).Str("page", name).Msg("error rendering page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// redirect sends the browser to path with a one-shot notice.
func redirect(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		setFlash(w, notice)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

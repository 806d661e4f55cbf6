// Package transport exposes the editing agents over HTTP and WebSocket.
package transport

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docloom/internal/services"
)

func NewRouter(hub *Hub, svcs *services.Services) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/models", func(w http.ResponseWriter, _ *http.Request) {
		groups, err := svcs.Models.ListModelGroups()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	})

	r.Post("/api/models/{modelKey}/enabled", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		model, err := svcs.Models.SetModelEnabled(chi.URLParam(req, "modelKey"), body.Enabled)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, model)
	})

	r.Get("/api/keys", func(w http.ResponseWriter, _ *http.Request) {
		keys, err := svcs.Keyring.ListApiKeys()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, keys)
	})

	r.Post("/api/keys", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Provider string `json:"provider"`
			APIKey   string `json:"api_key"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svcs.Keyring.StoreApiKey(body.Provider, []byte(body.APIKey)); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	r.Delete("/api/keys/{provider}", func(w http.ResponseWriter, req *http.Request) {
		if err := svcs.Keyring.DeleteApiKey(chi.URLParam(req, "provider")); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	})

	r.Get("/api/chunks/recent", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svcs.Chunks.Recent())
	})

	r.Get("/ws", hub.HandleWS)

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("transport: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

package token

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Register mounts the token endpoints on mux. Unlike the chat layer, the
// token boundary does return explicit error payloads.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /token/create", s.handleCreate)
	mux.HandleFunc("GET /token/list", s.handleList)
	mux.HandleFunc("GET /token/connect/{token}", s.handleConnect)
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	code, err := s.Create()
	if err != nil {
		if errors.Is(err, ErrExhausted) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "NO MORE TOKENS"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "SERVER ERROR"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": code})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tokens": s.List()})
}

func (s *Service) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.Connect(r.PathValue("token")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "TOKEN NOT FOUND"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

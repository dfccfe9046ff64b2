package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/entities"
)

type stateResponse struct {
	Updated time.Time   `json:"updated"`
	State   interface{} `json:"state"`
}

type entityResponse struct {
	Key      string  `json:"key"`
	EntityID string  `json:"entity_id"`
	Exists   bool    `json:"exists"`
	State    *string `json:"state"`
}

type alarmsResponse struct {
	Integration config.Integration   `json:"integration"`
	Alarms      []config.AlarmConfig `json:"alarms"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getState returns the latest classified state, or 404 before the first
// recompute.
func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	view, _, updated := s.current()
	if view == nil {
		writeError(w, http.StatusNotFound, "no state received yet")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Updated: updated, State: view})
}

// getEntities returns the logical key to entity id map. It is the source of
// truth for which entity a displayed value came from.
func (s *Server) getEntities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.resolver.Entities())
}

func (s *Server) getEntity(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	id, ok := s.resolver.Lookup(key)
	if !ok {
		writeError(w, http.StatusNotFound, "entity not resolved: "+key)
		return
	}
	_, snap, _ := s.current()
	writeJSON(w, http.StatusOK, entityResponse{
		Key:      key,
		EntityID: id,
		Exists:   entities.EntityExists(snap, id),
		State:    entities.StringState(snap, id),
	})
}

func (s *Server) getAlarms(w http.ResponseWriter, _ *http.Request) {
	alarms := s.resolver.Alarms()
	if alarms == nil {
		alarms = []config.AlarmConfig{}
	}
	writeJSON(w, http.StatusOK, alarmsResponse{Integration: s.resolver.Integration(), Alarms: alarms})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

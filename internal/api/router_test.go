package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/domain"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	card := config.DefaultCard()
	card.Cells.Count = 4
	card.EntityPattern = &config.EntityPattern{Prefix: "jk", Integration: config.IntegrationDefault}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewServer(card, entities.New(card), logger)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.NewRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestState_NotFoundBeforeFirstUpdate(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/state")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no state")
}

func TestState_ServesLatestView(t *testing.T) {
	s := newTestServer(t)
	soc := 15.0
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.SetState(&domain.State{SOC: &soc, Alarms: []domain.ActiveAlarm{}}, hass.StateMap{}, at)
	s.SetState(nil, nil, at.Add(time.Hour))

	rec := get(t, s, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Updated time.Time              `json:"updated"`
		State   map[string]interface{} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, at.Equal(body.Updated), "nil state must not replace the last one")
	assert.Equal(t, 15.0, body.State["soc"])
	assert.Equal(t, "warning", body.State["soc_state"])
}

func TestEntities(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/entities")
	require.Equal(t, http.StatusOK, rec.Code)
	var all map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, "sensor.jk_battery_soc", all["soc"])

	rec = get(t, s, "/api/entities/soc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"soc","entity_id":"sensor.jk_battery_soc","exists":false,"state":null}`, rec.Body.String())

	s.SetState(&domain.State{}, hass.StateMap{
		"sensor.jk_battery_soc":     {EntityID: "sensor.jk_battery_soc", State: "64"},
		"sensor.jk_battery_voltage": {EntityID: "sensor.jk_battery_voltage", State: "unavailable"},
	}, time.Now())

	rec = get(t, s, "/api/entities/soc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"soc","entity_id":"sensor.jk_battery_soc","exists":true,"state":"64"}`, rec.Body.String())

	rec = get(t, s, "/api/entities/voltage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"voltage","entity_id":"sensor.jk_battery_voltage","exists":true,"state":null}`, rec.Body.String())

	rec = get(t, s, "/api/entities/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlarms(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/alarms")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Integration string               `json:"integration"`
		Alarms      []config.AlarmConfig `json:"alarms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "default", body.Integration)
	assert.NotEmpty(t, body.Alarms)
	for _, a := range body.Alarms {
		assert.NotEmpty(t, a.Entity)
		assert.False(t, a.IsText())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestServer(t).NewRouter()
	for _, path := range []string{"/health", "/api/state", "/api/entities", "/api/entities/soc", "/api/alarms"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

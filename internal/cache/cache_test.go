package cache

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/domain"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func state(soc float64) *domain.State {
	return &domain.State{SOC: &soc, Cells: []domain.Cell{{Number: 1}}}
}

func TestManager_Changed(t *testing.T) {
	m := NewManager(quietLogger())

	assert.False(t, m.Changed(nil))
	assert.True(t, m.Changed(state(50)), "first state is always a change")
	assert.False(t, m.Changed(state(50)), "equal values in a fresh object are not a change")
	assert.True(t, m.Changed(state(51)))

	s := state(51)
	s.Alarms = []domain.ActiveAlarm{{Label: "Cell OVP", Severity: config.SeverityCritical}}
	assert.True(t, m.Changed(s))
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(nil)
	assert.True(t, m.Changed(state(80)))
	assert.False(t, m.Changed(state(80)))

	m.Reset()
	assert.True(t, m.Changed(state(80)))
}

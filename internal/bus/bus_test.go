package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/bms-hass/internal/hass"
)

func snap(v string) hass.StateMap {
	return hass.StateMap{"sensor.soc": {EntityID: "sensor.soc", State: v}}
}

func TestBus_FanOut(t *testing.T) {
	b := New()
	a := b.Subscribe()
	c := b.Subscribe()

	s := snap("50")
	b.Publish(s)

	assert.Equal(t, s, <-a)
	assert.Equal(t, s, <-c)
}

func TestBus_SlowSubscriberGetsNewest(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	b.Publish(snap("1"))
	b.Publish(snap("2"))
	b.Publish(snap("3"))

	got := <-sub
	assert.Equal(t, "3", got.Get("sensor.soc").State)
	select {
	case extra := <-sub:
		t.Fatalf("unexpected extra snapshot %v", extra)
	default:
	}
}

func TestBus_Close(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()

	_, ok := <-sub
	require.False(t, ok)

	assert.NotPanics(t, func() {
		b.Publish(snap("late"))
		b.Close()
	})

	_, ok = <-b.Subscribe()
	assert.False(t, ok, "subscribing after close yields a closed channel")
}

func TestBus_ConcurrentPublishAndClose(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Publish(snap("x"))
		}
	}()
	b.Close()
	<-done

	for range sub {
	}
}

package reset

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geographia/internal/domain"
	"geographia/internal/eventbus"
)

func newChannel() *Channel {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewChannel(eventbus.New(log))
}

func TestEmitWithoutSubscribers(t *testing.T) {
	c := newChannel()
	require.NotPanics(t, c.EmitReset)
}

func TestEverySubscriberOncePerEmission(t *testing.T) {
	c := newChannel()
	const n = 5
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		c.Subscribe(func(domain.ResetEvent) { counts[i]++ })
	}

	c.EmitReset()
	c.EmitReset()
	c.EmitReset()

	for i, got := range counts {
		assert.Equal(t, 3, got, "subscriber %d", i)
	}
}

func TestSignalCarriesEmissionTime(t *testing.T) {
	c := newChannel()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	var got domain.ResetEvent
	c.Subscribe(func(e domain.ResetEvent) { got = e })
	c.EmitReset()

	assert.Equal(t, fixed, got.At)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	c := newChannel()
	c.EmitReset()

	var got int
	c.Subscribe(func(domain.ResetEvent) { got++ })
	assert.Zero(t, got)

	c.EmitReset()
	assert.Equal(t, 1, got)
}

func TestFaultyHandlerDoesNotStopOthers(t *testing.T) {
	c := newChannel()
	var before, after int
	c.Subscribe(func(domain.ResetEvent) { before++ })
	c.Subscribe(func(domain.ResetEvent) { panic("view blew up") })
	c.Subscribe(func(domain.ResetEvent) { after++ })

	require.NotPanics(t, c.EmitReset)
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
}

func TestCancelledSubscriptionIsSkipped(t *testing.T) {
	c := newChannel()
	var got int
	cancel := c.Subscribe(func(domain.ResetEvent) { got++ })
	cancel()

	c.EmitReset()
	assert.Zero(t, got)
}

package app

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolatedBroadcaster swaps in metrics backed by a fresh registry so counter
// assertions do not see traffic from other tests.
func isolatedBroadcaster(maxHistory int) *Broadcaster {
	b := NewBroadcaster(maxHistory, nil)
	b.metrics = MustNewMetrics(prometheus.NewRegistry())
	return b
}

func TestBroadcastDeliversToRegisteredClients(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(16, nil)
	first := make(chan Frame, 4)
	second := make(chan Frame, 4)
	b.Register("s1", first)
	b.Register("s1", second)
	other := make(chan Frame, 4)
	b.Register("s2", other)

	frame := Frame{Event: "text", Data: `{"content":"hi"}`}
	b.Broadcast("s1", frame)

	assert.Equal(t, frame, <-first)
	assert.Equal(t, frame, <-second)
	assert.Empty(t, other)
}

func TestBroadcastDropsWhenClientBufferFull(t *testing.T) {
	t.Parallel()

	b := isolatedBroadcaster(16)
	full := make(chan Frame, 1)
	b.Register("s1", full)

	b.Broadcast("s1", Frame{Event: "text", Data: "1"})
	b.Broadcast("s1", Frame{Event: "text", Data: "2"})

	require.Len(t, full, 1)
	assert.Equal(t, "1", (<-full).Data)

	assert.Equal(t, float64(1), testutil.ToFloat64(b.metrics.framesSent))
	assert.Equal(t, float64(1), testutil.ToFloat64(b.metrics.framesDropped))
}

func TestHistoryIsBoundedAndReplayable(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(3, nil)
	for i := 0; i < 5; i++ {
		b.Broadcast("s1", Frame{Event: "text", Data: fmt.Sprintf("%d", i)})
	}

	history := b.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "2", history[0].Data)
	assert.Equal(t, "4", history[2].Data)

	b.ClearHistory("s1")
	assert.Nil(t, b.History("s1"))
}

func TestHistoryDisabledWhenLimitNotPositive(t *testing.T) {
	t.Parallel()

	b := NewBroadcaster(0, nil)
	b.Broadcast("s1", Frame{Event: "text", Data: "1"})
	assert.Nil(t, b.History("s1"))
}

func TestUnregisterClosesChannelAndPrunesSession(t *testing.T) {
	t.Parallel()

	b := isolatedBroadcaster(16)
	ch := make(chan Frame, 1)
	b.Register("s1", ch)
	require.Equal(t, 1, b.ClientCount("s1"))

	b.Unregister("s1", ch)
	assert.Equal(t, 0, b.ClientCount("s1"))
	_, open := <-ch
	assert.False(t, open)

	assert.Equal(t, float64(1), testutil.ToFloat64(b.metrics.connectionsTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.metrics.connectionsActive))
}

func TestBroadcastConcurrentWithUnregister(t *testing.T) {
	t.Parallel()

	b := isolatedBroadcaster(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Broadcast("s1", Frame{Event: "text", Data: "{}"})
		}
	}()

	// Clients churning while frames flow must never hit a closed channel.
	for i := 0; i < 300; i++ {
		ch := make(chan Frame, 1)
		b.Register("s1", ch)
		b.Unregister("s1", ch)
	}
	<-done
}

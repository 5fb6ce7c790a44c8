package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrame(t *testing.T, frame Frame) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(frame.Data), &payload))
	return payload
}

func TestIngestNormalizesTextEvent(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	frames := registry.Ingest("s1", map[string]any{"data": "hello"})

	require.Len(t, frames, 1)
	assert.Equal(t, "text", frames[0].Event)
	payload := decodeFrame(t, frames[0])
	assert.Equal(t, "hello", payload["data"])
}

func TestIngestKeepsToolStatePerSession(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	toolUse := map[string]any{
		"current_tool_use": map[string]any{
			"toolUseId": "t1",
			"name":      "calculator",
			"input":     map[string]any{"op": "add"},
		},
	}

	first := registry.Ingest("s1", toolUse)
	require.Len(t, first, 1)
	assert.Equal(t, "current_tool_use", first[0].Event)

	// Same accumulated input again: no new frame for this session.
	assert.Empty(t, registry.Ingest("s1", toolUse))

	// A different session has independent state.
	assert.Len(t, registry.Ingest("s2", toolUse), 1)
}

func TestResetClearsSessionState(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	toolUse := map[string]any{
		"current_tool_use": map[string]any{
			"toolUseId": "t1",
			"name":      "calculator",
			"input":     map[string]any{"op": "add"},
		},
	}

	require.Len(t, registry.Ingest("s1", toolUse), 1)
	registry.Reset("s1")
	assert.Len(t, registry.Ingest("s1", toolUse), 1)
}

func TestActiveSessionsListsKnownSessions(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	registry.Ingest("s1", map[string]any{"data": "x"})
	registry.Ingest("s2", map[string]any{"data": "y"})

	assert.ElementsMatch(t, []string{"s1", "s2"}, registry.ActiveSessions())
}

func TestDescribeReportsProcessedCycles(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	registry.Ingest("s1", map[string]any{"data": "x", "event_loop_cycle_id": "c1"})
	registry.Ingest("s1", map[string]any{"data": "y", "event_loop_cycle_id": "c1"})
	registry.Ingest("s1", map[string]any{"data": "z", "event_loop_cycle_id": "c2"})
	registry.Ingest("s2", map[string]any{"data": "q"})

	infos := registry.Describe()
	require.Len(t, infos, 2)
	assert.Equal(t, SessionInfo{ID: "s1", ProcessedCycles: 2}, infos[0])
	assert.Equal(t, SessionInfo{ID: "s2", ProcessedCycles: 0}, infos[1])
}

func TestRemoveEvictsSession(t *testing.T) {
	t.Parallel()

	registry := NewSessionRegistry()
	toolUse := map[string]any{
		"current_tool_use": map[string]any{
			"toolUseId": "t1",
			"name":      "calculator",
			"input":     map[string]any{"op": "add"},
		},
	}

	require.Len(t, registry.Ingest("s1", toolUse), 1)
	registry.Remove("s1")
	assert.Empty(t, registry.ActiveSessions())

	// A later event for the same id starts from fresh state.
	assert.Len(t, registry.Ingest("s1", toolUse), 1)
}

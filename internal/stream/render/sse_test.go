package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, content string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(content), &payload))
	return payload
}

func TestSSETextPayload(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{"data": "Hello"})
	require.Len(t, outputs, 1)

	payload := decodePayload(t, outputs[0].Content)
	assert.Equal(t, "text", payload["type"])
	assert.Equal(t, "Hello", payload["data"])
	// Top-level events carry no source key at all.
	assert.NotContains(t, payload, "source")
}

func TestSSESubagentPayloadCarriesSource(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{
		"tool_stream_event": map[string]any{
			"tool_use": map[string]any{"toolUseId": "t1", "name": "skill"},
			"data":     map[string]any{"event": map[string]any{"data": "sub"}, "skill_name": "web-research"},
		},
	})
	require.Len(t, outputs, 1)

	payload := decodePayload(t, outputs[0].Content)
	assert.Equal(t, "web-research", payload["source"])
}

func TestSSEToolUsePayload(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{
		"toolUse": map[string]any{"toolUseId": "t1", "name": "search", "input": map[string]any{"q": "x"}},
	})
	require.Len(t, outputs, 1)

	payload := decodePayload(t, outputs[0].Content)
	assert.Equal(t, "current_tool_use", payload["type"])
	assert.Equal(t, "search", payload["tool_name"])
	assert.Equal(t, "t1", payload["tool_id"])
	assert.Equal(t, map[string]any{"q": "x"}, payload["tool_input"])
}

func TestSSEPayloadSkipsHTMLEscaping(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{"data": "<b>1 & 2</b>"})
	require.Len(t, outputs, 1)
	assert.Contains(t, outputs[0].Content, "<b>1 & 2</b>")
}

func TestSSELifecycleSerializesUnencodableResult(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{"complete": true, "result": func() {}})
	require.Len(t, outputs, 1)

	payload := decodePayload(t, outputs[0].Content)
	assert.Equal(t, "lifecycle", payload["type"])
	// Unencodable values degrade to their string rendering.
	assert.IsType(t, "", payload["result"])
}

func TestSSENodeStreamExpandsToInnerPayload(t *testing.T) {
	r := New(NewSSEHandler())

	outputs := r.Process(map[string]any{
		"type":    "multiagent_node_stream",
		"node_id": "n1",
		"event":   map[string]any{"data": "inner text"},
	})
	require.Len(t, outputs, 1)

	payload := decodePayload(t, outputs[0].Content)
	assert.Equal(t, "text", payload["type"])
	assert.Equal(t, "inner text", payload["data"])
}

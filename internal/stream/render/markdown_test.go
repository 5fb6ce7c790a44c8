package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillstream/internal/stream"
)

func TestMarkdownTextFragmentKeepsSource(t *testing.T) {
	r := New(NewMarkdownHandler())

	outputs := r.Process(map[string]any{
		"tool_stream_event": map[string]any{
			"tool_use": map[string]any{"toolUseId": "t1", "name": "skill"},
			"data":     map[string]any{"event": map[string]any{"data": "sub text"}, "skill_name": "web-research"},
		},
	})

	require.Len(t, outputs, 1)
	assert.Equal(t, stream.Output{Content: "sub text", Source: "web-research", Kind: "text"}, outputs[0])
}

func TestMarkdownToolHeaderThenInputUpdates(t *testing.T) {
	r := New(NewMarkdownHandler())

	header := r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search", "input": map[string]any{"q": "a"}}})
	require.Len(t, header, 1)
	assert.Equal(t, "tool_start", header[0].Kind)
	assert.Contains(t, header[0].Content, "**`search`** (`t1`)")

	update := r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search", "input": map[string]any{"q": "ab"}}})
	require.Len(t, update, 1)
	assert.Equal(t, "tool_input_update", update[0].Kind)
	assert.Contains(t, update[0].Content, "```json")
	assert.Contains(t, update[0].Content, `"q": "ab"`)
}

func TestMarkdownToolResultPreviewTruncated(t *testing.T) {
	r := New(NewMarkdownHandler())
	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search"}})

	long := strings.Repeat("x", markdownResultPreviewLimit+100)
	outputs := r.Process(map[string]any{
		"message": map[string]any{
			"content": []any{map[string]any{"toolResult": map[string]any{
				"toolUseId": "t1",
				"content":   []any{map[string]any{"text": long}},
			}}},
		},
	})

	require.Len(t, outputs, 1)
	assert.Equal(t, "tool_result", outputs[0].Kind)
	assert.Contains(t, outputs[0].Content, "...(truncated)")
	assert.NotContains(t, outputs[0].Content, long)
}

func TestMarkdownReasoningBlockquote(t *testing.T) {
	r := New(NewMarkdownHandler())

	first := r.Process(map[string]any{"reasoningText": "line one\nline two"})
	require.Len(t, first, 1)
	assert.Equal(t, "> 💭 line one\n> line two", first[0].Content)

	second := r.Process(map[string]any{"reasoningText": " continued"})
	require.Len(t, second, 1)
	assert.Equal(t, " continued", second[0].Content)
}

func TestMarkdownLifecycleFragments(t *testing.T) {
	r := New(NewMarkdownHandler())

	outputs := r.Process(map[string]any{"complete": true})
	require.Len(t, outputs, 1)
	assert.Equal(t, "lifecycle", outputs[0].Kind)
	assert.Contains(t, outputs[0].Content, "Cycle completed")
}

func TestMarkdownResetReshowsToolHeader(t *testing.T) {
	h := NewMarkdownHandler()
	r := New(h)
	raw := map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search"}}

	first := r.Process(raw)
	require.Len(t, first, 1)
	require.Equal(t, "tool_start", first[0].Kind)

	r.Reset()

	again := r.Process(raw)
	require.Len(t, again, 1)
	assert.Equal(t, "tool_start", again[0].Kind)
}

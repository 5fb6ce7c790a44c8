package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	jsonx "skillstream/internal/shared/json"
	"skillstream/internal/stream"
)

var sseJSONBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// SSEHandler serializes events into JSON payloads for Server-Sent Events.
// Each output's Content is one JSON object; the transport layer adds the
// `event:`/`data:` framing.
type SSEHandler struct{}

// NewSSEHandler returns an SSE payload handler.
func NewSSEHandler() *SSEHandler { return &SSEHandler{} }

func (h *SSEHandler) payload(kind, source string, fields map[string]any) []stream.Output {
	fields["type"] = kind
	if source != "" {
		fields["source"] = source
	}
	return one(stream.Output{Content: marshalSSEPayload(fields), Source: source, Kind: kind})
}

func (h *SSEHandler) OnText(e *stream.TextEvent) []stream.Output {
	return h.payload(stream.TypeText, e.Source, map[string]any{
		"data": e.Data,
	})
}

func (h *SSEHandler) OnToolUse(e *stream.CurrentToolUseEvent) []stream.Output {
	return h.payload(stream.TypeCurrentToolUse, e.Source, map[string]any{
		"tool_name":  e.ToolName,
		"tool_id":    e.ToolID,
		"tool_input": e.ToolInput,
	})
}

func (h *SSEHandler) OnToolResult(e *stream.ToolResultEvent) []stream.Output {
	return h.payload(stream.TypeToolResult, e.Source, map[string]any{
		"tool_name": e.ToolName,
		"tool_id":   e.ToolID,
		"data":      e.Data,
		"metadata":  e.Metadata,
	})
}

func (h *SSEHandler) OnToolStream(e *stream.ToolStreamEvent) []stream.Output {
	return h.payload(stream.TypeToolStream, "", map[string]any{
		"tool_use": e.ToolUse,
		"data":     safeSerialize(e.Data),
	})
}

func (h *SSEHandler) OnReasoning(e *stream.ReasoningEvent) []stream.Output {
	return h.payload(stream.TypeReasoning, "", map[string]any{
		"data":     e.Data,
		"metadata": e.Metadata,
	})
}

func (h *SSEHandler) OnLifecycle(e *stream.LifecycleEvent) []stream.Output {
	return h.payload(stream.TypeLifecycle, "", map[string]any{
		"lifecycle_type":    e.LifecycleType,
		"message":           e.Message,
		"force_stop_reason": e.ForceStopReason,
		"result":            safeSerialize(e.Result),
	})
}

func (h *SSEHandler) OnNodeStart(e *stream.MultiAgentNodeStartEvent) []stream.Output {
	return h.payload(stream.TypeNodeStart, "", map[string]any{
		"node_id":   e.NodeID,
		"node_type": e.NodeType,
	})
}

func (h *SSEHandler) OnNodeStop(e *stream.MultiAgentNodeStopEvent) []stream.Output {
	return h.payload(stream.TypeNodeStop, "", map[string]any{
		"node_id":     e.NodeID,
		"node_result": safeSerialize(e.NodeResult),
	})
}

func (h *SSEHandler) OnHandoff(e *stream.MultiAgentHandoffEvent) []stream.Output {
	return h.payload(stream.TypeHandoff, "", map[string]any{
		"from_node_ids": e.FromNodeIDs,
		"to_node_ids":   e.ToNodeIDs,
		"message":       e.Message,
	})
}

func (h *SSEHandler) OnResult(e *stream.MultiAgentResultEvent) []stream.Output {
	return h.payload(stream.TypeResult, "", map[string]any{
		"result": safeSerialize(e.Result),
	})
}

// marshalSSEPayload encodes without HTML escaping so payloads match what the
// model produced, using a pooled buffer to avoid per-event allocations.
func marshalSSEPayload(fields map[string]any) string {
	buf := sseJSONBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer sseJSONBufferPool.Put(buf)

	encoder := jsonx.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(fields); err != nil {
		return "{}"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// safeSerialize keeps arbitrary result values JSON-encodable, falling back to
// their string rendering.
func safeSerialize(v any) any {
	if v == nil {
		return nil
	}
	if _, err := jsonx.Marshal(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}

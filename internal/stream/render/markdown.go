package render

import (
	"fmt"
	"strings"

	"skillstream/internal/stream"
)

const markdownResultPreviewLimit = 500

// MarkdownHandler formats events as markdown fragments for a web dashboard.
// Each fragment carries its source and kind so the dashboard can route
// sub-agent output into its own pane.
type MarkdownHandler struct {
	// displayedToolCalls dedups header fragments per (source, tool) so a
	// streamed call shows one header followed by input updates.
	displayedToolCalls map[toolDisplayKey]struct{}
	reasoningActive    map[string]bool
}

type toolDisplayKey struct {
	source string
	tool   string
}

// NewMarkdownHandler returns a markdown fragment handler.
func NewMarkdownHandler() *MarkdownHandler {
	return &MarkdownHandler{
		displayedToolCalls: make(map[toolDisplayKey]struct{}),
		reasoningActive:    make(map[string]bool),
	}
}

func one(out stream.Output) []stream.Output { return []stream.Output{out} }

// OnText passes the text chunk through with attribution.
func (h *MarkdownHandler) OnText(e *stream.TextEvent) []stream.Output {
	h.reasoningActive[e.Source] = false
	return one(stream.Output{Content: e.Data, Source: e.Source, Kind: "text"})
}

// OnToolUse emits a bold header fragment for the first sighting of a tool
// call and fenced JSON input fragments for streamed updates.
func (h *MarkdownHandler) OnToolUse(e *stream.CurrentToolUseEvent) []stream.Output {
	h.reasoningActive[e.Source] = false

	key := toolDisplayKey{source: e.Source, tool: e.ToolID}
	if key.tool == "" {
		key.tool = e.ToolName
	}
	if _, seen := h.displayedToolCalls[key]; !seen {
		h.displayedToolCalls[key] = struct{}{}
		content := "\n\n**⚙️ Tool call:**"
		if e.ToolID != "" {
			content += fmt.Sprintf(" **`%s`** (`%s`)\n\n", e.ToolName, e.ToolID)
		} else {
			content += fmt.Sprintf(" **`%s`**\n\n", e.ToolName)
		}
		return one(stream.Output{Content: content, Source: e.Source, Kind: "tool_start"})
	}

	if len(e.ToolInput) > 0 {
		content := fmt.Sprintf("\n```json\n%s\n```\n\n", marshalIndent(e.ToolInput))
		return one(stream.Output{Content: content, Source: e.Source, Kind: "tool_input_update"})
	}
	return nil
}

// OnToolResult emits a summary line plus a fenced, truncated preview.
func (h *MarkdownHandler) OnToolResult(e *stream.ToolResultEvent) []stream.Output {
	h.reasoningActive[e.Source] = false
	if e.Data == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\n**✅ Tool result:** %d chars\n\n", len(e.Data))
	fmt.Fprintf(&b, "```\n%s\n```\n\n", previewText(e.Data, markdownResultPreviewLimit))
	b.WriteString("\n\n---\n\n")
	return one(stream.Output{Content: b.String(), Source: e.Source, Kind: "tool_result"})
}

// OnToolStream emits the streamed payload as fenced blocks.
func (h *MarkdownHandler) OnToolStream(e *stream.ToolStreamEvent) []stream.Output {
	toolName := "unknown"
	if name, ok := e.ToolUse["name"].(string); ok && name != "" {
		toolName = name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n\n**📡 Tool stream: `%s`**", toolName)
	if id, ok := e.ToolUse["toolUseId"].(string); ok && id != "" {
		fmt.Fprintf(&b, " (`%s`)", id)
	}
	b.WriteString("\n\n")

	if input, ok := e.ToolUse["input"].(map[string]any); ok && len(input) > 0 {
		fmt.Fprintf(&b, "```json\n%s\n```\n\n", marshalIndent(input))
	}
	switch data := e.Data.(type) {
	case nil:
	case string:
		fmt.Fprintf(&b, "```\n%s\n```\n\n", previewText(data, markdownResultPreviewLimit))
	default:
		fmt.Fprintf(&b, "```json\n%s\n```\n\n", marshalIndent(data))
	}
	return one(stream.Output{Content: b.String(), Kind: "tool_stream"})
}

// OnReasoning emits blockquoted reasoning, with the marker only on the first
// chunk of a run.
func (h *MarkdownHandler) OnReasoning(e *stream.ReasoningEvent) []stream.Output {
	// Reasoning is never source-attributed; it renders in the top-level pane.
	text := strings.ReplaceAll(e.Data, "\n", "\n> ")
	content := text
	if !h.reasoningActive[""] {
		h.reasoningActive[""] = true
		content = "> 💭 " + text
	}
	return one(stream.Output{Content: content, Kind: "reasoning"})
}

// OnLifecycle emits a blockquoted status line.
func (h *MarkdownHandler) OnLifecycle(e *stream.LifecycleEvent) []stream.Output {
	var content string
	switch e.LifecycleType {
	case stream.LifecycleInit:
		content = "\n\n> 🔄 **Event loop initialized**\n\n"
	case stream.LifecycleStart:
		content = "\n\n> ▶️ **Event loop cycle starting**\n\n"
	case stream.LifecycleComplete:
		content = "\n\n> ✅ **Cycle completed**\n\n"
	case stream.LifecycleForceStop:
		reason := e.ForceStopReason
		if reason == "" {
			reason = "unknown reason"
		}
		content = fmt.Sprintf("\n\n> 🛑 **Event loop force-stopped**: %s\n\n", reason)
	default:
		return nil
	}
	return one(stream.Output{Content: content, Kind: "lifecycle"})
}

func (h *MarkdownHandler) OnNodeStart(e *stream.MultiAgentNodeStartEvent) []stream.Output {
	content := fmt.Sprintf("\n\n🔄 **Node [%s]** (%s) starting\n\n", e.NodeID, e.NodeType)
	return one(stream.Output{Content: content, Kind: stream.TypeNodeStart})
}

func (h *MarkdownHandler) OnNodeStop(e *stream.MultiAgentNodeStopEvent) []stream.Output {
	content := fmt.Sprintf("\n\n✅ **Node [%s]** completed\n\n", e.NodeID)
	return one(stream.Output{Content: content, Kind: stream.TypeNodeStop})
}

func (h *MarkdownHandler) OnHandoff(e *stream.MultiAgentHandoffEvent) []stream.Output {
	content := fmt.Sprintf("\n\n🔀 **Handoff**: %s → %s\n\n",
		strings.Join(e.FromNodeIDs, ", "), strings.Join(e.ToNodeIDs, ", "))
	if e.Message != "" {
		content += fmt.Sprintf("Message: %s\n\n", e.Message)
	}
	return one(stream.Output{Content: content, Kind: stream.TypeHandoff})
}

func (h *MarkdownHandler) OnResult(e *stream.MultiAgentResultEvent) []stream.Output {
	return one(stream.Output{Content: "\n\n📊 **Multi-agent completed**\n\n", Kind: stream.TypeResult})
}

// Reset clears display state for a new query.
func (h *MarkdownHandler) Reset() {
	h.displayedToolCalls = make(map[toolDisplayKey]struct{})
	h.reasoningActive = make(map[string]bool)
}

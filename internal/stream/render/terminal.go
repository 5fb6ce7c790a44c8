package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	jsonx "skillstream/internal/shared/json"
	"skillstream/internal/stream"
)

const terminalSeparatorWidth = 60

var (
	subagentColor  = color.New(color.FgYellow)
	subtextColor   = color.New(color.FgMagenta)
	toolColor      = color.New(color.FgBlue, color.Bold)
	inputColor     = color.New(color.FgCyan, color.Bold)
	resultColor    = color.New(color.FgGreen, color.Bold)
	streamColor    = color.New(color.FgMagenta, color.Bold)
	reasoningColor = color.New(color.FgMagenta)
	statusYellow   = color.New(color.FgYellow)
	statusGreen    = color.New(color.FgGreen)
	statusRed      = color.New(color.FgRed)
	statusCyan     = color.New(color.FgCyan)
)

// TerminalHandler writes colored output directly to a writer and returns no
// output units. It keeps its own display state (tool numbering, current text
// source) separate from the parser's dedup state.
type TerminalHandler struct {
	w         io.Writer
	useColors bool

	toolCallCounter    int
	displayedToolCalls map[string]int

	// currentTextSource tracks whose text is streaming so the source prefix
	// prints on source changes, not on every token. textSourceStale forces a
	// break before the next text chunk after any tool activity.
	currentTextSource string
	textSourceStale   bool
	reasoningActive   bool
}

// NewTerminalHandler returns a terminal handler writing to w.
func NewTerminalHandler(w io.Writer, useColors bool) *TerminalHandler {
	return &TerminalHandler{
		w:                  w,
		useColors:          useColors,
		displayedToolCalls: make(map[string]int),
	}
}

func (h *TerminalHandler) colorize(c *color.Color, text string) string {
	if !h.useColors {
		return text
	}
	return c.Sprint(text)
}

// endReasoning inserts a break after a reasoning run before other output.
func (h *TerminalHandler) endReasoning() {
	if h.reasoningActive {
		fmt.Fprint(h.w, "\n\n")
	}
	h.reasoningActive = false
}

func (h *TerminalHandler) separator() string {
	return strings.Repeat("─", terminalSeparatorWidth)
}

// OnText prints a text chunk, prefixing sub-agent output when the source
// changes.
func (h *TerminalHandler) OnText(e *stream.TextEvent) []stream.Output {
	h.endReasoning()

	if e.Source != h.currentTextSource || h.textSourceStale {
		wasStale := h.textSourceStale
		h.currentTextSource = e.Source
		h.textSourceStale = false
		if e.Source != "" {
			fmt.Fprintf(h.w, "\n%s", h.colorize(subagentColor, fmt.Sprintf("[Sub-Agent ⚡ %s] ", e.Source)))
		} else if wasStale {
			fmt.Fprint(h.w, "\n")
		}
	}

	if e.Source != "" {
		fmt.Fprint(h.w, h.colorize(subtextColor, e.Data))
	} else {
		fmt.Fprint(h.w, e.Data)
	}
	return nil
}

// OnToolUse prints the tool header once per call, then the accumulated input
// snapshot as it streams.
func (h *TerminalHandler) OnToolUse(e *stream.CurrentToolUseEvent) []stream.Output {
	h.textSourceStale = true
	h.endReasoning()

	key := e.ToolID
	if key == "" {
		key = e.ToolName
	}
	_, seen := h.displayedToolCalls[key]
	if !seen {
		h.toolCallCounter++
		h.displayedToolCalls[key] = h.toolCallCounter
	}

	if !seen {
		header := fmt.Sprintf("Tool #%d: %s", h.displayedToolCalls[key], e.ToolName)
		if e.Source != "" {
			header = fmt.Sprintf("[Sub-Agent: %s] %s", e.Source, header)
		}
		fmt.Fprintf(h.w, "\n%s\n", h.separator())
		fmt.Fprintln(h.w, h.colorize(toolColor, header))
	}

	if len(e.ToolInput) > 0 {
		fmt.Fprintln(h.w, h.colorize(inputColor, marshalIndent(e.ToolInput)))
	}
	fmt.Fprintln(h.w, h.separator())
	return nil
}

// OnToolResult prints the result block with a header and truncated preview.
func (h *TerminalHandler) OnToolResult(e *stream.ToolResultEvent) []stream.Output {
	h.textSourceStale = true
	h.endReasoning()

	headerParts := []string{"Tool Result:"}
	if e.Source != "" {
		headerParts[0] = fmt.Sprintf("[Sub-Agent: %s] Tool Result:", e.Source)
	}
	if e.ToolID != "" {
		headerParts = append(headerParts, fmt.Sprintf("[toolUseId] %s", e.ToolID))
	}
	if status, ok := e.Metadata["status"].(string); ok && status != "" {
		headerParts = append(headerParts, fmt.Sprintf("[status] %s", status))
	}
	headerParts = append(headerParts, fmt.Sprintf("[content length] %d characters", len(e.Data)))

	fmt.Fprintln(h.w, h.separator())
	fmt.Fprintln(h.w, h.colorize(resultColor, strings.Join(headerParts, "\n")))
	fmt.Fprintln(h.w, h.separator())

	if e.Data != "" {
		fmt.Fprintln(h.w, previewText(e.Data, 1000))
	}
	fmt.Fprintf(h.w, "%s\n\n", h.separator())
	return nil
}

// OnToolStream prints raw streamed tool data.
func (h *TerminalHandler) OnToolStream(e *stream.ToolStreamEvent) []stream.Output {
	h.textSourceStale = true
	h.endReasoning()

	toolName := "unknown"
	if name, ok := e.ToolUse["name"].(string); ok && name != "" {
		toolName = name
	}
	header := fmt.Sprintf("Tool Stream: %s", toolName)
	if id, ok := e.ToolUse["toolUseId"].(string); ok && id != "" {
		header += fmt.Sprintf(" [toolUseId: %s]", id)
	}

	fmt.Fprintf(h.w, "\n%s\n", h.separator())
	fmt.Fprintln(h.w, h.colorize(streamColor, header))
	fmt.Fprintln(h.w, h.separator())

	if input, ok := e.ToolUse["input"].(map[string]any); ok && len(input) > 0 {
		fmt.Fprintln(h.w, h.colorize(inputColor, marshalIndent(input)))
		fmt.Fprintln(h.w, h.separator())
	}
	if e.Data != nil {
		if text, ok := e.Data.(string); ok {
			fmt.Fprintln(h.w, h.colorize(inputColor, text))
		} else {
			fmt.Fprintln(h.w, h.colorize(inputColor, marshalIndent(e.Data)))
		}
	}
	fmt.Fprintf(h.w, "%s\n\n", h.separator())
	return nil
}

// OnReasoning prints the reasoning trace, marking only the first chunk so the
// marker never lands between streamed tokens.
func (h *TerminalHandler) OnReasoning(e *stream.ReasoningEvent) []stream.Output {
	if !h.reasoningActive {
		h.reasoningActive = true
		fmt.Fprint(h.w, h.colorize(reasoningColor, "💭 "+e.Data))
	} else {
		fmt.Fprint(h.w, h.colorize(reasoningColor, e.Data))
	}
	return nil
}

// OnLifecycle prints a one-line status per transition.
func (h *TerminalHandler) OnLifecycle(e *stream.LifecycleEvent) []stream.Output {
	switch e.LifecycleType {
	case stream.LifecycleInit:
		fmt.Fprintln(h.w, h.colorize(statusYellow, "🔄 Event loop initialized"))
	case stream.LifecycleStart:
		fmt.Fprintln(h.w, h.colorize(statusYellow, "▶️ Event loop cycle starting"))
	case stream.LifecycleComplete:
		fmt.Fprintln(h.w, h.colorize(statusGreen, "✅ Cycle completed"))
	case stream.LifecycleForceStop:
		reason := e.ForceStopReason
		if reason == "" {
			reason = "unknown reason"
		}
		fmt.Fprintln(h.w, h.colorize(statusRed, "🛑 Event loop force-stopped: "+reason))
	}
	return nil
}

func (h *TerminalHandler) OnNodeStart(e *stream.MultiAgentNodeStartEvent) []stream.Output {
	fmt.Fprintf(h.w, "\n%s\n", h.colorize(statusCyan, fmt.Sprintf("🔄 Node [%s] (%s) starting", e.NodeID, e.NodeType)))
	return nil
}

func (h *TerminalHandler) OnNodeStop(e *stream.MultiAgentNodeStopEvent) []stream.Output {
	fmt.Fprintf(h.w, "\n%s\n", h.colorize(statusGreen, fmt.Sprintf("✅ Node [%s] completed", e.NodeID)))
	return nil
}

func (h *TerminalHandler) OnHandoff(e *stream.MultiAgentHandoffEvent) []stream.Output {
	msg := fmt.Sprintf("🔀 Handoff: %s → %s", strings.Join(e.FromNodeIDs, ", "), strings.Join(e.ToNodeIDs, ", "))
	fmt.Fprintf(h.w, "\n%s\n", h.colorize(streamColor, msg))
	if e.Message != "" {
		fmt.Fprintln(h.w, h.colorize(streamColor, "   Message: "+e.Message))
	}
	return nil
}

func (h *TerminalHandler) OnResult(e *stream.MultiAgentResultEvent) []stream.Output {
	fmt.Fprintf(h.w, "\n%s\n", h.colorize(statusGreen, "📊 Multi-agent completed"))
	return nil
}

// Reset clears display state for a new query.
func (h *TerminalHandler) Reset() {
	h.toolCallCounter = 0
	h.displayedToolCalls = make(map[string]int)
	h.currentTextSource = ""
	h.textSourceStale = false
	h.reasoningActive = false
}

func marshalIndent(v any) string {
	raw, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func previewText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "\n...(truncated)"
}

// Package render bridges typed stream events to output-specific
// representations. A Renderer owns a parser and dispatches each typed event
// to a Handler; nested node-stream events are expanded here, exactly once,
// regardless of how many handler implementations exist.
package render

import (
	"skillstream/internal/stream"
)

// maxNodeStreamDepth bounds recursive node-stream expansion. Real
// orchestration nests one level deep; anything past this is malformed
// (possibly cyclic) wrapping and is dropped.
const maxNodeStreamDepth = 8

// Handler formats typed events into output units. The four methods cover the
// event kinds present in every single-agent interaction; rarely relevant
// kinds are covered by the optional interfaces below.
//
// A handler returns nil when an event produces no output.
type Handler interface {
	OnText(*stream.TextEvent) []stream.Output
	OnToolUse(*stream.CurrentToolUseEvent) []stream.Output
	OnToolResult(*stream.ToolResultEvent) []stream.Output
	OnReasoning(*stream.ReasoningEvent) []stream.Output
}

// ToolStreamHandler is implemented by handlers that surface raw tool
// streaming data. The default is a no-op.
type ToolStreamHandler interface {
	OnToolStream(*stream.ToolStreamEvent) []stream.Output
}

// LifecycleHandler is implemented by handlers that surface session-level
// transitions. The default is a no-op.
type LifecycleHandler interface {
	OnLifecycle(*stream.LifecycleEvent) []stream.Output
}

// MultiAgentHandler is implemented by handlers that surface orchestration
// node lifecycle events. The default is a no-op for all four.
type MultiAgentHandler interface {
	OnNodeStart(*stream.MultiAgentNodeStartEvent) []stream.Output
	OnNodeStop(*stream.MultiAgentNodeStopEvent) []stream.Output
	OnHandoff(*stream.MultiAgentHandoffEvent) []stream.Output
	OnResult(*stream.MultiAgentResultEvent) []stream.Output
}

// NodeStreamHandler overrides the default node-stream expansion. Without it,
// the renderer recursively processes the wrapped inner raw event.
type NodeStreamHandler interface {
	OnNodeStream(*stream.MultiAgentNodeStreamEvent) []stream.Output
}

// Resetter is implemented by handlers with display state of their own (for
// example a renderer-local "already showed this tool header" set).
type Resetter interface {
	Reset()
}

// Renderer drives a Handler over the parsed event stream. Like the parser it
// serves one in-flight turn at a time and is not safe for concurrent use.
type Renderer struct {
	parser  *stream.Parser
	handler Handler
	depth   int
}

// New returns a renderer with a fresh parser.
func New(handler Handler) *Renderer {
	return NewWithParser(stream.NewParser(), handler)
}

// NewWithParser returns a renderer sharing an existing parser.
func NewWithParser(parser *stream.Parser, handler Handler) *Renderer {
	if parser == nil {
		parser = stream.NewParser()
	}
	return &Renderer{parser: parser, handler: handler}
}

// Parser exposes the underlying parser (for callers that reset it directly).
func (r *Renderer) Parser() *stream.Parser { return r.parser }

// Process parses one raw event and dispatches every resulting typed event to
// the handler, concatenating non-empty results in order.
func (r *Renderer) Process(raw map[string]any) []stream.Output {
	var results []stream.Output
	for _, event := range r.parser.Parse(raw) {
		results = append(results, r.dispatch(event)...)
	}
	return results
}

func (r *Renderer) dispatch(event stream.Event) []stream.Output {
	switch e := event.(type) {
	case *stream.TextEvent:
		return r.handler.OnText(e)
	case *stream.CurrentToolUseEvent:
		return r.handler.OnToolUse(e)
	case *stream.ToolResultEvent:
		return r.handler.OnToolResult(e)
	case *stream.ReasoningEvent:
		return r.handler.OnReasoning(e)
	case *stream.ToolStreamEvent:
		if h, ok := r.handler.(ToolStreamHandler); ok {
			return h.OnToolStream(e)
		}
	case *stream.LifecycleEvent:
		if h, ok := r.handler.(LifecycleHandler); ok {
			return h.OnLifecycle(e)
		}
	case *stream.MultiAgentNodeStartEvent:
		if h, ok := r.handler.(MultiAgentHandler); ok {
			return h.OnNodeStart(e)
		}
	case *stream.MultiAgentNodeStreamEvent:
		return r.expandNodeStream(e)
	case *stream.MultiAgentNodeStopEvent:
		if h, ok := r.handler.(MultiAgentHandler); ok {
			return h.OnNodeStop(e)
		}
	case *stream.MultiAgentHandoffEvent:
		if h, ok := r.handler.(MultiAgentHandler); ok {
			return h.OnHandoff(e)
		}
	case *stream.MultiAgentResultEvent:
		if h, ok := r.handler.(MultiAgentHandler); ok {
			return h.OnResult(e)
		}
	}
	return nil
}

// expandNodeStream is the single expansion site for wrapped node-stream
// events: the parser deliberately leaves the inner raw event unparsed so that
// it surfaces exactly once, here.
func (r *Renderer) expandNodeStream(e *stream.MultiAgentNodeStreamEvent) []stream.Output {
	if h, ok := r.handler.(NodeStreamHandler); ok {
		return h.OnNodeStream(e)
	}
	if r.depth >= maxNodeStreamDepth {
		return nil
	}
	r.depth++
	defer func() { r.depth-- }()
	return r.Process(e.InnerEvent)
}

// Reset clears parser session state and any handler-local display state.
// Call it at the start of each new user query.
func (r *Renderer) Reset() {
	r.parser.Reset()
	if h, ok := r.handler.(Resetter); ok {
		h.Reset()
	}
}

// ProcessedCycles reports the distinct event-loop cycle ids seen by the
// underlying parser since the last Reset.
func (r *Renderer) ProcessedCycles() int {
	return r.parser.ProcessedCycles()
}

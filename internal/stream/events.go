// Package stream normalizes the loosely typed event dictionaries emitted by
// an agent runtime into a closed set of typed events. The runtime gives no
// schema guarantee beyond key presence, so Parser carries the session state
// needed to reconstruct tool-call lifecycles and nested sub-agent streams.
package stream

// Event is the closed interface implemented by every typed stream event.
type Event interface {
	EventType() string
}

// Event type identifiers as they appear on the wire (SSE payloads, renderer
// output records).
const (
	TypeText           = "text"
	TypeCurrentToolUse = "current_tool_use"
	TypeToolResult     = "tool_result"
	TypeToolStream     = "tool_stream_event"
	TypeReasoning      = "reasoning"
	TypeLifecycle      = "lifecycle"
	TypeNodeStart      = "multiagent_node_start"
	TypeNodeStream     = "multiagent_node_stream"
	TypeNodeStop       = "multiagent_node_stop"
	TypeHandoff        = "multiagent_handoff"
	TypeResult         = "multiagent_result"
)

// TextEvent is a chunk of assistant-generated text. Source is the sub-agent
// skill name, or empty for the top-level agent.
type TextEvent struct {
	Data   string
	Source string
}

func (e *TextEvent) EventType() string { return TypeText }

// CurrentToolUseEvent announces a tool invocation or a streamed update to its
// accumulated input. The first event for a given ToolID is the announcement;
// later ones carry a grown input snapshot.
type CurrentToolUseEvent struct {
	ToolName  string
	ToolID    string
	ToolInput map[string]any
	Source    string
}

func (e *CurrentToolUseEvent) EventType() string { return TypeCurrentToolUse }

// ToolResultEvent carries the completed output of a tool call.
type ToolResultEvent struct {
	Data     string
	ToolName string
	ToolID   string
	Metadata map[string]any
	Source   string
}

func (e *ToolResultEvent) EventType() string { return TypeToolResult }

// ToolStreamEvent is raw pass-through data streamed by a tool mid-execution.
// It carries no source: it is only emitted for top-level tool streaming,
// before any sub-agent attribution is known.
type ToolStreamEvent struct {
	ToolUse map[string]any
	Data    any
}

func (e *ToolStreamEvent) EventType() string { return TypeToolStream }

// ReasoningEvent is a chunk of the agent's visible reasoning trace.
// Reasoning carries no source; sub-agent reasoning is indistinguishable from
// the top-level agent's.
type ReasoningEvent struct {
	Data     string
	Metadata map[string]any
}

func (e *ReasoningEvent) EventType() string { return TypeReasoning }

// Lifecycle transition kinds.
const (
	LifecycleInit      = "init"
	LifecycleStart     = "start"
	LifecycleComplete  = "complete"
	LifecycleForceStop = "force_stop"
)

// LifecycleEvent marks a coarse session-level transition.
type LifecycleEvent struct {
	LifecycleType   string
	Message         map[string]any
	ForceStopReason string
	Result          any
}

func (e *LifecycleEvent) EventType() string { return TypeLifecycle }

// MultiAgentNodeStartEvent marks an orchestration node starting.
type MultiAgentNodeStartEvent struct {
	NodeID   string
	NodeType string
}

func (e *MultiAgentNodeStartEvent) EventType() string { return TypeNodeStart }

// MultiAgentNodeStreamEvent wraps an inner raw event forwarded from an
// orchestration node. The inner event is not expanded at parse time; renderer
// dispatch expands it exactly once.
type MultiAgentNodeStreamEvent struct {
	NodeID     string
	InnerEvent map[string]any
}

func (e *MultiAgentNodeStreamEvent) EventType() string { return TypeNodeStream }

// MultiAgentNodeStopEvent marks an orchestration node finishing.
type MultiAgentNodeStopEvent struct {
	NodeID     string
	NodeResult any
}

func (e *MultiAgentNodeStopEvent) EventType() string { return TypeNodeStop }

// MultiAgentHandoffEvent marks control passing between orchestration nodes.
type MultiAgentHandoffEvent struct {
	FromNodeIDs []string
	ToNodeIDs   []string
	Message     string
}

func (e *MultiAgentHandoffEvent) EventType() string { return TypeHandoff }

// MultiAgentResultEvent carries the final aggregated orchestration result.
type MultiAgentResultEvent struct {
	Result any
}

func (e *MultiAgentResultEvent) EventType() string { return TypeResult }

package stream

import (
	"fmt"
	"maps"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kaptinlin/jsonrepair"

	jsonx "skillstream/internal/shared/json"
)

// cycleIDCacheSize bounds the defensive processed-cycle bookkeeping so a
// long-running session cannot grow it without limit.
const cycleIDCacheSize = 128

// toolKey identifies a tool call within its originating agent. The same
// toolUseId can legitimately appear under different sources when a sub-agent
// relays its own stream.
type toolKey struct {
	source string
	id     string
}

// Parser is a stateful reducer over raw runtime events. It is not safe for
// concurrent use; one parser serves exactly one in-flight conversational
// turn, and Reset must be called between turns.
type Parser struct {
	displayedToolCalls  map[string]struct{}
	toolUseMapping      map[string]string
	lastToolInput       map[toolKey]map[string]any
	activeSubagentTools map[string]struct{}
	processedCycleIDs   *lru.Cache[string, struct{}]
}

// NewParser returns a parser with empty session state.
func NewParser() *Parser {
	cache, _ := lru.New[string, struct{}](cycleIDCacheSize)
	return &Parser{
		displayedToolCalls:  make(map[string]struct{}),
		toolUseMapping:      make(map[string]string),
		lastToolInput:       make(map[toolKey]map[string]any),
		activeSubagentTools: make(map[string]struct{}),
		processedCycleIDs:   cache,
	}
}

// Reset clears all session state. Callers must invoke it between independent
// conversational turns, otherwise dedup state from the previous turn
// suppresses legitimate re-announcements.
func (p *Parser) Reset() {
	p.displayedToolCalls = make(map[string]struct{})
	p.toolUseMapping = make(map[string]string)
	p.lastToolInput = make(map[toolKey]map[string]any)
	p.activeSubagentTools = make(map[string]struct{})
	p.processedCycleIDs.Purge()
}

// ProcessedCycles reports how many distinct event-loop cycle ids have been
// observed since the last Reset, capped by the cycle id cache size.
func (p *Parser) ProcessedCycles() int {
	return p.processedCycleIDs.Len()
}

// Parse converts one raw runtime event into zero or more typed events, in
// the order their information should be surfaced. It never panics on
// malformed input: a mistyped or missing field skips that rule only.
func (p *Parser) Parse(event map[string]any) []Event {
	if event == nil {
		return nil
	}

	if cycleID := asString(event["event_loop_cycle_id"]); cycleID != "" {
		p.processedCycleIDs.Add(cycleID, struct{}{})
	}

	var parsed []Event

	// Orchestration events short-circuit: they carry an explicit type tag
	// and are never combined with single-agent payloads.
	if done, out := p.parseMultiAgent(event); done {
		return out
	}

	// Lifecycle flags are not mutually exclusive within one raw event.
	if truthy(event["init_event_loop"]) {
		parsed = append(parsed, &LifecycleEvent{
			LifecycleType: LifecycleInit,
			Message:       asMap(event["message"]),
		})
	}
	if truthy(event["start_event_loop"]) {
		parsed = append(parsed, &LifecycleEvent{
			LifecycleType: LifecycleStart,
			Message:       asMap(event["message"]),
		})
	}
	if truthy(event["complete"]) {
		parsed = append(parsed, &LifecycleEvent{
			LifecycleType: LifecycleComplete,
			Result:        event["result"],
		})
	}
	if truthy(event["force_stop"]) {
		parsed = append(parsed, &LifecycleEvent{
			LifecycleType:   LifecycleForceStop,
			ForceStopReason: asString(event["force_stop_reason"]),
		})
	}

	if toolStream := asMap(event["tool_stream_event"]); len(toolStream) > 0 {
		toolUse := asMap(toolStream["tool_use"])
		streamData := toolStream["data"]

		if inner, skillName, ok := relayPayload(streamData); ok {
			// Sub-agent relay: the originating tool call now routes an
			// isolated sub-agent stream. Suppress the envelope itself so the
			// activity is surfaced once, at the sub-agent level.
			if id := asString(toolUse["toolUseId"]); id != "" {
				p.activeSubagentTools[id] = struct{}{}
			}
			return append(parsed, p.parseSubagent(inner, skillName)...)
		}

		if len(toolUse) > 0 || streamData != nil {
			return append(parsed, &ToolStreamEvent{
				ToolUse: orEmpty(toolUse),
				Data:    streamData,
			})
		}
	}

	// Top-level text. No grouping-id dedup here: legitimate streaming emits
	// many chunks sharing one cycle id.
	if data := asString(event["data"]); data != "" {
		parsed = append(parsed, &TextEvent{Data: data})
	}

	// Top-level tool use is suppressed while a sub-agent relay is active:
	// the runtime echoes sub-agent tool activity at both levels.
	if toolUse := extractToolUse(event); toolUse != nil && len(p.activeSubagentTools) == 0 {
		p.emitToolUse(toolUse, "", &parsed)
	}

	if toolResult := extractToolResult(event); toolResult != nil {
		id := asString(toolResult["toolUseId"])
		if _, active := p.activeSubagentTools[id]; active {
			// The matching relay already surfaced (or will surface) this
			// result at the sub-agent level.
			delete(p.activeSubagentTools, id)
		} else {
			parsed = append(parsed, p.toolResultEvent(toolResult, ""))
		}
	}

	if reasoning := asString(event["reasoningText"]); reasoning != "" {
		var meta map[string]any
		if sig, present := event["reasoning_signature"]; present {
			meta = map[string]any{"signature": asString(sig)}
		}
		parsed = append(parsed, &ReasoningEvent{Data: reasoning, Metadata: meta})
	}

	return parsed
}

// parseMultiAgent handles explicitly type-tagged orchestration events. The
// bool reports whether the event was consumed; an unrecognized type tag falls
// through to the single-agent rules.
func (p *Parser) parseMultiAgent(event map[string]any) (bool, []Event) {
	switch asString(event["type"]) {
	case TypeNodeStart:
		return true, []Event{&MultiAgentNodeStartEvent{
			NodeID:   stringOr(event["node_id"], "unknown"),
			NodeType: stringOr(event["node_type"], "unknown"),
		}}
	case TypeNodeStream:
		// The inner event is wrapped, not expanded: renderer dispatch is the
		// single expansion site, so callers inspecting Parse output directly
		// never see the payload twice.
		return true, []Event{&MultiAgentNodeStreamEvent{
			NodeID:     stringOr(event["node_id"], "unknown"),
			InnerEvent: orEmpty(asMap(event["event"])),
		}}
	case TypeNodeStop:
		return true, []Event{&MultiAgentNodeStopEvent{
			NodeID:     stringOr(event["node_id"], "unknown"),
			NodeResult: event["node_result"],
		}}
	case TypeHandoff:
		return true, []Event{&MultiAgentHandoffEvent{
			FromNodeIDs: asStringSlice(event["from_node_ids"]),
			ToNodeIDs:   asStringSlice(event["to_node_ids"]),
			Message:     asString(event["message"]),
		}}
	case TypeResult:
		return true, []Event{&MultiAgentResultEvent{Result: event["result"]}}
	}
	return false, nil
}

// parseSubagent parses a relayed sub-agent event. It mirrors the top-level
// single-agent rules with every emitted event stamped with the sub-agent's
// skill name as source. Reasoning is not re-stamped; relayed reasoning stays
// indistinguishable from the top-level trace.
func (p *Parser) parseSubagent(event map[string]any, skillName string) []Event {
	var parsed []Event

	if data := asString(event["data"]); data != "" {
		parsed = append(parsed, &TextEvent{Data: data, Source: skillName})
	}

	if toolUse := extractToolUse(event); toolUse != nil {
		p.emitToolUse(toolUse, skillName, &parsed)
	}

	if toolResult := extractToolResult(event); toolResult != nil {
		parsed = append(parsed, p.toolResultEvent(toolResult, skillName))
	}

	return parsed
}

// emitToolUse applies the shared tool-use emission rule: announce a tool call
// exactly once per toolUseId, then re-emit only when the accumulated input
// snapshot actually changed. A descriptor without an id is always novel.
func (p *Parser) emitToolUse(toolUse map[string]any, source string, parsed *[]Event) {
	id := asString(toolUse["toolUseId"])
	name := stringOr(toolUse["name"], "unknown")
	input := extractToolInput(toolUse["input"])

	if id != "" {
		p.toolUseMapping[id] = name
	}

	_, seen := p.displayedToolCalls[id]
	isNew := id != "" && !seen

	inputChanged := false
	if id != "" {
		key := toolKey{source: source, id: id}
		last, ok := p.lastToolInput[key]
		if !ok || !reflect.DeepEqual(input, last) {
			inputChanged = true
			p.lastToolInput[key] = maps.Clone(input)
		}
	} else {
		inputChanged = true
	}

	switch {
	case isNew:
		p.displayedToolCalls[id] = struct{}{}
	case !inputChanged:
		return
	}

	ev := &CurrentToolUseEvent{ToolName: name, ToolID: id, Source: source}
	if len(input) > 0 {
		ev.ToolInput = input
	}
	*parsed = append(*parsed, ev)
}

func (p *Parser) toolResultEvent(toolResult map[string]any, source string) *ToolResultEvent {
	id := asString(toolResult["toolUseId"])
	name, ok := p.toolUseMapping[id]
	if !ok {
		// Result for a call never seen as a tool use: soft degradation, not
		// a failure.
		name = "unknown"
	}

	ev := &ToolResultEvent{
		Data:     extractResultContent(toolResult),
		ToolName: name,
		ToolID:   id,
		Source:   source,
	}
	if status := asString(toolResult["status"]); status != "" {
		ev.Metadata = map[string]any{"status": status}
	}
	return ev
}

// relayPayload reports whether a tool-stream data payload is a wrapped
// sub-agent event: a mapping carrying both an inner event and the relaying
// skill's name.
func relayPayload(data any) (inner map[string]any, skillName string, ok bool) {
	payload := asMap(data)
	if payload == nil {
		return nil, "", false
	}
	rawInner, hasInner := payload["event"]
	rawName, hasName := payload["skill_name"]
	if !hasInner || !hasName {
		return nil, "", false
	}
	inner = asMap(rawInner)
	skillName = asString(rawName)
	if inner == nil || skillName == "" {
		return nil, "", false
	}
	return inner, skillName, true
}

// extractToolUse pulls a tool-use descriptor from any of the shapes the
// runtime produces: a top-level toolUse field, the current_tool_use field, or
// nested inside a message content list.
func extractToolUse(event map[string]any) map[string]any {
	if toolUse := asMap(event["toolUse"]); toolUse != nil {
		return toolUse
	}
	if toolUse := asMap(event["current_tool_use"]); toolUse != nil {
		return toolUse
	}
	message := asMap(event["message"])
	if message == nil {
		return nil
	}
	content, _ := message["content"].([]any)
	for _, item := range content {
		if entry := asMap(item); entry != nil {
			if toolUse := asMap(entry["toolUse"]); toolUse != nil {
				return toolUse
			}
		}
	}
	return nil
}

// extractToolResult pulls a tool-result descriptor from a message content
// list.
func extractToolResult(event map[string]any) map[string]any {
	message := asMap(event["message"])
	if message == nil {
		return nil
	}
	content, _ := message["content"].([]any)
	for _, item := range content {
		if entry := asMap(item); entry != nil {
			if toolResult := asMap(entry["toolResult"]); toolResult != nil {
				return toolResult
			}
		}
	}
	return nil
}

// extractToolInput normalizes the accumulated tool input. The runtime
// usually delivers a mapping, but while arguments are still streaming it can
// deliver the accumulated partial JSON text instead; that fragment is
// repaired best-effort and treated as "no snapshot yet" when unparseable.
func extractToolInput(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		return v
	case string:
		if v == "" {
			return nil
		}
		repaired, err := jsonrepair.JSONRepair(v)
		if err != nil {
			return nil
		}
		var input map[string]any
		if err := jsonx.Unmarshal([]byte(repaired), &input); err != nil || len(input) == 0 {
			return nil
		}
		return input
	default:
		return nil
	}
}

// extractResultContent flattens the text payload of a tool result: the first
// content-list entry's text, a plain content string, a bare text field, or a
// JSON rendering of the whole descriptor as a last resort.
func extractResultContent(toolResult map[string]any) string {
	if rawContent, present := toolResult["content"]; present {
		switch content := rawContent.(type) {
		case []any:
			if len(content) == 0 {
				return "[]"
			}
			if first := asMap(content[0]); first != nil {
				if text, ok := first["text"].(string); ok {
					return text
				}
			}
			return fmt.Sprintf("%v", content[0])
		case string:
			return content
		default:
			return fmt.Sprintf("%v", content)
		}
	}
	if text, ok := toolResult["text"].(string); ok {
		return text
	}
	raw, err := jsonx.MarshalIndent(toolResult, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", toolResult)
	}
	return string(raw)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func stringOr(v any, fallback string) string {
	if s := asString(v); s != "" {
		return s
	}
	return fallback
}

func asStringSlice(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// truthy mirrors the loose boolean markers the runtime sets on lifecycle
// events: JSON booleans, but occasionally numeric or string flags.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		return val != ""
	default:
		return false
	}
}

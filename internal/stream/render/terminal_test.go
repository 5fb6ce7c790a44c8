package render

import (
	"bytes"
	"strings"
	"testing"
)

func terminalFixture() (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(NewTerminalHandler(&buf, false)), &buf
}

func TestTerminalTextStreamsWithoutDecoration(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{"data": "Hello, "})
	r.Process(map[string]any{"data": "world"})

	if got := buf.String(); got != "Hello, world" {
		t.Fatalf("expected raw streamed text, got %q", got)
	}
}

func TestTerminalSubagentTextPrefixOnlyOnSourceChange(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{
		"tool_stream_event": map[string]any{
			"tool_use": map[string]any{"toolUseId": "t1", "name": "skill"},
			"data":     map[string]any{"event": map[string]any{"data": "part one "}, "skill_name": "web-research"},
		},
	})
	r.Process(map[string]any{
		"tool_stream_event": map[string]any{
			"tool_use": map[string]any{"toolUseId": "t1", "name": "skill"},
			"data":     map[string]any{"event": map[string]any{"data": "part two"}, "skill_name": "web-research"},
		},
	})

	out := buf.String()
	if strings.Count(out, "[Sub-Agent ⚡ web-research]") != 1 {
		t.Fatalf("expected a single sub-agent prefix, got %q", out)
	}
	if !strings.Contains(out, "part one part two") {
		t.Fatalf("expected contiguous sub-agent text, got %q", out)
	}
}

func TestTerminalToolHeaderNumberedOnce(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search", "input": map[string]any{"q": "a"}}})
	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search", "input": map[string]any{"q": "ab"}}})
	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t2", "name": "read_file", "input": map[string]any{"path": "x"}}})

	out := buf.String()
	if strings.Count(out, "Tool #1: search") != 1 {
		t.Fatalf("expected one numbered header for t1, got %q", out)
	}
	if !strings.Contains(out, "Tool #2: read_file") {
		t.Fatalf("expected second call numbered 2, got %q", out)
	}
	if strings.Count(out, `"q": "ab"`) != 1 {
		t.Fatalf("expected updated input snapshot printed, got %q", out)
	}
}

func TestTerminalToolResultBlock(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search"}})
	r.Process(map[string]any{
		"message": map[string]any{
			"content": []any{map[string]any{"toolResult": map[string]any{
				"toolUseId": "t1",
				"status":    "success",
				"content":   []any{map[string]any{"text": "found 3 hits"}},
			}}},
		},
	})

	out := buf.String()
	for _, want := range []string{"Tool Result:", "[toolUseId] t1", "[status] success", "found 3 hits"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output %q", want, out)
		}
	}
}

func TestTerminalReasoningMarkerOnlyOnFirstChunk(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{"reasoningText": "let me "})
	r.Process(map[string]any{"reasoningText": "think"})
	r.Process(map[string]any{"data": "answer"})

	out := buf.String()
	if strings.Count(out, "💭") != 1 {
		t.Fatalf("expected a single reasoning marker, got %q", out)
	}
	if !strings.Contains(out, "let me think\n\nanswer") {
		t.Fatalf("expected reasoning run followed by break and text, got %q", out)
	}
}

func TestTerminalResetRestartsNumbering(t *testing.T) {
	r, buf := terminalFixture()

	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search"}})
	r.Reset()
	buf.Reset()

	r.Process(map[string]any{"toolUse": map[string]any{"toolUseId": "t1", "name": "search"}})
	if !strings.Contains(buf.String(), "Tool #1: search") {
		t.Fatalf("expected numbering restarted after reset, got %q", buf.String())
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplayStreamTerminalOutput(t *testing.T) {
	input := strings.Join([]string{
		`{"data": "Thinking about it."}`,
		``,
		`{"toolUse": {"toolUseId": "t1", "name": "calculator", "input": {"op": "add"}}}`,
		`{"toolUse": {"toolUseId": "t1", "name": "calculator", "input": {"op": "add"}}}`,
	}, "\n")

	var out bytes.Buffer
	if err := replayStream(strings.NewReader(input), &out, replayOptions{}); err != nil {
		t.Fatalf("replay: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Thinking about it.") {
		t.Fatalf("expected text chunk in output, got %q", text)
	}
	if got := strings.Count(text, "calculator"); got != 1 {
		t.Fatalf("expected one tool announcement, got %d in %q", got, text)
	}
}

func TestReplayStreamJSONOutput(t *testing.T) {
	input := `{"data": "hi"}`

	var out bytes.Buffer
	if err := replayStream(strings.NewReader(input), &out, replayOptions{jsonOut: true}); err != nil {
		t.Fatalf("replay: %v", err)
	}

	line := strings.TrimSpace(out.String())
	if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"type":"text"`) {
		t.Fatalf("expected JSON payload, got %q", line)
	}
}

func TestReplayStreamSkipsMalformedLines(t *testing.T) {
	input := "not json\n{\"data\": \"ok\"}\n"

	var out bytes.Buffer
	if err := replayStream(strings.NewReader(input), &out, replayOptions{}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out.String(), "ok") {
		t.Fatalf("expected valid line rendered, got %q", out.String())
	}
}

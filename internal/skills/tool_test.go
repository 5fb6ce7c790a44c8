package skills

import (
	"errors"
	"strings"
	"testing"
)

func toolFixture(t *testing.T) *ActivationTool {
	t.Helper()
	dir := t.TempDir()
	writeSkill(t, dir, "web-research", `---
name: web-research
description: Research topics on the web.
allowed-tools:
  - http_request
---
# Web Research

1. Search.
2. Summarize.
`)
	writeSkill(t, dir, "ppt-deck", `---
name: ppt-deck
description: Build presentation decks.
---
# PPT Deck

Outline first.
`)

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewActivationTool(lib, nil)
}

func TestToolListShowsAllSkills(t *testing.T) {
	t.Parallel()

	tool := toolFixture(t)
	out, err := tool.Invoke("", ActionList)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "- ppt-deck") || !strings.Contains(out, "- web-research") {
		t.Fatalf("expected both skills listed, got %q", out)
	}
	if strings.Index(out, "ppt-deck") > strings.Index(out, "web-research") {
		t.Fatalf("expected sorted order, got %q", out)
	}
}

func TestToolInfoShowsMetadata(t *testing.T) {
	t.Parallel()

	tool := toolFixture(t)
	out, err := tool.Invoke("web-research", ActionInfo)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "Skill: web-research") {
		t.Fatalf("expected skill header, got %q", out)
	}
	if !strings.Contains(out, "Allowed Tools: http_request") {
		t.Fatalf("expected allowed tools, got %q", out)
	}

	out, err = tool.Invoke("missing", ActionInfo)
	if err != nil {
		t.Fatalf("info missing: %v", err)
	}
	if !strings.Contains(out, "not found") || !strings.Contains(out, "ppt-deck") {
		t.Fatalf("expected not-found message with available names, got %q", out)
	}
}

func TestToolActivateLoadsInstructions(t *testing.T) {
	t.Parallel()

	tool := toolFixture(t)
	out, err := tool.Invoke("web-research", "")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !strings.Contains(out, "# Skill: web-research") {
		t.Fatalf("expected header, got %q", out)
	}
	if !strings.Contains(out, "Only use these tools: `http_request`") {
		t.Fatalf("expected allowed-tools reminder, got %q", out)
	}
	if !strings.Contains(out, "1. Search.") {
		t.Fatalf("expected instructions body, got %q", out)
	}
	if strings.Contains(out, "name: web-research") {
		t.Fatalf("frontmatter should not leak into activation output: %q", out)
	}
}

func TestToolActivateCapsOversizedInstructions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := strings.Repeat("alpha beta gamma delta ", 5000)
	writeSkill(t, dir, "huge", "---\nname: huge\ndescription: A skill with an oversized body.\n---\n# Huge\n\n"+body)

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tool := NewActivationTool(lib, nil)

	out, err := tool.Invoke("huge", ActionActivate)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if strings.Contains(out, body) {
		t.Fatal("expected oversized instructions to be truncated")
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("expected truncated output to end with ellipsis, got %q", out[len(out)-20:])
	}
}

func TestToolActivateUnknownSkillFails(t *testing.T) {
	t.Parallel()

	tool := toolFixture(t)
	if _, err := tool.Invoke("missing", ActionActivate); !errors.Is(err, ErrSkillNotFound) {
		t.Fatalf("expected ErrSkillNotFound, got %v", err)
	}
	if _, err := tool.Invoke("web-research", "destroy"); !errors.Is(err, ErrActivation) {
		t.Fatalf("expected ErrActivation for unknown action, got %v", err)
	}
}

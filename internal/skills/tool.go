package skills

import (
	"fmt"
	"sort"
	"strings"

	"skillstream/internal/shared/logging"
	tokenutil "skillstream/internal/shared/token"
)

// Activation tool actions.
const (
	ActionActivate = "activate"
	ActionList     = "list"
	ActionInfo     = "info"
)

// instructionTokenBudget caps the instruction body returned by activate so a
// single oversized SKILL.md cannot flood the agent's context window.
const instructionTokenBudget = 4000

// ActivationTool is the single dispatcher tool an agent calls to work with
// skills. It implements progressive disclosure: the library holds metadata
// only, and instructions are read from disk at activation time.
type ActivationTool struct {
	library Library
	logger  logging.Logger
}

// NewActivationTool builds a tool over a loaded library.
func NewActivationTool(library Library, logger logging.Logger) *ActivationTool {
	return &ActivationTool{library: library, logger: logging.OrNop(logger)}
}

// Invoke dispatches one tool call. An empty action defaults to activate.
func (t *ActivationTool) Invoke(skillName, action string) (string, error) {
	switch action {
	case ActionList:
		return t.list(), nil
	case ActionInfo:
		return t.info(skillName), nil
	case ActionActivate, "":
		return t.activate(skillName)
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrActivation, action)
	}
}

func (t *ActivationTool) list() string {
	skillList := t.library.List()
	if len(skillList) == 0 {
		return "No skills available. Check the skills directory."
	}

	lines := []string{"Available Skills:", ""}
	for _, props := range skillList {
		lines = append(lines,
			fmt.Sprintf("- %s", props.Name),
			fmt.Sprintf("  %s", props.Description),
			fmt.Sprintf("  Location: %s", props.Path),
			"")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (t *ActivationTool) info(skillName string) string {
	props, ok := t.library.Get(skillName)
	if !ok {
		return fmt.Sprintf("Skill '%s' not found.\nAvailable skills: %s", skillName, t.availableNames())
	}

	lines := []string{
		fmt.Sprintf("Skill: %s", props.Name),
		fmt.Sprintf("Description: %s", props.Description),
		fmt.Sprintf("SKILL.md: %s", props.Path),
		fmt.Sprintf("Directory: %s", props.SkillDir),
	}
	if len(props.AllowedTools) > 0 {
		lines = append(lines, fmt.Sprintf("Allowed Tools: %s", strings.Join(props.AllowedTools, ", ")))
	}
	if props.Compatibility != "" {
		lines = append(lines, fmt.Sprintf("Compatibility: %s", props.Compatibility))
	}
	if props.License != "" {
		lines = append(lines, fmt.Sprintf("License: %s", props.License))
	}
	return strings.Join(lines, "\n")
}

func (t *ActivationTool) activate(skillName string) (string, error) {
	props, ok := t.library.Get(skillName)
	if !ok {
		return "", fmt.Errorf("%w: '%s' (available: %s)", ErrSkillNotFound, skillName, t.availableNames())
	}

	instructions, err := LoadInstructions(props.Path)
	if err != nil {
		t.logger.Error("activate skill %s: %v", skillName, err)
		return "", fmt.Errorf("%w: activate '%s': %v", ErrActivation, skillName, err)
	}
	t.logger.Info("activating skill: %s", props.Name)

	if capped := tokenutil.Truncate(instructions, instructionTokenBudget); capped != instructions {
		t.logger.Warn("skill %s instructions truncated to ~%d tokens", props.Name, instructionTokenBudget)
		instructions = capped
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# Skill: %s\n\n", props.Name))
	builder.WriteString(fmt.Sprintf("**Description:** %s\n\n", props.Description))
	builder.WriteString(fmt.Sprintf("**Skill Directory:** `%s/`\n\n", props.SkillDir))
	if len(props.AllowedTools) > 0 {
		builder.WriteString(fmt.Sprintf("**IMPORTANT:** Only use these tools: `%s`\n\n", strings.Join(props.AllowedTools, ", ")))
	}
	builder.WriteString("---\n\n# Instructions\n\n")
	builder.WriteString(instructions)
	return builder.String(), nil
}

func (t *ActivationTool) availableNames() string {
	skillList := t.library.List()
	names := make([]string, 0, len(skillList))
	for _, props := range skillList {
		names = append(names, props.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

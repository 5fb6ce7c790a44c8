package skills

import (
	"fmt"
	"sort"
	"strings"
)

// GeneratePrompt renders a markdown system-prompt section for the given
// skills. The section lists names and descriptions only; full instructions
// stay on disk until a skill is activated.
func GeneratePrompt(skillList []Properties) string {
	if len(skillList) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("## Available Skills\n\n")
	builder.WriteString("You have access to specialized skills that provide domain expertise ")
	builder.WriteString("and structured workflows. Skills use **progressive disclosure**: ")
	builder.WriteString("you see their names and descriptions here, and only load full ")
	builder.WriteString("instructions when needed.\n")

	for _, props := range sortedByName(skillList) {
		builder.WriteString(fmt.Sprintf("\n### %s\n", props.Name))
		builder.WriteString(props.Description + "\n\n")
		builder.WriteString(fmt.Sprintf("**Location:** `%s`\n", props.Path))
		if len(props.AllowedTools) > 0 {
			builder.WriteString(fmt.Sprintf("**Allowed Tools:** %s\n", strings.Join(props.AllowedTools, ", ")))
		}
		if props.Compatibility != "" {
			builder.WriteString(fmt.Sprintf("**Requirements:** %s\n", props.Compatibility))
		}
	}

	builder.WriteString("\n**How to Use Skills:**\n\n")
	builder.WriteString("1. **Recognize relevance**: Check if the user's task matches a skill's description\n")
	builder.WriteString("2. **Activate the skill**: Use the `skill` tool with action='activate'\n")
	builder.WriteString("3. **Follow instructions**: Read and follow the workflow in SKILL.md\n")
	builder.WriteString("4. **Access resources**: Use absolute paths for scripts and references in the skill directory\n")

	return builder.String()
}

// IndexMarkdown renders a compact catalog of the library (names + descriptions).
func IndexMarkdown(library Library) string {
	skillList := library.List()
	if len(skillList) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("# Skills Catalog\n\n")
	builder.WriteString("Reusable playbooks available to the agent. Use the `skill` tool to view full details.\n\n")
	builder.WriteString("Available skills:\n")
	for _, props := range skillList {
		desc := strings.TrimSpace(props.Description)
		if desc == "" {
			desc = "(no description)"
		}
		builder.WriteString(fmt.Sprintf("- `%s`: %s\n", props.Name, desc))
	}
	return strings.TrimSpace(builder.String())
}

func sortedByName(in []Properties) []Properties {
	out := append([]Properties(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

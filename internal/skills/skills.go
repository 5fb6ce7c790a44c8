// Package skills implements discovery and progressive disclosure of agent
// skills: directories holding a SKILL.md (YAML frontmatter plus markdown
// instructions) and optional resource files. Disclosure happens in three
// phases. Discovery reads metadata only, activation loads the instruction
// body, and resources are read on demand.
package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SkillFileName is the canonical per-skill document name.
const SkillFileName = "SKILL.md"

// Properties is the discovery-time metadata of one skill. It carries
// everything a caller can know without reading the instruction body.
type Properties struct {
	Name          string
	Description   string
	Path          string // SKILL.md location
	SkillDir      string // directory holding SKILL.md and resources
	AllowedTools  []string
	Compatibility string
	License       string
}

// Library is a loaded collection of skill metadata.
type Library struct {
	skills   []Properties
	byName   map[string]Properties
	root     string
	warnings []string
}

// Root returns the directory the library was loaded from (empty for none).
func (l Library) Root() string { return l.root }

// List returns all skills sorted by name.
func (l Library) List() []Properties {
	out := append([]Properties(nil), l.skills...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a skill by name.
func (l Library) Get(name string) (Properties, bool) {
	if l.byName == nil {
		return Properties{}, false
	}
	props, ok := l.byName[NormalizeName(name)]
	return props, ok
}

// Warnings returns the per-skill problems encountered during Load. Invalid
// skills are skipped, never fatal, so a broken SKILL.md cannot take the rest
// of the directory down with it.
func (l Library) Warnings() []string {
	return append([]string(nil), l.warnings...)
}

// Load discovers skills under dir. Each immediate subdirectory containing a
// SKILL.md is one skill. A missing or empty dir yields an empty library.
func Load(dir string) (Library, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return Library{}, nil
	}

	info, err := os.Stat(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Library{}, nil
		}
		return Library{}, fmt.Errorf("stat skills dir: %w", err)
	}
	if !info.IsDir() {
		return Library{}, fmt.Errorf("skills dir %s is not a directory", trimmed)
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		return Library{}, fmt.Errorf("read skills dir: %w", err)
	}

	library := Library{root: trimmed, byName: make(map[string]Properties)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillDir := filepath.Join(trimmed, entry.Name())
		path, err := FindSkillMD(skillDir)
		if err != nil {
			continue
		}

		props, err := LoadMetadata(path)
		if err != nil {
			library.warnings = append(library.warnings, fmt.Sprintf("skip %s: %v", path, err))
			continue
		}

		key := NormalizeName(props.Name)
		if _, exists := library.byName[key]; exists {
			library.warnings = append(library.warnings, fmt.Sprintf("skip %s: duplicate skill name %q", path, key))
			continue
		}
		library.byName[key] = props
		library.skills = append(library.skills, props)
	}

	sort.Slice(library.skills, func(i, j int) bool { return library.skills[i].Name < library.skills[j].Name })
	return library, nil
}

// DefaultLibrary loads skills from the resolved default directory.
func DefaultLibrary() (Library, error) {
	return Load(LocateDefaultDir())
}

// NormalizeName normalizes a skill name for lookups.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, " ", "-")
}

package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	AllowedTools  []string `yaml:"allowed-tools"`
	Compatibility string   `yaml:"compatibility"`
	License       string   `yaml:"license"`
}

// FindSkillMD locates the SKILL.md for a skill directory.
func FindSkillMD(skillDir string) (string, error) {
	path := filepath.Join(skillDir, SkillFileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: no %s in %s", ErrSkillNotFound, SkillFileName, skillDir)
	}
	return path, nil
}

// LoadMetadata reads and validates the frontmatter of a SKILL.md without
// touching the instruction body. Disclosure phase one.
func LoadMetadata(path string) (Properties, error) {
	meta, _, err := readSkillFile(path)
	if err != nil {
		return Properties{}, err
	}

	props := Properties{
		Name:          strings.TrimSpace(meta.Name),
		Description:   strings.TrimSpace(meta.Description),
		Path:          path,
		SkillDir:      filepath.Dir(path),
		AllowedTools:  meta.AllowedTools,
		Compatibility: strings.TrimSpace(meta.Compatibility),
		License:       strings.TrimSpace(meta.License),
	}
	if err := ValidateMetadata(props); err != nil {
		return Properties{}, err
	}
	return props, nil
}

// LoadInstructions reads the markdown body of a SKILL.md. Disclosure phase two.
func LoadInstructions(path string) (string, error) {
	_, body, err := readSkillFile(path)
	if err != nil {
		return "", err
	}
	return body, nil
}

// LoadResource reads a file inside the skill directory. Disclosure phase
// three. The relative path may not escape the skill directory.
func LoadResource(skillDir, relPath string) ([]byte, error) {
	cleanDir := filepath.Clean(skillDir)
	target := filepath.Clean(filepath.Join(cleanDir, relPath))
	if target != cleanDir && !strings.HasPrefix(target, cleanDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: resource path %q escapes skill directory", ErrActivation, relPath)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%w: read resource %s: %v", ErrActivation, relPath, err)
	}
	return data, nil
}

func readSkillFile(path string) (frontMatter, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frontMatter{}, "", fmt.Errorf("%w: read %s: %v", ErrParse, path, err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	metaText, bodyText, hasFrontMatter := splitFrontMatter(content)
	if !hasFrontMatter {
		return frontMatter{}, "", fmt.Errorf("%w: %s has no YAML frontmatter", ErrParse, path)
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(metaText), &meta); err != nil {
		return frontMatter{}, "", fmt.Errorf("%w: frontmatter of %s: %v", ErrParse, path, err)
	}
	return meta, strings.TrimSpace(bodyText), nil
}

func splitFrontMatter(content string) (string, string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return "", content, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			meta := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return meta, body, true
		}
	}
	return "", content, false
}

// ExtractTitle returns the first markdown heading of an instruction body.
func ExtractTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "<!--") {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		break
	}
	return ""
}

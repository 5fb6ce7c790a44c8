package skills

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const skillsDirEnvVar = "SKILLSTREAM_SKILLS_DIR"

// LocateDefaultDir resolves the runtime skills root, ignoring resolution
// errors. Callers that need the error use ResolveSkillsRoot.
func LocateDefaultDir() string {
	root, _ := ResolveSkillsRoot()
	return root
}

// ResolveSkillsRoot resolves the skills root with this precedence:
//  1. SKILLSTREAM_SKILLS_DIR (if set), used as-is
//  2. ~/.skillstream/skills, seeded once from a repository skills/ directory
//  3. the nearest skills/ directory above the working directory or binary
func ResolveSkillsRoot() (string, error) {
	if root := strings.TrimSpace(os.Getenv(skillsDirEnvVar)); root != "" {
		return filepath.Clean(root), nil
	}

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		if repoRoot := locateRepositorySkillsRoot(); repoRoot != "" {
			return repoRoot, nil
		}
		if err == nil {
			err = errors.New("home directory is empty")
		}
		return "", err
	}

	homeRoot := filepath.Join(filepath.Clean(home), ".skillstream", "skills")
	if err := EnsureHomeSkills(homeRoot); err != nil {
		return homeRoot, err
	}
	return homeRoot, nil
}

// EnsureHomeSkills seeds homeRoot with skills from a repository skills/
// directory. Skills already present in homeRoot are never overwritten.
func EnsureHomeSkills(homeRoot string) error {
	homeRoot = filepath.Clean(strings.TrimSpace(homeRoot))
	if homeRoot == "" || homeRoot == "." {
		return nil
	}
	if err := os.MkdirAll(homeRoot, 0o755); err != nil {
		return err
	}

	repoRoot := locateRepositorySkillsRoot()
	if repoRoot == "" {
		return nil
	}

	entries, err := os.ReadDir(repoRoot)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sourceDir := filepath.Join(repoRoot, entry.Name())
		if _, err := FindSkillMD(sourceDir); err != nil {
			continue
		}

		targetDir := filepath.Join(homeRoot, entry.Name())
		if _, err := os.Stat(targetDir); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := copySkillDir(sourceDir, targetDir); err != nil {
			return err
		}
	}
	return nil
}

// locateRepositorySkillsRoot walks upward from the working directory and the
// binary location looking for a skills/ directory that holds at least one
// skill.
func locateRepositorySkillsRoot() string {
	var starts []string
	if wd, err := os.Getwd(); err == nil && wd != "" {
		starts = append(starts, filepath.Clean(wd))
	}
	if exe, err := os.Executable(); err == nil && exe != "" {
		starts = append(starts, filepath.Clean(filepath.Dir(exe)))
	}

	seen := make(map[string]struct{}, len(starts))
	for _, start := range starts {
		if _, ok := seen[start]; ok || start == "" {
			continue
		}
		seen[start] = struct{}{}

		for dir := start; ; {
			candidate := filepath.Join(dir, "skills")
			if hasSkills(candidate) {
				return candidate
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return ""
}

func hasSkills(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := FindSkillMD(filepath.Join(dir, entry.Name())); err == nil {
			return true
		}
	}
	return false
}

func copySkillDir(sourceDir, targetDir string) error {
	return filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		relativePath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		targetPath := filepath.Join(targetDir, relativePath)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return os.MkdirAll(targetPath, info.Mode().Perm())
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(targetPath, data, info.Mode().Perm())
	})
}

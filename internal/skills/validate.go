package skills

import (
	"fmt"
	"path/filepath"
	"regexp"
)

const (
	maxNameLength        = 64
	maxDescriptionLength = 1024
)

// Skill names are lowercase words joined by single hyphens.
var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateMetadata checks a skill's metadata against the skill format rules.
func ValidateMetadata(props Properties) error {
	if props.Name == "" {
		return fmt.Errorf("%w: missing required field 'name'", ErrValidation)
	}
	if len(props.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, maxNameLength)
	}
	if !namePattern.MatchString(props.Name) {
		return fmt.Errorf("%w: name %q must be lowercase letters, digits, and hyphens", ErrValidation, props.Name)
	}
	if props.Description == "" {
		return fmt.Errorf("%w: missing required field 'description'", ErrValidation)
	}
	if len(props.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, maxDescriptionLength)
	}
	if props.SkillDir != "" && props.Name != filepath.Base(props.SkillDir) {
		return fmt.Errorf("%w: name %q does not match directory %q", ErrValidation, props.Name, filepath.Base(props.SkillDir))
	}
	return nil
}

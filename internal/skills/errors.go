package skills

import "errors"

// Sentinel errors for the skill lifecycle. Callers branch with errors.Is.
var (
	// ErrSkillNotFound reports a lookup for a skill that was never discovered.
	ErrSkillNotFound = errors.New("skill not found")

	// ErrParse reports a SKILL.md that could not be read or decoded.
	ErrParse = errors.New("skill parse error")

	// ErrValidation reports metadata that violates the skill format rules.
	ErrValidation = errors.New("skill validation error")

	// ErrActivation reports a failure while loading instructions or resources.
	ErrActivation = errors.New("skill activation error")
)

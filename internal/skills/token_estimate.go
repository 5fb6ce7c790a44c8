package skills

import (
	tokenutil "skillstream/internal/shared/token"
)

// EstimateTokens reports the token cost of text counted with the
// cl100k_base encoding, falling back to a heuristic when unavailable.
func EstimateTokens(text string) int {
	return tokenutil.CountTokens(text)
}

// PromptTokenCost reports the context cost of the metadata prompt section
// for the given skills.
func PromptTokenCost(skillList []Properties) int {
	return EstimateTokens(GeneratePrompt(skillList))
}

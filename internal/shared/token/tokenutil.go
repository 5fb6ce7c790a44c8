// Package tokenutil measures text in cl100k_base tokens so skill prompts and
// instruction bodies can be budgeted in context-window terms. The encoding is
// loaded once; when tiktoken is unavailable every function falls back to a
// character and word heuristic.
package tokenutil

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var loadEncoding = sync.OnceValue(func() *tiktoken.Tiktoken {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil
	}
	return enc
})

// CountTokens returns the token count of text.
func CountTokens(text string) int {
	if enc := loadEncoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return estimate(text)
}

// Truncate cuts text down to at most maxTokens tokens, appending an ellipsis
// when anything was removed. A non-positive maxTokens leaves text untouched.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	if enc := loadEncoding(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return enc.Decode(tokens[:maxTokens]) + "..."
	}

	// Heuristic cut: roughly four runes per token.
	runes := []rune(text)
	limit := maxTokens * 4
	if limit >= len(runes) {
		return text
	}
	return string(runes[:limit]) + "..."
}

// estimate approximates the token count as max(runes/4, words), never zero
// for non-blank text.
func estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	n := runes / 4
	if n < words {
		n = words
	}
	if n == 0 {
		n = 1
	}
	return n
}

package analyze

import (
	"regexp"
	"strings"
)

// EstimateTokens gives a rough token count, about 1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|` +
		`new\s+instructions)`,
)

// InstructionLike returns the first line of text that reads like an
// instruction to the model rather than meeting content, or "".
func InstructionLike(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if injectionPattern.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func truncateLine(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	markdownJSONBlock = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	markdownAnyBlock  = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlChars      = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ExtractJSON returns the JSON document carried by noisy process output.
// It accepts:
// - pure JSON
// - JSON wrapped in markdown code blocks
// - log lines followed by a JSON line (the last document wins)
// - JSON with trailing commas or unquoted keys
func ExtractJSON(input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	if json.Valid([]byte(input)) {
		return []byte(input), nil
	}

	if extracted := extractFromMarkdown(input); extracted != "" && json.Valid([]byte(extracted)) {
		return []byte(extracted), nil
	}

	// Scripts print diagnostics before the result, so prefer the last snippet
	snippets := ExtractJSONSnippets(input)
	for i := len(snippets) - 1; i >= 0; i-- {
		if json.Valid([]byte(snippets[i])) {
			return []byte(snippets[i]), nil
		}
	}

	if cleaned := cleanAndFixJSON(input); cleaned != "" && json.Valid([]byte(cleaned)) {
		return []byte(cleaned), nil
	}

	return nil, fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown extracts JSON from markdown code blocks
func extractFromMarkdown(input string) string {
	if matches := markdownJSONBlock.FindStringSubmatch(input); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	if matches := markdownAnyBlock.FindStringSubmatch(input); len(matches) > 1 {
		content := strings.TrimSpace(matches[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractBalancedBraces extracts content with balanced braces
func extractBalancedBraces(input string, open, close rune) string {
	if len(input) == 0 {
		return ""
	}

	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if ch == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == close {
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON attempts to fix common JSON formatting issues
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	return controlChars.ReplaceAllString(s, "")
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ExtractJSONSnippets finds all top-level JSON objects or arrays in text
func ExtractJSONSnippets(input string) []string {
	var snippets []string

	for i := 0; i < len(input); i++ {
		if input[i] == '{' {
			if extracted := extractBalancedBraces(input[i:], '{', '}'); extracted != "" {
				snippets = append(snippets, extracted)
				i += len(extracted) - 1
			}
		} else if input[i] == '[' {
			if extracted := extractBalancedBraces(input[i:], '[', ']'); extracted != "" {
				snippets = append(snippets, extracted)
				i += len(extracted) - 1
			}
		}
	}

	return snippets
}

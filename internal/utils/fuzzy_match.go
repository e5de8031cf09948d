package utils

import (
	"strings"
	"unicode"
)

// Trip focus values understood by the discovery rules
const (
	FocusNature  = "Nature"
	FocusCulture = "Culture"
	FocusFood    = "Food"
	FocusThrills = "Thrills"
)

// focusAliases maps each focus to the words people use for it in a vibe.
// Order matters in InferFocus: earlier focuses win ties.
var focusAliases = []struct {
	focus   string
	aliases []string
}{
	{FocusThrills, []string{"thrill", "adventure", "trek", "hike", "hiking", "rafting", "paraglid", "adrenaline", "climb", "camp"}},
	{FocusNature, []string{"nature", "mountain", "quiet", "forest", "lake", "valley", "wildlife", "peace", "snow", "hill"}},
	{FocusCulture, []string{"culture", "spiritual", "temple", "ghat", "heritage", "history", "museum", "art", "festival"}},
	{FocusFood, []string{"food", "cuisine", "street food", "eat", "dining", "market", "chai"}},
}

// NormalizeFocus maps a free-form focus value to one of the known focuses.
// Returns "" when the value matches none of them.
func NormalizeFocus(focus string) string {
	focusLower := strings.ToLower(strings.TrimSpace(focus))
	if focusLower == "" {
		return ""
	}

	for _, entry := range focusAliases {
		// Exact match
		if focusLower == strings.ToLower(entry.focus) {
			return entry.focus
		}
	}

	for _, entry := range focusAliases {
		if FuzzyMatchFocus(focusLower, entry.focus) {
			return entry.focus
		}
	}

	return ""
}

// FuzzyMatchFocus reports whether text mentions the given focus or any of its aliases
func FuzzyMatchFocus(text, focus string) bool {
	words := splitWords(text)
	focusLower := strings.ToLower(strings.TrimSpace(focus))
	if len(words) == 0 || focusLower == "" {
		return false
	}

	if mentions(words, focusLower) {
		return true
	}

	for _, entry := range focusAliases {
		if strings.ToLower(entry.focus) != focusLower {
			continue
		}
		for _, alias := range entry.aliases {
			if mentions(words, alias) {
				return true
			}
		}
	}

	return false
}

// splitWords lowercases text and splits it on anything that is not a letter or digit
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// mentions reports whether a run of words starts with the words of term.
// The last word of term may be a prefix ("temple" matches "temples"), but
// a term never matches inside a word ("art" does not match "party").
func mentions(words []string, term string) bool {
	termWords := splitWords(term)
	if len(termWords) == 0 {
		return false
	}

	last := len(termWords) - 1
	for i := 0; i+last < len(words); i++ {
		matched := true
		for j, tw := range termWords {
			w := words[i+j]
			if j == last {
				matched = strings.HasPrefix(w, tw)
			} else if w != tw {
				matched = false
			}
			if !matched {
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// InferFocus guesses a focus from a free-text vibe such as
// "quiet mountains and long walks". Returns "" if nothing matches.
func InferFocus(vibe string) string {
	best := ""
	bestHits := 0

	words := splitWords(vibe)
	for _, entry := range focusAliases {
		hits := 0
		for _, alias := range entry.aliases {
			if mentions(words, alias) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = entry.focus, hits
		}
	}

	return best
}

package matchers

import (
	"errors"
	"strings"
	"unicode"

	"github.com/kova98/feedgrep.dataset/enums"
)

// MatchesKeyword reports whether text satisfies keyword under the given mode.
// Matching is case-insensitive.
func MatchesKeyword(mode enums.MatchMode, text, keyword string) (bool, error) {
	text = strings.ToLower(text)
	keyword = strings.ToLower(strings.TrimSpace(keyword))

	switch mode {
	case enums.MatchModeAny:
		return true, nil
	case enums.MatchModeBroad:
		return MatchesPartially(text, keyword), nil
	case enums.MatchModeExact:
		return MatchesWholeWord(text, keyword), nil
	}
	return false, errors.New("invalid match mode: " + string(mode))
}

// MatchesWholeWord returns true if the keyword appears as a complete word in the text.
// Word boundaries are defined by non-alphanumeric characters or start/end of string.
func MatchesWholeWord(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	idx := 0
	for idx < len(text) {
		pos := strings.Index(text[idx:], keyword)
		if pos == -1 {
			return false
		}
		pos += idx

		leftOk := pos == 0 || !isWordChar(rune(text[pos-1]))
		end := pos + len(keyword)
		rightOk := end == len(text) || !isWordChar(rune(text[end]))
		if leftOk && rightOk {
			return true
		}

		idx = pos + 1
	}
	return false
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func MatchesPartially(text, keyword string) bool {
	return strings.Contains(text, keyword)
}

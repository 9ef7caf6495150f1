package enums

type MatchMode string

const (
	MatchModeInvalid MatchMode = ""

	// MatchModeAny keeps every submission the search returns.
	MatchModeAny MatchMode = "any"

	// MatchModeBroad allows partial matches within words.
	// For example, the keyword "cat" will match "cat", "catalog", and "concatenate".
	MatchModeBroad MatchMode = "broad"

	// MatchModeExact requires an exact match of the whole word.
	// For example, the keyword "cat" will match "cat" but not "catalog" or "concatenate".
	MatchModeExact MatchMode = "exact"
)

func ParseMatchMode(s string) MatchMode {
	switch MatchMode(s) {
	case MatchModeAny, MatchModeBroad, MatchModeExact:
		return MatchMode(s)
	}
	return MatchModeInvalid
}

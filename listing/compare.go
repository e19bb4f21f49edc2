package listing

import "strings"

// Comparator selects how a committed value is checked against its
// target on read-back.
type Comparator int

const (
	// CompareExactText compares whitespace-normalised, case-insensitive
	// text. NBSP is treated as a regular space.
	CompareExactText Comparator = iota
	// CompareDigitsOnly compares only the digit runs of both values,
	// ignoring formatting the host applies to numeric fields.
	CompareDigitsOnly
	// CompareSubstring passes when the target is a case-insensitive
	// substring of the read-back value. Used for display-only spans
	// that decorate the selected text.
	CompareSubstring
)

func (c Comparator) String() string {
	switch c {
	case CompareExactText:
		return "exact-text"
	case CompareDigitsOnly:
		return "digits-only"
	case CompareSubstring:
		return "substring"
	}
	return "unknown"
}

// Matches reports whether actual satisfies the comparator against want.
func (c Comparator) Matches(actual, want string) bool {
	switch c {
	case CompareDigitsOnly:
		wantDigits := DigitsOnly(want)
		if wantDigits == "" {
			return NormalizeText(actual) == NormalizeText(want)
		}
		return DigitsOnly(actual) == wantDigits
	case CompareSubstring:
		return strings.Contains(
			strings.ToLower(NormalizeText(actual)),
			strings.ToLower(NormalizeText(want)),
		)
	default:
		return strings.EqualFold(NormalizeText(actual), NormalizeText(want))
	}
}

// NormalizeText collapses runs of whitespace to single spaces, converts
// NBSP to a regular space, and trims the result.
func NormalizeText(v string) string {
	v = strings.ReplaceAll(v, " ", " ")
	return strings.Join(strings.Fields(v), " ")
}

// DigitsOnly strips every non-digit rune from v.
func DigitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NumericOnly reports whether v is non-empty and consists solely of
// digits after normalisation. Descriptive-text fields reject such
// read-backs: an auto-suggest control substituting its internal numeric
// identifier for the typed text must not count as a commit.
func NumericOnly(v string) bool {
	v = NormalizeText(v)
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

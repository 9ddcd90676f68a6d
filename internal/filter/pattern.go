package filter

import "strings"

// Wildcard is the SQL LIKE multi-character wildcard.
const Wildcard = "%"

// ContainsPattern wraps v in wildcards: "bob" -> "%bob%".
// Wildcards already present at either end are kept, never doubled, so
// ContainsPattern(ContainsPattern(v)) == ContainsPattern(v).
func ContainsPattern(v string) string {
	return EndsWithPattern(StartsWithPattern(v))
}

// StartsWithPattern appends a trailing wildcard: "bob" -> "bob%".
// Idempotent.
func StartsWithPattern(v string) string {
	if strings.HasSuffix(v, Wildcard) {
		return v
	}
	return v + Wildcard
}

// EndsWithPattern prepends a leading wildcard: "bob" -> "%bob".
// Idempotent.
func EndsWithPattern(v string) string {
	if strings.HasPrefix(v, Wildcard) {
		return v
	}
	return Wildcard + v
}

// LikeMatch reports whether s matches the LIKE pattern p, case-sensitively.
// '%' matches any run of characters (including none) and '_' matches exactly
// one character. No escape character is recognized.
func LikeMatch(s, p string) bool {
	str := []rune(s)
	pat := []rune(p)

	// Iterative matcher with single-star backtracking.
	si, pi := 0, 0
	starPi, starSi := -1, 0
	for si < len(str) {
		switch {
		case pi < len(pat) && pat[pi] == '%':
			starPi = pi
			starSi = si
			pi++
		case pi < len(pat) && (pat[pi] == '_' || pat[pi] == str[si]):
			si++
			pi++
		case starPi >= 0:
			starSi++
			si = starSi
			pi = starPi + 1
		default:
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}

package common

import "strings"

// UnknownStr is the fallback rendering for enum values outside their range.
const UnknownStr = "unknown"

// LastSegment returns the part of a dotted qualified name after the final dot.
// Returns name unchanged if it contains no dot.
func LastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}

	return name
}

// SplitQualified splits a dotted qualified name into its package prefix and
// simple name. The prefix is empty for a bare name.
func SplitQualified(name string) (pkg, simple string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}

	return name[:i], name[i+1:]
}

// IsScreamingCase reports whether name looks like a Java constant identifier:
// at least one character, all uppercase letters, digits or underscores, and
// starting with an uppercase letter.
func IsScreamingCase(name string) bool {
	if name == "" {
		return false
	}

	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}

	hasLetter := false

	for i := 0; i < len(name); i++ {
		c := name[i]

		switch {
		case c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}

	return hasLetter
}

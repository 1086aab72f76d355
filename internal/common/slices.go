package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IsSingle returns true if the slice has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool {
	return len(s) == 1
}

// Dedup returns s with duplicates removed, keeping first occurrences in order.
func Dedup[S ~[]E, E comparable](s S) S {
	if len(s) < 2 {
		return s
	}

	seen := make(map[E]bool, len(s))
	out := make(S, 0, len(s))

	for _, e := range s {
		if seen[e] {
			continue
		}

		seen[e] = true
		out = append(out, e)
	}

	return out
}

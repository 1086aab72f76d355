package collect

import (
	"fmt"
	"strings"
)

// Config holds configuration for a collection run.
type Config struct {
	// Strict aborts the run on genuinely ambiguous resolutions instead of
	// routing them to the reserved unknown package.
	Strict bool
	// MaxTypeDepth limits supertype and generic-argument walks on cyclic or
	// adversarial type graphs.
	MaxTypeDepth int
	// SliceTypes optionally narrows collection to elements enclosed by the
	// named types (canonical FQNs), in addition to the per-file slice
	// membership carried by the program model.
	SliceTypes []string
}

// DefaultConfig returns the default collection configuration.
func DefaultConfig() Config {
	return Config{
		Strict:       false,
		MaxTypeDepth: 10,
	}
}

// AmbiguityError reports a resolution point with two or more equally valid
// outcomes and no deterministic tie-break. It aborts the run in strict mode.
type AmbiguityError struct {
	// Name is the simple name being resolved.
	Name string
	// Candidates are the competing resolutions.
	Candidates []string
	// Site describes where the ambiguity arose.
	Site string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous reference %q at %s: candidates %s",
		e.Name, e.Site, strings.Join(e.Candidates, ", "))
}

// Package model is the program model over a sliced Java codebase: it parses
// compilation units with tree-sitter, indexes declared types under canonical
// FQNs, and answers the resolution and expression-typing queries the
// collectors depend on. Queries are best-effort: "no information" is a
// normal answer, and genuine failures surface as QueryError values the
// caller degrades on rather than aborts.
package model

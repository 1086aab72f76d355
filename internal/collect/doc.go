// Package collect implements the multi-pass unresolved-reference collector:
// it walks a loaded program slice, finds every symbolic reference that no
// longer resolves against the kept sources or the context index, infers
// types from surrounding usage, and synthesizes a deduplicated set of stub
// plans. A constant-normalization pre-pass rewrites unresolved ALL-CAPS
// identifiers to literals so they are never stubbed as fields; a closing
// pass guarantees every type mentioned by a member plan has a type plan of
// its own.
package collect

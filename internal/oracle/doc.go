// Package oracle holds the optional context index: a YAML-described map of
// types that were removed from the slice but whose supertype chains and
// member lists are still known. Collectors use it for tie-breaking when the
// program model has no answer. All queries are safe on a nil *Index.
package oracle

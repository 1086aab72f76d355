// Package stub defines the stub-plan data model: the synthetic type, field,
// constructor, and method declarations a collection run decides must be
// manufactured for the sliced program to type-check, plus the Result that
// owns them for the duration of one run.
package stub

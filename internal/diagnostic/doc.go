// Package diagnostic provides types for collecting and reporting
// warnings, errors, and informational messages produced while a sliced
// program is analyzed and stub plans are synthesized.
package diagnostic

// Package query parses the search DSL into a structured query and
// derives the per-engine projections from it.
//
// The DSL supports quoted phrases, field:value filters, -term
// exclusions and a flat AND/OR mode. Parentheses are tokenized so
// they never corrupt adjacent words, but grouping is not evaluated:
// one OR anywhere makes the whole query OR mode.
//
// Everything in this package is pure: no I/O, no shared state, and no
// error paths. However malformed the input, the user gets a
// best-effort query rather than a refusal.
package query

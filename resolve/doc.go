// Package resolve merges class-level and field-level mask rules into final,
// per-field projection plans.
//
// Resolution runs once per (entity type, mask name) pair and is cached;
// deep-mapped fields are bound by nested mask name only, never by eagerly
// resolving the nested plan, so cyclic entity graphs terminate. All
// configuration errors surface here as typed, fatal errors: a plan is
// either complete or absent, never partial.
package resolve

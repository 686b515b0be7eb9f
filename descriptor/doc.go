// Package descriptor builds flattened, ordered field descriptions of entity
// struct types.
//
// Key capabilities:
//   - One immutable Descriptor per distinct entity type, built on first use
//   - Embedded-struct chains flattened base-first into a single field list
//   - Field shadowing: an outer field overrides a same-named promoted field
//   - Nullability and declaring-type tracking per field
package descriptor

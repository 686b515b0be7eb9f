// Package mask materializes resolved projection plans into live mask
// instances and applies mask edits back to entities.
//
// A mask instance holds an exclusive back-reference to exactly one entity
// for its lifetime and owns no copy of field data: every read re-derives
// from the live entity, every write goes straight through to it. Collection
// fields are exposed through lazy proxies that construct one mask per
// element access and never cache.
//
// The write paths (Set, ApplyChangesTo, UpdateEntityFrom) touch exposed
// fields only. A field hidden under the mask is never read and never
// written; transformed fields are skipped on write because transformers are
// forward-only and define no inverse.
package mask

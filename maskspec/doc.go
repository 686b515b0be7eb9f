// Package maskspec holds declarative per-(entity, mask) projection rules:
// membership mode, renames, converter and transformer bindings, deep-mapping
// flags, alias chains and metadata tag rules.
//
// Specs can be built in code (struct literals against a Registry) or loaded
// from YAML declaration files with converter/transformer references resolved
// through a BindingTable.
package maskspec

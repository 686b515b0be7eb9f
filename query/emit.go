// Package query derives storage-query field selections from resolved mask
// plans. Only flat, untransformed fields can be expressed as a selection:
// converters, transformers and deep-mapped collections stay out.
package query

import (
	"strings"

	"entitymask/resolve"
)

// FieldExpression is one field selection of a projection expression.
type FieldExpression struct {
	// Field is the exposed, view-side name.
	Field string
	// Path is the entity-side navigation path ("Title", "Owner.Id").
	Path string
}

// EmitSlim returns the selection limited to copy-kind fields. When no field
// qualifies, no expression is emitted: the result is nil, not empty.
func EmitSlim(plan *resolve.Plan) []FieldExpression {
	var exprs []FieldExpression

	for i := range plan.Fields {
		proj := &plan.Fields[i]
		if proj.Access != resolve.AccessCopy {
			continue
		}

		exprs = append(exprs, FieldExpression{Field: proj.ExposedName, Path: proj.Source.Name})
	}

	return exprs
}

// EmitFull additionally includes deep-mapped single references as
// navigation selections over the nested plan's slim emission, and returns
// the navigation paths the caller must eagerly load before evaluating the
// expression. Both results are nil when nothing qualifies.
func EmitFull(r *resolve.Resolver, plan *resolve.Plan) ([]FieldExpression, []string, error) {
	exprs := EmitSlim(plan)

	var paths []string

	for i := range plan.Fields {
		proj := &plan.Fields[i]
		if proj.Access != resolve.AccessDeepSingle {
			continue
		}

		nested, err := r.Resolve(proj.NestedType, proj.NestedMask)
		if err != nil {
			return nil, nil, err
		}

		for _, sub := range EmitSlim(nested) {
			exprs = append(exprs, FieldExpression{
				Field: proj.ExposedName + "." + sub.Field,
				Path:  proj.Source.Name + "." + sub.Path,
			})
		}

		paths = append(paths, proj.Source.Name)
	}

	return exprs, paths, nil
}

// Columns maps a selection to storage column names using the plan's
// resolved tags under the given key (e.g. "db"), falling back to the
// entity-side path when a field carries no such tag.
func Columns(plan *resolve.Plan, exprs []FieldExpression, tagKey string) []string {
	cols := make([]string, 0, len(exprs))

	for _, expr := range exprs {
		name, _, _ := strings.Cut(expr.Path, ".")

		proj, ok := plan.Field(name)
		if !ok || !strings.Contains(expr.Path, ".") {
			cols = append(cols, columnOf(proj, ok, expr.Path, tagKey))
			continue
		}

		// Navigation selections keep their path shape; the storage layer
		// resolves nested columns against the eager-loaded path.
		cols = append(cols, expr.Path)
	}

	return cols
}

func columnOf(proj *resolve.FieldProjection, ok bool, path, tagKey string) string {
	if !ok {
		return path
	}

	if tag, found := proj.Tag(tagKey); found {
		col, _, _ := strings.Cut(tag.Value, ",")
		if col != "" && col != "-" {
			return col
		}
	}

	return path
}

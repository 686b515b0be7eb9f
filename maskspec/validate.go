package maskspec

import (
	"fmt"

	"entitymask/descriptor"
	"entitymask/diagnostic"
)

// Validate runs authoring-time structural checks of a declaration file
// against the registry's bound entity types and the binding table. It does
// not prove resolvability beyond what the declarations themselves allow;
// the resolver re-enforces every precondition at resolution time.
func Validate(sf *SpecFile, reg *Registry, bindings *BindingTable) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if sf == nil {
		res.AddError("spec_is_nil", "spec file is nil", "", "")
		return res
	}

	if reg == nil {
		res.AddError("registry_is_nil", "registry is nil", "", "")
		return res
	}

	seen := map[string]struct{}{}

	for i := range sf.Masks {
		decl := &sf.Masks[i]
		target := decl.Entity + "." + decl.Name

		if decl.Name == "" {
			res.AddError("mask_name_missing", "mask declaration has no name", decl.Entity, "")
			continue
		}

		if _, dup := seen[target]; dup {
			res.AddError("duplicate_mask", fmt.Sprintf("duplicate mask %q", target), target, "")
			continue
		}

		seen[target] = struct{}{}

		t, ok := reg.EntityByName(decl.Entity)
		if !ok {
			res.AddError("entity_not_bound", fmt.Sprintf("entity type %q not bound", decl.Entity), target, "")
			continue
		}

		desc, err := descriptor.For(t)
		if err != nil {
			res.AddError("entity_unsupported", err.Error(), target, "")
			continue
		}

		validateMembership(decl, desc, target, res)
		validateTagDecls(decl.Tags, true, target, "", res)

		for name, fd := range decl.Fields {
			if _, ok := desc.Field(name); !ok {
				res.AddError("field_not_found",
					fmt.Sprintf("field %q not found in %v hierarchy", name, t), target, name)
				continue
			}

			validateFieldDecl(decl, name, &fd, bindings, target, res)
		}
	}

	return res
}

func validateMembership(decl *MaskDecl, desc *descriptor.Descriptor, target string, res *diagnostic.Diagnostics) {
	mode, err := ParseMode(decl.Mode)
	if err != nil {
		res.AddError("unknown_mode", err.Error(), target, "")
		return
	}

	if mode != Whitelist {
		if !decl.Whitelist.IsEmpty() {
			res.AddWarning("whitelist_ignored",
				"whitelist names are ignored under blacklist membership", target, "")
		}

		return
	}

	if decl.Whitelist.IsEmpty() {
		res.AddError("whitelist_empty", "whitelist mode requires a non-empty whitelist", target, "")
		return
	}

	for _, name := range decl.Whitelist {
		if _, ok := desc.Field(name); !ok {
			res.AddError("whitelist_name_not_found",
				fmt.Sprintf("whitelisted field %q not found in entity hierarchy", name), target, name)
		}
	}
}

func validateFieldDecl(
	decl *MaskDecl,
	name string,
	fd *FieldDecl,
	bindings *BindingTable,
	target string,
	res *diagnostic.Diagnostics,
) {
	if fd.Hide && decl.Whitelist.Contains(name) {
		res.AddWarning("hide_on_whitelisted",
			"hide is ignored for whitelisted fields; membership is exactly the whitelist", target, name)
	}

	if fd.Convert != "" && fd.Transform != "" {
		res.AddWarning("convert_shadows_transform",
			"field declares both a converter and a transformer; the converter wins", target, name)
	}

	if fd.Convert != "" && bindings != nil {
		if conv, ok := bindings.Converter(fd.Convert); !ok {
			res.AddError("converter_not_bound", fmt.Sprintf("converter %q is not bound", fd.Convert), target, name)
		} else if _, ok := conv.(Converter); !ok {
			res.AddError("converter_contract",
				fmt.Sprintf("converter %q does not implement the bidirectional Converter contract", fd.Convert),
				target, name)
		}
	}

	if fd.Transform != "" && bindings != nil {
		if fn, ok := bindings.Transform(fd.Transform); !ok {
			res.AddError("transformer_not_bound", fmt.Sprintf("transformer %q is not bound", fd.Transform), target, name)
		} else if _, err := ParseTransform(fn); err != nil {
			res.AddError("transformer_signature", fmt.Sprintf("transformer %q: %v", fd.Transform, err), target, name)
		}
	}

	if !fd.Alias.IsEmpty() && !decl.Deep {
		res.AddWarning("alias_without_deep",
			"alias chains only apply to deep-mapped fields", target, name)
	}

	validateTagDecls(fd.Tags, false, target, name, res)
}

func validateTagDecls(decls []TagDecl, classScope bool, target, field string, res *diagnostic.Diagnostics) {
	for _, td := range decls {
		op, err := ParseTagOp(td.Op)
		if err != nil {
			res.AddError("unknown_tag_op", err.Error(), target, field)
			continue
		}

		if classScope && op == TagInclude {
			res.AddError("include_in_class_scope",
				"include is a field-scope rule; it restores tags a class-scope hide removed", target, field)
		}

		if (op == TagAdd || op == TagSet) && td.Key == "" {
			res.AddError("tag_key_missing", td.Op+" requires a tag key", target, field)
		}
	}
}

package maskspec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML mask declaration file from the given path.
func LoadFile(path string) (*SpecFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a SpecFile.
func Parse(data []byte) (*SpecFile, error) {
	var sf SpecFile

	err := yaml.Unmarshal(data, &sf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spec YAML: %w", err)
	}

	applyDefaults(&sf)

	return &sf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(sf *SpecFile) {
	if sf.Version == "" {
		sf.Version = "1"
	}
}

// Marshal serializes a SpecFile to YAML.
func Marshal(sf *SpecFile) ([]byte, error) {
	return yaml.Marshal(sf)
}

// WriteFile writes a SpecFile to the given path.
func WriteFile(sf *SpecFile, path string) error {
	data, err := Marshal(sf)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write spec file %s: %w", path, err)
	}

	return nil
}

// BuildSpec converts one declaration into a Spec, resolving converter and
// transformer references through the binding table.
func (d *MaskDecl) BuildSpec(bindings *BindingTable) (*Spec, error) {
	mode, err := ParseMode(d.Mode)
	if err != nil {
		return nil, fmt.Errorf("mask %s.%s: %w", d.Entity, d.Name, err)
	}

	classRules, err := buildTagRules(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("mask %s.%s: %w", d.Entity, d.Name, err)
	}

	spec := &Spec{
		Name:        d.Name,
		TargetName:  d.Target,
		DeepMapping: d.Deep,
		Mode:        mode,
		Whitelist:   d.Whitelist,
		TagRules:    classRules,
	}

	if len(d.Fields) > 0 {
		spec.Fields = make(map[string]*FieldRule, len(d.Fields))
	}

	for name, fd := range d.Fields {
		rule, err := fd.buildRule(bindings)
		if err != nil {
			return nil, fmt.Errorf("mask %s.%s field %s: %w", d.Entity, d.Name, name, err)
		}

		spec.Fields[name] = rule
	}

	return spec, nil
}

func (fd *FieldDecl) buildRule(bindings *BindingTable) (*FieldRule, error) {
	rule := &FieldRule{
		Hidden:  fd.Hide,
		Rename:  fd.Rename,
		Aliases: fd.Alias,
	}

	if fd.Convert != "" {
		conv, ok := bindings.Converter(fd.Convert)
		if !ok {
			return nil, fmt.Errorf("converter %q is not bound", fd.Convert)
		}

		rule.Converter = conv
	}

	if fd.Transform != "" {
		fn, ok := bindings.Transform(fd.Transform)
		if !ok {
			return nil, fmt.Errorf("transformer %q is not bound", fd.Transform)
		}

		rule.Transformer = fn
	}

	rules, err := buildTagRules(fd.Tags)
	if err != nil {
		return nil, err
	}

	rule.TagRules = rules

	return rule, nil
}

func buildTagRules(decls []TagDecl) ([]TagRule, error) {
	var rules []TagRule

	for _, td := range decls {
		op, err := ParseTagOp(td.Op)
		if err != nil {
			return nil, err
		}

		rules = append(rules, TagRule{
			Op:     op,
			Filter: TagFilter{Key: td.Key, Prefix: td.Prefix},
			Tag:    Tag{Key: td.Key, Value: td.Value},
		})
	}

	return rules, nil
}

// RegisterFile builds and registers every mask declared in the file against
// entity types resolved by name through the registry.
func RegisterFile(sf *SpecFile, reg *Registry, bindings *BindingTable) error {
	for i := range sf.Masks {
		decl := &sf.Masks[i]

		t, ok := reg.EntityByName(decl.Entity)
		if !ok {
			return fmt.Errorf("mask %s.%s: entity type %q is not bound", decl.Entity, decl.Name, decl.Entity)
		}

		spec, err := decl.BuildSpec(bindings)
		if err != nil {
			return err
		}

		if err := reg.Register(t, spec); err != nil {
			return err
		}
	}

	return nil
}

package maskspec

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"entitymask/internal/common"
)

// SpecFile is the root of a YAML mask declaration file.
type SpecFile struct {
	Version string     `yaml:"version,omitempty"`
	Masks   []MaskDecl `yaml:"masks"`
}

// MaskDecl declares one mask on one entity type.
type MaskDecl struct {
	// Entity is the short entity type name, resolved against the registry.
	Entity string `yaml:"entity"`
	// Name is the mask name.
	Name string `yaml:"name"`
	// Target overrides the derived view type name.
	Target string `yaml:"target,omitempty"`
	// Deep enables deep mapping of nested references and collections.
	Deep bool `yaml:"deep,omitempty"`
	// Mode is "blacklist" (default) or "whitelist".
	Mode string `yaml:"mode,omitempty"`
	// Whitelist lists the member field names for whitelist mode.
	Whitelist StringOrArray `yaml:"whitelist,omitempty"`
	// Fields holds per-field rule declarations keyed by field name.
	Fields map[string]FieldDecl `yaml:"fields,omitempty"`
	// Tags are the class-scope tag rules.
	Tags []TagDecl `yaml:"tags,omitempty"`
}

// FieldDecl declares the per-field rules of a mask.
type FieldDecl struct {
	Hide      bool          `yaml:"hide,omitempty"`
	Rename    string        `yaml:"rename,omitempty"`
	Convert   string        `yaml:"convert,omitempty"`
	Transform string        `yaml:"transform,omitempty"`
	Alias     StringOrArray `yaml:"alias,omitempty"`
	Tags      []TagDecl     `yaml:"tags,omitempty"`
}

// TagDecl declares one tag rule.
type TagDecl struct {
	// Op is "hide", "add", "set" or "include".
	Op     string `yaml:"op"`
	Key    string `yaml:"key,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Value  string `yaml:"value,omitempty"`
}

// StringOrArray accepts either a single string or an array of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// ParseMode maps a declared membership mode string to its enum value.
func ParseMode(mode string) (MembershipMode, error) {
	switch mode {
	case "", "blacklist":
		return Blacklist, nil
	case "whitelist":
		return Whitelist, nil
	default:
		return Blacklist, fmt.Errorf("unknown membership mode %q", mode)
	}
}

// ParseTagOp maps a declared tag op string to its enum value.
func ParseTagOp(op string) (TagOp, error) {
	switch op {
	case "hide":
		return TagHide, nil
	case "add":
		return TagAdd, nil
	case "set":
		return TagSet, nil
	case "include":
		return TagInclude, nil
	default:
		return TagHide, fmt.Errorf("unknown tag op %q", op)
	}
}

package maskspec

import (
	"reflect"
	"strconv"
	"strings"

	"entitymask/internal/common"
)

// Tag is one piece of secondary field metadata (serialization name,
// validation constraint, display hint), independent of visibility.
type Tag struct {
	Key   string
	Value string
}

// TagOp is the kind of a tag rule.
type TagOp int

const (
	// TagHide removes tags matching the rule's filter.
	TagHide TagOp = iota
	// TagAdd appends a new tag instance.
	TagAdd
	// TagSet is an atomic hide-of-that-kind plus add.
	TagSet
	// TagInclude re-adds natural tags a class-scope hide removed. Valid in
	// field scope only.
	TagInclude
)

// String returns a human-readable op name.
func (o TagOp) String() string {
	switch o {
	case TagHide:
		return "hide"
	case TagAdd:
		return "add"
	case TagSet:
		return "set"
	case TagInclude:
		return "include"
	default:
		return common.UnknownStr
	}
}

// TagFilter selects tags by exact kind or namespace/group prefix.
// The zero filter matches every tag.
type TagFilter struct {
	Key    string
	Prefix string
}

// Matches reports whether the filter selects a tag with the given key.
func (f TagFilter) Matches(key string) bool {
	if f.Key != "" && f.Key != key {
		return false
	}

	if f.Prefix != "" && !strings.HasPrefix(key, f.Prefix) {
		return false
	}

	return true
}

// TagRule is one declarative tag transformation, applied in declaration
// order within its scope.
type TagRule struct {
	Op     TagOp
	Filter TagFilter
	Tag    Tag
}

// HideTags removes tags matching the filter.
func HideTags(filter TagFilter) TagRule {
	return TagRule{Op: TagHide, Filter: filter}
}

// AddTag appends a tag instance.
func AddTag(key, value string) TagRule {
	return TagRule{Op: TagAdd, Tag: Tag{Key: key, Value: value}}
}

// SetTag replaces all tags of the key's kind with a single instance.
func SetTag(key, value string) TagRule {
	return TagRule{Op: TagSet, Filter: TagFilter{Key: key}, Tag: Tag{Key: key, Value: value}}
}

// IncludeTags restores natural tags removed by a class-scope hide.
func IncludeTags(filter TagFilter) TagRule {
	return TagRule{Op: TagInclude, Filter: filter}
}

// ParseTags splits a raw struct tag into its key/value pairs in declaration
// order. Malformed trailing content is dropped, matching reflect.StructTag
// lookup behavior.
func ParseTags(tag reflect.StructTag) []Tag {
	var tags []Tag

	raw := string(tag)
	for raw != "" {
		i := 0
		for i < len(raw) && raw[i] == ' ' {
			i++
		}

		raw = raw[i:]
		if raw == "" {
			break
		}

		i = 0
		for i < len(raw) && raw[i] > ' ' && raw[i] != ':' && raw[i] != '"' && raw[i] != 0x7f {
			i++
		}

		if i == 0 || i+1 >= len(raw) || raw[i] != ':' || raw[i+1] != '"' {
			break
		}

		key := raw[:i]
		raw = raw[i+1:]

		i = 1
		for i < len(raw) && raw[i] != '"' {
			if raw[i] == '\\' {
				i++
			}
			i++
		}

		if i >= len(raw) {
			break
		}

		quoted := raw[:i+1]
		raw = raw[i+1:]

		value, err := strconv.Unquote(quoted)
		if err != nil {
			break
		}

		tags = append(tags, Tag{Key: key, Value: value})
	}

	return tags
}

// ResolveTags computes the final tag set for one field: the natural source
// tags transformed by the class-scope rules, then by the field-scope rules,
// each pass in declaration order. Include without a matching prior
// class-scope hide is a no-op.
func ResolveTags(natural []Tag, classRules, fieldRules []TagRule) []Tag {
	current := append([]Tag{}, natural...)

	var classHidden []Tag

	for _, rule := range classRules {
		var removed []Tag
		current, removed = applyTagRule(current, rule)
		classHidden = append(classHidden, removed...)
	}

	for _, rule := range fieldRules {
		if rule.Op == TagInclude {
			current, classHidden = includeTags(current, classHidden, rule.Filter)
			continue
		}

		current, _ = applyTagRule(current, rule)
	}

	return current
}

// applyTagRule applies one non-include rule and returns the surviving tags
// plus the natural tags it removed.
func applyTagRule(tags []Tag, rule TagRule) (kept, removed []Tag) {
	switch rule.Op {
	case TagHide:
		for _, t := range tags {
			if rule.Filter.Matches(t.Key) {
				removed = append(removed, t)
			} else {
				kept = append(kept, t)
			}
		}

		return kept, removed

	case TagAdd:
		return append(tags, rule.Tag), nil

	case TagSet:
		for _, t := range tags {
			if t.Key != rule.Tag.Key {
				kept = append(kept, t)
			} else {
				removed = append(removed, t)
			}
		}

		return append(kept, rule.Tag), removed

	default:
		return tags, nil
	}
}

// includeTags moves class-hidden tags matching the filter back into the
// live set, preserving their original relative order.
func includeTags(tags, classHidden []Tag, filter TagFilter) (current, remaining []Tag) {
	current = tags

	for _, t := range classHidden {
		if filter.Matches(t.Key) {
			current = append(current, t)
		} else {
			remaining = append(remaining, t)
		}
	}

	return current, remaining
}

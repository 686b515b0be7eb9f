package mask

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalJSON serializes the exposed fields in plan order. The serialized
// name comes from the resolved "json" tag when one survives the mask's tag
// rules, else the exposed name; a resolved json:"-" drops the field. Deep
// fields serialize recursively through their own masks.
func (k *Mask) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true

	for i := range k.plan.Fields {
		proj := &k.plan.Fields[i]

		name := proj.ExposedName
		if tag, ok := proj.Tag("json"); ok {
			jsonName, _, _ := strings.Cut(tag.Value, ",")
			if jsonName == "-" {
				continue
			}

			if jsonName != "" {
				name = jsonName
			}
		}

		value, err := k.read(proj)
		if err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(encoded)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON serializes the proxy as an array of element masks, in source
// order, materializing each element once.
func (p *Proxy) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	first := true

	for el := range p.All() {
		encoded, err := json.Marshal(el)
		if err != nil {
			return nil, err
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false
		buf.Write(encoded)
	}

	buf.WriteByte(']')

	return buf.Bytes(), nil
}

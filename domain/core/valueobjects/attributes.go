package valueobjects

import "encoding/json"

// Attributes is the attribute bag of a node: arbitrary JSON-serializable
// values keyed by string, including the "style" sub-mapping, an optional
// literal text payload, and data-attributes for embedded widgets.
type Attributes map[string]interface{}

// Reserved attribute keys
const (
	KeyStyle = "style"
	KeyText  = "text"
)

// NewAttributes returns an empty attribute bag
func NewAttributes() Attributes {
	return Attributes{}
}

// Clone returns a deep copy. Nested maps are copied so a caller holding the
// clone cannot reach back into the original.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge applies a delta and returns the result. The style sub-mapping is
// merged key by key, never replaced wholesale: a partial style update must
// not erase unrelated style keys. Every other key is overwritten.
func (a Attributes) Merge(delta Attributes) Attributes {
	out := a.Clone()
	for k, v := range delta {
		if k == KeyStyle {
			out[KeyStyle] = mergeStyle(out[KeyStyle], v)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

// Style returns the style sub-mapping, or an empty map if absent
func (a Attributes) Style() map[string]interface{} {
	if style, ok := a[KeyStyle].(map[string]interface{}); ok {
		return style
	}
	return map[string]interface{}{}
}

// Text returns the literal text payload, or empty
func (a Attributes) Text() string {
	if text, ok := a[KeyText].(string); ok {
		return text
	}
	return ""
}

// Equals compares two attribute bags structurally
func (a Attributes) Equals(other Attributes) bool {
	left, err := json.Marshal(map[string]interface{}(a))
	if err != nil {
		return false
	}
	right, err := json.Marshal(map[string]interface{}(other))
	if err != nil {
		return false
	}
	return string(left) == string(right)
}

func mergeStyle(existing, delta interface{}) interface{} {
	deltaMap, ok := delta.(map[string]interface{})
	if !ok {
		return cloneValue(delta)
	}
	existingMap, ok := existing.(map[string]interface{})
	if !ok {
		existingMap = map[string]interface{}{}
	}
	merged := make(map[string]interface{}, len(existingMap)+len(deltaMap))
	for k, v := range existingMap {
		merged[k] = cloneValue(v)
	}
	for k, v := range deltaMap {
		merged[k] = cloneValue(v)
	}
	return merged
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

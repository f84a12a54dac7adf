package score

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Kind tags the canonical form of an answer value.
type Kind int

const (
	Absent Kind = iota
	Scalar
	List
)

// Value is the canonical answer: a scalar string, a list of strings, or
// nothing. Clients send answers in several shapes (bare value, wrapper
// object, array) and Extract folds them all into this one type.
type Value struct {
	Kind   Kind
	Scalar string
	List   []string
}

// Answered reports whether the value counts as an actual answer.
func (v Value) Answered() bool {
	switch v.Kind {
	case Scalar:
		return v.Scalar != ""
	case List:
		return len(v.List) > 0
	}
	return false
}

// AsList exposes the value for multi-select scoring. A scalar submitted
// where a list was expected counts as a single selection.
func (v Value) AsList() []string {
	switch v.Kind {
	case List:
		return v.List
	case Scalar:
		if v.Scalar == "" {
			return nil
		}
		return []string{v.Scalar}
	}
	return nil
}

// Wrapper objects carry metadata next to the answer; these keys never hold
// the answer value itself.
var metadataKeys = map[string]bool{
	"timestamp":  true,
	"id":         true,
	"questionId": true,
	"type":       true,
}

// Extract normalizes a raw answer into its canonical Value. Recognized
// shapes: nil, bare string, string array, and wrapper objects where the
// value sits under "answer", under "value", or under the first
// non-metadata key (in sorted key order, so extraction stays
// deterministic). Anything else is treated as absent. Extract never fails.
func Extract(raw any, expectList bool) Value {
	switch v := raw.(type) {
	case nil:
		return absent(expectList)
	case string:
		if v == "" {
			return absent(expectList)
		}
		return Value{Kind: Scalar, Scalar: v}
	case []string:
		return Value{Kind: List, List: v}
	case []any:
		return listValue(v)
	case bson.A:
		return listValue(v)
	case map[string]any:
		return fromWrapper(v, expectList)
	case bson.M:
		return fromWrapper(v, expectList)
	default:
		return absent(expectList)
	}
}

func absent(expectList bool) Value {
	if expectList {
		return Value{Kind: List, List: []string{}}
	}
	return Value{Kind: Absent}
}

func listValue(items []any) Value {
	list := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		} else {
			list = append(list, fmt.Sprint(item))
		}
	}
	return Value{Kind: List, List: list}
}

func fromWrapper(m map[string]any, expectList bool) Value {
	if inner, ok := m["answer"]; ok && inner != nil {
		return Extract(inner, expectList)
	}
	if inner, ok := m["value"]; ok && inner != nil {
		return Extract(inner, expectList)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		if !metadataKeys[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return absent(expectList)
	}
	sort.Strings(keys)
	return Extract(m[keys[0]], expectList)
}

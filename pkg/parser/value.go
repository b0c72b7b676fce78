package parser

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	SequenceKind
	MappingKind
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a parsed YAML document node. Only the field matching Kind is meaningful.
// Line and Column are 1-based and zero when the value was not built from source text.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Items   []Value
	Entries []Entry

	Line   int
	Column int
}

// Entry is one key/value pair of a mapping. Entries keep source order.
type Entry struct {
	Key    string
	Value  Value
	Line   int // position of the key
	Column int
}

// Null returns the null value
func Null() Value { return Value{Kind: NullKind} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{Kind: BoolKind, Bool: b} }

// Int returns an integer value
func Int(i int64) Value { return Value{Kind: IntKind, Int: i} }

// Float returns a floating point value
func Float(f float64) Value { return Value{Kind: FloatKind, Float: f} }

// String returns a string value
func String(s string) Value { return Value{Kind: StringKind, Str: s} }

// Sequence returns a sequence value holding items
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: SequenceKind, Items: items}
}

// Mapping returns a mapping value holding entries in the given order
func Mapping(entries ...Entry) Value {
	if entries == nil {
		entries = []Entry{}
	}
	return Value{Kind: MappingKind, Entries: entries}
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.Kind == NullKind }

// IsRecord reports whether the value is a non-null, non-sequence structured object
func (v Value) IsRecord() bool { return v.Kind == MappingKind }

// Keys returns the mapping keys in source order, or nil for non-mappings
func (v Value) Keys() []string {
	if v.Kind != MappingKind {
		return nil
	}
	keys := make([]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Get looks up a key in a mapping
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != MappingKind {
		return Value{}, false
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether a mapping contains key
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Interface converts the value into plain Go data: map[string]any, []any, string,
// int64, float64, bool or nil. Key order is lost.
func (v Value) Interface() any {
	switch v.Kind {
	case BoolKind:
		return v.Bool
	case IntKind:
		return v.Int
	case FloatKind:
		return v.Float
	case StringKind:
		return v.Str
	case SequenceKind:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case MappingKind:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// ScalarString renders a scalar the way it would appear as a mapping key
func (v Value) ScalarString() string {
	switch v.Kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(v.Bool)
	case IntKind:
		return strconv.FormatInt(v.Int, 10)
	case FloatKind:
		return FormatFloat(v.Float)
	case StringKind:
		return v.Str
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}

// FormatFloat renders a float so that it still resolves as a float when read back as YAML
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}

// Equal reports structural equality, ignoring source positions. Mapping entries must
// appear in the same order.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case NullKind:
		return true
	case BoolKind:
		return v.Bool == other.Bool
	case IntKind:
		return v.Int == other.Int
	case FloatKind:
		if math.IsNaN(v.Float) && math.IsNaN(other.Float) {
			return true
		}
		return v.Float == other.Float
	case StringKind:
		return v.Str == other.Str
	case SequenceKind:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	case MappingKind:
		if len(v.Entries) != len(other.Entries) {
			return false
		}
		for i := range v.Entries {
			if v.Entries[i].Key != other.Entries[i].Key || !v.Entries[i].Value.Equal(other.Entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

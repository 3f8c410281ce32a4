package revmodel

import "github.com/reoring/revmodel/internal/plain"

type primitiveKind int

const (
	kindString primitiveKind = iota
	kindNumber
	kindBoolean
)

// primitiveType describes an immutable scalar. Primitive values are stored
// directly in their containers; they are never wrapped in an Instance.
type primitiveType struct {
	descriptor
	kind primitiveKind
}

var (
	// String accepts Go strings. Default "".
	String Type = primitiveType{descriptor: descriptor{name: "string"}, kind: kindString}
	// Number accepts every Go numeric kind and json.Number, stored as float64.
	// Default 0.
	Number Type = primitiveType{descriptor: descriptor{name: "number"}, kind: kindNumber}
	// Boolean accepts Go bools. Default false.
	Boolean Type = primitiveType{descriptor: descriptor{name: "boolean"}, kind: kindBoolean}
)

func (t primitiveType) Name() string { return t.name }

func (t primitiveType) Validate(v any) bool { return t.check(v, t.accepts) }

func (t primitiveType) accepts(v any) bool {
	switch t.kind {
	case kindString:
		_, ok := v.(string)
		return ok
	case kindNumber:
		_, ok := plain.ToFloat(v)
		return ok
	case kindBoolean:
		_, ok := v.(bool)
		return ok
	}
	return false
}

func (t primitiveType) Defaults() any {
	return t.defaultOr(func() any {
		switch t.kind {
		case kindNumber:
			return float64(0)
		case kindBoolean:
			return false
		default:
			return ""
		}
	})
}

func (t primitiveType) Wrap(v any, _ *Lifecycle) (any, error) {
	if v == nil {
		return t.nilValue(t)
	}
	if !t.Validate(v) {
		return nil, invalidType(t, v)
	}
	if t.kind == kindNumber {
		if f, ok := plain.ToFloat(v); ok {
			return f, nil
		}
	}
	return v, nil
}

func (t primitiveType) DefinitionIssues() Issues { return t.defaultIssues(t) }

func (t primitiveType) Options() Options { return Options{Nullable: t.nullable} }

func (t primitiveType) WithDefault(v any) Type {
	t.descriptor = t.withDefault(v)
	return t
}

func (t primitiveType) Nullable() Type {
	t.descriptor = t.asNullable()
	return t
}

func (t primitiveType) WithValidator(fn func(any) bool) Type {
	t.descriptor = t.withValidator(fn)
	return t
}

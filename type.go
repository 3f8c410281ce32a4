package revmodel

import (
	"fmt"
	"reflect"

	"github.com/reoring/revmodel/i18n"
	"github.com/reoring/revmodel/internal/plain"
)

// Type is the capability set every declared type implements: primitives,
// records, maps, lists and unions. Descriptors are immutable; specializing
// one (WithDefault, Nullable, WithValidator) returns a new descriptor and
// leaves the receiver untouched.
type Type interface {
	// Name renders the type for messages, e.g. "string" or "Map<string,User>".
	Name() string
	// Validate reports whether v conforms: a plain value of the right shape or a
	// managed instance of a compatible type.
	Validate(v any) bool
	// Defaults returns a fresh plain default value.
	Defaults() any
	// Wrap converts v into a value owned by lc. Compatible mutable instances
	// are returned as is; plain data is copied into new instances.
	Wrap(v any, lc *Lifecycle) (any, error)
	// DefinitionIssues lists problems with the declaration itself.
	DefinitionIssues() Issues
	Options() Options

	WithDefault(v any) Type
	Nullable() Type
	WithValidator(fn func(any) bool) Type

	desc() descriptor
}

// Options exposes the structural options of a descriptor.
type Options struct {
	Nullable bool
	SubTypes SubTypes
}

// SubTypes are the declared type parameters of generic types: Key/Value for
// maps, Elements for lists and unions.
type SubTypes struct {
	Key      Type
	Value    Type
	Elements []Type
}

// descriptor holds the overrides shared by every Type variant. Variants embed
// it by value, so specializing copies it.
type descriptor struct {
	name       string
	hasDefault bool
	def        any // plain value or func() any
	validator  func(any) bool
	nullable   bool
}

func (d descriptor) desc() descriptor { return d }

// defaultOr returns the override default, or base() when none is set.
func (d descriptor) defaultOr(base func() any) any {
	if !d.hasDefault {
		return base()
	}
	if fn, ok := d.def.(func() any); ok {
		return fn()
	}
	return plain.Clone(d.def)
}

func (d descriptor) withDefault(v any) descriptor {
	if inst, ok := v.(Instance); ok {
		// defaults never share an instance between owners
		v = inst.ToJSON(true)
	}
	d.hasDefault = true
	d.def = plain.Clone(v)
	return d
}

func (d descriptor) asNullable() descriptor {
	d.nullable = true
	return d
}

func (d descriptor) withValidator(fn func(any) bool) descriptor {
	d.validator = fn
	return d
}

// check runs the override validator when set, otherwise base.
func (d descriptor) check(v any, base func(any) bool) bool {
	if v == nil {
		return d.nullable
	}
	if d.validator != nil {
		return d.validator(v)
	}
	return base(v)
}

// defaultIssues reports defaults that can never be wrapped by t.
func (d descriptor) defaultIssues(t Type) Issues {
	if !d.hasDefault {
		return nil
	}
	if _, isFn := d.def.(func() any); isFn {
		return nil
	}
	if d.def == nil {
		if d.nullable {
			return nil
		}
		return Issues{{Path: "/", Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil),
			Hint: "cannot use a null default on a type that is not nullable"}}
	}
	if !t.Validate(d.def) {
		return Issues{{Path: "/", Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil),
			Hint: fmt.Sprintf("default value of type %s does not match %s", typeNameOf(d.def), t.Name())}}
	}
	return nil
}

// nilValue handles a nil input: nullable types keep it, others reject it.
func (d descriptor) nilValue(t Type) (any, error) {
	if d.nullable {
		return nil, nil
	}
	return nil, Issues{{Path: "/", Code: CodeNotNullable, Message: i18n.T(CodeNotNullable, nil), Hint: "expected " + t.Name()}}
}

func invalidType(t Type, v any) Issues {
	return Issues{{
		Path:    "/",
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, map[string]string{"expected": t.Name()}),
		Hint:    fmt.Sprintf("expected %s, got %s", t.Name(), typeNameOf(v)),
		Params:  map[string]any{"expected": t.Name(), "got": typeNameOf(v)},
	}}
}

func incompatible(t Type, inst Instance) Issues {
	return Issues{{
		Path:    "/",
		Code:    CodeIncompatibleInstance,
		Message: i18n.T(CodeIncompatibleInstance, map[string]string{"expected": t.Name()}),
		Hint:    fmt.Sprintf("expected %s, got instance of %s", t.Name(), inst.Type().Name()),
	}}
}

// SameType reports whether a and b describe the same structure: the same
// record definition, the same primitive kind, or pairwise-same sub-types.
// Defaults, validators and nullability do not affect compatibility.
func SameType(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case primitiveType:
		tb, ok := b.(primitiveType)
		return ok && ta.kind == tb.kind
	case *RecordType:
		tb, ok := b.(*RecordType)
		return ok && ta.def == tb.def
	case *MapType:
		tb, ok := b.(*MapType)
		return ok && SameType(ta.key, tb.key) && SameType(ta.value, tb.value)
	case *ListType:
		tb, ok := b.(*ListType)
		return ok && SameType(ta.elem, tb.elem)
	case *UnionType:
		tb, ok := b.(*UnionType)
		if !ok || len(ta.members) != len(tb.members) {
			return false
		}
		for i := range ta.members {
			if !SameType(ta.members[i], tb.members[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// typeNameOf renders the runtime type of a value for messages.
func typeNameOf(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case Instance:
		return x.Type().Name()
	}
	if _, ok := plain.ToFloat(v); ok {
		return "number"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

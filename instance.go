package revmodel

import (
	"math"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/reoring/revmodel/internal/plain"
)

// Instance is a managed value realized from a composite Type: a *Record, a
// *Map or a *List. Primitive values are never Instances.
//
// Every mutable instance has exactly one read-only facade, created on first
// AsReadOnly. The facade shares the instance's storage and revision stamp, so
// it reflects later mutations, but every mutating call on it is a no-op.
type Instance interface {
	Type() Type
	Lifecycle() *Lifecycle
	// Revision is the stamp of the last committed mutation (0 if none).
	Revision() Revision
	// IsDirty reports whether the instance changed after revision since.
	IsDirty(since Revision) bool
	IsReadOnly() bool
	AsReadOnly() Instance
	// ToJSON exports plain data. With recursive false, nested instances are
	// returned by reference (as facades when the receiver is a facade).
	ToJSON(recursive bool) any
	// SetValue replaces the whole value with freshly wrapped data.
	SetValue(v any) error
	// SetValueDeep replaces the whole value, mutating existing nested
	// instances in place where the new data matches them.
	SetValueDeep(v any) error
	MarshalJSON() ([]byte, error)

	identity() any
	setValueDeep(v any, m *mutation) (bool, error)
}

// nanKey stands in for every NaN so that NaN keys equal each other.
type nanKey struct{}

// keyOf returns the equality key of a value: storage identity for instances
// (a facade and its origin share it), float64 for numbers, the value itself
// for other hashable values. ok is false for values that cannot be keys.
func keyOf(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	if inst, ok := v.(Instance); ok {
		return inst.identity(), true
	}
	if f, ok := plain.ToFloat(v); ok {
		if math.IsNaN(f) {
			return nanKey{}, true
		}
		return f, true
	}
	if !hashable(reflect.TypeOf(v)) {
		return nil, false
	}
	return v, true
}

// hashable reports whether every value of t can be a Go map key. Interface
// fields are rejected since their dynamic value may be a slice or a map.
func hashable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Interface:
		return false
	case reflect.Array:
		return hashable(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !hashable(t.Field(i).Type) {
				return false
			}
		}
	}
	return true
}

// identical reports reference equality for instances and value equality for
// primitives.
func identical(a, b any) bool {
	ia, aok := a.(Instance)
	ib, bok := b.(Instance)
	if aok || bok {
		return aok && bok && ia.identity() == ib.identity()
	}
	ka, ok := keyOf(a)
	if !ok {
		return false
	}
	kb, ok := keyOf(b)
	return ok && ka == kb
}

// SameInstance reports whether a and b are the same managed value. A
// read-only facade is the same instance as its mutable origin.
func SameInstance(a, b any) bool { return identical(a, b) }

// structEqual compares two stored values by their recursive plain form.
func structEqual(a, b any) bool {
	if identical(a, b) {
		return true
	}
	return plain.Equal(jsonValue(a, true, false), jsonValue(b, true, false))
}

// exposeValue returns v as seen through a container: nested instances read
// through a facade are themselves facades.
func exposeValue(v any, readOnly bool) any {
	if readOnly {
		if inst, ok := v.(Instance); ok {
			return inst.AsReadOnly()
		}
	}
	return v
}

func jsonValue(v any, recursive, readOnly bool) any {
	inst, ok := v.(Instance)
	if !ok {
		return v
	}
	if recursive {
		return inst.ToJSON(true)
	}
	return exposeValue(inst, readOnly)
}

// deepCompatible reports whether raw can be merged into cur in place.
func deepCompatible(cur Instance, declared Type, raw any) bool {
	if cur.IsReadOnly() {
		return false
	}
	t := MatchType(declared, raw)
	return t != nil && SameType(t, cur.Type())
}

func marshalInstance(inst Instance) ([]byte, error) {
	return json.Marshal(inst.ToJSON(true))
}

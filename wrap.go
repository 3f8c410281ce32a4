package revmodel

import "github.com/reoring/revmodel/i18n"

// constructor is implemented by composite types: construct always builds a
// new instance, even from a compatible instance.
type constructor interface {
	construct(v any, lc *Lifecycle) (any, error)
}

// Wrap converts v into a value conforming to t and owned by lc. Compatible
// mutable instances are reused by reference; plain data is copied into new
// instances so the result never aliases v. A nil lc means DefaultLifecycle.
//
// Wrap reports failures as Issues without routing them through the sink; the
// caller decides the severity.
func Wrap(v any, t Type, lc *Lifecycle) (any, error) {
	if t == nil {
		return nil, ValidateDefinition(nil)
	}
	return t.Wrap(v, orDefault(lc))
}

// New constructs a value of type t from v under the default lifecycle.
// Construction is strict: any mismatch is returned as an error. A nil v means
// t's defaults.
func New(t Type, v any) (any, error) { return NewIn(nil, t, v) }

// NewIn is New under an explicit lifecycle.
func NewIn(lc *Lifecycle, t Type, v any) (any, error) {
	lc = orDefault(lc)
	if iss := ValidateDefinition(t); len(iss) > 0 {
		return nil, lc.definition(iss)
	}
	if v == nil {
		v = t.Defaults()
	}
	out, err := construct(t, v, lc)
	if err != nil {
		return nil, lc.fatal(prefixIssues("/", err))
	}
	return out, nil
}

func construct(t Type, v any, lc *Lifecycle) (any, error) {
	if c, ok := t.(constructor); ok {
		return c.construct(v, lc)
	}
	return t.Wrap(v, lc)
}

// wrapInstance handles an Instance passed to a composite type's Wrap. It
// returns reuse=true with the instance when it can be shared, or a plain copy
// to construct from when it is a read-only facade.
func wrapInstance(t Type, inst Instance) (out any, reuse bool, err error) {
	if !SameType(t, inst.Type()) {
		return nil, false, incompatible(t, inst)
	}
	if inst.IsReadOnly() {
		// sharing the origin would hand out write access
		return inst.ToJSON(true), false, nil
	}
	return inst, true, nil
}

// adopted reports whether w is raw itself: a mutable instance taken by
// reference when it was wrapped.
func adopted(raw, w any) bool {
	inst, ok := raw.(Instance)
	return ok && !inst.IsReadOnly() && identical(inst, w)
}

func unsupported(t Type, v any) Issues {
	return Issues{{
		Path:    "/",
		Code:    CodeUnsupportedInput,
		Message: i18n.T(CodeUnsupportedInput, map[string]string{"expected": t.Name()}),
		Hint:    "cannot build " + t.Name() + " from " + typeNameOf(v),
	}}
}

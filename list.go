package revmodel

import (
	"iter"
	"reflect"
	"strconv"

	"github.com/reoring/revmodel/i18n"
)

// ListType describes an ordered sequence. Declaring several element types
// makes the element type their union, matched first-match in order.
type ListType struct {
	descriptor
	elems []Type
	elem  Type
}

// ListOf declares a list type. Declaring no element type is a definition
// error.
func ListOf(elems ...Type) *ListType {
	t := &ListType{elems: append([]Type(nil), elems...)}
	switch len(elems) {
	case 0:
	case 1:
		t.elem = elems[0]
	default:
		t.elem = Union(elems...)
	}
	t.name = "List<" + typeName(t.elem) + ">"
	return t
}

// Elem returns the effective element type.
func (t *ListType) Elem() Type { return t.elem }

func (t *ListType) Name() string { return t.name }

func (t *ListType) Validate(v any) bool { return t.check(v, t.accepts) }

func (t *ListType) accepts(v any) bool {
	if x, ok := v.(*List); ok {
		return SameType(x.typ, t)
	}
	if t.elem == nil {
		return false
	}
	items, ok := itemsOf(v)
	if !ok {
		return false
	}
	for _, it := range items {
		if MatchType(t.elem, it) == nil {
			return false
		}
	}
	return true
}

// itemsOf reads any Go slice or array as a list of items.
func itemsOf(v any) ([]any, bool) {
	if x, ok := v.([]any); ok {
		return x, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Defaults returns the override default, or an empty list.
func (t *ListType) Defaults() any {
	return t.defaultOr(func() any { return []any{} })
}

func (t *ListType) Wrap(v any, lc *Lifecycle) (any, error) {
	if iss := t.subTypeIssues(); len(iss) > 0 {
		return nil, iss
	}
	if v == nil {
		return t.nilValue(t)
	}
	if inst, ok := v.(Instance); ok {
		out, reuse, err := wrapInstance(t, inst)
		if err != nil || reuse {
			return out, err
		}
		v = out
	}
	return t.construct(v, lc)
}

func (t *ListType) construct(v any, lc *Lifecycle) (any, error) {
	if iss := t.subTypeIssues(); len(iss) > 0 {
		return nil, iss
	}
	if v == nil {
		return t.nilValue(t)
	}
	if t.validator != nil && !t.validator(v) {
		return nil, invalidType(t, v)
	}
	items, err := t.input(v)
	if err != nil {
		return nil, err
	}
	wrapped, err := t.wrapItems(items, lc)
	if err != nil {
		return nil, err
	}
	return &List{typ: t, st: &listState{node: node{lc: lc}, items: wrapped}}, nil
}

// input reads construction and SetValue input. A compatible mutable list
// contributes its items by reference; a facade contributes a copy.
func (t *ListType) input(v any) ([]any, error) {
	if x, ok := v.(*List); ok {
		if !SameType(x.typ, t) {
			return nil, incompatible(t, x)
		}
		if !x.readOnly {
			return append([]any(nil), x.st.items...), nil
		}
		v = x.ToJSON(true)
	}
	items, ok := itemsOf(v)
	if !ok {
		return nil, unsupported(t, v)
	}
	return items, nil
}

func (t *ListType) wrapItems(items []any, lc *Lifecycle) ([]any, error) {
	out := make([]any, len(items))
	var iss Issues
	for i, it := range items {
		w, err := t.elem.Wrap(it, lc)
		if err != nil {
			iss = append(iss, prefixIssues(RootPath().Index(i).Pointer(), err)...)
			continue
		}
		out[i] = w
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (t *ListType) subTypeIssues() Issues {
	if t.elem != nil {
		return nil
	}
	return Issues{{Path: "/", Code: CodeMissingSubTypes, Message: i18n.T(CodeMissingSubTypes, nil),
		Hint: "missing element type; declare the list as ListOf(elem)"}}
}

func (t *ListType) DefinitionIssues() Issues {
	if iss := t.subTypeIssues(); len(iss) > 0 {
		return iss
	}
	iss := prefixIssues("/elem", t.elem.DefinitionIssues())
	return append(iss, t.defaultIssues(t)...)
}

func (t *ListType) Options() Options {
	return Options{Nullable: t.nullable, SubTypes: SubTypes{Elements: append([]Type(nil), t.elems...)}}
}

func (t *ListType) WithDefault(v any) Type {
	c := *t
	c.descriptor = c.withDefault(v)
	return &c
}

func (t *ListType) Nullable() Type {
	c := *t
	c.descriptor = c.asNullable()
	return &c
}

func (t *ListType) WithValidator(fn func(any) bool) Type {
	c := *t
	c.descriptor = c.withValidator(fn)
	return &c
}

// New constructs a list under the default lifecycle.
func (t *ListType) New(v any) (*List, error) { return t.NewIn(nil, v) }

// NewIn constructs a list under lc.
func (t *ListType) NewIn(lc *Lifecycle, v any) (*List, error) {
	out, err := NewIn(lc, t, v)
	if err != nil {
		return nil, err
	}
	l, _ := out.(*List)
	return l, nil
}

// MustNewIn is NewIn that panics on error.
func (t *ListType) MustNewIn(lc *Lifecycle, v any) *List {
	x, err := t.NewIn(lc, v)
	if err != nil {
		panic(err)
	}
	return x
}

// MustNew is New that panics on error.
func (t *ListType) MustNew(v any) *List {
	l, err := t.New(v)
	if err != nil {
		panic(err)
	}
	return l
}

type listState struct {
	node
	items  []any
	facade *List
}

// List is a managed ordered sequence.
type List struct {
	typ      *ListType
	st       *listState
	readOnly bool
}

func (l *List) Type() Type                  { return l.typ }
func (l *List) Lifecycle() *Lifecycle       { return l.st.lc }
func (l *List) Revision() Revision          { return l.st.stamp }
func (l *List) IsDirty(since Revision) bool { return l.st.isDirty(since) }
func (l *List) IsReadOnly() bool            { return l.readOnly }
func (l *List) identity() any               { return l.st }

func (l *List) AsReadOnly() Instance {
	if l.readOnly {
		return l
	}
	if l.st.facade == nil {
		l.st.facade = &List{typ: l.typ, st: l.st, readOnly: true}
	}
	return l.st.facade
}

// Len is the number of items.
func (l *List) Len() int { return len(l.st.items) }

// At returns the item at i, or nil when i is out of range.
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.st.items) {
		return nil
	}
	return exposeValue(l.st.items[i], l.readOnly)
}

// Values returns the items in order.
func (l *List) Values() []any {
	out := make([]any, len(l.st.items))
	for i, it := range l.st.items {
		out[i] = exposeValue(it, l.readOnly)
	}
	return out
}

// All iterates over index/item pairs.
func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, it := range l.Values() {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Set replaces the item at i, or appends when i equals Len. Like record
// field assignment it is lenient: a rejected value leaves the list unchanged.
// On a facade Set is a no-op.
func (l *List) Set(i int, v any) error {
	if l.readOnly {
		l.st.lc.ignoreWrite("Set", l.typ)
		return nil
	}
	lc := l.st.lc
	path := RootPath().Index(i)
	if i < 0 || i > len(l.st.items) {
		return lc.lenient(Issues{path.Issue(CodeOutOfRange, i18n.T(CodeOutOfRange, nil),
			"index", i, "len", len(l.st.items))})
	}
	w, err := l.typ.elem.Wrap(v, lc)
	if err != nil {
		return lc.lenient(prefixIssues(path.Pointer(), err))
	}
	if i < len(l.st.items) && identical(l.st.items[i], w) {
		return nil
	}
	m := newMutation(lc)
	if i == len(l.st.items) {
		l.st.items = append(l.st.items, w)
	} else {
		l.st.items[i] = w
	}
	l.st.touch(m)
	return nil
}

// Push appends items and returns the new length. It is strict: if any item
// does not fit, none is appended. On a facade Push returns the current
// length without changes.
func (l *List) Push(vs ...any) (int, error) {
	if l.readOnly {
		l.st.lc.ignoreWrite("Push", l.typ)
		return len(l.st.items), nil
	}
	if len(vs) == 0 {
		return len(l.st.items), nil
	}
	lc := l.st.lc
	wrapped := make([]any, len(vs))
	var iss Issues
	for j, v := range vs {
		w, err := l.typ.elem.Wrap(v, lc)
		if err != nil {
			iss = append(iss, prefixIssues(RootPath().Index(len(l.st.items)+j).Pointer(), err)...)
			continue
		}
		wrapped[j] = w
	}
	if len(iss) > 0 {
		return len(l.st.items), lc.fatal(iss)
	}
	l.st.items = append(l.st.items, wrapped...)
	l.st.touch(newMutation(lc))
	return len(l.st.items), nil
}

// ToJSON returns the items as a plain slice.
func (l *List) ToJSON(recursive bool) any {
	out := make([]any, len(l.st.items))
	for i, it := range l.st.items {
		out[i] = jsonValue(it, recursive, l.readOnly)
	}
	return out
}

func (l *List) MarshalJSON() ([]byte, error) { return marshalInstance(l) }

// SetValue replaces every item with freshly wrapped data, stamping only if
// the result differs structurally from the current items.
func (l *List) SetValue(v any) error {
	if l.readOnly {
		l.st.lc.ignoreWrite("SetValue", l.typ)
		return nil
	}
	lc := l.st.lc
	items, err := l.typ.input(v)
	if err != nil {
		return lc.fatal(err.(Issues))
	}
	wrapped, err := l.typ.wrapItems(items, lc)
	if err != nil {
		return lc.fatal(err.(Issues))
	}
	if sameItems(l.st.items, wrapped) {
		return nil
	}
	if structEqualItems(l.st.items, wrapped) {
		for i, w := range wrapped {
			if adopted(items[i], w) {
				l.st.items[i] = w
			}
		}
		return nil
	}
	l.st.items = wrapped
	l.st.touch(newMutation(lc))
	return nil
}

func sameItems(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

func structEqualItems(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !structEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SetValueDeep replaces the items position by position, merging into the
// existing instance at each index when the new data fits it.
func (l *List) SetValueDeep(v any) error {
	if l.readOnly {
		l.st.lc.ignoreWrite("SetValueDeep", l.typ)
		return nil
	}
	_, err := l.setValueDeep(v, newMutation(l.st.lc))
	if err != nil {
		return l.st.lc.fatal(prefixIssues("/", err))
	}
	return nil
}

func (l *List) setValueDeep(v any, m *mutation) (bool, error) {
	if l.readOnly {
		return false, nil
	}
	lc := l.st.lc
	items, err := l.typ.input(v)
	if err != nil {
		return false, err
	}
	var iss Issues
	for i, it := range items {
		if MatchType(l.typ.elem, it) == nil {
			iss = append(iss, prefixIssues(RootPath().Index(i).Pointer(), invalidType(l.typ.elem, it))...)
		}
	}
	if len(iss) > 0 {
		return false, iss
	}
	changed := len(items) != len(l.st.items)
	next := make([]any, len(items))
	for i, raw := range items {
		path := "/" + strconv.Itoa(i)
		if i >= len(l.st.items) {
			w, err := l.typ.elem.Wrap(raw, lc)
			if err != nil {
				iss = append(iss, prefixIssues(path, err)...)
				continue
			}
			next[i] = w
			continue
		}
		cur := l.st.items[i]
		if identical(cur, raw) {
			next[i] = cur
			continue
		}
		if ci, ok := cur.(Instance); ok && deepCompatible(ci, l.typ.elem, raw) {
			c, err := ci.setValueDeep(raw, m)
			if err != nil {
				iss = append(iss, prefixIssues(path, err)...)
				continue
			}
			changed = changed || c
			next[i] = cur
			continue
		}
		w, err := l.typ.elem.Wrap(raw, lc)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		if structEqual(cur, w) {
			next[i] = cur
			continue
		}
		changed = true
		next[i] = w
	}
	if len(iss) > 0 {
		return false, iss
	}
	if changed {
		l.st.items = next
		l.st.touch(m)
	}
	return changed, nil
}

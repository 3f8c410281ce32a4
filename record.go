package revmodel

import (
	"strings"

	"github.com/reoring/revmodel/i18n"
)

type recordField struct {
	name string
	typ  Type
}

// recordDef is shared by every specialization of a record type; SameType
// compares records by it.
type recordDef struct {
	name   string
	fields []recordField
	index  map[string]int
}

// RecordType describes a record with a fixed, ordered set of named fields.
type RecordType struct {
	descriptor
	def *recordDef
}

// RecordBuilder declares a record type field by field.
type RecordBuilder struct {
	name   string
	fields []recordField
}

// RecordOf starts a record declaration.
func RecordOf(name string) *RecordBuilder { return &RecordBuilder{name: name} }

// Field declares a field. Declaration order is the field order of ToJSON and
// of definition diagnostics.
func (b *RecordBuilder) Field(name string, t Type) *RecordBuilder {
	b.fields = append(b.fields, recordField{name: name, typ: t})
	return b
}

// Build validates the declaration. Every problem (reserved or duplicate
// names, nil types, maps without sub-types, bad defaults) is reported once
// through the default sink as a single aggregated error.
func (b *RecordBuilder) Build() (*RecordType, error) {
	var iss Issues
	def := &recordDef{name: b.name, index: make(map[string]int, len(b.fields))}
	for _, f := range b.fields {
		path := RootPath().Field(f.name).Pointer()
		switch {
		case f.name == "":
			iss = AppendIssues(iss, Issue{Path: path, Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil), Hint: "field name is empty"})
			continue
		case strings.HasPrefix(f.name, "$") || strings.HasPrefix(f.name, "__"):
			iss = AppendIssues(iss, Issue{Path: path, Code: CodeReservedField, Message: i18n.T(CodeReservedField, nil),
				Hint: "field names starting with $ or __ are reserved", Params: map[string]any{"field": f.name}})
			continue
		}
		if _, dup := def.index[f.name]; dup {
			iss = AppendIssues(iss, Issue{Path: path, Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil), Hint: "duplicate field " + f.name})
			continue
		}
		if f.typ == nil {
			iss = AppendIssues(iss, Issue{Path: path, Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil), Hint: "field " + f.name + " has no type"})
			continue
		}
		iss = append(iss, prefixIssues(path, f.typ.DefinitionIssues())...)
		def.index[f.name] = len(def.fields)
		def.fields = append(def.fields, f)
	}
	if len(iss) > 0 {
		return nil, DefaultLifecycle().definition(iss)
	}
	name := b.name
	if name == "" {
		name = "record"
	}
	return &RecordType{descriptor: descriptor{name: name}, def: def}, nil
}

// MustBuild is Build that panics on definition errors.
func (b *RecordBuilder) MustBuild() *RecordType {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Fields returns the declared field names in order.
func (t *RecordType) Fields() []string {
	out := make([]string, len(t.def.fields))
	for i, f := range t.def.fields {
		out[i] = f.name
	}
	return out
}

// Field returns the declared type of a field.
func (t *RecordType) Field(name string) (Type, bool) {
	i, ok := t.def.index[name]
	if !ok {
		return nil, false
	}
	return t.def.fields[i].typ, true
}

func (t *RecordType) Name() string { return t.name }

func (t *RecordType) Validate(v any) bool { return t.check(v, t.accepts) }

func (t *RecordType) accepts(v any) bool {
	switch x := v.(type) {
	case *Record:
		return SameType(x.typ, t)
	case map[string]any:
		for _, f := range t.def.fields {
			if raw, ok := x[f.name]; ok && MatchType(f.typ, raw) == nil {
				return false
			}
		}
		return true
	}
	return false
}

// Defaults returns the override default, or a plain object with every
// field's default.
func (t *RecordType) Defaults() any {
	return t.defaultOr(func() any {
		out := make(map[string]any, len(t.def.fields))
		for _, f := range t.def.fields {
			out[f.name] = f.typ.Defaults()
		}
		return out
	})
}

func (t *RecordType) Wrap(v any, lc *Lifecycle) (any, error) {
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

func (t *RecordType) construct(v any, lc *Lifecycle) (any, error) {
	if v == nil {
		return t.nilValue(t)
	}
	var data map[string]any
	switch x := v.(type) {
	case *Record:
		if !SameType(x.typ, t) {
			return nil, incompatible(t, x)
		}
		if x.readOnly {
			data, _ = x.ToJSON(true).(map[string]any)
		} else {
			// a new record sharing the source's children
			data = x.ToJSON(false).(map[string]any)
		}
	case map[string]any:
		data = x
	default:
		return nil, invalidType(t, v)
	}
	if t.validator != nil && !t.validator(v) {
		return nil, invalidType(t, v)
	}
	values := make(map[string]any, len(t.def.fields))
	var iss Issues
	for _, f := range t.def.fields {
		raw, ok := data[f.name]
		var w any
		var err error
		if ok {
			w, err = f.typ.Wrap(raw, lc)
		} else {
			w, err = construct(f.typ, f.typ.Defaults(), lc)
		}
		if err != nil {
			iss = append(iss, prefixIssues(RootPath().Field(f.name).Pointer(), err)...)
			continue
		}
		values[f.name] = w
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return &Record{typ: t, st: &recordState{node: node{lc: lc}, values: values}}, nil
}

func (t *RecordType) DefinitionIssues() Issues { return t.defaultIssues(t) }

func (t *RecordType) Options() Options { return Options{Nullable: t.nullable} }

func (t *RecordType) WithDefault(v any) Type {
	c := *t
	c.descriptor = c.withDefault(v)
	return &c
}

func (t *RecordType) Nullable() Type {
	c := *t
	c.descriptor = c.asNullable()
	return &c
}

func (t *RecordType) WithValidator(fn func(any) bool) Type {
	c := *t
	c.descriptor = c.withValidator(fn)
	return &c
}

// New constructs a record under the default lifecycle. A nil v yields the
// type's defaults.
func (t *RecordType) New(v any) (*Record, error) { return t.NewIn(nil, v) }

// NewIn constructs a record under lc.
func (t *RecordType) NewIn(lc *Lifecycle, v any) (*Record, error) {
	out, err := NewIn(lc, t, v)
	if err != nil {
		return nil, err
	}
	r, _ := out.(*Record)
	return r, nil
}

// MustNewIn is NewIn that panics on error.
func (t *RecordType) MustNewIn(lc *Lifecycle, v any) *Record {
	x, err := t.NewIn(lc, v)
	if err != nil {
		panic(err)
	}
	return x
}

// MustNew is New that panics on error.
func (t *RecordType) MustNew(v any) *Record {
	r, err := t.New(v)
	if err != nil {
		panic(err)
	}
	return r
}

type recordState struct {
	node
	values map[string]any
	facade *Record
}

// Record is a managed record instance.
type Record struct {
	typ      *RecordType
	st       *recordState
	readOnly bool
}

func (r *Record) Type() Type                  { return r.typ }
func (r *Record) Lifecycle() *Lifecycle       { return r.st.lc }
func (r *Record) Revision() Revision          { return r.st.stamp }
func (r *Record) IsDirty(since Revision) bool { return r.st.isDirty(since) }
func (r *Record) IsReadOnly() bool            { return r.readOnly }
func (r *Record) identity() any               { return r.st }

func (r *Record) AsReadOnly() Instance {
	if r.readOnly {
		return r
	}
	if r.st.facade == nil {
		r.st.facade = &Record{typ: r.typ, st: r.st, readOnly: true}
	}
	return r.st.facade
}

// Get returns a field value, or nil for undeclared fields. On a facade,
// nested instances are returned as their own facades.
func (r *Record) Get(name string) any {
	return exposeValue(r.st.values[name], r.readOnly)
}

// Set assigns one field and reports whether a mutation was committed.
//
// Assignment is lenient: a value that does not fit the field leaves the
// current value in place and is reported through the sink, which returns an
// error only when configured to raise. On a facade Set is a no-op. With
// Config.FreezeInstance, assigning an undeclared field is an error on both
// mutable and read-only records; otherwise it is ignored.
func (r *Record) Set(name string, v any) (bool, error) {
	lc := r.st.lc
	f, ok := r.typ.Field(name)
	if !ok {
		if lc.Config().FreezeInstance {
			return false, lc.fatal(Issues{RootPath().Field(name).Issue(CodeUnknownField,
				i18n.T(CodeUnknownField, nil), "field", name, "type", r.typ.Name())})
		}
		return false, nil
	}
	if r.readOnly {
		lc.ignoreWrite("Set", r.typ)
		return false, nil
	}
	w, err := f.Wrap(v, lc)
	if err != nil {
		return false, lc.lenient(prefixIssues(RootPath().Field(name).Pointer(), err))
	}
	if identical(r.st.values[name], w) {
		return false, nil
	}
	m := newMutation(lc)
	r.st.values[name] = w
	r.st.touch(m)
	return true, nil
}

// ToJSON returns a plain object with every declared field.
func (r *Record) ToJSON(recursive bool) any {
	out := make(map[string]any, len(r.typ.def.fields))
	for _, f := range r.typ.def.fields {
		out[f.name] = jsonValue(r.st.values[f.name], recursive, r.readOnly)
	}
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) { return marshalInstance(r) }

// input normalizes SetValue input into a field map. Undeclared keys are
// ignored later.
func (r *Record) input(v any) (map[string]any, error) {
	switch x := v.(type) {
	case *Record:
		if !SameType(x.typ, r.typ) {
			return nil, incompatible(r.typ, x)
		}
		return x.ToJSON(true).(map[string]any), nil
	case map[string]any:
		return x, nil
	}
	return nil, invalidType(r.typ, v)
}

// SetValue assigns every declared field present in v. It is strict: if any
// field does not fit, nothing changes and the issues are returned. Fields
// whose new value is structurally equal to the current one are kept unless it
// is a mutable instance the caller passed in, which is then held by reference.
// The record is stamped once if anything changed structurally.
func (r *Record) SetValue(v any) error {
	if r.readOnly {
		r.st.lc.ignoreWrite("SetValue", r.typ)
		return nil
	}
	lc := r.st.lc
	data, err := r.input(v)
	if err != nil {
		return lc.fatal(err.(Issues))
	}
	staged := make(map[string]any, len(data))
	var iss Issues
	for _, f := range r.typ.def.fields {
		raw, ok := data[f.name]
		if !ok {
			continue
		}
		w, err := f.typ.Wrap(raw, lc)
		if err != nil {
			iss = append(iss, prefixIssues(RootPath().Field(f.name).Pointer(), err)...)
			continue
		}
		staged[f.name] = w
	}
	if len(iss) > 0 {
		return lc.fatal(iss)
	}
	m := newMutation(lc)
	for _, f := range r.typ.def.fields {
		w, ok := staged[f.name]
		if !ok {
			continue
		}
		if structEqual(r.st.values[f.name], w) {
			if adopted(data[f.name], w) {
				r.st.values[f.name] = w
			}
			continue
		}
		r.st.values[f.name] = w
		r.st.touch(m)
	}
	return nil
}

// SetValueDeep is SetValue that merges into existing nested instances
// instead of replacing them.
func (r *Record) SetValueDeep(v any) error {
	if r.readOnly {
		r.st.lc.ignoreWrite("SetValueDeep", r.typ)
		return nil
	}
	_, err := r.setValueDeep(v, newMutation(r.st.lc))
	if err != nil {
		return r.st.lc.fatal(prefixIssues("/", err))
	}
	return nil
}

func (r *Record) setValueDeep(v any, m *mutation) (bool, error) {
	if r.readOnly {
		return false, nil
	}
	lc := r.st.lc
	data, err := r.input(v)
	if err != nil {
		return false, err
	}
	var iss Issues
	for _, f := range r.typ.def.fields {
		if raw, ok := data[f.name]; ok && MatchType(f.typ, raw) == nil {
			iss = append(iss, prefixIssues(RootPath().Field(f.name).Pointer(), invalidType(f.typ, raw))...)
		}
	}
	if len(iss) > 0 {
		return false, iss
	}
	changed := false
	for _, f := range r.typ.def.fields {
		raw, ok := data[f.name]
		if !ok {
			continue
		}
		path := RootPath().Field(f.name).Pointer()
		cur := r.st.values[f.name]
		if identical(cur, raw) {
			continue
		}
		if ci, ok := cur.(Instance); ok && deepCompatible(ci, f.typ, raw) {
			c, err := ci.setValueDeep(raw, m)
			if err != nil {
				iss = append(iss, prefixIssues(path, err)...)
				continue
			}
			changed = changed || c
			continue
		}
		w, err := f.typ.Wrap(raw, lc)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		if structEqual(cur, w) {
			continue
		}
		r.st.values[f.name] = w
		changed = true
	}
	if changed {
		r.st.touch(m)
	}
	if len(iss) > 0 {
		return changed, iss
	}
	return changed, nil
}

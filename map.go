package revmodel

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
	"strconv"

	"github.com/reoring/revmodel/i18n"
	"github.com/reoring/revmodel/internal/plain"
)

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   any
	Value any
}

// MapType describes a keyed container with declared key and value types.
// Either may be a union.
type MapType struct {
	descriptor
	key   Type
	value Type
}

// MapOf declares a map type. Missing sub-types are a definition error,
// reported by DefinitionIssues, by record Build and by New.
func MapOf(key, value Type) *MapType {
	return &MapType{
		descriptor: descriptor{name: "Map<" + typeName(key) + "," + typeName(value) + ">"},
		key:        key,
		value:      value,
	}
}

func (t *MapType) Key() Type   { return t.key }
func (t *MapType) Value() Type { return t.value }

func (t *MapType) Name() string { return t.name }

func (t *MapType) Validate(v any) bool { return t.check(v, t.accepts) }

func (t *MapType) accepts(v any) bool {
	if x, ok := v.(*Map); ok {
		return SameType(x.typ, t)
	}
	if t.key == nil || t.value == nil {
		return false
	}
	pairs, ok := t.pairsOf(v)
	if !ok {
		return false
	}
	for _, p := range pairs {
		if MatchType(t.key, p.Key) == nil || MatchType(t.value, p.Value) == nil {
			return false
		}
	}
	return true
}

// pairsOf reads the plain input shapes a map can be built from: pair lists,
// iter.Seq2 iterators, Go maps, and string-keyed objects when the key type
// accepts strings. Go map keys are sorted so the entry order is stable.
func (t *MapType) pairsOf(v any) ([]Pair, bool) {
	switch x := v.(type) {
	case []Pair:
		return append([]Pair(nil), x...), true
	case [][2]any:
		out := make([]Pair, len(x))
		for i, p := range x {
			out[i] = Pair{Key: p[0], Value: p[1]}
		}
		return out, true
	case []any:
		out := make([]Pair, 0, len(x))
		for _, e := range x {
			p, ok := pairOf(e)
			if !ok {
				return nil, false
			}
			out = append(out, p)
		}
		return out, true
	case iter.Seq2[any, any]:
		var out []Pair
		for k, vv := range x {
			out = append(out, Pair{Key: k, Value: vv})
		}
		return out, true
	case map[string]any:
		if !acceptsStrings(t.key) {
			return nil, false
		}
		out := make([]Pair, 0, len(x))
		for _, k := range plain.SortedKeys(x) {
			out = append(out, Pair{Key: k, Value: x[k]})
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, false
	}
	if rv.Type().Key().Kind() == reflect.String && !acceptsStrings(t.key) {
		return nil, false
	}
	out := make([]Pair, 0, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out = append(out, Pair{Key: it.Key().Interface(), Value: it.Value().Interface()})
	}
	sort.SliceStable(out, func(i, j int) bool { return lessKey(out[i].Key, out[j].Key) })
	return out, true
}

func pairOf(e any) (Pair, bool) {
	switch p := e.(type) {
	case Pair:
		return p, true
	case [2]any:
		return Pair{Key: p[0], Value: p[1]}, true
	case []any:
		if len(p) == 2 {
			return Pair{Key: p[0], Value: p[1]}, true
		}
	}
	return Pair{}, false
}

func lessKey(a, b any) bool {
	fa, aok := plain.ToFloat(a)
	fb, bok := plain.ToFloat(b)
	if aok && bok {
		return fa < fb
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// Defaults returns the override default, or an empty pair list.
func (t *MapType) Defaults() any {
	return t.defaultOr(func() any { return []any{} })
}

func (t *MapType) Wrap(v any, lc *Lifecycle) (any, error) {
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

func (t *MapType) construct(v any, lc *Lifecycle) (any, error) {
	if iss := t.subTypeIssues(); len(iss) > 0 {
		return nil, iss
	}
	if v == nil {
		return t.nilValue(t)
	}
	if t.validator != nil && !t.validator(v) {
		return nil, invalidType(t, v)
	}
	pairs, err := t.input(v)
	if err != nil {
		return nil, err
	}
	entries, err := t.wrapPairs(pairs, nil, lc)
	if err != nil {
		return nil, err
	}
	st := &mapState{node: node{lc: lc}}
	st.install(entries)
	return &Map{typ: t, st: st}, nil
}

// input turns SetValue/construction input into pairs. A compatible mutable
// map contributes its entries by reference; a facade contributes a copy.
func (t *MapType) input(v any) ([]Pair, error) {
	if x, ok := v.(*Map); ok {
		if !SameType(x.typ, t) {
			return nil, incompatible(t, x)
		}
		if x.readOnly {
			v = x.ToJSON(true)
		} else {
			out := make([]Pair, len(x.st.entries))
			for i, e := range x.st.entries {
				out[i] = Pair{Key: e.key, Value: e.value}
			}
			return out, nil
		}
	}
	pairs, ok := t.pairsOf(v)
	if !ok {
		return nil, unsupported(t, v)
	}
	return pairs, nil
}

// wrapPairs wraps every pair. Keys already present in prev are reused so that
// an equal key keeps its instance. Duplicate keys keep the first position and
// the last value.
func (t *MapType) wrapPairs(pairs []Pair, prev *mapState, lc *Lifecycle) ([]entry, error) {
	out := make([]entry, 0, len(pairs))
	index := make(map[any]int, len(pairs))
	var iss Issues
	for i, p := range pairs {
		path := pairPath(p.Key, i)
		k, err := t.wrapKey(p.Key, prev, lc)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		val, err := t.wrapValue(p.Value, lc)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		kk, _ := keyOf(k)
		if j, dup := index[kk]; dup {
			out[j].value = val
			continue
		}
		index[kk] = len(out)
		out = append(out, entry{key: k, value: val})
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (t *MapType) wrapKey(key any, prev *mapState, lc *Lifecycle) (any, error) {
	if prev != nil {
		if i, ok := prev.lookup(key); ok {
			return prev.entries[i].key, nil
		}
	}
	k, err := t.key.Wrap(key, lc)
	if err != nil {
		return nil, Issues{{
			Path:    "/",
			Code:    CodeIllegalKey,
			Message: i18n.T(CodeIllegalKey, map[string]string{"expected": typeName(t.key)}),
			Hint:    fmt.Sprintf("illegal key %v of type %s for %s", key, typeNameOf(key), t.Name()),
			Cause:   err,
		}}
	}
	if _, ok := keyOf(k); !ok {
		return nil, unsupported(t.key, key)
	}
	return k, nil
}

func (t *MapType) wrapValue(v any, lc *Lifecycle) (any, error) {
	w, err := t.value.Wrap(v, lc)
	if err != nil {
		return nil, Issues{{
			Path:    "/",
			Code:    CodeIllegalValue,
			Message: i18n.T(CodeIllegalValue, map[string]string{"expected": typeName(t.value)}),
			Hint:    fmt.Sprintf("illegal value %v of type %s for %s", v, typeNameOf(v), t.Name()),
			Cause:   err,
		}}
	}
	return w, nil
}

func pairPath(key any, i int) string {
	if s, ok := key.(string); ok {
		return RootPath().Field(s).Pointer()
	}
	return RootPath().Index(i).Pointer()
}

func (t *MapType) subTypeIssues() Issues {
	var hint string
	switch {
	case t.key == nil && t.value == nil:
		hint = "untyped maps are not supported; declare them as MapOf(key, value)"
	case t.key == nil:
		hint = "missing key type; declare the map as MapOf(key, " + typeName(t.value) + ")"
	case t.value == nil:
		hint = "missing value type; declare the map as MapOf(" + typeName(t.key) + ", value)"
	default:
		return nil
	}
	return Issues{{Path: "/", Code: CodeMissingSubTypes, Message: i18n.T(CodeMissingSubTypes, nil), Hint: hint}}
}

func (t *MapType) DefinitionIssues() Issues {
	if iss := t.subTypeIssues(); len(iss) > 0 {
		return iss
	}
	var iss Issues
	iss = append(iss, prefixIssues("/key", t.key.DefinitionIssues())...)
	iss = append(iss, prefixIssues("/value", t.value.DefinitionIssues())...)
	return append(iss, t.defaultIssues(t)...)
}

func (t *MapType) Options() Options {
	return Options{Nullable: t.nullable, SubTypes: SubTypes{Key: t.key, Value: t.value}}
}

func (t *MapType) WithDefault(v any) Type {
	c := *t
	c.descriptor = c.withDefault(v)
	return &c
}

func (t *MapType) Nullable() Type {
	c := *t
	c.descriptor = c.asNullable()
	return &c
}

func (t *MapType) WithValidator(fn func(any) bool) Type {
	c := *t
	c.descriptor = c.withValidator(fn)
	return &c
}

// New constructs a map under the default lifecycle. A nil v yields an empty
// map (or the override default). A *Map input yields a new map sharing the
// source's entries.
func (t *MapType) New(v any) (*Map, error) { return t.NewIn(nil, v) }

// NewIn constructs a map under lc.
func (t *MapType) NewIn(lc *Lifecycle, v any) (*Map, error) {
	out, err := NewIn(lc, t, v)
	if err != nil {
		return nil, err
	}
	m, _ := out.(*Map)
	return m, nil
}

// MustNewIn is NewIn that panics on error.
func (t *MapType) MustNewIn(lc *Lifecycle, v any) *Map {
	x, err := t.NewIn(lc, v)
	if err != nil {
		panic(err)
	}
	return x
}

// MustNew is New that panics on error.
func (t *MapType) MustNew(v any) *Map {
	m, err := t.New(v)
	if err != nil {
		panic(err)
	}
	return m
}

type entry struct {
	key   any
	value any
}

type mapState struct {
	node
	entries []entry
	index   map[any]int
	facade  *Map
}

func (s *mapState) install(entries []entry) {
	s.entries = entries
	s.index = make(map[any]int, len(entries))
	for i, e := range entries {
		k, _ := keyOf(e.key)
		s.index[k] = i
	}
}

// adopt swaps in the mutable instances the caller passed in pairs where next
// holds them at the same position. next must equal the current entries
// structurally, so nothing is stamped.
func (s *mapState) adopt(next []entry, pairs []Pair) {
	given := make(map[any]bool)
	for _, p := range pairs {
		for _, v := range [2]any{p.Key, p.Value} {
			if inst, ok := v.(Instance); ok && !inst.IsReadOnly() {
				given[inst.identity()] = true
			}
		}
	}
	isGiven := func(v any) bool {
		inst, ok := v.(Instance)
		return ok && given[inst.identity()]
	}
	kept := append([]entry(nil), s.entries...)
	for i, e := range next {
		if isGiven(e.key) {
			kept[i].key = e.key
		}
		if isGiven(e.value) {
			kept[i].value = e.value
		}
	}
	s.install(kept)
}

func (s *mapState) lookup(key any) (int, bool) {
	k, ok := keyOf(key)
	if !ok {
		return 0, false
	}
	i, ok := s.index[k]
	return i, ok
}

// Map is a managed keyed container. Entries keep insertion order; keys are
// unique by primitive equality or instance identity.
type Map struct {
	typ      *MapType
	st       *mapState
	readOnly bool
}

func (m *Map) Type() Type                  { return m.typ }
func (m *Map) Lifecycle() *Lifecycle       { return m.st.lc }
func (m *Map) Revision() Revision          { return m.st.stamp }
func (m *Map) IsDirty(since Revision) bool { return m.st.isDirty(since) }
func (m *Map) IsReadOnly() bool            { return m.readOnly }
func (m *Map) identity() any               { return m.st }

func (m *Map) AsReadOnly() Instance {
	if m.readOnly {
		return m
	}
	if m.st.facade == nil {
		m.st.facade = &Map{typ: m.typ, st: m.st, readOnly: true}
	}
	return m.st.facade
}

// Size is the number of entries.
func (m *Map) Size() int { return len(m.st.entries) }

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	_, ok := m.st.lookup(key)
	return ok
}

// Get returns the value stored for key, or nil. Through a facade, instance
// values come back as their own facades.
func (m *Map) Get(key any) any {
	i, ok := m.st.lookup(key)
	if !ok {
		return nil
	}
	return exposeValue(m.st.entries[i].value, m.readOnly)
}

// Set stores value under key and returns the map for chaining. Key and value
// must fit the declared types; a mismatch is returned as an error and the map
// is unchanged. On a facade Set is a no-op that returns (nil, nil).
func (m *Map) Set(key, value any) (*Map, error) {
	if m.readOnly {
		m.st.lc.ignoreWrite("Set", m.typ)
		return nil, nil
	}
	lc := m.st.lc
	k, err := m.typ.wrapKey(key, m.st, lc)
	if err != nil {
		return nil, lc.fatal(err.(Issues))
	}
	w, err := m.typ.wrapValue(value, lc)
	if err != nil {
		return nil, lc.fatal(err.(Issues))
	}
	mut := newMutation(lc)
	if i, ok := m.st.lookup(k); ok {
		if identical(m.st.entries[i].value, w) {
			return m, nil
		}
		m.st.entries[i] = entry{key: k, value: w}
	} else {
		kk, _ := keyOf(k)
		m.st.index[kk] = len(m.st.entries)
		m.st.entries = append(m.st.entries, entry{key: k, value: w})
	}
	m.st.touch(mut)
	return m, nil
}

// Delete removes key. It returns false when the key is absent or the map is
// a facade.
func (m *Map) Delete(key any) bool {
	if m.readOnly {
		m.st.lc.ignoreWrite("Delete", m.typ)
		return false
	}
	i, ok := m.st.lookup(key)
	if !ok {
		return false
	}
	next := make([]entry, 0, len(m.st.entries)-1)
	next = append(next, m.st.entries[:i]...)
	next = append(next, m.st.entries[i+1:]...)
	m.st.install(next)
	m.st.touch(newMutation(m.st.lc))
	return true
}

// Clear removes every entry. Clearing an empty map commits nothing.
func (m *Map) Clear() {
	if m.readOnly {
		m.st.lc.ignoreWrite("Clear", m.typ)
		return
	}
	if len(m.st.entries) == 0 {
		return
	}
	m.st.install(nil)
	m.st.touch(newMutation(m.st.lc))
}

// Keys returns the keys in entry order.
func (m *Map) Keys() []any {
	out := make([]any, len(m.st.entries))
	for i, e := range m.st.entries {
		out[i] = exposeValue(e.key, m.readOnly)
	}
	return out
}

// Values returns the values in entry order.
func (m *Map) Values() []any {
	out := make([]any, len(m.st.entries))
	for i, e := range m.st.entries {
		out[i] = exposeValue(e.value, m.readOnly)
	}
	return out
}

// Entries returns the entries in order.
func (m *Map) Entries() []Pair {
	out := make([]Pair, len(m.st.entries))
	for i, e := range m.st.entries {
		out[i] = Pair{Key: exposeValue(e.key, m.readOnly), Value: exposeValue(e.value, m.readOnly)}
	}
	return out
}

// All iterates over the entries in order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, p := range m.Entries() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// ForEach calls fn once per entry in order, passing the receiver as the
// third argument.
func (m *Map) ForEach(fn func(value, key any, m *Map)) {
	for _, p := range m.Entries() {
		fn(p.Value, p.Key, m)
	}
}

// ToJSON returns a string-keyed object when every key is a string, and an
// array of [key, value] pairs otherwise. An empty map is {} when the key type
// accepts strings and [] when it does not.
func (m *Map) ToJSON(recursive bool) any {
	if len(m.st.entries) == 0 {
		if acceptsStrings(m.typ.key) {
			return map[string]any{}
		}
		return []any{}
	}
	allStrings := true
	for _, e := range m.st.entries {
		if _, ok := e.key.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, len(m.st.entries))
		for _, e := range m.st.entries {
			out[e.key.(string)] = jsonValue(e.value, recursive, m.readOnly)
		}
		return out
	}
	out := make([]any, len(m.st.entries))
	for i, e := range m.st.entries {
		out[i] = []any{jsonValue(e.key, recursive, m.readOnly), jsonValue(e.value, recursive, m.readOnly)}
	}
	return out
}

func (m *Map) MarshalJSON() ([]byte, error) { return marshalInstance(m) }

// pairsJSON renders entries as an ordered pair list for comparisons.
func pairsJSON(entries []entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = []any{jsonValue(e.key, true, false), jsonValue(e.value, true, false)}
	}
	return out
}

func sameEntries(a, b []entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !identical(a[i].key, b[i].key) || !identical(a[i].value, b[i].value) {
			return false
		}
	}
	return true
}

// SetValue replaces every entry with freshly wrapped pairs. The map is
// stamped only if the new entries differ structurally from the current ones;
// otherwise the current entries are kept, except that mutable instances passed
// in by the caller replace their equal counterparts.
func (m *Map) SetValue(v any) error {
	if m.readOnly {
		m.st.lc.ignoreWrite("SetValue", m.typ)
		return nil
	}
	lc := m.st.lc
	pairs, err := m.typ.input(v)
	if err != nil {
		return lc.fatal(err.(Issues))
	}
	entries, err := m.typ.wrapPairs(pairs, m.st, lc)
	if err != nil {
		return lc.fatal(err.(Issues))
	}
	if sameEntries(m.st.entries, entries) {
		return nil
	}
	if plain.Equal(pairsJSON(m.st.entries), pairsJSON(entries)) {
		m.st.adopt(entries, pairs)
		return nil
	}
	m.st.install(entries)
	m.st.touch(newMutation(lc))
	return nil
}

// SetValueDeep replaces the entries, reusing instances: the value of a key
// that is already present is merged in place when the new data fits it, and
// only new keys allocate new values. The map is stamped if an entry was
// added, removed, reordered, replaced or changed in place.
func (m *Map) SetValueDeep(v any) error {
	if m.readOnly {
		m.st.lc.ignoreWrite("SetValueDeep", m.typ)
		return nil
	}
	_, err := m.setValueDeep(v, newMutation(m.st.lc))
	if err != nil {
		return m.st.lc.fatal(prefixIssues("/", err))
	}
	return nil
}

func (m *Map) setValueDeep(v any, mut *mutation) (bool, error) {
	if m.readOnly {
		return false, nil
	}
	lc := m.st.lc
	t := m.typ
	pairs, err := t.input(v)
	if err != nil {
		return false, err
	}
	var iss Issues
	for i, p := range pairs {
		path := pairPath(p.Key, i)
		if _, ok := m.st.lookup(p.Key); !ok && MatchType(t.key, p.Key) == nil {
			iss = append(iss, prefixIssues(path, Issues{{Path: "/", Code: CodeIllegalKey,
				Message: i18n.T(CodeIllegalKey, map[string]string{"expected": typeName(t.key)}),
				Hint:    "illegal key of type " + typeNameOf(p.Key) + " for " + t.Name()}})...)
		}
		if MatchType(t.value, p.Value) == nil {
			iss = append(iss, prefixIssues(path, Issues{{Path: "/", Code: CodeIllegalValue,
				Message: i18n.T(CodeIllegalValue, map[string]string{"expected": typeName(t.value)}),
				Hint:    "illegal value of type " + typeNameOf(p.Value) + " for " + t.Name()}})...)
		}
	}
	if len(iss) > 0 {
		return false, iss
	}

	changed := false
	next := make([]entry, 0, len(pairs))
	nextIndex := make(map[any]int, len(pairs))
	for i, p := range pairs {
		path := pairPath(p.Key, i)
		k, err := t.wrapKey(p.Key, m.st, lc)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		val, c, err := m.mergeValue(k, p.Value, mut)
		if err != nil {
			iss = append(iss, prefixIssues(path, err)...)
			continue
		}
		changed = changed || c
		kk, _ := keyOf(k)
		if j, dup := nextIndex[kk]; dup {
			next[j].value = val
			continue
		}
		nextIndex[kk] = len(next)
		next = append(next, entry{key: k, value: val})
	}
	if len(iss) > 0 {
		return changed, iss
	}
	if !changed {
		changed = len(next) != len(m.st.entries)
		for i := 0; !changed && i < len(next); i++ {
			changed = !identical(next[i].key, m.st.entries[i].key)
		}
	}
	if changed {
		m.st.install(next)
		m.st.touch(mut)
	}
	return changed, nil
}

// mergeValue computes the value stored for key k after a deep set with raw.
func (m *Map) mergeValue(k, raw any, mut *mutation) (any, bool, error) {
	lc := m.st.lc
	i, had := m.st.lookup(k)
	if !had {
		w, err := m.typ.wrapValue(raw, lc)
		return w, err == nil, err
	}
	cur := m.st.entries[i].value
	if identical(cur, raw) {
		return cur, false, nil
	}
	if ci, ok := cur.(Instance); ok && deepCompatible(ci, m.typ.value, raw) {
		c, err := ci.setValueDeep(raw, mut)
		return cur, c, err
	}
	w, err := m.typ.wrapValue(raw, lc)
	if err != nil {
		return nil, false, err
	}
	if structEqual(cur, w) {
		return cur, false, nil
	}
	return w, true, nil
}

// String renders the map for debugging.
func (m *Map) String() string {
	return m.typ.Name() + "(" + strconv.Itoa(m.Size()) + ")"
}

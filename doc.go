// Package revmodel provides schema-declared managed values with revision
// tracking:
//
//   - Types: primitives (String, Number, Boolean), records, maps, lists and
//     first-match unions, specialized with WithDefault, Nullable and WithValidator
//   - Validated construction through New/Wrap with a stable error model via
//     Issues (JSON Pointer, code, message)
//   - A monotonic revision clock; every committed mutation stamps the mutated
//     instance once, and IsDirty(r) compares against that stamp
//   - A read-only facade per mutable instance that mirrors it and ignores writes
//
// Design policy:
//   - Keep only public APIs in the root package; put helpers under internal/.
//   - Place codecs under codec/ and message catalogs under i18n/.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := revmodel.RecordOf("User").
//		Field("name", revmodel.String.WithDefault("leon")).
//		Field("age", revmodel.Number).
//		MustBuild()
//	users := revmodel.MapOf(revmodel.String, user)
//
//	m, err := users.New(map[string]any{"tom": map[string]any{"age": 3}})
//	rev := revmodel.DefaultClock().Read()
//	_, err = m.Set("ann", map[string]any{"name": "ann"})
//	m.IsDirty(rev) // true
//
//	ro := m.AsReadOnly().(*revmodel.Map)
//	ro.Set("bob", nil) // nil, nil: facades ignore writes
package revmodel

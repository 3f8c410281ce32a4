package revmodel

import "github.com/reoring/revmodel/i18n"

// MatchType returns the declared type that accepts v, or nil. For a union the
// members are tried in declaration order and the first match wins, even when
// a later member would describe v more precisely.
func MatchType(declared Type, v any) Type {
	if declared == nil {
		return nil
	}
	if u, ok := declared.(*UnionType); ok {
		if v == nil && u.nullable {
			return u
		}
		if u.validator != nil {
			if u.Validate(v) {
				return u
			}
			return nil
		}
		return u.match(v)
	}
	if declared.Validate(v) {
		return declared
	}
	return nil
}

// ValidateDefinition checks that declared is usable: no nil members, maps
// with both sub-types, non-empty unions, defaults that fit. It is pure; the
// caller decides how to report the result.
func ValidateDefinition(declared Type) Issues {
	if declared == nil {
		return Issues{{Path: "/", Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil), Hint: "type is nil"}}
	}
	return declared.DefinitionIssues()
}

// acceptsStrings reports whether plain string keys can satisfy t.
func acceptsStrings(t Type) bool {
	switch x := t.(type) {
	case primitiveType:
		return x.kind == kindString
	case *UnionType:
		for _, m := range x.members {
			if acceptsStrings(m) {
				return true
			}
		}
	}
	return false
}

package revmodel

import (
	"strconv"
	"strings"

	"github.com/reoring/revmodel/i18n"
)

// UnionType accepts a value matching any of its members. Matching is
// first-match in declaration order, so more specific members must come
// first.
type UnionType struct {
	descriptor
	members []Type
}

// Union declares an ordered union of types.
func Union(types ...Type) *UnionType {
	members := append([]Type(nil), types...)
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = typeName(m)
	}
	return &UnionType{descriptor: descriptor{name: strings.Join(names, "|")}, members: members}
}

// Members returns the declared members in order.
func (u *UnionType) Members() []Type { return append([]Type(nil), u.members...) }

func (u *UnionType) Name() string { return u.name }

func (u *UnionType) Validate(v any) bool {
	if v == nil && u.nullable {
		return true
	}
	if u.validator != nil {
		return v != nil && u.validator(v)
	}
	return u.match(v) != nil
}

// match returns the first member accepting v, descending into nested unions.
func (u *UnionType) match(v any) Type {
	for _, m := range u.members {
		if m == nil {
			continue
		}
		if t := MatchType(m, v); t != nil {
			return t
		}
	}
	return nil
}

func (u *UnionType) Defaults() any {
	return u.defaultOr(func() any {
		for _, m := range u.members {
			if m != nil {
				return m.Defaults()
			}
		}
		return nil
	})
}

func (u *UnionType) Wrap(v any, lc *Lifecycle) (any, error) {
	if v == nil && u.nullable {
		return nil, nil
	}
	t := u.match(v)
	if t == nil {
		return nil, invalidType(u, v)
	}
	return t.Wrap(v, lc)
}

func (u *UnionType) construct(v any, lc *Lifecycle) (any, error) {
	if v == nil && u.nullable {
		return nil, nil
	}
	t := u.match(v)
	if t == nil {
		return nil, invalidType(u, v)
	}
	return construct(t, v, lc)
}

func (u *UnionType) DefinitionIssues() Issues {
	var iss Issues
	if len(u.members) == 0 {
		iss = AppendIssues(iss, Issue{Path: "/", Code: CodeMissingSubTypes, Message: i18n.T(CodeMissingSubTypes, nil),
			Hint: "a union needs at least one member type"})
	}
	for i, m := range u.members {
		base := "/" + strconv.Itoa(i)
		if m == nil {
			iss = AppendIssues(iss, Issue{Path: base, Code: CodeDefinition, Message: i18n.T(CodeDefinition, nil),
				Hint: "union member is not a type"})
			continue
		}
		iss = append(iss, prefixIssues(base, m.DefinitionIssues())...)
	}
	return append(iss, u.defaultIssues(u)...)
}

func (u *UnionType) Options() Options {
	return Options{Nullable: u.nullable, SubTypes: SubTypes{Elements: u.Members()}}
}

func (u *UnionType) WithDefault(v any) Type {
	c := *u
	c.descriptor = c.withDefault(v)
	return &c
}

func (u *UnionType) Nullable() Type {
	c := *u
	c.descriptor = c.asNullable()
	return &c
}

func (u *UnionType) WithValidator(fn func(any) bool) Type {
	c := *u
	c.descriptor = c.withValidator(fn)
	return &c
}

package revmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/revmodel"
)

func TestMatchType_UnionIsFirstMatch(t *testing.T) {
	positive := revmodel.Number.WithValidator(func(v any) bool {
		f, ok := v.(float64)
		return ok && f > 0
	})
	u := revmodel.Union(revmodel.String, positive, revmodel.Number)

	assert.Equal(t, revmodel.String, revmodel.MatchType(u, "x"))
	got := revmodel.MatchType(u, float64(3))
	require.NotNil(t, got)
	assert.False(t, got.Validate(float64(-3)), "the earlier, narrower member wins")
	assert.Equal(t, revmodel.Number, revmodel.MatchType(u, float64(-1)))
	assert.Nil(t, revmodel.MatchType(u, true))
	assert.Nil(t, revmodel.MatchType(u, nil))
	assert.Nil(t, revmodel.MatchType(nil, "x"))
}

func TestMatchType_NullableUnion(t *testing.T) {
	u := revmodel.Union(revmodel.String, revmodel.Number).Nullable()
	assert.NotNil(t, revmodel.MatchType(u, nil))
	assert.True(t, u.Validate(nil))
}

func TestMatchType_Instances(t *testing.T) {
	user := revmodel.RecordOf("User").Field("name", revmodel.String).MustBuild()
	pet := revmodel.RecordOf("Pet").Field("name", revmodel.String).MustBuild()
	u := revmodel.Union(pet, user)

	r := user.MustNew(nil)
	assert.Same(t, user, revmodel.MatchType(u, r), "instances match their own record type")
	// plain objects fit the first record declared
	assert.Same(t, pet, revmodel.MatchType(u, map[string]any{"name": "x"}))
}

func TestValidateDefinition(t *testing.T) {
	cases := []struct {
		name string
		typ  revmodel.Type
		code string
		path string
	}{
		{"nil type", nil, revmodel.CodeDefinition, "/"},
		{"map without sub-types", revmodel.MapOf(nil, nil), revmodel.CodeMissingSubTypes, "/"},
		{"map without value", revmodel.MapOf(revmodel.String, nil), revmodel.CodeMissingSubTypes, "/"},
		{"nested map", revmodel.MapOf(revmodel.String, revmodel.MapOf(revmodel.String, nil)), revmodel.CodeMissingSubTypes, "/value"},
		{"empty union", revmodel.Union(), revmodel.CodeMissingSubTypes, "/"},
		{"nil union member", revmodel.Union(revmodel.String, nil), revmodel.CodeDefinition, "/1"},
		{"empty list", revmodel.ListOf(), revmodel.CodeMissingSubTypes, "/"},
		{"null default", revmodel.String.WithDefault(nil), revmodel.CodeDefinition, "/"},
		{"bad default", revmodel.Number.WithDefault("x"), revmodel.CodeDefinition, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iss := revmodel.ValidateDefinition(tc.typ)
			require.NotEmpty(t, iss)
			assert.Equal(t, tc.code, iss[0].Code)
			assert.Equal(t, tc.path, iss[0].Path)
		})
	}

	assert.Empty(t, revmodel.ValidateDefinition(revmodel.MapOf(revmodel.Union(revmodel.String, revmodel.Number), revmodel.Boolean)))
	assert.Empty(t, revmodel.ValidateDefinition(revmodel.String.WithDefault(nil).Nullable()))
}

func TestMapOf_MissingSubTypesHints(t *testing.T) {
	_, err := revmodel.MapOf(nil, nil).New(nil)
	iss, ok := revmodel.AsIssues(err)
	require.True(t, ok)
	assert.Contains(t, iss[0].Hint, "untyped maps are not supported")

	_, err = revmodel.MapOf(nil, revmodel.String).New(nil)
	iss, _ = revmodel.AsIssues(err)
	assert.Contains(t, iss[0].Hint, "missing key type")

	_, err = revmodel.MapOf(revmodel.String, nil).New(nil)
	iss, _ = revmodel.AsIssues(err)
	assert.Contains(t, iss[0].Hint, "missing value type")
}

func TestDescriptor_SpecializeDoesNotMutateParent(t *testing.T) {
	named := revmodel.String.WithDefault("leon")
	assert.Equal(t, "leon", named.Defaults())
	assert.Equal(t, "", revmodel.String.Defaults())
	assert.False(t, revmodel.String.Validate(nil))
	assert.True(t, named.Nullable().Validate(nil))
	assert.False(t, named.Validate(nil))
	assert.Equal(t, "leon", named.Nullable().Defaults(), "specializations chain")
}

func TestDescriptor_DefaultsAreCopied(t *testing.T) {
	l := revmodel.ListOf(revmodel.Number).WithDefault([]any{1.0, 2.0})
	a := l.Defaults().([]any)
	a[0] = 99.0
	assert.Equal(t, []any{1.0, 2.0}, l.Defaults())

	calls := 0
	f := revmodel.Number.WithDefault(func() any { calls++; return float64(calls) })
	assert.Equal(t, float64(1), f.Defaults())
	assert.Equal(t, float64(2), f.Defaults())
}

func TestSameType(t *testing.T) {
	user := revmodel.RecordOf("User").Field("name", revmodel.String).MustBuild()
	assert.True(t, revmodel.SameType(user, user.Nullable()))
	assert.True(t, revmodel.SameType(revmodel.MapOf(revmodel.String, user), revmodel.MapOf(revmodel.String, user.WithDefault(map[string]any{}))))
	assert.False(t, revmodel.SameType(revmodel.MapOf(revmodel.String, user), revmodel.MapOf(revmodel.Number, user)))
	assert.False(t, revmodel.SameType(user, revmodel.RecordOf("User").Field("name", revmodel.String).MustBuild()))
	assert.True(t, revmodel.SameType(revmodel.ListOf(revmodel.String, revmodel.Number), revmodel.ListOf(revmodel.String, revmodel.Number)))
}

package revmodel_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/revmodel"
)

func TestList_ElementUnion(t *testing.T) {
	lc := freshLifecycle()
	l := revmodel.ListOf(revmodel.String, revmodel.Number).MustNewIn(lc, []any{"a", 1})
	assert.Equal(t, "List<string|number>", l.Type().Name())
	assert.Equal(t, 2, l.Len())

	rev := lc.Clock().Read()
	require.NoError(t, l.Set(0, true), "lenient: logged and ignored")
	assert.Equal(t, "a", l.At(0))
	assert.False(t, l.IsDirty(rev))

	require.NoError(t, l.Set(0, 5))
	assert.Equal(t, float64(5), l.At(0))
	assert.True(t, l.IsDirty(rev))

	require.NoError(t, l.Set(2, "c"), "setting at Len appends")
	assert.Equal(t, []any{float64(5), float64(1), "c"}, l.ToJSON(true))
	assert.Nil(t, l.At(9))
}

func TestList_Set_OutOfRange(t *testing.T) {
	cfg := revmodel.DefaultConfig()
	cfg.AssignErrors = revmodel.SinkRaise
	lc := revmodel.NewLifecycle(revmodel.WithConfig(cfg))
	l := revmodel.ListOf(revmodel.String).MustNewIn(lc, nil)

	err := l.Set(3, "x")
	iss, ok := revmodel.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, revmodel.CodeOutOfRange, iss[0].Code)
	assert.Equal(t, "/3", iss[0].Path)
}

func TestList_Push_Strict(t *testing.T) {
	lc := freshLifecycle()
	l := revmodel.ListOf(revmodel.Number).MustNewIn(lc, []int{1, 2})

	n, err := l.Push(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rev := lc.Clock().Read()
	n, err = l.Push(5, "x")
	iss, ok := revmodel.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/5", iss[0].Path)
	assert.Equal(t, 4, n)
	assert.False(t, l.IsDirty(rev))

	ro := l.AsReadOnly().(*revmodel.List)
	n, err = ro.Push(9)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestList_NoAliasing(t *testing.T) {
	src := []any{map[string]any{"name": "a"}}
	item := revmodel.RecordOf("Item").Field("name", revmodel.String).MustBuild()
	l := revmodel.ListOf(item).MustNew(src)

	src[0].(map[string]any)["name"] = "z"
	src[0] = nil
	assert.Equal(t, []any{map[string]any{"name": "a"}}, l.ToJSON(true))
}

func TestList_SetValue_And_Deep(t *testing.T) {
	lc := freshLifecycle()
	item := revmodel.RecordOf("Item").Field("name", revmodel.String).MustBuild()
	l := revmodel.ListOf(item).MustNewIn(lc, []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}})
	first := l.At(0)

	rev := lc.Clock().Read()
	require.NoError(t, l.SetValue(l.ToJSON(true)))
	assert.False(t, l.IsDirty(rev))
	assert.Same(t, first, l.At(0))

	require.NoError(t, l.SetValueDeep([]any{map[string]any{"name": "x"}}))
	assert.Same(t, first, l.At(0), "deep set merges into the instance at the same index")
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "x", first.(*revmodel.Record).Get("name"))
	assert.True(t, l.IsDirty(rev))

	rev = lc.Clock().Read()
	require.NoError(t, l.SetValue([]any{map[string]any{"name": "y"}}))
	assert.NotSame(t, first, l.At(0))
	assert.True(t, l.IsDirty(rev))
}

func TestList_ReadOnly(t *testing.T) {
	item := revmodel.RecordOf("Item").Field("name", revmodel.String).MustBuild()
	l := revmodel.ListOf(item).MustNew([]any{map[string]any{"name": "a"}})
	ro := l.AsReadOnly().(*revmodel.List)

	require.NoError(t, ro.Set(0, map[string]any{"name": "b"}))
	require.NoError(t, ro.SetValue([]any{}))
	require.NoError(t, ro.SetValueDeep([]any{}))
	assert.Equal(t, 1, l.Len())

	assert.True(t, ro.At(0).(revmodel.Instance).IsReadOnly())
	for _, v := range ro.All() {
		assert.True(t, v.(revmodel.Instance).IsReadOnly())
	}

	_, err := l.Push(map[string]any{"name": "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, ro.Len(), "facades read live state")
}

func TestListOf_Definition(t *testing.T) {
	_, err := revmodel.ListOf().New(nil)
	iss, ok := revmodel.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, revmodel.CodeMissingSubTypes, iss[0].Code)

	opts := revmodel.ListOf(revmodel.String, revmodel.Number).Options()
	assert.Len(t, opts.SubTypes.Elements, 2)
}

func TestList_SetValue_HoldsEqualCallerInstance(t *testing.T) {
	lc := freshLifecycle()
	item := revmodel.RecordOf("Item").Field("name", revmodel.String).MustBuild()
	l := revmodel.ListOf(item).MustNewIn(lc, []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}})
	second := l.At(1)
	given := item.MustNewIn(lc, map[string]any{"name": "a"})

	rev := lc.Clock().Read()
	require.NoError(t, l.SetValue([]any{given, map[string]any{"name": "b"}}))
	assert.Same(t, given, l.At(0))
	assert.Same(t, second, l.At(1), "plain data equal to an item keeps it")
	assert.False(t, l.IsDirty(rev))
}

func TestList_ReadOnly_WritesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := revmodel.DefaultConfig()
	cfg.LogLevel = slog.LevelDebug
	lc := revmodel.NewLifecycle(
		revmodel.WithConfig(cfg),
		revmodel.WithLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	l := revmodel.ListOf(revmodel.Number).MustNewIn(lc, []any{1})
	ro := l.AsReadOnly().(*revmodel.List)

	n, err := ro.Push(2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, revmodel.CodeReadOnly, lines[0]["code"])
}

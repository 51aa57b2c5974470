package data_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"its-hmny.dev/agerun/pkg/data"
)

func TestPathSegmentation(t *testing.T) {
	path := data.NewVariablePath("memory.user.name")
	require.Equal(t, 3, path.Count())

	segment, ok := path.Segment(0)
	require.True(t, ok)
	require.Equal(t, "memory", segment)
	segment, ok = path.Segment(2)
	require.True(t, ok)
	require.Equal(t, "name", segment)
	_, ok = path.Segment(3)
	require.False(t, ok)

	// Adjacent separators produce empty segments, an empty path has none
	require.Equal(t, 3, data.NewVariablePath("a..b").Count())
	require.Equal(t, 0, data.NewVariablePath("").Count())
	require.Equal(t, 2, data.NewVariablePath("a.").Count())
	require.Equal(t, 2, data.NewVariablePath(".a").Count())
}

func TestPathParent(t *testing.T) {
	parent, ok := data.NewVariablePath("a.b.c").Parent()
	require.True(t, ok)
	require.Equal(t, "a.b", parent.String())

	// A single-segment path has no parent
	_, ok = data.NewVariablePath("alone").Parent()
	require.False(t, ok)

	// Leading and trailing empty segments are preserved by Parent
	parent, ok = data.NewVariablePath(".a.b").Parent()
	require.True(t, ok)
	require.Equal(t, ".a", parent.String())
	parent, ok = data.NewVariablePath("a.b.").Parent()
	require.True(t, ok)
	require.Equal(t, "a.b", parent.String())
}

func TestPathStartsWithIsSegmentWise(t *testing.T) {
	require.True(t, data.NewVariablePath("memory.user").StartsWith("memory"))
	require.True(t, data.NewVariablePath("memory").StartsWith("memory"))

	// Sharing a byte prefix is not enough, whole segments must match
	require.False(t, data.NewVariablePath("memory").StartsWith("mem"))
	require.False(t, data.NewVariablePath("memoryx").StartsWith("memory"))
	require.False(t, data.NewVariablePath("mem").StartsWith("memory"))

	require.True(t, data.NewVariablePath("memory.user.name").IsMemory())
	require.False(t, data.NewVariablePath("messages").IsMessage())
	require.True(t, data.NewVariablePath("context.depth").IsContext())
}

func TestPathJoin(t *testing.T) {
	require.Equal(t, "memory.user", data.NewVariablePath("memory").Join("user").String())
	require.Equal(t, "memory", data.NewVariablePath("memory").Join("").String())
	require.Equal(t, "user", data.NewVariablePath("").Join("user").String())
	require.Equal(t, "/usr/local", data.NewFilePath("/usr").Join("local").String())
}

func TestPathNormalize(t *testing.T) {
	require.Equal(t, "a.b", data.NewVariablePath("a..b").Normalize().String())
	require.Equal(t, "a.b", data.NewVariablePath("a.b.").Normalize().String())

	// The leading empty segment marking absolute file paths survives
	require.Equal(t, "/usr/local", data.NewFilePath("//usr//local").Normalize().String())
	require.Equal(t, "", data.NewVariablePath("").Normalize().String())
}

func TestPathSuffixAfterRoot(t *testing.T) {
	suffix, ok := data.NewVariablePath("memory.user.name").SuffixAfterRoot()
	require.True(t, ok)
	require.Equal(t, "user.name", suffix)

	// No separator, or nothing after it, means no suffix
	_, ok = data.NewVariablePath("memory").SuffixAfterRoot()
	require.False(t, ok)
	_, ok = data.NewVariablePath("memory.").SuffixAfterRoot()
	require.False(t, ok)
}

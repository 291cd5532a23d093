package versions

import (
	"testing"

	semver "github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsNumericVersions(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"3.9", "3.9.2", "0.1", "10.22.333", "4.0.0"} {
		tag, err := Parse(name)
		require.NoError(t, err, name)
		require.Equal(t, name, tag.Name)
		require.NotNil(t, tag.Version)
	}
}

func TestParseRejectsNonNumericTags(t *testing.T) {
	t.Parallel()

	rejected := []string{
		"v3.9.2",
		"3",
		"3.9.2-rc1",
		"3.9.2.1",
		"release-3.9",
		"latest",
		"main",
		"3.9.x",
		"",
	}
	for _, name := range rejected {
		_, err := Parse(name)
		require.Error(t, err, name)
		require.False(t, IsVersionTag(name), name)
	}
}

func TestSortDescendingNumeric(t *testing.T) {
	t.Parallel()

	tags := mustParseAll(t, "3.9.2", "3.10.0", "4.0.0", "3.8.0", "3.9.3")
	Sort(tags)

	// 3.10.0 must sort above 3.9.x: numeric comparison, not lexicographic.
	require.Equal(t, []string{"4.0.0", "3.10.0", "3.9.3", "3.9.2", "3.8.0"}, Names(tags))
}

func TestSortStableOnEqualVersions(t *testing.T) {
	t.Parallel()

	// "3.9" and "3.9.0" compare equal; listing order must survive the sort.
	tags := mustParseAll(t, "3.9", "4.0.0", "3.9.0")
	Sort(tags)
	require.Equal(t, []string{"4.0.0", "3.9", "3.9.0"}, Names(tags))
}

func TestAtLeastTreatsMissingPatchAsZero(t *testing.T) {
	t.Parallel()

	min := semver.MustParse("3.9.0")

	tag, err := Parse("3.9")
	require.NoError(t, err)
	require.True(t, tag.AtLeast(min))

	below, err := Parse("3.8")
	require.NoError(t, err)
	require.False(t, below.AtLeast(min))
}

func mustParseAll(t *testing.T, names ...string) []Tag {
	t.Helper()
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		tag, err := Parse(n)
		require.NoError(t, err)
		tags = append(tags, tag)
	}
	return tags
}

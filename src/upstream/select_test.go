package upstream

import (
	"context"
	"fmt"
	"testing"

	semver "github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"github.com/streamcast/docker-streamcast/src/config"
	"github.com/streamcast/docker-streamcast/src/versions"
)

type fakeProber struct {
	files   map[string]bool // tags carrying the required file
	commits map[string]string
	failOn  string
}

func (f *fakeProber) HasFile(tag, _ string) (bool, error) {
	if tag == f.failOn {
		return false, fmt.Errorf("probe exploded on %s", tag)
	}
	return f.files[tag], nil
}

func (f *fakeProber) CommitFor(tag string) (string, error) {
	c, ok := f.commits[tag]
	if !ok {
		return "", fmt.Errorf("no commit for %s", tag)
	}
	return c, nil
}

func testProber() *fakeProber {
	return &fakeProber{
		files: map[string]bool{
			"3.9.3":  true,
			"3.10.0": true,
			"4.0.0":  true,
		},
		commits: map[string]string{
			"3.9.3":  "aaa3930000000000000000000000000000000000",
			"3.10.0": "aaa3100000000000000000000000000000000000",
			"4.0.0":  "aaa4000000000000000000000000000000000000",
		},
	}
}

func candidateTags(t *testing.T) []versions.Tag {
	t.Helper()
	var tags []versions.Tag
	for _, name := range []string{"3.8.0", "3.9.2", "3.9.3", "3.10.0", "4.0.0"} {
		tag, err := versions.Parse(name)
		require.NoError(t, err)
		tags = append(tags, tag)
	}
	versions.Sort(tags)
	return tags
}

func selectOpts(max int) SelectOptions {
	return SelectOptions{
		Min:          semver.MustParse("3.9.2"),
		RequiredFile: "CMakeLists.txt",
		MaxVersions:  max,
	}
}

func acceptedNames(releases []Release) []string {
	names := make([]string, len(releases))
	for i, r := range releases {
		names[i] = r.Tag.Name
	}
	return names
}

// TestSelectReleases covers the canonical walk: five candidates, the
// required file present on three, minimum 3.9.2, generous cap.
func TestSelectReleases(t *testing.T) {
	t.Parallel()

	accepted, rejected, err := SelectReleases(context.Background(), testProber(), candidateTags(t), selectOpts(10))
	require.NoError(t, err)

	require.Equal(t, []string{"4.0.0", "3.10.0", "3.9.3"}, acceptedNames(accepted))
	require.Equal(t, "aaa4000000000000000000000000000000000000", accepted[0].Commit)

	// 3.9.2 misses the file, 3.8.0 sits below the minimum.
	reasons := map[string]string{}
	for _, r := range rejected {
		reasons[r.Tag.Name] = r.Reason
	}
	require.Contains(t, reasons["3.9.2"], "missing CMakeLists.txt")
	require.Contains(t, reasons["3.8.0"], "below minimum")
}

func TestSelectReleasesCapsAtMax(t *testing.T) {
	t.Parallel()

	accepted, rejected, err := SelectReleases(context.Background(), testProber(), candidateTags(t), selectOpts(2))
	require.NoError(t, err)
	require.Equal(t, []string{"4.0.0", "3.10.0"}, acceptedNames(accepted))

	var overMax bool
	for _, r := range rejected {
		if r.Tag.Name == "3.9.3" {
			require.Contains(t, r.Reason, "max_versions")
			overMax = true
		}
	}
	require.True(t, overMax)
}

func TestSelectReleasesHonorsSkipPatterns(t *testing.T) {
	t.Parallel()

	skip, err := config.CompileSkips([]string{`^3\.10\.0$`})
	require.NoError(t, err)

	opts := selectOpts(10)
	opts.Skip = skip

	accepted, rejected, err := SelectReleases(context.Background(), testProber(), candidateTags(t), opts)
	require.NoError(t, err)
	require.Equal(t, []string{"4.0.0", "3.9.3"}, acceptedNames(accepted))

	var skipped bool
	for _, r := range rejected {
		if r.Tag.Name == "3.10.0" {
			require.Equal(t, "skip-listed", r.Reason)
			skipped = true
		}
	}
	require.True(t, skipped)
}

// TestSelectReleasesEmptyResult pins the failure contract: explicit error
// message, nothing accepted.
func TestSelectReleasesEmptyResult(t *testing.T) {
	t.Parallel()

	p := testProber()
	p.files = nil // no tag carries the file anymore

	accepted, _, err := SelectReleases(context.Background(), p, candidateTags(t), selectOpts(10))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no tags >= 3.9.2 with CMakeLists.txt found")
	require.Empty(t, accepted)
}

func TestSelectReleasesPropagatesProbeError(t *testing.T) {
	t.Parallel()

	p := testProber()
	p.failOn = "3.10.0"

	_, _, err := SelectReleases(context.Background(), p, candidateTags(t), selectOpts(10))
	require.Error(t, err)
	require.Contains(t, err.Error(), "probe exploded")
}

func TestSelectReleasesStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := SelectReleases(ctx, testProber(), candidateTags(t), selectOpts(10))
	require.ErrorIs(t, err, context.Canceled)
}

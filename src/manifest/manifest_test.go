package manifest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	h := Header{
		Maintainers: []string{
			"Avery Whitmore <avery@streamcast.dev> (@awhitmore)",
			"Dana Kovac <dana@streamcast.dev> (@dkovac)",
		},
		GitRepo:   "https://github.com/streamcast/docker-streamcast.git",
		GitFetch:  FetchRef("master"),
		GitCommit: "0123456789abcdef0123456789abcdef01234567",
		Builder:   "buildkit",
	}
	entries := Entries(
		[]string{"4.0.0", "3.10.0", "3.9.3"},
		[]string{"amd64", "arm32v7", "arm64v8"},
		"Dockerfile",
	)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, h, entries))

	expected := `# This file is generated via "docker-streamcast generate"; do not edit by hand.

Maintainers: Avery Whitmore <avery@streamcast.dev> (@awhitmore), Dana Kovac <dana@streamcast.dev> (@dkovac)
GitRepo: https://github.com/streamcast/docker-streamcast.git
GitFetch: refs/heads/master
GitCommit: 0123456789abcdef0123456789abcdef01234567
Builder: buildkit

Tags: latest, 4.0.0
Architectures: amd64, arm32v7, arm64v8
Directory: 4.0.0
File: Dockerfile

Tags: 3.10.0
Architectures: amd64, arm32v7, arm64v8
Directory: 3.10.0
File: Dockerfile

Tags: 3.9.3
Architectures: amd64, arm32v7, arm64v8
Directory: 3.9.3
File: Dockerfile
`
	require.Equal(t, expected, buf.String())
}

// TestEntriesSingleLatest pins the alias rule: exactly one version gets
// "latest", and it is the first of the descending set.
func TestEntriesSingleLatest(t *testing.T) {
	t.Parallel()

	entries := Entries([]string{"4.0.0", "3.10.0", "3.9.3"}, []string{"amd64"}, "Dockerfile")

	var carriers int
	for _, e := range entries {
		for _, tag := range e.Tags {
			if tag == "latest" {
				carriers++
			}
		}
	}
	require.Equal(t, 1, carriers)
	require.Equal(t, []string{"latest", "4.0.0"}, entries[0].Tags)
	require.Equal(t, []string{"3.10.0"}, entries[1].Tags)
	require.Equal(t, []string{"3.9.3"}, entries[2].Tags)
}

func TestEntriesEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, Entries(nil, []string{"amd64"}, "Dockerfile"))
}

func TestFetchRef(t *testing.T) {
	t.Parallel()

	require.Equal(t, "refs/heads/master", FetchRef("master"))
	require.Equal(t, "refs/heads/main", FetchRef("main"))
}

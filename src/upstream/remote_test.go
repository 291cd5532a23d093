package upstream

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/streamcast/docker-streamcast/src/versions"
)

const dummyHash = "0123456789abcdef0123456789abcdef01234567"

func hashRef(name string) *plumbing.Reference {
	return plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(dummyHash))
}

func TestVersionTagsFromRefs(t *testing.T) {
	t.Parallel()

	refs := []*plumbing.Reference{
		hashRef("refs/heads/main"),
		hashRef("refs/tags/3.9.2"),
		hashRef("refs/tags/4.0.0"),
		hashRef("refs/tags/4.0.0^{}"),
		hashRef("refs/tags/v5.0.0"),
		hashRef("refs/tags/3.10.0"),
		hashRef("refs/tags/rc-1"),
		hashRef("refs/tags/3.9.2-beta.1"),
	}

	tags := versionTagsFromRefs(refs)

	// Branch heads, prefixed/pre-release tags, and the peeled duplicate of
	// 4.0.0 must all be gone; survivors sort descending.
	require.Equal(t, []string{"4.0.0", "3.10.0", "3.9.2"}, versions.Names(tags))
}

func TestVersionTagsFromRefsEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, versionTagsFromRefs(nil))
	require.Empty(t, versionTagsFromRefs([]*plumbing.Reference{hashRef("refs/heads/develop")}))
}

func TestVersionTagsFromRefsKeepsAdvertisementOrderOnTies(t *testing.T) {
	t.Parallel()

	refs := []*plumbing.Reference{
		hashRef("refs/tags/3.9"),
		hashRef("refs/tags/3.9.0"),
	}
	tags := versionTagsFromRefs(refs)
	require.Equal(t, []string{"3.9", "3.9.0"}, versions.Names(tags))
}

// Package upstream talks to the source project's git repositories: it lists
// release tags over the wire, resolves branch heads, and probes tagged trees
// through a local no-checkout clone.
package upstream

import (
	"context"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/streamcast/docker-streamcast/src/logger"
	"github.com/streamcast/docker-streamcast/src/versions"
)

// peeledSuffix marks the pre-peeled duplicate an annotated tag gets in the
// remote advertisement ("refs/tags/4.0.0^{}").
const peeledSuffix = "^{}"

// ListVersionTags lists the remote's tags and returns the numeric version
// tags, sorted descending. Non-numeric tags are dropped, peeled duplicates
// collapsed.
func ListVersionTags(ctx context.Context, url string) ([]versions.Tag, error) {
	refs, err := listRemote(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("listing tags on %s: %w", url, err)
	}

	tags := versionTagsFromRefs(refs)
	logger.Debugf(ctx, "remote %s advertised %d refs, %d version tags", url, len(refs), len(tags))
	return tags, nil
}

// ResolveBranchHead returns the commit hash the named branch points to on
// the remote.
func ResolveBranchHead(ctx context.Context, url, branch string) (string, error) {
	refs, err := listRemote(ctx, url)
	if err != nil {
		return "", fmt.Errorf("listing refs on %s: %w", url, err)
	}

	target := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == target {
			return ref.Hash().String(), nil
		}
	}
	return "", fmt.Errorf("branch %q not found on %s", branch, url)
}

// listRemote performs an ls-remote style listing without cloning.
func listRemote(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	rem := git.NewRemote(memory.NewStorage(), &gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	return rem.ListContext(ctx, &git.ListOptions{})
}

// versionTagsFromRefs filters advertised refs down to sorted numeric version
// tags. Advertisement order is preserved between equal-compare versions.
func versionTagsFromRefs(refs []*plumbing.Reference) []versions.Tag {
	seen := make(map[string]bool)
	var tags []versions.Tag

	for _, ref := range refs {
		name := ref.Name()
		if !name.IsTag() {
			continue
		}

		short := strings.TrimSuffix(name.Short(), peeledSuffix)
		if seen[short] {
			continue
		}
		seen[short] = true

		tag, err := versions.Parse(short)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	versions.Sort(tags)
	return tags
}

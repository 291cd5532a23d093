package upstream

import (
	"context"
	"errors"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/streamcast/docker-streamcast/src/logger"
)

// Clone is a no-checkout clone of the upstream repository in a temporary
// directory. History and tags are fetched, the working tree is never
// materialized, so per-tag file probes stay cheap.
//
// Callers must Close the clone; the temporary directory is removed there.
type Clone struct {
	repo *git.Repository
	dir  string
}

// OpenClone clones the repository into a fresh temp directory.
func OpenClone(ctx context.Context, url string) (*Clone, error) {
	dir, err := os.MkdirTemp("", "docker-streamcast-*")
	if err != nil {
		return nil, fmt.Errorf("creating probe dir: %w", err)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:        url,
		NoCheckout: true,
		Tags:       git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("cloning %s: %w", url, err)
	}

	logger.Debugf(ctx, "probe clone of %s at %s", url, dir)
	return &Clone{repo: repo, dir: dir}, nil
}

// Close removes the clone's temporary directory.
func (c *Clone) Close() error {
	if c.dir == "" {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Dir returns the clone's directory on disk.
func (c *Clone) Dir() string {
	return c.dir
}

// HasFile reports whether path exists in the tree the tag points to.
func (c *Clone) HasFile(tag, path string) (bool, error) {
	commit, err := c.commitFor(tag)
	if err != nil {
		return false, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return false, fmt.Errorf("reading tree of tag %q: %w", tag, err)
	}

	if _, err := tree.File(path); err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("probing %s at tag %q: %w", path, tag, err)
	}
	return true, nil
}

// CommitFor resolves a tag name to the commit hash it points to,
// peeling annotated tags.
func (c *Clone) CommitFor(tag string) (string, error) {
	commit, err := c.commitFor(tag)
	if err != nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

// commitFor resolves a tag reference to its commit object.
func (c *Clone) commitFor(tag string) (*object.Commit, error) {
	ref, err := c.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if err != nil {
		return nil, fmt.Errorf("resolving tag %q: %w", tag, err)
	}

	hash := ref.Hash()
	// Annotated tags (possibly nested) peel down to the commit.
	for {
		tagObj, err := c.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("peeling tag %q: %w", tag, err)
		}
		hash = tagObj.Target
	}

	commit, err := c.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit of tag %q: %w", tag, err)
	}
	return commit, nil
}

package upstream

import (
	"context"
	"fmt"

	semver "github.com/Masterminds/semver/v3"

	"github.com/streamcast/docker-streamcast/src/config"
	"github.com/streamcast/docker-streamcast/src/logger"
	"github.com/streamcast/docker-streamcast/src/versions"
)

// Prober answers per-tag questions from a local clone.
type Prober interface {
	HasFile(tag, path string) (bool, error)
	CommitFor(tag string) (string, error)
}

// Release is an accepted upstream release: the version tag plus the commit
// it resolves to. The commit never reaches generated output; it exists for
// traceability in logs and the tags listing.
type Release struct {
	Tag    versions.Tag
	Commit string
}

// Rejection records why a candidate did not make the cut.
type Rejection struct {
	Tag    versions.Tag
	Reason string
}

// SelectOptions hold the acceptance rules for release selection.
type SelectOptions struct {
	Min          *semver.Version
	RequiredFile string
	MaxVersions  int
	Skip         *config.SkipPatterns
}

// SelectReleases walks the descending candidate list and keeps every tag
// that is at least the minimum version, not skip-listed, and carries the
// required file in its tree. Acceptance stops at MaxVersions.
//
// Zero accepted releases is an error; nothing is rendered in that case.
func SelectReleases(ctx context.Context, p Prober, candidates []versions.Tag, opts SelectOptions) ([]Release, []Rejection, error) {
	var (
		accepted []Release
		rejected []Rejection
	)

	for _, tag := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if len(accepted) >= opts.MaxVersions {
			rejected = append(rejected, Rejection{Tag: tag, Reason: fmt.Sprintf("over max_versions (%d)", opts.MaxVersions)})
			continue
		}
		if !tag.AtLeast(opts.Min) {
			rejected = append(rejected, Rejection{Tag: tag, Reason: fmt.Sprintf("below minimum %s", opts.Min.Original())})
			continue
		}
		if opts.Skip.Match(tag.Name) {
			rejected = append(rejected, Rejection{Tag: tag, Reason: "skip-listed"})
			continue
		}

		ok, err := p.HasFile(tag.Name, opts.RequiredFile)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			rejected = append(rejected, Rejection{Tag: tag, Reason: fmt.Sprintf("missing %s", opts.RequiredFile)})
			continue
		}

		commit, err := p.CommitFor(tag.Name)
		if err != nil {
			return nil, nil, err
		}

		logger.Debugf(ctx, "accepted %s -> %s", tag.Name, commit)
		accepted = append(accepted, Release{Tag: tag, Commit: commit})
	}

	if len(accepted) == 0 {
		return nil, rejected, fmt.Errorf("no tags >= %s with %s found", opts.Min.Original(), opts.RequiredFile)
	}
	return accepted, rejected, nil
}

// Package versions models upstream release versions: numeric MAJOR.MINOR[.PATCH]
// tag names parsed into comparable values with a descending total order.
package versions

import (
	"fmt"
	"regexp"
	"sort"

	semver "github.com/Masterminds/semver/v3"
)

// tagRe admits strictly numeric two- or three-component tag names.
// Pre-release, RC, and branch-like names never enter the candidate set.
var tagRe = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// Tag is a release tag with its parsed version.
// Name keeps the original tag spelling ("3.9" stays "3.9" in directories
// and image tags even though it compares equal to "3.9.0").
type Tag struct {
	Name    string
	Version *semver.Version
}

// Parse converts a tag name into a Tag.
// Names not matching the numeric MAJOR.MINOR[.PATCH] pattern are rejected.
func Parse(name string) (Tag, error) {
	if !tagRe.MatchString(name) {
		return Tag{}, fmt.Errorf("tag %q is not a numeric version", name)
	}
	v, err := semver.NewVersion(name)
	if err != nil {
		return Tag{}, fmt.Errorf("parsing tag %q: %w", name, err)
	}
	return Tag{Name: name, Version: v}, nil
}

// IsVersionTag reports whether name would be accepted by Parse.
func IsVersionTag(name string) bool {
	return tagRe.MatchString(name)
}

// Sort orders tags descending by version.
// The sort is stable: equal-compare pairs ("3.9" vs "3.9.0") keep their
// incoming relative order.
func Sort(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Version.GreaterThan(tags[j].Version)
	})
}

// AtLeast reports whether the tag's version is >= min.
func (t Tag) AtLeast(min *semver.Version) bool {
	return !t.Version.LessThan(min)
}

func (t Tag) String() string {
	return t.Name
}

// Names returns the tag names in slice order.
func Names(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

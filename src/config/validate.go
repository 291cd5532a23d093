package config

import (
	"fmt"
	"regexp"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// versionRe admits the numeric MAJOR.MINOR[.PATCH] shape used for
// min_version and upstream release tags.
var versionRe = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// knownArchitectures are the bashbrew architecture names we expect to see.
// Anything else is allowed but flagged as a warning.
var knownArchitectures = map[string]bool{
	"amd64":    true,
	"arm32v5":  true,
	"arm32v6":  true,
	"arm32v7":  true,
	"arm64v8":  true,
	"i386":     true,
	"mips64le": true,
	"ppc64le":  true,
	"riscv64":  true,
	"s390x":    true,
}

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is unusable.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	if cfg.Source.Repo == "" {
		errs = append(errs, "source.repo is required")
	}
	if cfg.Source.RequiredFile == "" {
		errs = append(errs, "source.required_file is required")
	}
	if cfg.Source.MaxVersions < 1 {
		errs = append(errs, fmt.Sprintf("source.max_versions: must be >= 1, got %d", cfg.Source.MaxVersions))
	}

	min := cfg.Source.MinVersion.String()
	if !versionRe.MatchString(min) {
		errs = append(errs, fmt.Sprintf("source.min_version: %q is not a numeric MAJOR.MINOR[.PATCH] version", min))
	} else if _, perr := semver.NewVersion(min); perr != nil {
		errs = append(errs, fmt.Sprintf("source.min_version: %v", perr))
	}

	if _, serr := CompileSkips(cfg.Source.Skip); serr != nil {
		errs = append(errs, fmt.Sprintf("source.skip: %v", serr))
	}

	if cfg.Images.Repo == "" {
		errs = append(errs, "images.repo is required")
	}
	if cfg.Images.Branch == "" {
		errs = append(errs, "images.branch is required")
	}
	if cfg.Images.Builder == "" {
		errs = append(errs, "images.builder is required")
	}

	if len(cfg.Manifest.Maintainers) == 0 {
		errs = append(errs, "manifest.maintainers: at least one maintainer is required")
	}
	if len(cfg.Manifest.Architectures) == 0 {
		errs = append(errs, "manifest.architectures: at least one architecture is required")
	}
	for _, arch := range cfg.Manifest.Architectures {
		if !knownArchitectures[arch] {
			warnings = append(warnings, fmt.Sprintf("manifest.architectures: %q is not a known bashbrew architecture", arch))
		}
	}

	if cfg.Output.Dir == "" {
		errs = append(errs, "output.dir is required")
	}
	if cfg.Output.Dockerfile == "" || strings.ContainsRune(cfg.Output.Dockerfile, '/') {
		errs = append(errs, fmt.Sprintf("output.dockerfile: %q must be a bare filename", cfg.Output.Dockerfile))
	}

	if cfg.Verify.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("verify.concurrency: must be >= 0, got %d", cfg.Verify.Concurrency))
	}
	if cfg.Verify.MaxFindings < 1 {
		errs = append(errs, fmt.Sprintf("verify.max_findings: must be >= 1, got %d", cfg.Verify.MaxFindings))
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

// MinSemver returns the parsed minimum version.
// Callers run Validate first, so parse errors are unexpected here.
func (c SourceConfig) MinSemver() (*semver.Version, error) {
	v, err := semver.NewVersion(c.MinVersion.String())
	if err != nil {
		return nil, fmt.Errorf("parsing min_version %q: %w", c.MinVersion, err)
	}
	return v, nil
}

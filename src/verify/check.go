package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/streamcast/docker-streamcast/src/versions"
)

// Check is the interface every verification check implements.
type Check interface {
	Name() string
	Inspect(ctx context.Context, file FileInfo) ([]Finding, error)
}

// CollectFiles lists the <version>/<filename> build definitions under dir,
// newest version first. A version directory without the build definition
// file is reported as a finding rather than silently skipped.
func CollectFiles(dir, filename string) ([]FileInfo, []Finding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading output dir: %w", err)
	}

	var tags []versions.Tag
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tag, err := versions.Parse(entry.Name())
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	versions.Sort(tags)

	var (
		files    []FileInfo
		findings []Finding
	)
	for _, tag := range tags {
		rel := filepath.Join(tag.Name, filename)
		abs := filepath.Join(dir, rel)
		if _, err := os.Stat(abs); err != nil {
			findings = append(findings, Finding{
				File:     rel,
				Check:    "structure",
				Severity: SeverityWarning,
				Message:  "version directory is missing its build definition",
			})
			continue
		}
		files = append(files, FileInfo{Version: tag.Name, Path: rel, AbsPath: abs})
	}
	return files, findings, nil
}

// Package render turns accepted release versions into the per-version
// Dockerfile tree. Rendering is pure: the embedded template plus the
// embedded buildspec constants plus one version string, nothing else, so
// the same version always produces byte-identical output.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/streamcast/docker-streamcast/src/versions"
)

//go:embed templates/Dockerfile.tmpl
var dockerfileTmpl string

// Renderer produces build definitions for accepted releases.
type Renderer struct {
	spec Buildspec
	tmpl *template.Template
}

func New() (*Renderer, error) {
	spec, err := LoadBuildspec()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("Dockerfile").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(dockerfileTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing Dockerfile template: %w", err)
	}
	return &Renderer{spec: spec, tmpl: tmpl}, nil
}

// Spec returns the parsed build constants. The verify checks compare
// rendered trees against them.
func (r *Renderer) Spec() Buildspec {
	return r.spec
}

type renderContext struct {
	Version string
	Spec    Buildspec
}

// Render produces the build definition for one version.
func (r *Renderer) Render(version string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, renderContext{Version: version, Spec: r.spec}); err != nil {
		return nil, fmt.Errorf("rendering Dockerfile for %s: %w", version, err)
	}
	return buf.Bytes(), nil
}

// Generate writes <dir>/<version>/<filename> for every version, in input
// order, and returns the written paths. Existing files are overwritten.
func (r *Renderer) Generate(dir, filename string, vers []string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	written := make([]string, 0, len(vers))
	for _, v := range vers {
		target := filepath.Join(dir, v)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir %q: %w", target, err)
		}
		content, err := r.Render(v)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(target, filename)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("writing %q: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Cleanup removes version directories under dir that are not in keep and
// returns the names it removed. Only names that parse as version tags are
// considered: the output directory doubles as the repository root, which
// holds plenty of non-version entries.
func Cleanup(dir string, keep []string) ([]string, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, v := range keep {
		keepSet[v] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading output dir for cleanup: %w", err)
	}
	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() || !versions.IsVersionTag(entry.Name()) {
			continue
		}
		if _, ok := keepSet[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return nil, fmt.Errorf("removing obsolete dir %q: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

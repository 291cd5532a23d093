package verify

import (
	"bytes"
	"context"
	"os"

	"github.com/streamcast/docker-streamcast/src/render"
)

// driftCheck re-renders the expected content for a version directory and
// byte-compares it with what is on disk. Rendering is deterministic, so
// any difference means a hand edit or output from an older template.
type driftCheck struct {
	renderer *render.Renderer
}

func newDriftCheck(r *render.Renderer) *driftCheck {
	return &driftCheck{renderer: r}
}

func (c *driftCheck) Name() string { return "drift" }

func (c *driftCheck) Inspect(_ context.Context, file FileInfo) ([]Finding, error) {
	want, err := c.renderer.Render(file.Version)
	if err != nil {
		return nil, err
	}
	got, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(want, got) {
		return nil, nil
	}
	return []Finding{{
		File:     file.Path,
		Line:     firstDiffLine(want, got),
		Check:    c.Name(),
		Severity: SeverityCritical,
		Message:  "content does not match a fresh render; regenerate instead of editing",
	}}, nil
}

// firstDiffLine returns the 1-based line of the first differing byte.
func firstDiffLine(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return bytes.Count(a[:i], []byte("\n")) + 1
		}
	}
	if len(a) != len(b) {
		return bytes.Count(a[:n], []byte("\n")) + 1
	}
	return 0
}

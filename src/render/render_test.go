package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func TestLoadBuildspec(t *testing.T) {
	t.Parallel()

	spec, err := LoadBuildspec()
	require.NoError(t, err)

	require.Equal(t, "alpine", spec.Image.Base)
	require.NotEmpty(t, spec.Image.Tag)
	require.NotEmpty(t, spec.Image.Prefix)
	require.NotEmpty(t, spec.Packages.Build)
	require.NotEmpty(t, spec.Packages.Runtime)
	require.NotEmpty(t, spec.Ports.TCP)
	require.NotEmpty(t, spec.Ports.UDP)
	require.NotEmpty(t, spec.Runtime.Entrypoint)
	require.NotEmpty(t, spec.Healthcheck.Command)
}

func TestRenderIsByteDeterministic(t *testing.T) {
	t.Parallel()

	r := newRenderer(t)
	first, err := r.Render("4.0.0")
	require.NoError(t, err)
	second, err := r.Render("4.0.0")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := r.Render("3.10.0")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

func TestRenderShape(t *testing.T) {
	t.Parallel()

	out, err := newRenderer(t).Render("4.0.0")
	require.NoError(t, err)
	text := string(out)

	// Two stages, fixed names.
	require.Contains(t, text, "FROM alpine:3.20 AS build")
	require.Contains(t, text, "FROM alpine:3.20 AS runtime")

	// The version is pinned twice: as a build arg default and through the
	// archive URL that consumes it.
	require.Contains(t, text, "ARG STREAMCAST_VERSION=4.0.0")
	require.Contains(t, text, "${STREAMCAST_VERSION}.tar.gz")

	// Build arguments with defaults, release label derived from platform.
	require.Contains(t, text, "ARG DEBUG_LEVEL=0")
	require.Contains(t, text, "ARG RELEASE_LABEL=alpine-${TARGETARCH}")

	// Pinned TLS library and the vendored patch.
	require.Contains(t, text, "mbedtls-3.6.2.tar.bz2")
	require.Contains(t, text, "musl-compat.patch")

	// Runtime surface.
	require.Contains(t, text, `LABEL maintainer="Streamcast maintainers <docker@streamcast.dev>"`)
	require.Contains(t, text, "EXPOSE 8554 1935 8888 8889")
	require.Contains(t, text, "EXPOSE 8000/udp 8001/udp 8189/udp 8890/udp")
	require.Contains(t, text, `ENTRYPOINT ["/opt/streamcast/bin/streamcastd"]`)
	require.Contains(t, text, "HEALTHCHECK --interval=30s")

	// No unexpanded template residue.
	require.NotContains(t, text, "{{")
}

func TestGenerateWritesVersionTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRenderer(t)

	written, err := r.Generate(dir, "Dockerfile", []string{"4.0.0", "3.10.0"})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "4.0.0", "Dockerfile"),
		filepath.Join(dir, "3.10.0", "Dockerfile"),
	}, written)

	for _, version := range []string{"4.0.0", "3.10.0"} {
		data, err := os.ReadFile(filepath.Join(dir, version, "Dockerfile"))
		require.NoError(t, err)
		expected, err := r.Render(version)
		require.NoError(t, err)
		require.Equal(t, expected, data)
	}
}

func TestGenerateOverwritesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := newRenderer(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "4.0.0"), 0o755))
	stale := filepath.Join(dir, "4.0.0", "Dockerfile")
	require.NoError(t, os.WriteFile(stale, []byte("FROM scratch\n"), 0o644))

	_, err := r.Generate(dir, "Dockerfile", []string{"4.0.0"})
	require.NoError(t, err)

	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "#"))
	require.NotContains(t, string(data), "FROM scratch")
}

func TestGenerateRequiresOutputDir(t *testing.T) {
	t.Parallel()

	_, err := newRenderer(t).Generate("", "Dockerfile", []string{"4.0.0"})
	require.Error(t, err)
}

func TestCleanupPrunesOnlyVersionDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"3.8.0", "4.0.0", "src", ".git"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("readme"), 0o644))

	removed, err := Cleanup(dir, []string{"4.0.0"})
	require.NoError(t, err)
	require.Equal(t, []string{"3.8.0"}, removed)

	require.NoDirExists(t, filepath.Join(dir, "3.8.0"))
	require.DirExists(t, filepath.Join(dir, "4.0.0"))
	require.DirExists(t, filepath.Join(dir, "src"))
	require.DirExists(t, filepath.Join(dir, ".git"))
	require.FileExists(t, filepath.Join(dir, "README.md"))
}

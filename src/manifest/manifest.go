// Package manifest formats the stackbrew-style library document that the
// generate command prints on stdout. Formatting is a pure function of the
// header and entries, so the document is byte-deterministic.
package manifest

import (
	"io"
	"strings"
)

// Header opens the manifest: who maintains the images and where the
// build definitions live.
type Header struct {
	Maintainers []string
	GitRepo     string
	GitFetch    string
	GitCommit   string
	Builder     string
}

// Entry describes one released version: the image tags it builds, the
// platforms, and where its Dockerfile sits in the repository.
type Entry struct {
	Tags          []string
	Architectures []string
	Directory     string
	File          string
}

// FetchRef formats the GitFetch value for a branch.
func FetchRef(branch string) string {
	return "refs/heads/" + branch
}

// Entries builds one manifest entry per version, keeping the given order.
// The first version is the newest and carries the additional "latest" tag;
// every other version carries only its own.
func Entries(vers, architectures []string, file string) []Entry {
	entries := make([]Entry, 0, len(vers))
	for i, v := range vers {
		tags := []string{v}
		if i == 0 {
			tags = []string{"latest", v}
		}
		entries = append(entries, Entry{
			Tags:          tags,
			Architectures: architectures,
			Directory:     v,
			File:          file,
		})
	}
	return entries
}

// Write emits the manifest document: a generated-file comment, the header
// block, then one blank-line-separated block per entry. The document is
// buffered and written in one call so a failing writer never sees half a
// manifest.
func Write(w io.Writer, h Header, entries []Entry) error {
	var b strings.Builder
	b.WriteString("# This file is generated via \"docker-streamcast generate\"; do not edit by hand.\n")
	b.WriteString("\n")
	b.WriteString("Maintainers: " + strings.Join(h.Maintainers, ", ") + "\n")
	b.WriteString("GitRepo: " + h.GitRepo + "\n")
	b.WriteString("GitFetch: " + h.GitFetch + "\n")
	b.WriteString("GitCommit: " + h.GitCommit + "\n")
	b.WriteString("Builder: " + h.Builder + "\n")

	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString("Tags: " + strings.Join(e.Tags, ", ") + "\n")
		b.WriteString("Architectures: " + strings.Join(e.Architectures, ", ") + "\n")
		b.WriteString("Directory: " + e.Directory + "\n")
		b.WriteString("File: " + e.File + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Package registry answers one question for the tags command: which image
// tags are already published on Docker Hub. Listing public repositories is
// anonymous; nothing here mutates the registry.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TagInfo describes a single published tag.
type TagInfo struct {
	Name        string
	Digest      string
	LastUpdated time.Time
}

// DockerHub lists repository tags via the hub.docker.com v2 API.
type DockerHub struct {
	client httpClient
}

func NewDockerHub() *DockerHub {
	return &DockerHub{client: httpClient{base: "https://hub.docker.com"}}
}

// NewDockerHubAt points the client at a different API root. Tests use it
// with httptest servers.
func NewDockerHubAt(base string) *DockerHub {
	return &DockerHub{client: httpClient{base: strings.TrimRight(base, "/")}}
}

// ListTags returns every tag of the repository, newest first, following
// the API's pagination.
func (d *DockerHub) ListTags(ctx context.Context, repo string) ([]TagInfo, error) {
	var all []TagInfo
	url := fmt.Sprintf("%s/v2/repositories/%s/tags/?page_size=100&ordering=-last_updated", d.client.base, repo)

	for url != "" {
		var page struct {
			Next    *string `json:"next"`
			Results []struct {
				Name        string    `json:"name"`
				Digest      string    `json:"digest"`
				LastUpdated time.Time `json:"last_updated"`
			} `json:"results"`
		}

		if err := d.client.getJSON(ctx, url, &page); err != nil {
			return nil, fmt.Errorf("dockerhub: listing tags for %s: %w", repo, err)
		}

		for _, r := range page.Results {
			all = append(all, TagInfo{Name: r.Name, Digest: r.Digest, LastUpdated: r.LastUpdated})
		}

		if page.Next != nil {
			url = *page.Next
		} else {
			url = ""
		}
	}

	return all, nil
}

// PublishedSet flattens tags into a name set for membership checks.
func PublishedSet(tags []TagInfo) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t.Name] = true
	}
	return set
}

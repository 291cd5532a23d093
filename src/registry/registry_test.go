package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListTagsPaginates(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/repositories/streamcast/streamcast/tags/", r.URL.Path)

		type result struct {
			Name        string `json:"name"`
			Digest      string `json:"digest"`
			LastUpdated string `json:"last_updated"`
		}
		var resp struct {
			Next    *string  `json:"next"`
			Results []result `json:"results"`
		}

		if r.URL.Query().Get("page") == "2" {
			resp.Results = []result{
				{Name: "3.9.3", Digest: "sha256:c3", LastUpdated: "2024-03-01T00:00:00Z"},
			}
		} else {
			next := fmt.Sprintf("%s/v2/repositories/streamcast/streamcast/tags/?page=2", srv.URL)
			resp.Next = &next
			resp.Results = []result{
				{Name: "latest", Digest: "sha256:a1", LastUpdated: "2024-05-01T00:00:00Z"},
				{Name: "4.0.0", Digest: "sha256:a1", LastUpdated: "2024-05-01T00:00:00Z"},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	tags, err := NewDockerHubAt(srv.URL).ListTags(context.Background(), "streamcast/streamcast")
	require.NoError(t, err)

	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	require.Equal(t, []string{"latest", "4.0.0", "3.9.3"}, names)
	require.Equal(t, "sha256:c3", tags[2].Digest)
}

func TestListTagsSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "httperror 404: object not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewDockerHubAt(srv.URL).ListTags(context.Background(), "streamcast/nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "streamcast/nope")
}

func TestPublishedSet(t *testing.T) {
	t.Parallel()

	set := PublishedSet([]TagInfo{{Name: "latest"}, {Name: "4.0.0"}})
	require.True(t, set["latest"])
	require.True(t, set["4.0.0"])
	require.False(t, set["3.9.3"])
}

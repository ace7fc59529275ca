package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reconSource = "#!/bin/bash\n# Inputs: target\nnmap \"$1\"\n"

// newTestCatalog serves a two-module catalog in the shape of the
// GitHub contents API.
func newTestCatalog(t *testing.T) *Client {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/modules", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name": "recon.sh", "type": "file", "download_url": "%[1]s/raw/recon.sh"},
			{"name": "lib", "type": "dir", "download_url": ""},
			{"name": "sweep.py", "type": "file", "download_url": "%[1]s/raw/sweep.py"}
		]`, server.URL)
	})
	mux.HandleFunc("/modules/recon.sh", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"name": "recon.sh", "type": "file", "download_url": "%s/raw/recon.sh"}`, server.URL)
	})
	mux.HandleFunc("/modules/lib", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name": "lib", "type": "dir", "download_url": ""}`)
	})
	mux.HandleFunc("/raw/recon.sh", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, reconSource)
	})

	client, err := NewClient(server.URL+"/modules", WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return client
}

func TestList(t *testing.T) {
	client := newTestCatalog(t)

	names, err := client.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"recon.sh", "sweep.py"}, names)
}

func TestFetch(t *testing.T) {
	client := newTestCatalog(t)

	src, err := client.Fetch(context.Background(), "recon.sh")
	require.NoError(t, err)

	assert.Equal(t, reconSource, string(src))
}

func TestFetchUnknownModule(t *testing.T) {
	client := newTestCatalog(t)

	_, err := client.Fetch(context.Background(), "ghost.sh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchEntryWithoutDownloadURL(t *testing.T) {
	client := newTestCatalog(t)

	_, err := client.Fetch(context.Background(), "lib")
	assert.ErrorIs(t, err, ErrNoDownloadURL)
}

func TestListServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL + "/modules")
	require.NoError(t, err)

	_, err = client.List(context.Background())
	assert.ErrorContains(t, err, "status 500")
}

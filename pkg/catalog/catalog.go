package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNotFound indicates that the catalog does not know the
	// requested module.
	ErrNotFound = errors.New("module not in catalog")
	// ErrNoDownloadURL indicates a catalog entry that does not point
	// at downloadable content, such as a directory.
	ErrNoDownloadURL = errors.New("catalog entry has no download URL")
)

// Entry is a single item of a catalog directory listing as returned
// by the GitHub contents API.
type Entry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client fetches module listings and module sources from a catalog
// that speaks the GitHub contents API.
type Client struct {
	*Options
	url string
}

// NewClient creates a client for the catalog directory at url.
func NewClient(url string, options ...Option) (*Client, error) {
	opts, err := GetDefaultOptions().Apply(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		Options: opts,
		url:     url,
	}, nil
}

// List returns the names of all modules the catalog offers. Entries
// that are not plain files are skipped.
func (c *Client) List(ctx context.Context) ([]string, error) {
	c.Logger.Debug().Str("url", c.url).Msg("Fetching catalog listing")

	var entries []Entry
	if err := c.getJSON(ctx, c.url, &entries); err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type == "file" {
			names = append(names, entry.Name)
		}
	}

	return names, nil
}

// Fetch downloads the source of the named module. The catalog is
// queried for the entry metadata first and the content is then
// fetched from the download URL it advertises.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	c.Logger.Debug().Str("module", name).Msg("Fetching module from catalog")

	var entry Entry
	if err := c.getJSON(ctx, c.url+"/"+name, &entry); err != nil {
		return nil, err
	}

	if entry.DownloadURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoDownloadURL, name)
	}

	return c.get(ctx, entry.DownloadURL)
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	return nil
}

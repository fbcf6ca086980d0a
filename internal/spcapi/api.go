// Package spcapi talks to the static-php download server: it fetches
// per-category directory listings and downloads artifact archives.
package spcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/AsaiYusuke/jsonpath"

	"go.sphp.dev/spcu/internal/manifest"
	"go.sphp.dev/spcu/internal/metaerr"
)

const (
	// DefaultBaseURL is the upstream build matrix root.
	DefaultBaseURL = "https://dl.static-php.dev/static-php-cli"

	// DefaultNamesJSONPath extracts artifact file names from the
	// listing response. Mirrors that wrap the listing in an envelope
	// can override it, e.g. `$.files[*].name`.
	DefaultNamesJSONPath = "$[*].name"
)

// Client fetches build manifests and artifacts from the download server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	namesPath  string
}

// NewClient returns a client for the given base URL and listing JSONPath.
// Empty arguments select the upstream defaults.
func NewClient(baseURL string, namesPath string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if namesPath == "" {
		namesPath = DefaultNamesJSONPath
	}
	return &Client{
		httpClient: defaultClient(),
		baseURL:    baseURL,
		namesPath:  namesPath,
	}
}

// FetchManifest retrieves the directory listing for a category and
// parses it into build entries. Listing rows that are not artifact
// archives (parent links, signature files, unparseable names) are
// skipped rather than failing the fetch.
func (c *Client) FetchManifest(ctx context.Context, category manifest.Category) ([]manifest.BuildEntry, error) {
	url := fmt.Sprintf("%s/%s?format=json", c.baseURL, category.Path())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, metaerr.WithMetadata(fmt.Errorf("fetch manifest: %w", err), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, metaerr.WithMetadata(
			fmt.Errorf("fetch manifest: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			"url", url,
			"body", string(body),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var src any
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, fmt.Errorf("unmarshal response body: %w", err)
	}

	names, err := retrieveNames(src, c.namesPath)
	if err != nil {
		return nil, metaerr.WithMetadata(fmt.Errorf("retrieve artifact names: %w", err), "path", c.namesPath)
	}

	var entries []manifest.BuildEntry
	for _, name := range names {
		entry, err := manifest.ParseEntry(category, name, c.downloadURL(category, name))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *Client) downloadURL(category manifest.Category, name string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, category.Path(), name)
}

// Download retrieves the artifact at url and saves it to dest. The file
// is written next to dest first and moved into place once complete, so
// an interrupted download never leaves a truncated dest behind.
func (c *Client) Download(ctx context.Context, url string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return metaerr.WithMetadata(fmt.Errorf("download artifact: %w", err), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return metaerr.WithMetadata(
			fmt.Errorf("download artifact: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			"url", url,
		)
	}

	tmp := filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.new", filepath.Base(dest)))
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close output file: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move output file: %w", err)
	}

	return nil
}

func retrieveNames(src any, path string) ([]string, error) {
	config := jsonpath.Config{}
	config.SetAccessorMode()

	results, err := jsonpath.Retrieve(path, src, config)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, result := range results {
		name, ok := result.(jsonpath.Accessor).Get().(string)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}

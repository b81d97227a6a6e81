package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kfroeb/thorium-manager/internal/logger"
)

var (
	// ErrNoDebAsset is returned when the latest release carries no matching Debian package.
	ErrNoDebAsset = errors.New("no matching .deb asset in latest release")

	// errBadHTTPStatus is returned on unexpected release API responses.
	errBadHTTPStatus = errors.New("unexpected http status")
)

const debExtension = ".deb"

// Info describes the latest published release asset.
type Info struct {
	// Version is the package version carried by the asset.
	Version string
	// DownloadURL is the direct download URL of the Debian package asset.
	DownloadURL string
	// AssetName is the filename of the selected asset.
	AssetName string
}

// latestRelease mirrors the fields of interest in the release API response.
type latestRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Client queries a GitHub-style release API for the latest release.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a release API client against the provided base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Latest fetches the latest release of owner/repo and selects its Debian
// package asset. A single attempt is made; failures surface to the caller.
//
// Asset selection is deterministic: the first asset whose name ends in
// assetSuffix wins, otherwise the first asset ending in ".deb".
func (c *Client) Latest(ctx context.Context, owner, repo, assetSuffix string) (*Info, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", apiURL, response.Status, errBadHTTPStatus)
	}

	var rel latestRelease
	if err = json.NewDecoder(response.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("parse release JSON: %w", err)
	}

	name, downloadURL, found := selectDebAsset(&rel, assetSuffix)
	if !found {
		return nil, fmt.Errorf("%s/%s: %w", owner, repo, ErrNoDebAsset)
	}

	info := &Info{
		Version:     versionFromAsset(name, rel.TagName),
		DownloadURL: downloadURL,
		AssetName:   name,
	}

	logger.DebugKV(ctx, "Selected release asset",
		"asset", info.AssetName, "version", info.Version)

	return info, nil
}

// selectDebAsset picks the Debian package asset from the release.
// Prefers the configured suffix, then falls back to any ".deb".
func selectDebAsset(rel *latestRelease, assetSuffix string) (name, downloadURL string, found bool) {
	for _, asset := range rel.Assets {
		if asset.Name == "" {
			continue
		}

		if strings.HasSuffix(asset.Name, assetSuffix) {
			return asset.Name, asset.BrowserDownloadURL, true
		}
	}

	for _, asset := range rel.Assets {
		if strings.HasSuffix(asset.Name, debExtension) {
			return asset.Name, asset.BrowserDownloadURL, true
		}
	}

	return "", "", false
}

// versionFromAsset extracts the package version from a Debian package
// filename of the form name_version_arch.deb, falling back to the release
// tag with any leading letters stripped.
func versionFromAsset(assetName, tagName string) string {
	parts := strings.Split(strings.TrimSuffix(assetName, debExtension), "_")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}

	return strings.TrimLeft(tagName, "vM")
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the release and package-manager settings used by the binary.
type Config struct {
	// Owner is the GitHub user or organization hosting the releases.
	Owner string `yaml:"owner"`
	// Repo is the GitHub repository name to query for releases.
	Repo string `yaml:"repo"`
	// PackageName is the Debian package name as known to dpkg.
	PackageName string `yaml:"package"`
	// AssetSuffix selects the release asset by filename suffix.
	AssetSuffix string `yaml:"asset_suffix"`
	// FrontEnd is the package-manager front-end command (nala or apt).
	FrontEnd string `yaml:"front_end"`
	// APIBaseURL is the base URL of the release API. Overridable for mirrors.
	APIBaseURL string `yaml:"api_base_url"`
	// Timeout is the duration for the release metadata request.
	Timeout time.Duration `yaml:"timeout"`
	// DownloadTimeout is the duration allowed for the asset download.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "thorium-manager.yaml"

	// DefaultOwner hosts the upstream Thorium releases.
	DefaultOwner = "Alex313031"

	// DefaultRepo is the upstream Thorium repository.
	DefaultRepo = "Thorium"

	// DefaultPackageName is the Debian package name installed by the release asset.
	DefaultPackageName = "thorium-browser"

	// DefaultAssetSuffix matches the AMD64 Debian package among release assets.
	DefaultAssetSuffix = "_amd64.deb"

	// DefaultFrontEnd is the preferred package-manager front-end.
	DefaultFrontEnd = "nala"

	// DefaultAPIBaseURL is the GitHub REST API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultTimeout is the default duration for the release metadata request.
	DefaultTimeout = 30 * time.Second

	// DefaultDownloadTimeout is the default duration for the asset download.
	// Browser packages are large, so this is deliberately generous.
	DefaultDownloadTimeout = 15 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errOwnerRequired is returned when the release owner is missing.
	errOwnerRequired = errors.New("release owner must be provided")
	// errRepoRequired is returned when the release repository is missing.
	errRepoRequired = errors.New("release repository must be provided")
	// errPackageRequired is returned when the package name is missing.
	errPackageRequired = errors.New("package name must be provided")
	// errFrontEndRequired is returned when the front-end command is missing.
	errFrontEndRequired = errors.New("package-manager front-end must be provided")
)

// Default returns a configuration populated with the upstream Thorium defaults.
func Default() *Config {
	return &Config{
		Owner:           DefaultOwner,
		Repo:            DefaultRepo,
		PackageName:     DefaultPackageName,
		AssetSuffix:     DefaultAssetSuffix,
		FrontEnd:        DefaultFrontEnd,
		APIBaseURL:      DefaultAPIBaseURL,
		Timeout:         DefaultTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// An empty path falls back to DefaultConfigFilename; when that default file
// does not exist, built-in defaults are returned so no settings file is required.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
// Zero durations and an empty asset suffix are normalized to defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Owner == "" {
		return errOwnerRequired
	}

	if cfg.Repo == "" {
		return errRepoRequired
	}

	if cfg.PackageName == "" {
		return errPackageRequired
	}

	if cfg.FrontEnd == "" {
		return errFrontEndRequired
	}

	if cfg.AssetSuffix == "" {
		cfg.AssetSuffix = DefaultAssetSuffix
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	return nil
}

package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/kfroeb/thorium-manager/internal/config"
	"github.com/kfroeb/thorium-manager/internal/fetch"
	"github.com/kfroeb/thorium-manager/internal/logger"
	"github.com/kfroeb/thorium-manager/internal/pkgmgr"
	"github.com/kfroeb/thorium-manager/internal/release"
)

// Command selects what a single invocation does. It is decided once at
// startup and dispatched in Run.
type Command int

const (
	// CommandInstall installs the package when absent or outdated.
	CommandInstall Command = iota
	// CommandUpdate behaves like install but is meant for unattended runs.
	CommandUpdate
	// CommandRemove removes the installed package.
	CommandRemove
)

// String renders the command name for logs.
func (c Command) String() string {
	switch c {
	case CommandInstall:
		return "install"
	case CommandUpdate:
		return "update"
	case CommandRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// errUnknownCommand guards the dispatch against values outside the enum.
var errUnknownCommand = errors.New("unknown command")

// Options are inputs accepted by the manager entry point.
type Options struct {
	// Command is the operation to perform.
	Command Command
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// CheckOnly reports the decision without downloading or installing.
	CheckOnly bool
	// AssumeYes forwards automatic confirmation to the front-end.
	AssumeYes bool
	// Progress renders a download spinner on stderr.
	Progress bool
}

// releaseSource yields the latest published Debian package asset.
type releaseSource interface {
	Latest(ctx context.Context, owner, repo, assetSuffix string) (*release.Info, error)
}

// packageManager covers the system package database and front-end calls.
type packageManager interface {
	InstalledVersion(ctx context.Context, packageName string) (string, error)
	Install(ctx context.Context, debPath string) error
	Remove(ctx context.Context, packageName string) error
}

// assetFetcher downloads an asset into a scoped temporary file.
type assetFetcher interface {
	Download(ctx context.Context, url string) (string, func(), error)
}

// runner holds the collaborators for a single invocation.
type runner struct {
	cfg       *config.Config
	releases  releaseSource
	packages  packageManager
	fetcher   assetFetcher
	checkOnly bool
}

// Run executes the requested command and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "thorium-manager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	r := &runner{
		cfg:      cfg,
		releases: release.NewClient(cfg.APIBaseURL, cfg.Timeout),
		packages: pkgmgr.New(cfg.FrontEnd,
			pkgmgr.WithAssumeYes(opts.AssumeYes)),
		fetcher:   fetch.NewDownloader(cfg.DownloadTimeout, opts.Progress),
		checkOnly: opts.CheckOnly,
	}

	if err = r.run(ctx, opts.Command); err != nil {
		logger.ErrorKV(ctx, "Command failed",
			"command", opts.Command.String(), "error", err)

		return err
	}

	return nil
}

// run dispatches the command once.
func (r *runner) run(ctx context.Context, command Command) error {
	switch command {
	case CommandInstall, CommandUpdate:
		return r.installOrUpdate(ctx)
	case CommandRemove:
		return r.remove(ctx)
	default:
		return fmt.Errorf("%w: %d", errUnknownCommand, command)
	}
}

// installOrUpdate fetches the latest release, compares it against the
// installed version and installs when the package is absent or outdated.
func (r *runner) installOrUpdate(ctx context.Context) error {
	logger.Info(ctx, "Reading installed version from the package database")

	installed, err := r.packages.InstalledVersion(ctx, r.cfg.PackageName)
	if err != nil {
		return fmt.Errorf("query installed version: %w", err)
	}

	logger.Info(ctx, "Fetching the latest release metadata")

	info, err := r.releases.Latest(ctx, r.cfg.Owner, r.cfg.Repo, r.cfg.AssetSuffix)
	if err != nil {
		return fmt.Errorf("fetch latest release: %w", err)
	}

	status := release.Compare(info.Version, installed)

	logger.InfoKV(ctx, "Compared versions",
		"installed", installed, "latest", info.Version, "status", status.String())

	if status == release.StatusUpToDate {
		logger.Infof(ctx, "Latest version %s is already installed", info.Version)
		return nil
	}

	if r.checkOnly {
		logger.InfoKV(ctx, "Check-only mode, not installing",
			"latest", info.Version, "asset", info.AssetName)

		return nil
	}

	if status == release.StatusUpdateAvailable {
		logger.Infof(ctx, "Updating %s from version %s to %s",
			r.cfg.PackageName, installed, info.Version)
	}

	r.warnIfPackageRunning(ctx)

	logger.InfoKV(ctx, "Downloading release asset", "url", info.DownloadURL)

	debPath, cleanup, err := r.fetcher.Download(ctx, info.DownloadURL)
	if err != nil {
		return fmt.Errorf("download asset: %w", err)
	}

	// The artifact never survives the run, whatever happens below.
	defer cleanup()

	logger.Info(ctx, "Handing the package to the package manager")

	if err = r.packages.Install(ctx, debPath); err != nil {
		return fmt.Errorf("install package: %w", err)
	}

	logger.Infof(ctx, "Installed %s %s", r.cfg.PackageName, info.Version)

	return nil
}

// remove removes the package unconditionally; absence is surfaced to the
// caller as an error so the process exits non-zero.
func (r *runner) remove(ctx context.Context) error {
	logger.Infof(ctx, "Removing %s", r.cfg.PackageName)

	if err := r.packages.Remove(ctx, r.cfg.PackageName); err != nil {
		return fmt.Errorf("remove package: %w", err)
	}

	logger.Infof(ctx, "Removed %s", r.cfg.PackageName)

	return nil
}

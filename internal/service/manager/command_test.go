package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kfroeb/thorium-manager/internal/config"
	"github.com/kfroeb/thorium-manager/internal/pkgmgr"
	"github.com/kfroeb/thorium-manager/internal/release"
)

var errBoom = errors.New("boom")

// fakeReleases serves a fixed release.Info or error.
type fakeReleases struct {
	info *release.Info
	err  error
}

func (f *fakeReleases) Latest(_ context.Context, _, _, _ string) (*release.Info, error) {
	return f.info, f.err
}

// fakePackages records pkgmgr calls and replays scripted outcomes.
type fakePackages struct {
	installedVersion string
	installErr       error
	removeErr        error

	installedWith string
	removedCalled bool
}

func (f *fakePackages) InstalledVersion(_ context.Context, _ string) (string, error) {
	return f.installedVersion, nil
}

func (f *fakePackages) Install(_ context.Context, debPath string) error {
	f.installedWith = debPath
	return f.installErr
}

func (f *fakePackages) Remove(_ context.Context, _ string) error {
	f.removedCalled = true
	return f.removeErr
}

// fakeFetcher hands out a fixed path and tracks cleanup execution.
type fakeFetcher struct {
	path string
	err  error

	downloadedURL string
	cleanedUp     bool
}

func (f *fakeFetcher) Download(_ context.Context, url string) (string, func(), error) {
	f.downloadedURL = url
	if f.err != nil {
		return "", nil, f.err
	}

	return f.path, func() { f.cleanedUp = true }, nil
}

func newTestRunner(releases *fakeReleases, packages *fakePackages, fetcher *fakeFetcher) *runner {
	return &runner{
		cfg:      config.Default(),
		releases: releases,
		packages: packages,
		fetcher:  fetcher,
	}
}

// TestInstallWhenAbsent verifies a fresh install downloads the asset and
// hands the downloaded path to the package manager.
func TestInstallWhenAbsent(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{
		Version:     "1.2.3",
		DownloadURL: "https://example/thorium_1.2.3.deb",
		AssetName:   "thorium_1.2.3.deb",
	}}
	packages := &fakePackages{installedVersion: ""}
	fetcher := &fakeFetcher{path: "/tmp/thorium_1.2.3.deb"}

	r := newTestRunner(releases, packages, fetcher)

	require.NoError(t, r.run(context.Background(), CommandInstall))
	require.Equal(t, "https://example/thorium_1.2.3.deb", fetcher.downloadedURL)
	require.Equal(t, "/tmp/thorium_1.2.3.deb", packages.installedWith)
	require.True(t, fetcher.cleanedUp)
}

// TestUpdateWhenCurrent ensures an up-to-date system triggers neither a
// download nor a package-manager call.
func TestUpdateWhenCurrent(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{Version: "1.2.3"}}
	packages := &fakePackages{installedVersion: "1.2.3"}
	fetcher := &fakeFetcher{path: "/tmp/unused.deb"}

	r := newTestRunner(releases, packages, fetcher)

	require.NoError(t, r.run(context.Background(), CommandUpdate))
	require.Empty(t, fetcher.downloadedURL)
	require.Empty(t, packages.installedWith)
}

// TestUpdateWhenOutdated ensures an older installed version is upgraded.
func TestUpdateWhenOutdated(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{
		Version:     "1.2.3",
		DownloadURL: "https://example/thorium_1.2.3.deb",
	}}
	packages := &fakePackages{installedVersion: "1.2.0"}
	fetcher := &fakeFetcher{path: "/tmp/thorium_1.2.3.deb"}

	r := newTestRunner(releases, packages, fetcher)

	require.NoError(t, r.run(context.Background(), CommandUpdate))
	require.Equal(t, "/tmp/thorium_1.2.3.deb", packages.installedWith)
	require.True(t, fetcher.cleanedUp)
}

// TestCheckOnly ensures check mode reports without downloading or installing.
func TestCheckOnly(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{Version: "1.2.3"}}
	packages := &fakePackages{installedVersion: "1.2.0"}
	fetcher := &fakeFetcher{path: "/tmp/unused.deb"}

	r := newTestRunner(releases, packages, fetcher)
	r.checkOnly = true

	require.NoError(t, r.run(context.Background(), CommandInstall))
	require.Empty(t, fetcher.downloadedURL)
	require.Empty(t, packages.installedWith)
}

// TestInstallReleaseFetchFails ensures release API failures abort the run.
func TestInstallReleaseFetchFails(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{err: errBoom}
	packages := &fakePackages{}
	fetcher := &fakeFetcher{}

	r := newTestRunner(releases, packages, fetcher)

	err := r.run(context.Background(), CommandInstall)
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, packages.installedWith)
}

// TestInstallDownloadFails ensures a failed download never reaches the
// package manager.
func TestInstallDownloadFails(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{Version: "1.2.3", DownloadURL: "https://example/x.deb"}}
	packages := &fakePackages{}
	fetcher := &fakeFetcher{err: errBoom}

	r := newTestRunner(releases, packages, fetcher)

	err := r.run(context.Background(), CommandInstall)
	require.ErrorIs(t, err, errBoom)
	require.Empty(t, packages.installedWith)
}

// TestInstallFrontEndFails ensures the temp artifact is cleaned up even when
// the package manager refuses the package.
func TestInstallFrontEndFails(t *testing.T) {
	t.Parallel()

	releases := &fakeReleases{info: &release.Info{Version: "1.2.3", DownloadURL: "https://example/x.deb"}}
	packages := &fakePackages{installErr: errBoom}
	fetcher := &fakeFetcher{path: "/tmp/x.deb"}

	r := newTestRunner(releases, packages, fetcher)

	err := r.run(context.Background(), CommandInstall)
	require.ErrorIs(t, err, errBoom)
	require.True(t, fetcher.cleanedUp)
}

// TestRemove verifies removal delegates to the package manager.
func TestRemove(t *testing.T) {
	t.Parallel()

	packages := &fakePackages{installedVersion: "1.2.3"}

	r := newTestRunner(&fakeReleases{}, packages, &fakeFetcher{})

	require.NoError(t, r.run(context.Background(), CommandRemove))
	require.True(t, packages.removedCalled)
}

// TestRemoveNotInstalled ensures absence surfaces as a non-nil error so the
// process exits non-zero.
func TestRemoveNotInstalled(t *testing.T) {
	t.Parallel()

	packages := &fakePackages{removeErr: pkgmgr.ErrNotInstalled}

	r := newTestRunner(&fakeReleases{}, packages, &fakeFetcher{})

	err := r.run(context.Background(), CommandRemove)
	require.ErrorIs(t, err, pkgmgr.ErrNotInstalled)
}

// TestUnknownCommand guards the dispatch.
func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	r := newTestRunner(&fakeReleases{}, &fakePackages{}, &fakeFetcher{})

	err := r.run(context.Background(), Command(42))
	require.ErrorIs(t, err, errUnknownCommand)
}

// TestCommandString covers command labels used in logs.
func TestCommandString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "install", CommandInstall.String())
	require.Equal(t, "update", CommandUpdate.String())
	require.Equal(t, "remove", CommandRemove.String())
	require.Equal(t, "unknown", Command(42).String())
}

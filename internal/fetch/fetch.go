package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/briandowns/spinner"

	"github.com/kfroeb/thorium-manager/internal/logger"
)

// errBadHTTPStatus is returned on unexpected download responses.
var errBadHTTPStatus = errors.New("unexpected http status")

const (
	// tempFilePattern names downloaded artifacts in the OS temp directory.
	tempFilePattern = "thorium-manager-*.deb"

	// spinnerInterval is the animation frame period of the progress spinner.
	spinnerInterval = 100 * time.Millisecond

	// spinnerCharset indexes the dots animation in spinner.CharSets.
	spinnerCharset = 14
)

// Downloader fetches release assets into scoped temporary files.
type Downloader struct {
	httpClient *http.Client
	progress   bool
}

// NewDownloader builds a Downloader with the provided timeout.
// When progress is true, a spinner is rendered on stderr while downloading.
func NewDownloader(timeout time.Duration, progress bool) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		progress:   progress,
	}
}

// Download fetches url into a temporary file and returns its path together
// with a cleanup function. The file never outlives the caller: the cleanup
// function must be deferred by the caller, and every error path inside
// Download removes the partial artifact before returning.
func (d *Downloader) Download(ctx context.Context, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", nil, fmt.Errorf("build download request: %w", err)
	}

	response, err := d.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download %s: %w", url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	outputFile, err := os.CreateTemp("", tempFilePattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temporary file: %w", err)
	}

	cleanup := func() {
		if _, statErr := os.Stat(outputFile.Name()); statErr == nil {
			_ = os.Remove(outputFile.Name())
		}
	}

	stopProgress := d.startProgress(url)
	written, err := io.Copy(outputFile, response.Body)
	stopProgress()

	if closeErr := outputFile.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		cleanup()

		return "", nil, fmt.Errorf("write %s: %w", outputFile.Name(), err)
	}

	logger.InfoKV(ctx, "Downloaded release asset",
		"path", outputFile.Name(), "bytes", written)

	return outputFile.Name(), cleanup, nil
}

// startProgress starts the download spinner and returns a stop function.
// A no-op pair is returned when progress rendering is disabled.
func (d *Downloader) startProgress(url string) func() {
	if !d.progress {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[spinnerCharset], spinnerInterval,
		spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" downloading %s", url)
	s.Start()

	return s.Stop
}

package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kfroeb/thorium-manager/internal/logger"
)

var (
	// ErrNotInstalled is reported by Remove when dpkg knows no installed
	// copy of the package.
	ErrNotInstalled = errors.New("package is not installed")

	// errInstallFailed is returned when both the front-end and the dpkg
	// fallback refuse to install the package.
	errInstallFailed = errors.New("package installation failed")

	// errRemoveFailed is returned when both removal attempts fail.
	errRemoveFailed = errors.New("package removal failed")
)

// installedStatus is dpkg's status token for a fully installed package.
const installedStatus = "installed"

// Result carries the exit code and captured output of a subprocess call.
type Result struct {
	// ExitCode is the process exit status, or -1 when the process
	// could not be started at all.
	ExitCode int
	// Output is the combined stdout and stderr of the process.
	Output string
}

// OK reports whether the subprocess exited successfully.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes a subprocess synchronously and captures its outcome.
// It exists as a seam so tests can substitute fake package managers.
type Runner func(ctx context.Context, name string, args ...string) Result

// execRunner is the production Runner backed by os/exec.
func execRunner(ctx context.Context, name string, args ...string) Result {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()

	result := Result{ExitCode: 0, Output: string(output)}
	if err != nil {
		result.ExitCode = -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
	}

	return result
}

// Manager drives the system package database and a package-manager
// front-end through synchronous subprocess calls.
type Manager struct {
	frontEnd  string
	useSudo   bool
	assumeYes bool
	runner    Runner
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRunner substitutes the subprocess runner, used by tests.
func WithRunner(r Runner) Option {
	return func(m *Manager) {
		m.runner = r
	}
}

// WithSudo forces the sudo prefix on or off regardless of the current user.
func WithSudo(enabled bool) Option {
	return func(m *Manager) {
		m.useSudo = enabled
	}
}

// WithAssumeYes makes the front-end answer prompts automatically,
// which unattended (cron) invocations need.
func WithAssumeYes(enabled bool) Option {
	return func(m *Manager) {
		m.assumeYes = enabled
	}
}

// New builds a Manager around the given front-end command (nala or apt).
// Privileged calls are prefixed with sudo unless already running as root.
func New(frontEnd string, opts ...Option) *Manager {
	m := &Manager{
		frontEnd: frontEnd,
		useSudo:  os.Geteuid() != 0,
		runner:   execRunner,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// InstalledVersion queries dpkg for the installed version of the package.
// Returns an empty version without error when the package is absent;
// ownership of that state belongs to dpkg, this is only a read.
func (m *Manager) InstalledVersion(ctx context.Context, packageName string) (string, error) {
	result := m.runner(ctx, "dpkg-query", "-W", "-f=${db:Status-Status} ${Version}", packageName)
	if !result.OK() {
		// dpkg-query exits non-zero for unknown packages.
		logger.DebugKV(ctx, "Package not known to dpkg",
			"package", packageName, "output", strings.TrimSpace(result.Output))

		return "", nil
	}

	status, pkgVersion, _ := strings.Cut(strings.TrimSpace(result.Output), " ")
	if status != installedStatus {
		return "", nil
	}

	return pkgVersion, nil
}

// Install installs the Debian package at debPath through the front-end.
// On front-end failure it falls back to dpkg -i and then lets the
// front-end repair dependencies, mirroring a manual recovery.
func (m *Manager) Install(ctx context.Context, debPath string) error {
	result := m.run(ctx, m.frontEnd, m.frontEndArgs("install", debPath)...)
	if result.OK() {
		return nil
	}

	logger.WarnKV(ctx, "Front-end failed to install the package, attempting with dpkg",
		"front_end", m.frontEnd, "exit_code", result.ExitCode)

	dpkgResult := m.run(ctx, "dpkg", "-i", debPath)
	if !dpkgResult.OK() {
		return fmt.Errorf("%w: %s", errInstallFailed, summarizeOutputs(result, dpkgResult))
	}

	if fixResult := m.run(ctx, m.frontEnd, m.frontEndArgs("install", "--fix-broken")...); !fixResult.OK() {
		return fmt.Errorf("fix dependencies: %w: %s", errInstallFailed, summarizeOutputs(fixResult))
	}

	return nil
}

// Remove removes the package by name through the front-end, falling back
// to dpkg -r. Reports ErrNotInstalled when dpkg knows no installed copy.
func (m *Manager) Remove(ctx context.Context, packageName string) error {
	installed, err := m.InstalledVersion(ctx, packageName)
	if err != nil {
		return err
	}

	if installed == "" {
		return fmt.Errorf("%s: %w", packageName, ErrNotInstalled)
	}

	result := m.run(ctx, m.frontEnd, m.frontEndArgs("remove", packageName)...)
	if result.OK() {
		return nil
	}

	logger.WarnKV(ctx, "Front-end failed to remove the package, attempting with dpkg",
		"front_end", m.frontEnd, "exit_code", result.ExitCode)

	dpkgResult := m.run(ctx, "dpkg", "-r", packageName)
	if !dpkgResult.OK() {
		return fmt.Errorf("%w: %s", errRemoveFailed, summarizeOutputs(result, dpkgResult))
	}

	return nil
}

// frontEndArgs builds front-end arguments, appending --assume-yes when set.
func (m *Manager) frontEndArgs(args ...string) []string {
	if m.assumeYes {
		args = append(args, "--assume-yes")
	}

	return args
}

// run invokes a privileged command, prefixing sudo when required.
func (m *Manager) run(ctx context.Context, name string, args ...string) Result {
	if m.useSudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}

	logger.DebugKV(ctx, "Running package-manager command",
		"command", name, "args", strings.Join(args, " "))

	return m.runner(ctx, name, args...)
}

// summarizeOutputs joins trimmed subprocess outputs for error messages.
func summarizeOutputs(results ...Result) string {
	outputs := make([]string, 0, len(results))

	for _, r := range results {
		if out := strings.TrimSpace(r.Output); out != "" {
			outputs = append(outputs, out)
		}
	}

	if len(outputs) == 0 {
		return "no output captured"
	}

	return strings.Join(outputs, "; ")
}

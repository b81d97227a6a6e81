package manager

import (
	"context"

	"github.com/mitchellh/go-ps"

	"github.com/kfroeb/thorium-manager/internal/logger"
)

// warnIfPackageRunning scans the process table for running copies of the
// managed browser and warns the user that they keep running the old build
// until restarted. Failures here never block the install.
func (r *runner) warnIfPackageRunning(ctx context.Context) {
	processList, err := ps.Processes()
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	running := 0

	for _, process := range processList {
		if process.Executable() == r.cfg.PackageName {
			running++
		}
	}

	if running > 0 {
		logger.WarnKV(ctx, "The browser is currently running and will keep using the old version until restarted",
			"package", r.cfg.PackageName, "processes", running)
	}
}

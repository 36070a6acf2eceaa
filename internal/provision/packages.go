package provision

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Installer installs apt packages for the dev box.
type Installer struct {
	runner Runner
	logger *log.Logger
}

// NewInstaller creates an Installer. A nil logger discards.
func NewInstaller(runner Runner, logger *log.Logger) *Installer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installer{runner: runner, logger: logger}
}

// Install refreshes the package cache, upgrades the system and installs
// pkgs. A package that is not available in the cache is logged as a
// warning and skipped — its siblings still install. Cache and install
// failures are fatal.
func (i *Installer) Install(ctx context.Context, pkgs []string) error {
	if err := i.runner.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("update package cache: %w", err)
	}
	if err := i.runner.Run(ctx, "apt-get", "-y", "upgrade"); err != nil {
		return fmt.Errorf("upgrade system packages: %w", err)
	}

	available := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		if err := i.runner.Run(ctx, "apt-cache", "show", pkg); err != nil {
			i.logger.Warn("required package not available", "package", pkg)
			continue
		}
		available = append(available, pkg)
	}
	if len(available) == 0 {
		return nil
	}

	i.logger.Info("installing packages", "count", len(available))
	args := append([]string{"install", "-y"}, available...)
	if err := i.runner.Run(ctx, "apt-get", args...); err != nil {
		return fmt.Errorf("install packages: %w", err)
	}
	return nil
}

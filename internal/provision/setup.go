package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ipsv/ipsv/internal/config"
)

// Setup runs the one-time provisioning of a fresh dev box.
//
// The system paths are fields so tests can point them into a temp tree;
// production code uses NewSetup's defaults.
type Setup struct {
	Settings *config.Settings
	Runner   Runner
	Logger   *log.Logger

	// ConfigPath is where the settings file is written back.
	ConfigPath string
	// FpmPoolDir holds the php-fpm pool configs.
	FpmPoolDir string
	// ProfilePath is the shell profile patched with the welcome message.
	ProfilePath string
	// WelcomePath is the welcome document shown on first login.
	WelcomePath string
}

// NewSetup creates a Setup with the standard system paths.
func NewSetup(settings *config.Settings, runner Runner, logger *log.Logger) *Setup {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Setup{
		Settings:    settings,
		Runner:      runner,
		Logger:      logger,
		ConfigPath:  config.DefaultPath,
		FpmPoolDir:  "/etc/php5/fpm/pool.d",
		ProfilePath: "/etc/profile",
		WelcomePath: "/usr/share/ipsv/WELCOME.rst",
	}
}

// LockPath is the setup lock file; its presence means setup already ran.
func (s *Setup) LockPath() string {
	return filepath.Join(s.Settings.Paths.Data, "setup.lck")
}

// Run performs the full setup sequence. It refuses to run when the setup
// lock exists, and writes the lock only after every step succeeded.
func (s *Setup) Run(ctx context.Context) error {
	if _, err := os.Stat(s.LockPath()); err == nil {
		return fmt.Errorf("setup is locked, remove %s to continue", s.LockPath())
	}

	s.Logger.Info("creating system directories")
	dirs := []string{
		filepath.Dir(s.ConfigPath),
		s.Settings.Paths.Data,
		s.Settings.Paths.Log,
		s.Settings.Paths.NginxSitesAvailable,
		s.Settings.Paths.NginxSitesEnabled,
		s.Settings.Paths.NginxSSL,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	s.Logger.Info("writing configuration", "path", s.ConfigPath)
	if err := s.Settings.Save(s.ConfigPath); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}

	installer := NewInstaller(s.Runner, s.Logger)
	if err := installer.Install(ctx, s.Settings.Packages); err != nil {
		return err
	}

	if err := s.configureNginx(ctx); err != nil {
		return err
	}
	if err := s.configureFpm(ctx); err != nil {
		return err
	}

	s.Logger.Info("installing welcome message")
	if err := InstallWelcomeDoc(s.WelcomePath); err != nil {
		return err
	}
	firstLoginLock := filepath.Join(s.Settings.Paths.Data, "first_login.lck")
	if err := PatchWelcome(s.ProfilePath, firstLoginLock, s.WelcomePath); err != nil {
		return err
	}

	s.Logger.Debug("writing setup lock file")
	if err := os.WriteFile(s.LockPath(), []byte("1"), 0o644); err != nil {
		return fmt.Errorf("write setup lock: %w", err)
	}
	return nil
}

// configureNginx disables the distribution default site and restarts nginx.
func (s *Setup) configureNginx(ctx context.Context) error {
	s.Logger.Info("configuring nginx")

	available := filepath.Join(s.Settings.Paths.NginxSitesAvailable, "default")
	if info, err := os.Stat(available); err == nil && info.Mode().IsRegular() {
		if err := os.Remove(available); err != nil {
			return fmt.Errorf("remove default site: %w", err)
		}
	}
	enabled := filepath.Join(s.Settings.Paths.NginxSitesEnabled, "default")
	if info, err := os.Lstat(enabled); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(enabled); err != nil {
			return fmt.Errorf("remove default site link: %w", err)
		}
	}

	return NewServiceController(s.Runner).Restart(ctx, "nginx")
}

// configureFpm replaces the default www pool with the ips pool and
// restarts php-fpm.
func (s *Setup) configureFpm(ctx context.Context) error {
	s.Logger.Info("configuring php5-fpm")

	www := filepath.Join(s.FpmPoolDir, "www.conf")
	if _, err := os.Stat(www); err == nil {
		if err := os.Remove(www); err != nil {
			return fmt.Errorf("remove default pool: %w", err)
		}
	}

	body, err := DefaultFpmPool().Render()
	if err != nil {
		return fmt.Errorf("render pool config: %w", err)
	}
	if err := os.MkdirAll(s.FpmPoolDir, 0o755); err != nil {
		return fmt.Errorf("create pool directory: %w", err)
	}
	pool := filepath.Join(s.FpmPoolDir, "ips.conf")
	if err := os.WriteFile(pool, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write pool config: %w", err)
	}

	return NewServiceController(s.Runner).Restart(ctx, "php5-fpm")
}

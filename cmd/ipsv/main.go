package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/ipsv/ipsv/internal/config"
	"github.com/ipsv/ipsv/internal/download"
	"github.com/ipsv/ipsv/internal/httpclient"
	"github.com/ipsv/ipsv/internal/provision"
	"github.com/ipsv/ipsv/internal/version"
)

var (
	versionStyle = lipgloss.NewStyle().Bold(true)
	cachedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	remoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	latestStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8B500"))
)

func usage() {
	fmt.Println("ipsv - IPS development box tooling")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ipsv setup     [options]    Provision this machine")
	fmt.Println("  ipsv versions  [options]    List known IPS releases")
	fmt.Println("  ipsv download  [options]    Download an IPS release")
	fmt.Println()
	fmt.Println("For interactive mode, use: ipsv-tui")
	os.Exit(1)
}

func main() {
	// Environment overrides may live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	ctx := interruptContext()

	var err error
	switch os.Args[1] {
	case "setup":
		err = runSetup(ctx, os.Args[2:])
	case "versions":
		err = runVersions(ctx, os.Args[2:])
	case "download":
		err = runDownload(ctx, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// interruptContext cancels on SIGINT/SIGTERM.
func interruptContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()
	return ctx
}

func newLogger(verbose bool) *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		path = config.DefaultPath
	}
	return config.Load(path)
}

func newManager(settings *config.Settings, logger *log.Logger, showProgress bool) (*download.Manager, error) {
	session, err := httpclient.New()
	if err != nil {
		return nil, err
	}

	opts := []download.Option{download.WithLogger(logger)}
	if showProgress {
		opts = append(opts, download.WithProgressFunc(func(v version.Version, written, total int64) {
			if total > 0 {
				fmt.Printf("\r  %s: %.2f / %.2f MB", v, float64(written)/1024/1024, float64(total)/1024/1024)
			} else {
				fmt.Printf("\r  %s: %.2f MB", v, float64(written)/1024/1024)
			}
		}))
	}

	return download.NewManager(download.IPSProfile{}, session, settings.Paths.Data, settings.LicenseURL, opts...), nil
}

func runSetup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	verboseFlag := fs.Bool("verbose", false, "Show verbose output")
	fs.Parse(args)

	logger := newLogger(*verboseFlag)
	logger.SetLevel(log.InfoLevel)
	if *verboseFlag {
		logger.SetLevel(log.DebugLevel)
	}

	if os.Geteuid() != 0 {
		logger.Warn("setup normally runs as root, expect permission errors")
	}

	settings, err := loadSettings(*configFlag)
	if err != nil {
		return err
	}

	setup := provision.NewSetup(settings, provision.ExecRunner{}, logger)
	if *configFlag != "" {
		setup.ConfigPath = *configFlag
	}
	if err := setup.Run(ctx); err != nil {
		return err
	}

	fmt.Println("Setup complete.")
	return nil
}

func runVersions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("versions", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	verboseFlag := fs.Bool("verbose", false, "Show verbose output")
	localFlag := fs.Bool("local", false, "Skip the remote lookup, list cached versions only")
	fs.Parse(args)

	logger := newLogger(*verboseFlag)
	settings, err := loadSettings(*configFlag)
	if err != nil {
		return err
	}

	manager, err := newManager(settings, logger, false)
	if err != nil {
		return err
	}

	if *localFlag {
		manager.PopulateLocal()
		manager.Sort()
	} else {
		manager.Populate(ctx)
	}

	entries := manager.Versions()
	if len(entries) == 0 {
		fmt.Println("No versions known. Check the license URL in your configuration.")
		return nil
	}

	for i, entry := range entries {
		state := remoteStyle.Render("remote")
		if entry.Cached() {
			state = cachedStyle.Render("cached")
		}
		line := fmt.Sprintf("%s  %s", versionStyle.Render(entry.Version.String()), state)
		if i == len(entries)-1 {
			line += "  " + latestStyle.Render("latest")
		}
		fmt.Println(line)
	}
	return nil
}

func runDownload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	configFlag := fs.String("config", "", "Path to config file")
	verboseFlag := fs.Bool("verbose", false, "Show verbose output")
	versionFlag := fs.String("version", "", "Version to download (default: latest)")
	noCacheFlag := fs.Bool("no-cache", false, "Re-download even when a cached copy exists")
	fs.Parse(args)

	logger := newLogger(*verboseFlag)
	settings, err := loadSettings(*configFlag)
	if err != nil {
		return err
	}

	manager, err := newManager(settings, logger, true)
	if err != nil {
		return err
	}
	manager.Populate(ctx)

	var meta *download.Meta
	var ok bool
	if *versionFlag != "" {
		meta, ok = manager.Lookup(*versionFlag)
		if !ok {
			return fmt.Errorf("version %s is not known", *versionFlag)
		}
	} else {
		meta, ok = manager.Latest()
		if !ok {
			return errors.New("no versions available")
		}
	}

	fmt.Printf("Fetching IPS %s...\n", meta.Version)
	path, err := manager.Get(ctx, meta, !*noCacheFlag)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("Ready: %s\n", path)
	return nil
}

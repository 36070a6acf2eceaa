package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// welcomeHeader delimits the generated block in /etc/profile. The same
// marker opens and closes the block so a re-run can strip a previous one.
const welcomeHeader = "## DO NOT REMOVE :: AUTOMATICALLY GENERATED BY IPSV ##"

// welcomeDoc is paged on first login.
const welcomeDoc = `Welcome to your IPS development box
==================================

This machine was provisioned by ipsv. A quick tour:

* ` + "`ipsv versions`" + ` lists the IPS releases known locally and remotely.
* ` + "`ipsv download`" + ` fetches a release into the local cache.
* ` + "`ipsv-tui`" + ` is the interactive version browser.

Configuration lives in /etc/ipsv/ipsv.yml. Set IPSV_LICENSE_URL or
IPSV_DATA_DIR in the environment (or a local .env) to override it.

This message is shown once. Press q to close it.
`

// InstallWelcomeDoc writes the first-login welcome document unless one
// already exists; a site-customized copy is never clobbered.
func InstallWelcomeDoc(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(welcomeDoc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// PatchWelcome installs the first-login welcome message into the shell
// profile at profilePath. Any previously generated block is removed first,
// so repeated setups never stack blocks. The message is shown until
// lockPath exists.
func PatchWelcome(profilePath, lockPath, welcomePath string) error {
	data, err := os.ReadFile(profilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", profilePath, err)
	}

	lines := stripGeneratedBlock(strings.Split(string(data), "\n"))

	// Drop a single trailing empty line left by the split so the block
	// appends cleanly.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	lines = append(lines,
		welcomeHeader,
		fmt.Sprintf(`if [ ! -f "%s" ]; then`, lockPath),
		fmt.Sprintf(`  less "%s"`, welcomePath),
		fmt.Sprintf(`  sudo touch "%s"`, lockPath),
		`fi`,
		welcomeHeader,
		``,
	)

	if err := os.WriteFile(profilePath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", profilePath, err)
	}
	return nil
}

// stripGeneratedBlock removes everything between (and including) a pair of
// welcomeHeader lines. Content outside the markers is preserved verbatim.
func stripGeneratedBlock(lines []string) []string {
	out := make([]string, 0, len(lines))
	removing := false
	for _, line := range lines {
		if strings.TrimSpace(line) == welcomeHeader {
			removing = !removing
			continue
		}
		if removing {
			continue
		}
		out = append(out, line)
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where setup writes the settings file.
const DefaultPath = "/etc/ipsv/ipsv.yml"

// Settings holds all configuration options.
type Settings struct {
	// LicenseURL is the client-area licensing page scraped for the
	// latest release.
	LicenseURL string `yaml:"license_url"`

	Paths PathSettings `yaml:"paths"`

	// Packages is the apt package set installed during setup.
	Packages []string `yaml:"packages"`
}

// PathSettings are the system locations ipsv manages.
type PathSettings struct {
	Data                string `yaml:"data"`
	Log                 string `yaml:"log"`
	NginxSitesAvailable string `yaml:"nginx_sites_available"`
	NginxSitesEnabled   string `yaml:"nginx_sites_enabled"`
	NginxSSL            string `yaml:"nginx_ssl"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	s := &Settings{}
	setDefaults(s)
	return s
}

func setDefaults(s *Settings) {
	if s.LicenseURL == "" {
		s.LicenseURL = "https://www.invisionpower.com/clients/purchases"
	}
	if s.Paths.Data == "" {
		s.Paths.Data = "/var/lib/ipsv"
	}
	if s.Paths.Log == "" {
		s.Paths.Log = "/var/log/ipsv"
	}
	if s.Paths.NginxSitesAvailable == "" {
		s.Paths.NginxSitesAvailable = "/etc/nginx/sites-available"
	}
	if s.Paths.NginxSitesEnabled == "" {
		s.Paths.NginxSitesEnabled = "/etc/nginx/sites-enabled"
	}
	if s.Paths.NginxSSL == "" {
		s.Paths.NginxSSL = "/etc/nginx/ssl"
	}
	if len(s.Packages) == 0 {
		s.Packages = []string{
			"nginx", "php5-fpm", "php5-curl", "php5-gd", "php5-imagick",
			"php5-json", "php5-mysql", "php5-readline", "php5-apcu",
		}
	}
}

func validate(s *Settings) error {
	if !filepath.IsAbs(s.Paths.Data) {
		return fmt.Errorf("paths.data must be absolute, got %q", s.Paths.Data)
	}
	if s.LicenseURL == "" {
		return errors.New("license_url must not be empty")
	}
	return nil
}

// Load reads settings from a YAML file. A missing file yields defaults;
// a present but malformed file is an error. Environment overrides are
// applied last.
func Load(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	setDefaults(s)
	applyEnv(s)

	if err := validate(s); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

// applyEnv applies environment variable overrides. Values usually arrive
// via the process environment or an .env file loaded by the command.
func applyEnv(s *Settings) {
	if v := os.Getenv("IPSV_LICENSE_URL"); v != "" {
		s.LicenseURL = v
	}
	if v := os.Getenv("IPSV_DATA_DIR"); v != "" {
		s.Paths.Data = v
	}
}

// Save writes settings to a YAML file, creating parent directories.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

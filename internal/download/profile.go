package download

import (
	"context"

	"github.com/ipsv/ipsv/internal/archive"
	"github.com/ipsv/ipsv/internal/scraper"
	"github.com/ipsv/ipsv/internal/version"
)

// Profile supplies the resource-specific capabilities the Manager depends
// on: reading the version out of a local archive and discovering the latest
// release remotely. The catalog logic itself never changes per resource —
// adding a new downloadable kind means adding a Profile, nothing more.
type Profile interface {
	// Name is the resource identifier, used as the cache subdirectory.
	Name() string

	// ReadVersion extracts the version number from a local release archive.
	ReadVersion(path string) (version.Version, error)

	// FetchLatest discovers the newest downloadable release behind the
	// given licensing URL, returning its version and a deferred download
	// request.
	FetchLatest(ctx context.Context, session scraper.Getter, licenseURL string) (version.Version, scraper.Request, error)
}

// IPSProfile is the Profile for Invision Power Suite releases.
type IPSProfile struct{}

func (IPSProfile) Name() string { return "ips" }

func (IPSProfile) ReadVersion(path string) (version.Version, error) {
	return archive.ReadVersion(path)
}

func (IPSProfile) FetchLatest(ctx context.Context, session scraper.Getter, licenseURL string) (version.Version, scraper.Request, error) {
	return scraper.FetchLatest(ctx, session, licenseURL)
}

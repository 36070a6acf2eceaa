// Package download maintains the local cache of IPS release archives.
//
// A Manager owns one catalog per resource kind: an ordered map from version
// to Meta entry. The catalog is rebuilt each run in two passes — a scan of
// the local versions directory, then a lookup of the latest release on the
// licensing site — and sorted ascending by version afterwards.
//
// # Basic Usage
//
//	session, _ := httpclient.New()
//	mgr := download.NewManager(download.IPSProfile{}, session, dataDir, licenseURL)
//	mgr.Populate(ctx)
//
//	latest, ok := mgr.Latest()
//	if !ok {
//	    return errors.New("no versions available")
//	}
//	path, err := mgr.Get(ctx, latest, true)
//
// A Meta entry records how a version is available: a local archive path, a
// pending download request discovered remotely, or both. Manager.Get
// returns the cached path when one exists and the caller accepts the cache,
// and otherwise performs the deferred download.
//
// # Error policy
//
// Catalog construction is deliberately forgiving: unreadable archives and
// failed remote lookups are logged and skipped, because whatever remains in
// the catalog is still usable. Download execution is not — a caller asking
// for a specific artifact needs to know when it never arrived, so Download
// and Get propagate their failures. Nothing retries.
package download

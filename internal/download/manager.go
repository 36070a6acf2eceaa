package download

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/ipsv/ipsv/internal/version"
)

// Session is the subset of httpclient.Client the catalog needs: page
// fetches for the remote lookup and streamed request execution for
// downloads. Cookies must persist across both.
type Session interface {
	GetString(ctx context.Context, url string) (string, error)
	Open(ctx context.Context, method, url string, params url.Values) (*http.Response, error)
}

// ProgressFunc receives byte-level progress while a version downloads.
// total is -1 when the server does not report a length.
type ProgressFunc func(v version.Version, written, total int64)

// Manager is the version catalog for one resource kind.
//
// A Manager is rebuilt fresh each process run and used by a single caller;
// it performs no locking. Populate local before remote so a remote "latest"
// that is already cached enriches the existing entry instead of
// duplicating it.
type Manager struct {
	profile    Profile
	session    Session
	dir        string
	licenseURL string
	logger     *log.Logger
	onProgress ProgressFunc

	entries map[string]*Meta
	order   []*Meta
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the catalog logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithProgressFunc sets the download progress callback.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(m *Manager) { m.onProgress = fn }
}

// NewManager creates a catalog manager for the given resource profile.
// Archives live under <dataDir>/versions/<profile name>.
func NewManager(profile Profile, session Session, dataDir, licenseURL string, opts ...Option) *Manager {
	m := &Manager{
		profile:    profile,
		session:    session,
		dir:        filepath.Join(dataDir, "versions", profile.Name()),
		licenseURL: licenseURL,
		logger:     log.New(io.Discard),
		entries:    make(map[string]*Meta),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the directory archives are cached in.
func (m *Manager) Dir() string { return m.dir }

// Populate runs the full catalog build: local scan, remote lookup, sort.
// The order is significant — local first, so the remote pass merges.
func (m *Manager) Populate(ctx context.Context) {
	m.PopulateLocal()
	m.PopulateLatest(ctx)
	m.Sort()
}

// PopulateLocal scans the versions directory and inserts an entry for every
// readable archive. Unreadable or unrecognized archives are logged at warn
// and skipped; PopulateLocal never fails.
func (m *Manager) PopulateLocal() {
	paths, err := filepath.Glob(filepath.Join(m.dir, "*"+archiveExt))
	if err != nil {
		// Only reachable with a malformed pattern.
		m.logger.Warn("listing versions directory failed", "dir", m.dir, "err", err)
		return
	}

	for _, path := range paths {
		v, err := m.profile.ReadVersion(path)
		if err != nil {
			m.logger.Warn("unreadable archive in versions directory", "path", path, "err", err)
			continue
		}
		m.insert(&Meta{Version: v, Filepath: path, manager: m})
	}
}

// PopulateLatest asks the resource profile for the newest remote release
// and merges it into the catalog. When the remote version is already
// present locally the download request is attached to the existing entry,
// keeping its cached path; otherwise a remote-only entry is inserted.
//
// Every failure here is logged and swallowed: local archives remain a
// usable catalog even when the licensing site is unreachable or changed.
func (m *Manager) PopulateLatest(ctx context.Context) {
	v, req, err := m.profile.FetchLatest(ctx, m.session, m.licenseURL)
	if err != nil {
		m.logger.Error("unable to retrieve latest version information",
			"resource", m.profile.Name(), "err", err)
		return
	}

	m.logger.Info("latest version", "resource", m.profile.Name(), "version", v.String())

	if existing, ok := m.entries[v.String()]; ok {
		existing.Request = &req
		return
	}
	m.insert(&Meta{Version: v, Request: &req, manager: m})
}

// Sort orders the catalog ascending by version. Latest reads the greatest
// entry, so Sort must follow any population pass.
func (m *Manager) Sort() {
	sort.SliceStable(m.order, func(i, j int) bool {
		return m.order[i].Version.Less(m.order[j].Version)
	})
}

// insert adds or replaces the entry for meta's version.
func (m *Manager) insert(meta *Meta) {
	key := meta.Version.String()
	if old, ok := m.entries[key]; ok {
		for i, e := range m.order {
			if e == old {
				m.order[i] = meta
				break
			}
		}
	} else {
		m.order = append(m.order, meta)
	}
	m.entries[key] = meta
}

// Versions returns the catalog entries in ascending version order.
func (m *Manager) Versions() []*Meta {
	out := make([]*Meta, len(m.order))
	copy(out, m.order)
	return out
}

// Lookup returns the entry for an exact version string, if present.
func (m *Manager) Lookup(v string) (*Meta, bool) {
	meta, ok := m.entries[v]
	return meta, ok
}

// Latest returns the entry with the greatest version. ok is false when the
// catalog is empty — run the population passes first.
func (m *Manager) Latest() (*Meta, bool) {
	if len(m.order) == 0 {
		return nil, false
	}
	return m.order[len(m.order)-1], true
}

// Get returns the archive path for meta, downloading it when needed.
//
// With useCache and a cached file this is a pure lookup: no network, no
// filesystem. With useCache false the cache is bypassed and the version is
// re-downloaded even when present. Download failures propagate.
func (m *Manager) Get(ctx context.Context, meta *Meta, useCache bool) (string, error) {
	m.logger.Info("retrieving version",
		"resource", m.profile.Name(), "version", meta.Version.String())

	if meta.Filepath != "" {
		if useCache {
			return meta.Filepath, nil
		}
		m.logger.Info("ignoring cached version", "version", meta.Version.String())
	} else if !useCache {
		m.logger.Info("no cached download to bypass for this version")
	}

	if err := meta.Download(ctx); err != nil {
		return "", err
	}
	return meta.Filepath, nil
}

package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ipsv/ipsv/internal/httpclient"
	"github.com/ipsv/ipsv/internal/scraper"
	"github.com/ipsv/ipsv/internal/version"
)

// archiveExt is the extension of cached release archives.
const archiveExt = ".zip"

// downloadChunkSize is the write granularity during downloads. Each chunk
// is synced to disk so an abrupt termination loses at most one chunk.
const downloadChunkSize = 32 * 1024

// Meta is one catalog entry: a version together with how it can be
// obtained. At least one of Filepath and Request is set once the entry is
// in a catalog; both are set when a locally cached version is also known
// remotely.
type Meta struct {
	// Version is the catalog key.
	Version version.Version

	// Filepath is the local archive path, empty until downloaded.
	Filepath string

	// Request is the deferred download request, nil for entries known
	// only from the local scan.
	Request *scraper.Request

	manager *Manager
}

// Cached reports whether a local archive exists for this entry.
func (m *Meta) Cached() bool { return m.Filepath != "" }

// Downloadable reports whether a remote download request is attached.
func (m *Meta) Downloadable() bool { return m.Request != nil }

// Download executes the entry's deferred request and streams the archive
// into the manager's versions directory.
//
// Any previous file at the entry's path is removed first so a refreshed
// download never mixes with stale data. On success Filepath points at the
// new archive. HTTP and filesystem failures propagate — the caller asked
// for this artifact and must know if it never arrived.
func (m *Meta) Download(ctx context.Context) error {
	if m.Request == nil {
		return fmt.Errorf("version %s has no download request", m.Version)
	}

	log := m.manager.logger
	log.Debug("submitting download request",
		"method", m.Request.Method, "url", m.Request.URL)

	resp, err := m.manager.session.Open(ctx, m.Request.Method, m.Request.URL, m.Request.Params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if m.Filepath != "" {
		if _, err := os.Stat(m.Filepath); err == nil {
			log.Info("removing old version download", "path", m.Filepath)
			if err := os.Remove(m.Filepath); err != nil {
				return fmt.Errorf("remove old download: %w", err)
			}
		}
	}

	if err := os.MkdirAll(m.manager.dir, 0o755); err != nil {
		return fmt.Errorf("create versions directory: %w", err)
	}

	dest := m.Filepath
	if dest == "" {
		dest = filepath.Join(m.manager.dir, m.Version.String()+archiveExt)
	}

	if err := m.streamTo(dest, resp.Body, resp.ContentLength); err != nil {
		return err
	}

	m.Filepath = dest
	log.Info("version downloaded", "version", m.Version.String(), "path", dest)
	return nil
}

// streamTo copies body to dest in fixed-size chunks, syncing after each.
func (m *Meta) streamTo(dest string, body io.Reader, total int64) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	var w io.Writer = f
	if m.manager.onProgress != nil {
		v := m.Version
		w = &httpclient.ProgressWriter{
			Writer: f,
			Total:  total,
			OnUpdate: func(written, total int64) {
				m.manager.onProgress(v, written, total)
			},
		}
	}

	buf := make([]byte, downloadChunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", dest, werr)
			}
			if serr := f.Sync(); serr != nil {
				f.Close()
				return fmt.Errorf("sync %s: %w", dest, serr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			return fmt.Errorf("read download stream: %w", rerr)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

// Package archive reads IPS release archives.
//
// A release archive is a zip whose single top-level directory is named
// "ips_" followed by exactly five word characters, and which contains the
// manifest applications/core/data/versions.json — a JSON array of version
// strings whose last element is the version of the release.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"archive/zip"

	"github.com/ipsv/ipsv/internal/version"
)

var (
	// ErrCorruptArchive is returned when the zip container itself cannot
	// be opened.
	ErrCorruptArchive = errors.New("unreadable release archive")

	// ErrUnrecognizedFormat is returned when the archive opens fine but
	// its internal layout does not match an IPS release.
	ErrUnrecognizedFormat = errors.New("unrecognized release archive layout")
)

// setupDirPattern matches the expected top-level setup directory, with or
// without a trailing separator.
var setupDirPattern = regexp.MustCompile(`^ips_\w{5}/?$`)

// manifestRelPath is the manifest location relative to the setup directory.
const manifestRelPath = "applications/core/data/versions.json"

// ReadVersion opens the release archive at path and extracts its version
// number from the embedded manifest.
//
// The read is purely inspective; the archive is never extracted. Errors
// wrap ErrCorruptArchive or ErrUnrecognizedFormat so callers can treat a
// bad archive as skippable:
//
//	v, err := archive.ReadVersion(path)
//	if errors.Is(err, archive.ErrUnrecognizedFormat) {
//	    // log and move on to the next archive
//	}
func ReadVersion(path string) (version.Version, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return version.Version{}, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer r.Close()

	if len(r.File) == 0 {
		return version.Version{}, fmt.Errorf("%w: archive is empty", ErrUnrecognizedFormat)
	}

	first := r.File[0].Name
	if !setupDirPattern.MatchString(first) {
		return version.Version{}, fmt.Errorf("%w: unexpected top-level entry %q", ErrUnrecognizedFormat, first)
	}

	manifestPath := strings.TrimSuffix(first, "/") + "/" + manifestRelPath
	manifest := findEntry(&r.Reader, manifestPath)
	if manifest == nil {
		return version.Version{}, fmt.Errorf("%w: missing %s", ErrUnrecognizedFormat, manifestRelPath)
	}

	versions, err := readManifest(manifest)
	if err != nil {
		return version.Version{}, err
	}

	// The last manifest element is authoritative.
	v, err := version.Parse(versions[len(versions)-1])
	if err != nil {
		return version.Version{}, fmt.Errorf("%w: bad manifest version: %v", ErrUnrecognizedFormat, err)
	}
	return v, nil
}

func findEntry(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readManifest(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	var versions []string
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, fmt.Errorf("%w: bad versions manifest: %v", ErrUnrecognizedFormat, err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: empty versions manifest", ErrUnrecognizedFormat)
	}
	return versions, nil
}

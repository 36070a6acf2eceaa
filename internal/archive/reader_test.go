package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeTestArchive builds a zip at path with the given entries, in order.
func writeTestArchive(t *testing.T, path string, entries map[string]string, order []string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range order {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(entries[name])); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

func TestReadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "4.1.19.1.zip")

	writeTestArchive(t, path, map[string]string{
		"ips_4fca2/": "",
		"ips_4fca2/applications/core/data/versions.json": `["4.1.18.0","4.1.19.1"]`,
	}, []string{"ips_4fca2/", "ips_4fca2/applications/core/data/versions.json"})

	v, err := ReadVersion(path)
	if err != nil {
		t.Fatalf("ReadVersion failed: %v", err)
	}
	if got := v.String(); got != "4.1.19.1" {
		t.Errorf("version = %q, want %q", got, "4.1.19.1")
	}
}

func TestReadVersionNoTrailingSlash(t *testing.T) {
	// Some zip writers list the setup dir without a trailing separator.
	dir := t.TempDir()
	path := filepath.Join(dir, "release.zip")

	writeTestArchive(t, path, map[string]string{
		"ips_ab0de": "",
		"ips_ab0de/applications/core/data/versions.json": `["4.0.13.1"]`,
	}, []string{"ips_ab0de", "ips_ab0de/applications/core/data/versions.json"})

	v, err := ReadVersion(path)
	if err != nil {
		t.Fatalf("ReadVersion failed: %v", err)
	}
	if got := v.String(); got != "4.0.13.1" {
		t.Errorf("version = %q, want %q", got, "4.0.13.1")
	}
}

func TestReadVersionRejectsLayout(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		order   []string
	}{
		{
			name:    "wrong top-level directory",
			entries: map[string]string{"other_dir/": "", "other_dir/file.txt": "x"},
			order:   []string{"other_dir/", "other_dir/file.txt"},
		},
		{
			name:    "setup dir name too long",
			entries: map[string]string{"ips_abcdef/": ""},
			order:   []string{"ips_abcdef/"},
		},
		{
			name:    "missing manifest",
			entries: map[string]string{"ips_4fca2/": "", "ips_4fca2/readme.txt": "hi"},
			order:   []string{"ips_4fca2/", "ips_4fca2/readme.txt"},
		},
		{
			name: "manifest is not a JSON array",
			entries: map[string]string{
				"ips_4fca2/": "",
				"ips_4fca2/applications/core/data/versions.json": `{"latest":"4.1.19.1"}`,
			},
			order: []string{"ips_4fca2/", "ips_4fca2/applications/core/data/versions.json"},
		},
		{
			name: "empty manifest",
			entries: map[string]string{
				"ips_4fca2/": "",
				"ips_4fca2/applications/core/data/versions.json": `[]`,
			},
			order: []string{"ips_4fca2/", "ips_4fca2/applications/core/data/versions.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.zip")
			writeTestArchive(t, path, tt.entries, tt.order)

			_, err := ReadVersion(path)
			if !errors.Is(err, ErrUnrecognizedFormat) {
				t.Errorf("error = %v, want ErrUnrecognizedFormat", err)
			}
		})
	}
}

func TestReadVersionCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-zip.zip")
	if err := os.WriteFile(path, []byte("this is not a zip file"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := ReadVersion(path)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Errorf("error = %v, want ErrCorruptArchive", err)
	}
}

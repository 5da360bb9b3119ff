// Package bundle packs a knowledge-base output directory into a zip
// archive carrying a bundle.json manifest of every file and its SHA-256.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the archive entry holding the file manifest.
const ManifestName = "bundle.json"

// ErrChecksum is returned when an archived file does not match its manifest entry.
var ErrChecksum = errors.New("bundle checksum mismatch")

// Entry describes one archived file.
type Entry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest lists the archived files in path order.
type Manifest struct {
	CreatedAt time.Time `json:"created_at"`
	Files     []Entry   `json:"files"`
}

// DefaultName returns the archive name used when none is given.
func DefaultName(t time.Time) string {
	return "kb_bundle_" + t.UTC().Format("20060102T150405Z") + ".zip"
}

// Create archives every regular file under dir into w.
// Dotfiles, dot-directories and a top-level bundle.json are skipped.
// Entries are written in lexical path order with their modification
// time set to now so that identical trees produce identical archives.
func Create(ctx context.Context, w io.Writer, dir string, now time.Time) (*Manifest, error) {
	return create(ctx, w, dir, now, "")
}

// WriteFile creates the archive at dst. If dst lies inside dir it is
// left out of the archive.
func WriteFile(ctx context.Context, dst, dir string, now time.Time) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("failed to create bundle directory: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	skip, err := filepath.Abs(dst)
	if err != nil {
		f.Close()
		return nil, err
	}
	m, err := create(ctx, f, dir, now, skip)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close bundle: %w", cerr)
	}
	if err != nil {
		os.Remove(dst)
		return nil, err
	}
	return m, nil
}

func create(ctx context.Context, w io.Writer, dir string, now time.Time, skip string) (*Manifest, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle source %s is not a directory", dir)
	}

	zw := zip.NewWriter(w)
	manifest := &Manifest{CreatedAt: now.UTC(), Files: []Entry{}}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != root && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || p == skip {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == ManifestName {
			return nil
		}

		entry, err := addFile(zw, p, rel, now)
		if err != nil {
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		manifest.Files = append(manifest.Files, entry)
		return nil
	})
	if err != nil {
		zw.Close()
		return nil, err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		zw.Close()
		return nil, err
	}
	data = append(data, '\n')
	hw, err := zw.CreateHeader(header(ManifestName, now))
	if err != nil {
		zw.Close()
		return nil, err
	}
	if _, err := hw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish bundle: %w", err)
	}
	return manifest, nil
}

func addFile(zw *zip.Writer, src, name string, now time.Time) (Entry, error) {
	f, err := os.Open(src)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	w, err := zw.CreateHeader(header(name, now))
	if err != nil {
		return Entry{}, err
	}
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(w, h), f)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Path: name, Size: n, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

func header(name string, now time.Time) *zip.FileHeader {
	return &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: now.UTC(),
	}
}

// Verify opens the archive at path and checks every manifest entry
// against the archived bytes.
func Verify(path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	mf, ok := files[ManifestName]
	if !ok {
		return nil, fmt.Errorf("%w: %s missing", ErrChecksum, ManifestName)
	}
	raw, err := readEntry(mf)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}

	for _, e := range manifest.Files {
		f, ok := files[e.Path]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing", ErrChecksum, e.Path)
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != e.SHA256 {
			return nil, fmt.Errorf("%w: %s", ErrChecksum, e.Path)
		}
	}
	return &manifest, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

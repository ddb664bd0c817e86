package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrUnreadableArchive indicates the upload is not a readable ZIP file.
	ErrUnreadableArchive = errors.New("unreadable archive")
	// ErrEntryNotFound indicates the requested path is absent from the archive.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// Entry is an archive member whose bytes are read on demand.
type Entry struct {
	Path string
	Size uint64
	Open func() ([]byte, error)
}

// Index maps archive-relative paths to their ZIP members. It is built once
// per loaded archive and never modified afterwards.
type Index struct {
	files map[string]*zip.File
	order []string
}

// Open indexes the ZIP archive held in data.
func Open(data []byte) (*Index, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
	}

	idx := &Index{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		p := NormalizePath(f.Name)
		if p == "" {
			continue
		}
		if _, exists := idx.files[p]; exists {
			continue
		}
		idx.files[p] = f
		idx.order = append(idx.order, p)
	}

	return idx, nil
}

// NormalizePath turns a stored reference into an index key.
func NormalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return strings.TrimLeft(p, "/")
}

// Len reports the number of file entries.
func (i *Index) Len() int {
	return len(i.order)
}

// Entries lists the archive members in archive order.
func (i *Index) Entries() []Entry {
	entries := make([]Entry, 0, len(i.order))
	for _, p := range i.order {
		f := i.files[p]
		entries = append(entries, Entry{
			Path: p,
			Size: f.UncompressedSize64,
			Open: func() ([]byte, error) { return readFile(f) },
		})
	}
	return entries
}

// Has reports whether ref resolves to an archive member.
func (i *Index) Has(ref string) bool {
	_, ok := i.files[NormalizePath(ref)]
	return ok
}

// Bytes returns the decompressed content stored under ref.
func (i *Index) Bytes(ref string) ([]byte, error) {
	p := NormalizePath(ref)
	f, ok := i.files[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, p)
	}
	return readFile(f)
}

// FindBase returns the first member, at any depth, whose base name is name.
func (i *Index) FindBase(name string) (string, bool) {
	for _, p := range i.order {
		if path.Base(p) == name {
			return p, true
		}
	}
	return "", false
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

// Package archive inspects and writes jar files.
//
// Three operations are needed by the classpath resolver: listing the Java
// packages an artifact provides ([ListPackages]), reading single entries
// such as the manifest ([ReadEntry]), and copying entries under a set of
// path prefixes into a new side archive ([CopyMatching]).
//
// Package listings are memoised in a process-wide LRU keyed by path,
// modification time and size, so the same artifact reached through many
// branches of a tree (or many modules in one process) is opened once.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ManifestPath is the location of the jar manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// ReadError reports that an existing archive could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read archive %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports that a new archive could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write archive %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// File is a single archive entry.
type File struct {
	Name string
	Data []byte
}

// Entries returns the names of all entries in the archive, in archive order.
func Entries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadEntry returns the content of a single entry. A missing entry is
// reported as os.ErrNotExist wrapped in a *ReadError.
func ReadEntry(path, name string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		return data, nil
	}
	return nil, &ReadError{Path: path, Err: fmt.Errorf("%s: %w", name, os.ErrNotExist)}
}

// ListPackages returns the sorted Java packages that contain at least one
// class in the archive. Classes in the default package, module-info and
// anything under META-INF are ignored. The returned slice is the caller's
// to modify.
func ListPackages(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	key := memoKey(path, info)
	if pkgs, ok := packageMemo.Get(key); ok {
		return slices.Clone(pkgs), nil
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer r.Close()

	seen := make(map[string]struct{})
	for _, f := range r.File {
		if pkg, ok := packageOf(f.Name); ok {
			seen[pkg] = struct{}{}
		}
	}
	pkgs := make([]string, 0, len(seen))
	for pkg := range seen {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	packageMemo.Add(key, pkgs)
	return slices.Clone(pkgs), nil
}

func packageOf(name string) (string, bool) {
	if !strings.HasSuffix(name, ".class") || strings.HasPrefix(name, "META-INF/") {
		return "", false
	}
	dir := path.Dir(name)
	if dir == "." || dir == "" {
		return "", false
	}
	return strings.ReplaceAll(dir, "/", "."), true
}

// CopyMatching copies every file entry of src whose name starts with one of
// prefixes into a new archive at dst and returns the number of copied
// entries. When nothing matches, dst is not created.
//
// Failures to open or read src are *ReadError; failures to write dst are
// *WriteError, and a partially written dst is removed.
func CopyMatching(src, dst string, prefixes []string) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, &ReadError{Path: src, Err: err}
	}
	defer r.Close()

	var files []File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !hasAnyPrefix(f.Name, prefixes) {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return 0, &ReadError{Path: src, Err: err}
		}
		files = append(files, File{Name: f.Name, Data: data})
	}
	if len(files) == 0 {
		return 0, nil
	}
	if err := Write(dst, files); err != nil {
		return 0, err
	}
	return len(files), nil
}

// Write creates an archive at path containing files in order.
func Write(path string, files []File) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = &WriteError{Path: path, Err: cerr}
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := zip.NewWriter(out)
	for _, f := range files {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return &WriteError{Path: path, Err: err}
		}
		if _, err := fw.Write(f.Data); err != nil {
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := w.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

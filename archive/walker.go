// Package archive reads drawing packages: zip entries become parsed XML parts
// and raw media payloads ready for the document model.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The name argument is entry path with code page already
// applied, file is the zip.File structure for the entry. If an error is
// returned, processing stops.
type WalkFunc func(name string, file *zip.File) error

// Walk walks all files in the archive which names start with pattern calling
// walkFn for each item. When cp is not nil it is used to decode entry names
// not marked as UTF-8. Entries with path traversal components ("..") or
// absolute paths abort the walk.
func Walk(archive, pattern string, cp encoding.Encoding, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	return walkFiles(r.File, pattern, cp, walkFn)
}

func walkFiles(files []*zip.File, pattern string, cp encoding.Encoding, walkFn WalkFunc) error {
	for _, f := range files {
		name := entryName(f, cp)
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			if err := walkFn(name, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// entryName forces code page on names which are not flagged as UTF-8. Names
// which cannot be decoded are returned as is.
func entryName(f *zip.File, cp encoding.Encoding) string {
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	if n, err := cp.NewDecoder().String(f.Name); err == nil {
		return n
	}
	return f.Name
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

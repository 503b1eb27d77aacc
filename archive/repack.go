package archive

import (
	"fmt"
	"os"

	fixzip "github.com/hidez8891/zip"
)

// Repack copies archive entry by entry dropping data descriptor flag. Some
// producers write descriptors with wrong sizes which archive/zip refuses to
// read, raw copy keeps compressed data intact.
func Repack(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			w.Close()
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finish target file (%s): %w", to, err)
	}
	return nil
}

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"vsdxc/misc"
	"vsdxc/vsdx"
)

// maxEntrySize limits uncompressed size of a single package entry.
const maxEntrySize = 256 << 20

var packageExts = []string{".vsdx", ".vsdm"}

// Options control how package archive is read.
type Options struct {
	// CodePage, when set, is forced on entry names not flagged as UTF-8.
	CodePage encoding.Encoding
	// FixZip makes reader repack archive before reading.
	FixZip bool
}

// Package is the content of drawing archive split into XML parts and media.
type Package struct {
	Name  string
	Parts vsdx.Parts
	Media vsdx.Media
}

// IsPackageFile checks extension and zip signature of the file.
func IsPackageFile(name string) (bool, error) {
	if !slices.Contains(packageExts, strings.ToLower(filepath.Ext(name))) {
		return false, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// ReadPackage reads drawing archive. Entries with .xml and .rels extensions
// are parsed, everything else is kept as raw bytes.
func ReadPackage(name string, opts Options, log *zap.Logger) (*Package, error) {
	src := name
	if opts.FixZip {
		tmp, err := os.MkdirTemp("", misc.GetAppName()+"-fix-")
		if err != nil {
			return nil, fmt.Errorf("unable to create temporary directory: %w", err)
		}
		defer os.RemoveAll(tmp)

		src = filepath.Join(tmp, filepath.Base(name))
		if err := Repack(name, src); err != nil {
			return nil, fmt.Errorf("unable to fix package archive: %w", err)
		}
		log.Debug("Package archive repacked", zap.String("file", name))
	}

	pkg := &Package{
		Name:  filepath.Base(name),
		Parts: make(vsdx.Parts),
		Media: make(vsdx.Media),
	}
	err := Walk(src, "", opts.CodePage, func(entry string, f *zip.File) error {
		data, err := readEntry(f)
		if err != nil {
			return fmt.Errorf("unable to read package entry %s: %w", entry, err)
		}
		return pkg.add(entry, data, log)
	})
	if err != nil {
		return nil, err
	}

	log.Debug("Package read", zap.String("file", name), zap.Int("parts", len(pkg.Parts)), zap.Int("media", len(pkg.Media)))
	return pkg, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("entry is too large (%d bytes)", f.UncompressedSize64)
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(io.LimitReader(r, maxEntrySize))
}

func (p *Package) add(name string, data []byte, log *zap.Logger) error {
	if _, exists := p.Parts[name]; exists {
		return fmt.Errorf("%w: entry %s is present more than once", vsdx.ErrMalformedPackage, name)
	}
	if _, exists := p.Media[name]; exists {
		return fmt.Errorf("%w: entry %s is present more than once", vsdx.ErrMalformedPackage, name)
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".xml", ".rels":
		doc, err := ParsePart(data)
		if err != nil {
			return fmt.Errorf("%w: part %s: %w", vsdx.ErrMalformedPackage, name, err)
		}
		p.Parts[name] = doc
	default:
		p.Media[name] = data
		log.Debug("Media entry", zap.String("entry", name), zap.Int("size", len(data)), zap.String("mime", vsdx.MediaType(data)))
	}
	return nil
}

// ParsePart parses single XML part honoring declared encoding.
func ParsePart(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, errors.New("no root element")
	}
	return doc, nil
}

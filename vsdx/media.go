package vsdx

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ForeignData describes embedded object (usually picture) of the shape.
type ForeignData struct {
	ForeignType     string
	CompressionType string
	// Path is package path of the media part, empty when object is not
	// linked through relationship.
	Path   string
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// MediaType sniffs payload, returns empty string for unrecognized data (EMF
// and WMF are not known to the detector).
func MediaType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// foreignData resolves ForeignData element. Broken links are not fatal - shape
// simply has no picture.
func (sc *shapeScope) foreignData(shapeID int, el *etree.Element) *ForeignData {
	fd := &ForeignData{
		ForeignType:     el.SelectAttrValue("ForeignType", ""),
		CompressionType: el.SelectAttrValue("CompressionType", ""),
	}
	rel := el.SelectElement("Rel")
	if rel == nil {
		return fd
	}
	link, ok := ResolveRelationship(sc.model.parts, relID(rel), sc.relsPath())
	if !ok || !link.Is(relTypeImage) || link.External {
		sc.model.log.Warn("Unable to resolve shape foreign data, ignoring",
			zap.Int("shape", shapeID), zap.String("rel", relID(rel)), zap.String("part", sc.part))
		return fd
	}
	fd.Path = link.Target
	data, ok := sc.model.media[link.Target]
	if !ok {
		sc.model.log.Warn("Shape foreign data not found in package, ignoring",
			zap.Int("shape", shapeID), zap.String("media", link.Target))
		return fd
	}
	fd.Data = data
	fd.MIME = MediaType(data)
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		fd.Width, fd.Height = cfg.Width, cfg.Height
	} else {
		sc.model.log.Debug("Unable to decode foreign data dimensions",
			zap.Int("shape", shapeID), zap.String("media", link.Target), zap.String("mime", fd.MIME), zap.Error(err))
	}
	return fd
}

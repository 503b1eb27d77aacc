package vsdx

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"vsdxc/config"
)

// DocumentPart is the package path of document properties part.
const DocumentPart = "visio/document.xml"

const defaultMaxThemes = 64

type (
	// Parts maps package path to parsed XML part.
	Parts map[string]*etree.Document
	// Media maps package path to binary payload of non-XML part.
	Media map[string][]byte
)

// Model is fully linked document: pages, masters, stylesheets, themes and
// document properties. It is read-only after Load returns.
type Model struct {
	parts Parts
	media Media

	props   *Properties
	styles  *Index[string, *Style]
	themes  *Index[int, *Theme]
	masters *Index[string, *Master]
	pages   *Index[int, *Page]

	strictMasters bool
	maxThemes     int

	log *zap.Logger
}

// Load builds model from already parsed package. Parts and media are borrowed
// and must not be changed while model is in use. cfg may be nil.
func Load(parts Parts, media Media, cfg *config.DocumentConfig, log *zap.Logger) (*Model, error) {
	m := &Model{
		parts:     parts,
		media:     media,
		props:     newProperties(),
		styles:    NewIndex[string, *Style]("stylesheets"),
		themes:    NewIndex[int, *Theme]("themes"),
		masters:   NewIndex[string, *Master]("masters"),
		pages:     NewIndex[int, *Page]("pages"),
		maxThemes: defaultMaxThemes,
		log:       log,
	}
	if cfg != nil {
		m.strictMasters = cfg.StrictMasters
		if cfg.MaxThemes > 0 {
			m.maxThemes = cfg.MaxThemes
		}
	}

	var root *etree.Element
	if doc, ok := parts[DocumentPart]; ok {
		root = doc.Root()
	} else {
		log.Debug("No document part in package", zap.String("part", DocumentPart))
	}

	m.props.initialise(root, log)
	if err := m.loadStyles(root); err != nil {
		return nil, fmt.Errorf("unable to load stylesheets: %w", err)
	}
	if err := m.loadThemes(m.themePart); err != nil {
		return nil, fmt.Errorf("unable to load themes: %w", err)
	}
	// masters must be known before page shapes are classified
	if err := m.loadMasters(); err != nil {
		return nil, fmt.Errorf("unable to load masters: %w", err)
	}
	if err := m.loadPages(); err != nil {
		return nil, fmt.Errorf("unable to load pages: %w", err)
	}
	if err := m.linkBackgrounds(); err != nil {
		return nil, fmt.Errorf("unable to link background pages: %w", err)
	}

	log.Debug("Model loaded",
		zap.Int("pages", m.pages.Len()),
		zap.Int("masters", m.masters.Len()),
		zap.Int("styles", m.styles.Len()),
		zap.Int("themes", m.themes.Len()),
		zap.Int("colors", m.props.ColorCount()),
		zap.Int("fonts", m.props.FontCount()),
	)
	return m, nil
}

func (m *Model) themePart(n int) (*etree.Document, bool) {
	doc, ok := m.parts[ThemePart(n)]
	return doc, ok
}

// contentsRoot returns root element of the linked contents part, it must have
// expected tag.
func (m *Model) contentsRoot(part, tag string) (*etree.Element, error) {
	doc, ok := m.parts[part]
	if !ok || doc == nil {
		return nil, fmt.Errorf("part %s not found: %w", part, ErrMalformedPackage)
	}
	root := doc.Root()
	if root == nil || root.Tag != tag {
		return nil, fmt.Errorf("part %s does not have %s root: %w", part, tag, ErrMalformedPackage)
	}
	return root, nil
}

// Pages returns all pages in document order.
func (m *Model) Pages() *Index[int, *Page] { return m.pages }

// Page returns page by id, nil when there is no such page.
func (m *Model) Page(id int) *Page {
	p, _ := m.pages.Get(id)
	return p
}

// Themes returns loaded themes keyed by theme index.
func (m *Model) Themes() *Index[int, *Theme] { return m.themes }

// Theme returns theme by its index, nil when there is none.
func (m *Model) Theme(ix int) *Theme {
	t, _ := m.themes.Get(ix)
	return t
}

// Masters returns all masters in document order.
func (m *Model) Masters() *Index[string, *Master] { return m.masters }

// Master returns master by id, nil when there is no such master.
func (m *Model) Master(id string) *Master {
	ms, _ := m.masters.Get(id)
	return ms
}

// Styles returns all stylesheets.
func (m *Model) Styles() *Index[string, *Style] { return m.styles }

// Style returns stylesheet by id, nil when there is no such stylesheet.
func (m *Model) Style(id string) *Style {
	s, _ := m.styles.Get(id)
	return s
}

// Properties returns document color and font tables.
func (m *Model) Properties() *Properties { return m.props }

// Media returns payload of the media part.
func (m *Model) Media(path string) ([]byte, bool) {
	data, ok := m.media[path]
	return data, ok
}

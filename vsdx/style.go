package vsdx

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// styleCategory tells which base style a cell is inherited from.
type styleCategory int

const (
	categoryLine styleCategory = iota
	categoryFill
	categoryText
)

var fillCells = map[string]bool{
	"FillForegnd": true, "FillForegndTrans": true, "FillBkgnd": true, "FillBkgndTrans": true,
	"FillPattern": true, "ShdwForegnd": true, "ShdwForegndTrans": true, "ShdwBkgnd": true,
	"ShdwBkgndTrans": true, "ShdwPattern": true, "ShapeShdwType": true, "ShapeShdwOffsetX": true,
	"ShapeShdwOffsetY": true, "ShapeShdwObliqueAngle": true, "ShapeShdwScaleFactor": true,
	"FillGradientEnabled": true,
}

var textCells = map[string]bool{
	"LeftMargin": true, "RightMargin": true, "TopMargin": true, "BottomMargin": true,
	"VerticalAlign": true, "TextBkgnd": true, "TextBkgndTrans": true, "DefaultTabStop": true,
	"TextDirection": true,
}

func categoryOf(cell string) styleCategory {
	switch {
	case fillCells[cell]:
		return categoryFill
	case textCells[cell]:
		return categoryText
	default:
		return categoryLine
	}
}

// textSections are inherited through text base style, everything else through
// line style.
var textSections = map[string]bool{"Character": true, "Paragraph": true, "Tabs": true}

// Style is a single stylesheet from the document part. Base styles are linked
// after all stylesheets are known.
type Style struct {
	ID    string
	Name  string
	NameU string

	LineStyleID string
	FillStyleID string
	TextStyleID string

	Cells    Cells
	Sections []*Section

	line, fill, text *Style
}

func newStyle(el *etree.Element, log *zap.Logger) (*Style, error) {
	s := &Style{
		ID:          el.SelectAttrValue("ID", ""),
		Name:        el.SelectAttrValue("Name", ""),
		NameU:       el.SelectAttrValue("NameU", ""),
		LineStyleID: el.SelectAttrValue("LineStyle", ""),
		FillStyleID: el.SelectAttrValue("FillStyle", ""),
		TextStyleID: el.SelectAttrValue("TextStyle", ""),
		Cells:       parseCells(el),
	}
	if len(s.ID) == 0 {
		return nil, fmt.Errorf("stylesheet %q without ID: %w", s.NameU, ErrMalformedPackage)
	}
	for _, child := range el.SelectElements("Section") {
		sec, err := parseSection(child, log)
		if err != nil {
			return nil, fmt.Errorf("stylesheet %s: %w", s.ID, err)
		}
		s.Sections = append(s.Sections, sec)
	}
	return s, nil
}

// resolveReferences links base styles. Unknown ids are reported and left
// unresolved, stylesheet referencing itself (Visio does it for "No Style") is
// treated as having no base.
func (s *Style) resolveReferences(m *Model) {
	lookup := func(kind, id string) *Style {
		if len(id) == 0 || id == s.ID {
			return nil
		}
		base, ok := m.styles.Get(id)
		if !ok {
			m.log.Warn("Unknown base stylesheet, ignoring", zap.String("style", s.ID), zap.String("kind", kind), zap.String("base", id))
			return nil
		}
		return base
	}
	s.line = lookup("line", s.LineStyleID)
	s.fill = lookup("fill", s.FillStyleID)
	s.text = lookup("text", s.TextStyleID)
}

// LineStyle returns resolved line base style or nil.
func (s *Style) LineStyle() *Style { return s.line }

// FillStyle returns resolved fill base style or nil.
func (s *Style) FillStyle() *Style { return s.fill }

// TextStyle returns resolved text base style or nil.
func (s *Style) TextStyle() *Style { return s.text }

func (s *Style) base(cat styleCategory) *Style {
	switch cat {
	case categoryFill:
		return s.fill
	case categoryText:
		return s.text
	default:
		return s.line
	}
}

// Cell looks for the cell in this style and then walks base styles of the
// cell category.
func (s *Style) Cell(name string) (Cell, bool) {
	cat := categoryOf(name)
	seen := make(map[*Style]bool)
	for cur := s; cur != nil && !seen[cur]; cur = cur.base(cat) {
		seen[cur] = true
		if c, ok := cur.Cells[name]; ok {
			return c, true
		}
	}
	return Cell{}, false
}

// Section returns first section with the given name walking base styles.
func (s *Style) Section(name string) *Section {
	cat := categoryLine
	if textSections[name] {
		cat = categoryText
	}
	seen := make(map[*Style]bool)
	for cur := s; cur != nil && !seen[cur]; cur = cur.base(cat) {
		seen[cur] = true
		for _, sec := range cur.Sections {
			if sec.Name == name {
				return sec
			}
		}
	}
	return nil
}

// loadStyles builds stylesheet index in two passes so forward references
// resolve regardless of source order.
func (m *Model) loadStyles(root *etree.Element) error {
	if root == nil {
		return nil
	}
	sheets := root.SelectElement("StyleSheets")
	if sheets == nil {
		return nil
	}
	for _, el := range sheets.SelectElements("StyleSheet") {
		s, err := newStyle(el, m.log)
		if err != nil {
			return err
		}
		if err := m.styles.Insert(s.ID, s); err != nil {
			return err
		}
	}
	for s := range m.styles.Values() {
		s.resolveReferences(m)
	}
	m.log.Debug("Stylesheets loaded", zap.Int("count", m.styles.Len()))
	return nil
}

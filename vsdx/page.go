package vsdx

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// PagesPart is the package path of page list.
const PagesPart = "visio/pages/pages.xml"

// Point is a pair of screen coordinates.
type Point struct {
	X, Y float64
}

// Page is a single drawing page with its shapes and connections.
type Page struct {
	ID    int
	Name  string
	NameU string

	background  bool
	backPageID  int
	hasBackPage bool
	backPage    *Page

	cells    Cells
	shapes   *Index[int, *Shape]
	all      *Index[int, *Shape] // every shape of the page, ids are page-wide unique
	connects *Index[int, *Connect]
	parts    []string

	// numeric page cells are validated during construction
	width, height float64
	drawingScale  float64
	pageScale     float64

	model *Model
}

func (m *Model) newPage(el *etree.Element) (*Page, error) {
	p := &Page{
		Name:       el.SelectAttrValue("Name", ""),
		NameU:      el.SelectAttrValue("NameU", ""),
		background: boolAttr(el, "Background"),
		cells:      make(Cells),
		model:      m,
	}

	var err error
	if p.ID, err = intAttr(el, "ID", -1); err != nil {
		return nil, fmt.Errorf("page %q: %w", p.NameU, err)
	}
	if p.ID < 0 {
		return nil, fmt.Errorf("page %q without ID: %w", p.NameU, ErrMalformedPackage)
	}
	p.shapes = NewIndex[int, *Shape](fmt.Sprintf("page %d shapes", p.ID))
	p.all = NewIndex[int, *Shape](fmt.Sprintf("page %d shape ids", p.ID))
	p.connects = NewIndex[int, *Connect](fmt.Sprintf("page %d connects", p.ID))

	if !p.background && el.SelectAttr("BackPage") != nil {
		if p.backPageID, err = intAttr(el, "BackPage", 0); err != nil {
			return nil, fmt.Errorf("page %d: %w", p.ID, err)
		}
		p.hasBackPage = true
	}

	visited := map[string]bool{PagesPart: true}
	if err := p.walk(el, RelsPath(PagesPart), visited); err != nil {
		return nil, fmt.Errorf("page %d: %w", p.ID, err)
	}
	if err := p.prepareMeasures(); err != nil {
		return nil, fmt.Errorf("page %d: %w", p.ID, err)
	}
	return p, nil
}

// walk processes direct children of page element or of linked page contents.
// relsPath is the companion of the part el belongs to.
func (p *Page) walk(el *etree.Element, relsPath string, visited map[string]bool) error {
	log := p.model.log
	part := ownerPart(relsPath)

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "PageSheet":
			maps.Copy(p.cells, parseCells(child))
		case "Rel":
			link, ok := ResolveRelationship(p.model.parts, relID(child), relsPath)
			if !ok {
				return fmt.Errorf("unresolved relationship %q in %s: %w", relID(child), part, ErrMalformedPackage)
			}
			if !link.Is(relTypePage) {
				log.Debug("Page relationship is not a page link, ignoring", zap.Int("page", p.ID), zap.String("type", link.Type))
				continue
			}
			if visited[link.Target] {
				return fmt.Errorf("page contents %s linked more than once: %w", link.Target, ErrMalformedPackage)
			}
			visited[link.Target] = true

			contents, err := p.model.contentsRoot(link.Target, "PageContents")
			if err != nil {
				return err
			}
			p.parts = append(p.parts, link.Target)
			if err := p.walk(contents, RelsPath(link.Target), visited); err != nil {
				return err
			}
		case "Shapes":
			sc := &shapeScope{model: p.model, page: p, part: part}
			if err := sc.flattenShapes(child, nil, p.shapes, p.all); err != nil {
				return err
			}
		case "Connects":
			for _, c := range child.SelectElements("Connect") {
				if err := p.addConnect(c); err != nil {
					return err
				}
			}
		default:
			log.Debug("Unexpected tag in page, ignoring", zap.Int("page", p.ID), zap.String("part", part), zap.String("tag", child.Tag))
		}
	}
	return nil
}

func (p *Page) addConnect(el *etree.Element) error {
	from, err := intAttr(el, "FromSheet", -1)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if existing, ok := p.connects.Get(from); ok {
		return existing.add(el)
	}
	c, err := newConnect(el)
	if err != nil {
		return err
	}
	return p.connects.Insert(c.FromSheet, c)
}

// ownerPart is the reverse of RelsPath.
func ownerPart(relsPath string) string {
	return path.Join(path.Dir(path.Dir(relsPath)), strings.TrimSuffix(path.Base(relsPath), ".rels"))
}

// prepareMeasures validates and converts numeric page cells.
func (p *Page) prepareMeasures() error {
	measure := func(name string, dflt float64) (float64, error) {
		c, ok := p.cells[name]
		if !ok || len(c.Value) == 0 {
			return dflt, nil
		}
		v, err := c.Float()
		if err != nil {
			return 0, err
		}
		return ToScreen(v), nil
	}
	var err error
	if p.width, err = measure("PageWidth", 0); err != nil {
		return err
	}
	if p.height, err = measure("PageHeight", 0); err != nil {
		return err
	}
	if p.drawingScale, err = measure("DrawingScale", 1); err != nil {
		return err
	}
	if p.pageScale, err = measure("PageScale", 1); err != nil {
		return err
	}
	return nil
}

// IsBackground reports if page is a background page.
func (p *Page) IsBackground() bool { return p.background }

// BackPageID returns id of background page when one is specified.
func (p *Page) BackPageID() (int, bool) { return p.backPageID, p.hasBackPage }

// Background returns resolved background page, nil when there is none.
func (p *Page) Background() *Page { return p.backPage }

// Shapes returns top level shapes of the page.
func (p *Page) Shapes() *Index[int, *Shape] { return p.shapes }

// Connects returns connections keyed by connector shape id.
func (p *Page) Connects() *Index[int, *Connect] { return p.connects }

// Parts returns linked page contents parts in the order they were visited.
func (p *Page) Parts() []string { return slices.Clone(p.parts) }

// PageDimensions returns page width and height in screen coordinates.
func (p *Page) PageDimensions() Point {
	return Point{X: p.width, Y: p.height}
}

// DrawingScale returns drawing scale in screen coordinates, 1 when not set.
func (p *Page) DrawingScale() float64 { return p.drawingScale }

// PageScale returns page scale in screen coordinates, 1 when not set.
func (p *Page) PageScale() float64 { return p.pageScale }

// CellValue returns raw value of the page cell, empty string if absent.
func (p *Page) CellValue(name string) string {
	return p.cells[name].Value
}

// CellIntValue returns integer value of the page cell or dflt if cell is
// absent or not a number.
func (p *Page) CellIntValue(name string, dflt int) int {
	c, ok := p.cells[name]
	if !ok {
		return dflt
	}
	v, err := strconv.Atoi(strings.TrimSpace(c.Value))
	if err != nil {
		return dflt
	}
	return v
}

// CellNames returns sorted names of all page cells.
func (p *Page) CellNames() []string {
	return slices.Sorted(maps.Keys(p.cells))
}

// FindShape looks for the shape with id at any nesting level.
func (p *Page) FindShape(id int) *Shape {
	s, _ := p.all.Get(id)
	return s
}

func (m *Model) loadPages() error {
	doc, ok := m.parts[PagesPart]
	if !ok || doc.Root() == nil {
		m.log.Debug("No pages in package")
		return nil
	}
	for _, el := range doc.Root().ChildElements() {
		if el.Tag != "Page" {
			m.log.Debug("Unexpected tag in pages, ignoring", zap.String("tag", el.Tag))
			continue
		}
		p, err := m.newPage(el)
		if err != nil {
			return err
		}
		if err := m.pages.Insert(p.ID, p); err != nil {
			return err
		}
		m.log.Debug("Page loaded", zap.Int("id", p.ID), zap.String("name", p.NameU),
			zap.Int("shapes", p.shapes.Len()), zap.Int("connects", p.connects.Len()), zap.Bool("background", p.background))
	}
	return nil
}

// linkBackgrounds wires every foreground page to its background page. Page
// which is background itself never gets one. Chains are checked for cycles.
func (m *Model) linkBackgrounds() error {
	for p := range m.pages.Values() {
		if p.background || !p.hasBackPage {
			continue
		}
		bg, ok := m.pages.Get(p.backPageID)
		if !ok {
			m.log.Warn("Background page not found, ignoring", zap.Int("page", p.ID), zap.Int("background", p.backPageID))
			continue
		}
		if !bg.background {
			m.log.Warn("Background page is not marked as background", zap.Int("page", p.ID), zap.Int("background", bg.ID))
		}
		p.backPage = bg
	}
	for p := range m.pages.Values() {
		seen := make(map[int]bool)
		for cur := p; cur != nil; cur = cur.backPage {
			if seen[cur.ID] {
				return fmt.Errorf("page %d: background pages form a cycle at page %d: %w", p.ID, cur.ID, ErrMalformedPackage)
			}
			seen[cur.ID] = true
		}
	}
	return nil
}

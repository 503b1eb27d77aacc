package vsdx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Shape is a single shape from page or master contents. Everything is parsed
// once during construction, nested shapes (groups) are kept as children.
type Shape struct {
	ID            int
	Name          string
	NameU         string
	Type          string
	MasterID      string
	MasterShapeID int // 0 when shape does not reference master sub-shape

	LineStyleID string
	FillStyleID string
	TextStyleID string

	Text     string
	Cells    Cells
	Sections []*Section
	Foreign  *ForeignData

	edge        bool
	page        *Page
	master      *Master
	masterShape *Shape
	children    *Index[int, *Shape]
	model       *Model
}

// shapeScope carries everything shape construction needs to know about the
// place it is being built in.
type shapeScope struct {
	model *Model
	page  *Page  // nil for master contents
	part  string // package part shape elements come from
}

func (sc *shapeScope) relsPath() string {
	return RelsPath(sc.part)
}

func newShape(sc *shapeScope, el *etree.Element, edge bool, master *Master) (*Shape, error) {
	s := &Shape{
		Name:        el.SelectAttrValue("Name", ""),
		NameU:       el.SelectAttrValue("NameU", ""),
		Type:        el.SelectAttrValue("Type", ""),
		MasterID:    el.SelectAttrValue("Master", ""),
		LineStyleID: el.SelectAttrValue("LineStyle", ""),
		FillStyleID: el.SelectAttrValue("FillStyle", ""),
		TextStyleID: el.SelectAttrValue("TextStyle", ""),
		Cells:       parseCells(el),
		edge:        edge,
		page:        sc.page,
		master:      master,
		model:       sc.model,
	}

	var err error
	if s.ID, err = shapeID(el); err != nil {
		return nil, err
	}
	if s.MasterShapeID, err = intAttr(el, "MasterShape", 0); err != nil {
		return nil, fmt.Errorf("shape %d: %w", s.ID, err)
	}
	s.masterShape = masterShapeFor(master, s.MasterShapeID)

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Cell", "Shapes":
			// cells are already collected, nested shapes are flattened by caller
		case "Section":
			sec, err := parseSection(child, sc.model.log)
			if err != nil {
				return nil, fmt.Errorf("shape %d: %w", s.ID, err)
			}
			s.Sections = append(s.Sections, sec)
		case "Text":
			s.Text = collectText(child)
		case "ForeignData":
			s.Foreign = sc.foreignData(s.ID, child)
		case "Data1", "Data2", "Data3", "Icon":
		default:
			sc.model.log.Debug("Unexpected tag in shape, ignoring", zap.Int("shape", s.ID), zap.String("tag", child.Tag))
		}
	}
	return s, nil
}

func shapeID(el *etree.Element) (int, error) {
	value := el.SelectAttrValue("ID", "")
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("shape id %q: %w", value, ErrMalformedNumber)
	}
	return id, nil
}

// masterShapeFor returns master shape given shape inherits from: explicitly
// referenced sub-shape or primary shape of the master.
func masterShapeFor(master *Master, subID int) *Shape {
	if master == nil {
		return nil
	}
	if subID != 0 {
		return master.Shape(subID)
	}
	return master.Primary()
}

// collectText gathers character data of Text element dropping formatting
// markers (cp, pp, tp, fld).
func collectText(el *etree.Element) string {
	var sb strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		sb.WriteString(e.Text())
		for _, child := range e.ChildElements() {
			walk(child)
			sb.WriteString(child.Tail())
		}
	}
	walk(el)
	return sb.String()
}

// IsEdge reports if shape is a connector.
func (s *Shape) IsEdge() bool { return s.edge }

// IsVertex reports if shape is a node.
func (s *Shape) IsVertex() bool { return !s.edge }

// Page returns owning page, nil for master shapes.
func (s *Shape) Page() *Page { return s.page }

// Master returns master shape instance inherits from, may be nil.
func (s *Shape) Master() *Master { return s.master }

// MasterShape returns shape in the master this shape inherits cells from, may
// be nil.
func (s *Shape) MasterShape() *Shape { return s.masterShape }

// Children returns nested shapes of the group, nil for simple shapes.
func (s *Shape) Children() *Index[int, *Shape] { return s.children }

// Cell looks for cell in the shape itself, then in the master shape and then
// in stylesheets.
func (s *Shape) Cell(name string) (Cell, bool) {
	if c, ok := s.Cells[name]; ok {
		return c, true
	}
	if s.masterShape != nil && s.masterShape != s {
		if c, ok := s.masterShape.Cell(name); ok {
			return c, true
		}
	}
	if st := s.style(categoryOf(name)); st != nil {
		return st.Cell(name)
	}
	return Cell{}, false
}

// SectionsByName returns all sections with given name, sections of the master shape
// are used when shape does not have its own.
func (s *Shape) SectionsByName(name string) []*Section {
	var res []*Section
	for _, sec := range s.Sections {
		if sec.Name == name {
			res = append(res, sec)
		}
	}
	if len(res) == 0 && s.masterShape != nil && s.masterShape != s {
		return s.masterShape.SectionsByName(name)
	}
	return res
}

func (s *Shape) style(cat styleCategory) *Style {
	var id string
	switch cat {
	case categoryFill:
		id = s.FillStyleID
	case categoryText:
		id = s.TextStyleID
	default:
		id = s.LineStyleID
	}
	if len(id) == 0 {
		if s.masterShape != nil && s.masterShape != s {
			return s.masterShape.style(cat)
		}
		return nil
	}
	st, _ := s.model.styles.Get(id)
	return st
}

// Style returns line stylesheet of the shape (the one Visio shows as shape
// style), may be nil.
func (s *Shape) Style() *Style {
	return s.style(categoryLine)
}

// classifyEdge decides if shape element is connector: it has endpoint cells
// itself or - only when it does not - its master shape has them.
func classifyEdge(el *etree.Element, master *Master) (bool, error) {
	if parseCells(el).hasEndpoints() {
		return true, nil
	}
	if master == nil {
		return false, nil
	}
	subID, err := intAttr(el, "MasterShape", 0)
	if err != nil {
		return false, err
	}
	ms := masterShapeFor(master, subID)
	return ms != nil && ms.Cells.hasEndpoints(), nil
}

// shapeMaster returns master shape element inherits from: one named in Master
// attribute or inherited from enclosing group.
func (sc *shapeScope) shapeMaster(el *etree.Element, inherited *Master) (*Master, error) {
	id := el.SelectAttrValue("Master", "")
	if len(id) == 0 {
		return inherited, nil
	}
	if master, ok := sc.model.masters.Get(id); ok {
		return master, nil
	}
	if sc.model.strictMasters {
		return nil, fmt.Errorf("shape %s references unknown master %s: %w", el.SelectAttrValue("ID", ""), id, ErrMalformedPackage)
	}
	sc.model.log.Warn("Shape references unknown master, ignoring",
		zap.String("shape", el.SelectAttrValue("ID", "")), zap.String("master", id), zap.String("part", sc.part))
	return inherited, nil
}

// flattenShapes wraps every direct Shape of the Shapes container into out.
// Nested shapes become children of their group. When flat is not nil every
// shape at any depth is also put there (master contents).
func (sc *shapeScope) flattenShapes(el *etree.Element, inherited *Master, out, flat *Index[int, *Shape]) error {
	for _, child := range el.ChildElements() {
		if child.Tag != "Shape" {
			sc.model.log.Debug("Unexpected tag in shapes, ignoring", zap.String("part", sc.part), zap.String("tag", child.Tag))
			continue
		}

		var (
			master = inherited
			err    error
		)
		if sc.page != nil {
			// master contents never reference other masters
			if master, err = sc.shapeMaster(child, inherited); err != nil {
				return err
			}
		}
		edge, err := classifyEdge(child, master)
		if err != nil {
			return fmt.Errorf("shape %s: %w", child.SelectAttrValue("ID", ""), err)
		}
		shape, err := newShape(sc, child, edge, master)
		if err != nil {
			return err
		}
		if err := out.Insert(shape.ID, shape); err != nil {
			return err
		}
		if flat != nil && flat != out {
			if err := flat.Insert(shape.ID, shape); err != nil {
				return err
			}
		}
		if nested := child.SelectElement("Shapes"); nested != nil {
			shape.children = NewIndex[int, *Shape](fmt.Sprintf("shape %d children", shape.ID))
			if err := sc.flattenShapes(nested, master, shape.children, flat); err != nil {
				return err
			}
		}
	}
	return nil
}

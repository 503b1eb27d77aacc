package vsdx

import (
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// MastersPart is the package path of master list.
const MastersPart = "visio/masters/masters.xml"

// Master is a reusable shape template. All shapes of the master definition are
// kept in a single flat index, nesting is available through shape children.
type Master struct {
	ID    string
	Name  string
	NameU string
	Part  string

	shapes  *Index[int, *Shape]
	primary *Shape
}

// newMaster follows master relationship to its definition part and flattens
// all shapes found there.
func (m *Model) newMaster(el *etree.Element) (*Master, error) {
	ms := &Master{
		ID:    el.SelectAttrValue("ID", ""),
		Name:  el.SelectAttrValue("Name", ""),
		NameU: el.SelectAttrValue("NameU", ""),
	}
	if len(ms.ID) == 0 {
		return nil, fmt.Errorf("master %q without ID: %w", ms.NameU, ErrMalformedPackage)
	}
	ms.shapes = NewIndex[int, *Shape](fmt.Sprintf("master %s shapes", ms.ID))

	rels := el.SelectElements("Rel")
	if len(rels) != 1 {
		return nil, fmt.Errorf("master %s: expected single relationship, got %d: %w", ms.ID, len(rels), ErrMalformedPackage)
	}
	link, ok := ResolveRelationship(m.parts, relID(rels[0]), RelsPath(MastersPart))
	if !ok || !link.Is(relTypeMaster) {
		return nil, fmt.Errorf("master %s: unresolved relationship %q: %w", ms.ID, relID(rels[0]), ErrMalformedPackage)
	}
	ms.Part = link.Target

	contents, err := m.contentsRoot(link.Target, "MasterContents")
	if err != nil {
		return nil, fmt.Errorf("master %s: %w", ms.ID, err)
	}

	sc := &shapeScope{model: m, part: link.Target}
	for _, shapes := range contents.SelectElements("Shapes") {
		if err := sc.flattenShapes(shapes, nil, ms.shapes, ms.shapes); err != nil {
			return nil, fmt.Errorf("master %s: %w", ms.ID, err)
		}
	}
	for s := range ms.shapes.Values() {
		ms.primary = s
		break
	}
	if ms.primary == nil {
		m.log.Debug("Master without shapes", zap.String("master", ms.ID), zap.String("part", ms.Part))
	}
	return ms, nil
}

// Shape returns master shape by id, nil if there is no such shape.
func (ms *Master) Shape(id int) *Shape {
	s, _ := ms.shapes.Get(id)
	return s
}

// Primary returns first shape of the master definition.
func (ms *Master) Primary() *Shape {
	return ms.primary
}

// Shapes returns all master shapes regardless of nesting.
func (ms *Master) Shapes() *Index[int, *Shape] {
	return ms.shapes
}

func (m *Model) loadMasters() error {
	doc, ok := m.parts[MastersPart]
	if !ok || doc.Root() == nil {
		m.log.Debug("No masters in package")
		return nil
	}
	for _, el := range doc.Root().ChildElements() {
		if el.Tag != "Master" {
			m.log.Debug("Unexpected tag in masters, ignoring", zap.String("tag", el.Tag))
			continue
		}
		ms, err := m.newMaster(el)
		if err != nil {
			return err
		}
		if err := m.masters.Insert(ms.ID, ms); err != nil {
			return err
		}
	}
	m.log.Debug("Masters loaded", zap.Int("count", m.masters.Len()))
	return nil
}

package vsdx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Internal drawing units are inches, we are working in screen coordinates: 40
// per centimeter.
const (
	screenCoordinatesPerCm = 40
	centimetersPerInch     = 2.54

	// ConversionFactor converts inches to screen coordinates.
	ConversionFactor = screenCoordinatesPerCm * centimetersPerInch
)

// ToScreen converts value in inches to screen coordinates rounded to two
// decimal places.
func ToScreen(v float64) float64 {
	return math.Round(v*ConversionFactor*100) / 100
}

// Cell is a single ShapeSheet cell: name, value, unit and formula.
type Cell struct {
	Name    string
	Value   string
	Unit    string
	Formula string
}

func parseCell(el *etree.Element) Cell {
	return Cell{
		Name:    el.SelectAttrValue("N", ""),
		Value:   el.SelectAttrValue("V", ""),
		Unit:    el.SelectAttrValue("U", ""),
		Formula: el.SelectAttrValue("F", ""),
	}
}

// Float returns numeric value of the cell. Empty value is not an error and
// yields 0.
func (c Cell) Float() (float64, error) {
	if len(c.Value) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("cell %q value %q: %w", c.Name, c.Value, ErrMalformedNumber)
	}
	return v, nil
}

// Int returns integer value of the cell. Values written as floats ("1.0") are
// truncated.
func (c Cell) Int() (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(c.Value))
	if err == nil {
		return v, nil
	}
	f, err := c.Float()
	if err != nil || len(c.Value) == 0 {
		return 0, fmt.Errorf("cell %q value %q: %w", c.Name, c.Value, ErrMalformedNumber)
	}
	return int(f), nil
}

// Cells maps cell names to cells.
type Cells map[string]Cell

// parseCells collects direct Cell children of el.
func parseCells(el *etree.Element) Cells {
	cells := make(Cells)
	if el == nil {
		return cells
	}
	for _, child := range el.SelectElements("Cell") {
		c := parseCell(child)
		if len(c.Name) == 0 {
			continue
		}
		cells[c.Name] = c
	}
	return cells
}

func (cs Cells) Has(name string) bool {
	_, ok := cs[name]
	return ok
}

// hasEndpoints reports if cells describe 1-D shape (connector).
func (cs Cells) hasEndpoints() bool {
	for _, name := range [...]string{"BeginX", "BeginY", "EndX", "EndY"} {
		if cs.Has(name) {
			return true
		}
	}
	return false
}

// Row is a single row of the ShapeSheet section.
type Row struct {
	IX    int
	Type  string
	Name  string
	Del   bool
	Cells Cells
}

// Section is a named ShapeSheet section - Geometry, Connection, Character etc.
type Section struct {
	Name  string
	IX    int
	Cells Cells
	Rows  []Row
}

func parseSection(el *etree.Element, log *zap.Logger) (*Section, error) {
	s := &Section{
		Name:  el.SelectAttrValue("N", ""),
		Cells: parseCells(el),
	}
	var err error
	if s.IX, err = intAttr(el, "IX", 0); err != nil {
		return nil, fmt.Errorf("section %q: %w", s.Name, err)
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Cell":
			// already collected
		case "Row":
			row := Row{
				Type:  child.SelectAttrValue("T", ""),
				Name:  child.SelectAttrValue("N", ""),
				Del:   boolAttr(child, "Del"),
				Cells: parseCells(child),
			}
			if row.IX, err = intAttr(child, "IX", len(s.Rows)); err != nil {
				return nil, fmt.Errorf("section %q row: %w", s.Name, err)
			}
			s.Rows = append(s.Rows, row)
		default:
			log.Debug("Unexpected tag in section, ignoring", zap.String("section", s.Name), zap.String("tag", child.Tag))
		}
	}
	return s, nil
}

// intAttr returns integer value of the attribute, dflt if attribute is absent.
func intAttr(el *etree.Element, name string, dflt int) (int, error) {
	a := el.SelectAttr(name)
	if a == nil {
		return dflt, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(a.Value))
	if err != nil {
		return 0, fmt.Errorf("attribute %s=%q: %w", name, a.Value, ErrMalformedNumber)
	}
	return v, nil
}

// boolAttr treats "1" and "true" as set, everything else including absent
// attribute as false.
func boolAttr(el *etree.Element, name string) bool {
	switch strings.ToLower(strings.TrimSpace(el.SelectAttrValue(name, ""))) {
	case "1", "true":
		return true
	}
	return false
}

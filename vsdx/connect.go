package vsdx

import (
	"fmt"

	"github.com/beevik/etree"
)

// ConnectRecord is a single Connect element: glue of connector cell
// (FromSheet/FromCell) to the shape (ToSheet/ToCell).
type ConnectRecord struct {
	FromSheet int
	FromCell  string
	FromPart  int
	ToSheet   int
	ToCell    string
	ToPart    int
}

func parseConnectRecord(el *etree.Element) (ConnectRecord, error) {
	r := ConnectRecord{
		FromCell: el.SelectAttrValue("FromCell", ""),
		ToCell:   el.SelectAttrValue("ToCell", ""),
	}
	var err error
	if r.FromSheet, err = intAttr(el, "FromSheet", -1); err != nil {
		return r, fmt.Errorf("connect: %w", err)
	}
	if r.FromSheet < 0 {
		return r, fmt.Errorf("connect without FromSheet: %w", ErrMalformedPackage)
	}
	if r.ToSheet, err = intAttr(el, "ToSheet", 0); err != nil {
		return r, fmt.Errorf("connect from %d: %w", r.FromSheet, err)
	}
	if r.FromPart, err = intAttr(el, "FromPart", 0); err != nil {
		return r, fmt.Errorf("connect from %d: %w", r.FromSheet, err)
	}
	if r.ToPart, err = intAttr(el, "ToPart", 0); err != nil {
		return r, fmt.Errorf("connect from %d: %w", r.FromSheet, err)
	}
	return r, nil
}

// Connect merges all connect records of the same connector shape.
type Connect struct {
	FromSheet int
	Records   []ConnectRecord
}

func newConnect(el *etree.Element) (*Connect, error) {
	r, err := parseConnectRecord(el)
	if err != nil {
		return nil, err
	}
	return &Connect{FromSheet: r.FromSheet, Records: []ConnectRecord{r}}, nil
}

// add absorbs another record of the same connector.
func (c *Connect) add(el *etree.Element) error {
	r, err := parseConnectRecord(el)
	if err != nil {
		return err
	}
	if r.FromSheet != c.FromSheet {
		return fmt.Errorf("connect from %d merged into %d: %w", r.FromSheet, c.FromSheet, ErrMalformedPackage)
	}
	c.Records = append(c.Records, r)
	return nil
}

// Begin returns record gluing connector begin point.
func (c *Connect) Begin() (ConnectRecord, bool) {
	return c.byCell("BeginX")
}

// End returns record gluing connector end point.
func (c *Connect) End() (ConnectRecord, bool) {
	return c.byCell("EndX")
}

func (c *Connect) byCell(cell string) (ConnectRecord, bool) {
	for _, r := range c.Records {
		if r.FromCell == cell {
			return r, true
		}
	}
	return ConnectRecord{}, false
}

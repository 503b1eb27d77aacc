package vsdx

import (
	"strconv"

	"vsdxc/utils/debug"
)

// String returns readable tree of the whole model. It exists solely for
// manual inspection during debugging and for "inspect --to text".
func (m *Model) String() string {
	if m == nil {
		return "<nil Model>"
	}
	tw := debug.NewTreeWriter()

	tw.Line(0, "Properties colors[%d] fonts[%d]", m.props.ColorCount(), m.props.FontCount())
	tw.Attrs(1, "fonts", m.props.fonts)

	tw.Section(0, "Themes", m.themes.Len(), func(depth int) {
		for ix, t := range m.themes.All() {
			major, minor := t.Fonts()
			tw.Line(depth, "Theme[%d] %q part[%s] pure[%t] major[%q] minor[%q]", ix, t.Name, t.Part, t.pure, major, minor)
			tw.Attrs(depth+1, "colors", t.colors)
		}
	})

	tw.Section(0, "Stylesheets", m.styles.Len(), func(depth int) {
		for id, s := range m.styles.All() {
			tw.Line(depth, "Style[%s] %q line[%s] fill[%s] text[%s]", id, s.NameU, s.LineStyleID, s.FillStyleID, s.TextStyleID)
			writeCells(tw, depth+1, s.Cells)
		}
	})

	tw.Section(0, "Masters", m.masters.Len(), func(depth int) {
		for id, ms := range m.masters.All() {
			primary := -1
			if ms.primary != nil {
				primary = ms.primary.ID
			}
			tw.Line(depth, "Master[%s] %q part[%s] primary[%d] shapes[%d]", id, ms.NameU, ms.Part, primary, ms.shapes.Len())
		}
	})

	tw.Section(0, "Pages", m.pages.Len(), func(depth int) {
		for _, p := range m.pages.All() {
			p.dump(tw, depth)
		}
	})
	return tw.String()
}

func (p *Page) dump(tw *debug.TreeWriter, depth int) {
	bg := "none"
	if p.backPage != nil {
		bg = strconv.Itoa(p.backPage.ID)
	}
	dim := p.PageDimensions()
	tw.Line(depth, "Page[%d] %q background[%t] backpage[%s] size[%.2fx%.2f] scale[%.2f/%.2f]",
		p.ID, p.NameU, p.background, bg, dim.X, dim.Y, p.drawingScale, p.pageScale)
	tw.Section(depth+1, "Shapes", p.shapes.Len(), func(depth int) {
		for s := range p.shapes.Values() {
			s.dump(tw, depth)
		}
	})
	tw.Section(depth+1, "Connects", p.connects.Len(), func(depth int) {
		for from, c := range p.connects.All() {
			tw.Line(depth, "Connect[%d] records[%d]", from, len(c.Records))
			for _, r := range c.Records {
				tw.Line(depth+1, "%s -> sheet[%d] %s", r.FromCell, r.ToSheet, r.ToCell)
			}
		}
	})
}

func (s *Shape) dump(tw *debug.TreeWriter, depth int) {
	kind := "vertex"
	if s.edge {
		kind = "edge"
	}
	tw.Line(depth, "Shape[%d] %s %q master[%s] style[%s]", s.ID, kind, s.NameU, s.MasterID, s.LineStyleID)
	if len(s.Text) > 0 {
		tw.TextBlock(depth+1, "text", s.Text)
	}
	writeCells(tw, depth+1, s.Cells)
	if s.Foreign != nil {
		tw.Line(depth+1, "foreign[%s] media[%s] mime[%s] %dx%d size[%d]",
			s.Foreign.ForeignType, s.Foreign.Path, s.Foreign.MIME, s.Foreign.Width, s.Foreign.Height, len(s.Foreign.Data))
	}
	for child := range s.children.Values() {
		child.dump(tw, depth+1)
	}
}

func writeCells(tw *debug.TreeWriter, depth int, cells Cells) {
	values := make(map[string]string, len(cells))
	for name, c := range cells {
		values[name] = c.Value
	}
	tw.Attrs(depth, "cells", values)
}

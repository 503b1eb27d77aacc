package inspect

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"vsdxc/common"
	"vsdxc/vsdx"
)

type summary struct {
	Name    string       `yaml:"name"`
	RefID   string       `yaml:"ref_id"`
	Colors  int          `yaml:"colors"`
	Fonts   int          `yaml:"fonts"`
	Themes  []themeInfo  `yaml:"themes,omitempty"`
	Styles  []styleInfo  `yaml:"stylesheets,omitempty"`
	Masters []masterInfo `yaml:"masters,omitempty"`
	Pages   []pageInfo   `yaml:"pages,omitempty"`
}

type themeInfo struct {
	Index     int    `yaml:"index"`
	Name      string `yaml:"name,omitempty"`
	Part      string `yaml:"part"`
	Pure      bool   `yaml:"pure"`
	MajorFont string `yaml:"major_font,omitempty"`
	MinorFont string `yaml:"minor_font,omitempty"`
}

type styleInfo struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
	Line string `yaml:"line,omitempty"`
	Fill string `yaml:"fill,omitempty"`
	Text string `yaml:"text,omitempty"`
}

type masterInfo struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name,omitempty"`
	Part    string `yaml:"part"`
	Primary int    `yaml:"primary"`
	Shapes  int    `yaml:"shapes"`
}

type pageInfo struct {
	ID         int           `yaml:"id"`
	Name       string        `yaml:"name,omitempty"`
	Background bool          `yaml:"background"`
	BackPage   *int          `yaml:"back_page,omitempty"`
	Width      float64       `yaml:"width"`
	Height     float64       `yaml:"height"`
	Parts      []string      `yaml:"parts"`
	Shapes     []shapeInfo   `yaml:"shapes,omitempty"`
	Connects   []connectInfo `yaml:"connects,omitempty"`
}

type shapeInfo struct {
	ID       int         `yaml:"id"`
	Name     string      `yaml:"name,omitempty"`
	Kind     string      `yaml:"kind"`
	Master   string      `yaml:"master,omitempty"`
	Text     string      `yaml:"text,omitempty"`
	Media    string      `yaml:"media,omitempty"`
	Children []shapeInfo `yaml:"children,omitempty"`
}

type connectInfo struct {
	From int   `yaml:"from"`
	To   []int `yaml:"to"`
}

// render produces model dump in requested format.
func render(m *vsdx.Model, name, refID string, format common.OutputFmt) ([]byte, error) {
	switch format {
	case common.OutputFmtText:
		return []byte(m.String()), nil
	case common.OutputFmtYaml:
		data, err := yaml.Marshal(summarize(m, name, refID))
		if err != nil {
			return nil, fmt.Errorf("unable to marshal model summary: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func summarize(m *vsdx.Model, name, refID string) summary {
	s := summary{
		Name:   name,
		RefID:  refID,
		Colors: m.Properties().ColorCount(),
		Fonts:  m.Properties().FontCount(),
	}
	for ix, t := range m.Themes().All() {
		major, minor := t.Fonts()
		s.Themes = append(s.Themes, themeInfo{Index: ix, Name: t.Name, Part: t.Part, Pure: t.IsPure(), MajorFont: major, MinorFont: minor})
	}
	for id, st := range m.Styles().All() {
		s.Styles = append(s.Styles, styleInfo{ID: id, Name: st.NameU, Line: st.LineStyleID, Fill: st.FillStyleID, Text: st.TextStyleID})
	}
	for id, ms := range m.Masters().All() {
		mi := masterInfo{ID: id, Name: ms.NameU, Part: ms.Part, Primary: -1, Shapes: ms.Shapes().Len()}
		if p := ms.Primary(); p != nil {
			mi.Primary = p.ID
		}
		s.Masters = append(s.Masters, mi)
	}
	for id, p := range m.Pages().All() {
		dim := p.PageDimensions()
		pi := pageInfo{ID: id, Name: p.NameU, Background: p.IsBackground(), Width: dim.X, Height: dim.Y, Parts: p.Parts()}
		if bg := p.Background(); bg != nil {
			pi.BackPage = &bg.ID
		}
		for sh := range p.Shapes().Values() {
			pi.Shapes = append(pi.Shapes, summarizeShape(sh))
		}
		for from, c := range p.Connects().All() {
			ci := connectInfo{From: from}
			for _, r := range c.Records {
				ci.To = append(ci.To, r.ToSheet)
			}
			pi.Connects = append(pi.Connects, ci)
		}
		s.Pages = append(s.Pages, pi)
	}
	return s
}

func summarizeShape(sh *vsdx.Shape) shapeInfo {
	si := shapeInfo{ID: sh.ID, Name: sh.NameU, Kind: "vertex", Master: sh.MasterID, Text: sh.Text}
	if sh.IsEdge() {
		si.Kind = "edge"
	}
	if sh.Foreign != nil {
		si.Media = sh.Foreign.Path
	}
	for child := range sh.Children().Values() {
		si.Children = append(si.Children, summarizeShape(child))
	}
	return si
}

package vsdx

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// defaultColors is Visio built-in color table, explicit document colors
// overlay it.
var defaultColors = map[string]string{
	"0":  "#000000",
	"1":  "#FFFFFF",
	"2":  "#FF0000",
	"3":  "#00FF00",
	"4":  "#0000FF",
	"5":  "#FFFF00",
	"6":  "#FF00FF",
	"7":  "#00FFFF",
	"8":  "#800000",
	"9":  "#008000",
	"10": "#000080",
	"11": "#808000",
	"12": "#800080",
	"13": "#008080",
	"14": "#C0C0C0",
	"15": "#E6E6E6",
	"16": "#CDCDCD",
	"17": "#B3B3B3",
	"18": "#9A9A9A",
	"19": "#808080",
	"20": "#666666",
	"21": "#4D4D4D",
	"22": "#333333",
	"23": "#1A1A1A",
}

// Properties keeps document level color and font tables.
type Properties struct {
	colors map[string]string
	fonts  map[string]string
}

func newProperties() *Properties {
	return &Properties{
		colors: make(map[string]string),
		fonts:  make(map[string]string),
	}
}

// initialise reads tables from document root element, nil root is allowed.
func (p *Properties) initialise(root *etree.Element, log *zap.Logger) {
	if root == nil {
		return
	}
	if colors := root.SelectElement("Colors"); colors != nil {
		for _, entry := range colors.SelectElements("ColorEntry") {
			ix, rgb := entry.SelectAttrValue("IX", ""), entry.SelectAttrValue("RGB", "")
			if len(ix) == 0 || len(rgb) == 0 {
				log.Debug("Incomplete color entry, skipping", zap.String("ix", ix), zap.String("rgb", rgb))
				continue
			}
			p.colors[ix] = rgb
		}
	}
	if faces := root.SelectElement("FaceNames"); faces != nil {
		for _, face := range faces.SelectElements("FaceName") {
			id := face.SelectAttrValue("ID", "")
			name := face.SelectAttrValue("Name", face.SelectAttrValue("NameU", ""))
			if len(id) == 0 || len(name) == 0 {
				log.Debug("Incomplete face name, skipping", zap.String("id", id), zap.String("name", name))
				continue
			}
			p.fonts[id] = name
		}
	}
}

// Color returns hex color for index, empty string when index is unknown.
func (p *Properties) Color(ix string) string {
	if c, ok := p.colors[ix]; ok {
		return c
	}
	return defaultColors[ix]
}

// Font returns font name for id, empty string when id is unknown.
func (p *Properties) Font(id string) string {
	return p.fonts[id]
}

// ColorCount returns number of explicitly defined colors.
func (p *Properties) ColorCount() int {
	return len(p.colors)
}

// FontCount returns number of explicitly defined fonts.
func (p *Properties) FontCount() int {
	return len(p.fonts)
}

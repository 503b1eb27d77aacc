package vsdx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// Scheme color names in Visio QuickStyle order: 0 - dk1, 1 - lt1, 2..7 -
// accents.
var quickStyleColors = [...]string{"dk1", "lt1", "accent1", "accent2", "accent3", "accent4", "accent5", "accent6"}

// Theme is a document-wide palette and font scheme.
type Theme struct {
	Name string
	Part string

	index int
	pure  bool

	// extLst is kept until index is computed
	extLst *etree.Element

	colors     map[string]string
	majorFont  string
	minorFont  string
	fmtPresent bool
}

// newTheme parses theme root element. Index is taken from "thmIdx" when it is
// embedded, otherwise it is computed on first request.
func newTheme(part string, root *etree.Element, log *zap.Logger) (*Theme, error) {
	if root == nil || root.Tag != "theme" {
		return nil, fmt.Errorf("theme part %s: no theme root: %w", part, ErrMalformedPackage)
	}

	t := &Theme{
		Name:   root.SelectAttrValue("name", ""),
		Part:   part,
		index:  -1,
		colors: make(map[string]string),
	}

	for _, a := range root.Attr {
		if a.Key != "thmIdx" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(a.Value))
		if err != nil {
			return nil, fmt.Errorf("theme part %s: index %q: %w", part, a.Value, ErrMalformedNumber)
		}
		t.index = v
	}

	var haveColors, haveFonts bool
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "themeElements":
			for _, el := range child.ChildElements() {
				switch el.Tag {
				case "clrScheme":
					haveColors = t.parseColors(el)
				case "fontScheme":
					haveFonts = t.parseFonts(el)
				case "fmtScheme":
					t.fmtPresent = true
				default:
					log.Debug("Unexpected tag in theme elements, ignoring", zap.String("part", part), zap.String("tag", el.Tag))
				}
			}
		case "extLst":
			t.extLst = child
		case "objectDefaults", "extraClrSchemeLst", "custClrLst":
		default:
			log.Debug("Unexpected tag in theme, ignoring", zap.String("part", part), zap.String("tag", child.Tag))
		}
	}
	t.pure = haveColors && haveFonts && t.fmtPresent
	return t, nil
}

func (t *Theme) parseColors(el *etree.Element) bool {
	for _, c := range el.ChildElements() {
		for _, v := range c.ChildElements() {
			var rgb string
			switch v.Tag {
			case "srgbClr":
				rgb = v.SelectAttrValue("val", "")
			case "sysClr":
				rgb = v.SelectAttrValue("lastClr", "")
			}
			if len(rgb) > 0 {
				t.colors[c.Tag] = "#" + strings.ToUpper(rgb)
				break
			}
		}
	}
	return len(t.colors) > 0
}

func (t *Theme) parseFonts(el *etree.Element) bool {
	if major := el.SelectElement("majorFont"); major != nil {
		if latin := major.SelectElement("latin"); latin != nil {
			t.majorFont = latin.SelectAttrValue("typeface", "")
		}
	}
	if minor := el.SelectElement("minorFont"); minor != nil {
		if latin := minor.SelectElement("latin"); latin != nil {
			t.minorFont = latin.SelectAttrValue("typeface", "")
		}
	}
	return len(t.majorFont) > 0 || len(t.minorFont) > 0
}

// process computes theme index from extension list: <vt:themeScheme
// schemeEnum="33" .../>. Theme without any index information gets 0.
func (t *Theme) process() error {
	if t.index >= 0 {
		return nil
	}
	t.index = 0
	if t.extLst == nil {
		return nil
	}
	for _, ext := range t.extLst.ChildElements() {
		for _, el := range ext.ChildElements() {
			if el.Tag != "themeScheme" {
				continue
			}
			value := el.SelectAttrValue("schemeEnum", "")
			if len(value) == 0 {
				continue
			}
			v, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("theme part %s: scheme %q: %w", t.Part, value, ErrMalformedNumber)
			}
			t.index = v
			t.extLst = nil
			return nil
		}
	}
	t.extLst = nil
	return nil
}

// Index returns theme index. It is only valid after theme was loaded into the
// model.
func (t *Theme) Index() int {
	return t.index
}

// IsPure reports if theme is self-contained: it has color, font and format
// schemes.
func (t *Theme) IsPure() bool {
	return t.pure
}

// Color returns scheme color by name ("dk1", "accent3", ...).
func (t *Theme) Color(name string) string {
	return t.colors[name]
}

// ColorByIndex returns scheme color by QuickStyle index.
func (t *Theme) ColorByIndex(ix int) string {
	if ix < 0 || ix >= len(quickStyleColors) {
		return ""
	}
	return t.colors[quickStyleColors[ix]]
}

// Fonts returns latin major and minor font names.
func (t *Theme) Fonts() (major, minor string) {
	return t.majorFont, t.minorFont
}

// ThemePart returns package path of n-th theme part.
func ThemePart(n int) string {
	return fmt.Sprintf("visio/theme/theme%d.xml", n)
}

// loadThemes loads sequentially numbered themes until first missing one.
// lookup is asked for documents in order starting with 1, theme parts are
// expected to be contiguous.
func (m *Model) loadThemes(lookup func(n int) (*etree.Document, bool)) error {
	for n := 1; n <= m.maxThemes; n++ {
		doc, ok := lookup(n)
		if !ok || doc == nil {
			m.log.Debug("Themes loaded", zap.Int("count", n-1))
			return nil
		}
		theme, err := newTheme(ThemePart(n), doc.Root(), m.log)
		if err != nil {
			return err
		}
		if err := theme.process(); err != nil {
			return err
		}
		if existing, ok := m.themes.Get(theme.Index()); ok && existing.IsPure() {
			m.log.Debug("Theme index already has pure theme, skipping",
				zap.Int("index", theme.Index()), zap.String("part", theme.Part), zap.String("kept", existing.Part))
			continue
		}
		m.themes.Set(theme.Index(), theme)
	}
	if _, more := lookup(m.maxThemes + 1); more {
		m.log.Warn("Too many themes, ignoring the rest", zap.Int("limit", m.maxThemes))
	}
	return nil
}

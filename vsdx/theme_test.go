package vsdx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/beevik/etree"
)

func themeXML(name string, scheme int, pure bool) string {
	fmtScheme := ""
	if pure {
		fmtScheme = `<a:fmtScheme name="Office"/>`
	}
	return fmt.Sprintf(`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name=%q>
  <a:themeElements>
    <a:clrScheme name="Office">
      <a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>
      <a:lt1><a:srgbClr val="ffffff"/></a:lt1>
      <a:accent1><a:srgbClr val="4472C4"/></a:accent1>
    </a:clrScheme>
    <a:fontScheme name="Office">
      <a:majorFont><a:latin typeface="Calibri Light"/></a:majorFont>
      <a:minorFont><a:latin typeface="Calibri"/></a:minorFont>
    </a:fontScheme>
    %s
  </a:themeElements>
  <a:extLst>
    <a:ext uri="{D75FF966-6013-4DB2-8F8F-3E2C3F9B8E3F}">
      <vt:themeScheme xmlns:vt="http://schemas.microsoft.com/office/visio/2012/theme" schemeEnum="%d"/>
    </a:ext>
  </a:extLst>
</a:theme>`, name, fmtScheme, scheme)
}

func testThemeModel(t *testing.T) *Model {
	return &Model{
		themes:    NewIndex[int, *Theme]("themes"),
		maxThemes: defaultMaxThemes,
		log:       testLogger(t),
	}
}

func TestThemeLoaderStopsAtFirstMiss(t *testing.T) {
	docs := map[int]*etree.Document{
		1: mustDocument(t, themeXML("one", 33, true)),
		2: mustDocument(t, themeXML("two", 34, true)),
		3: mustDocument(t, themeXML("three", 35, true)),
		5: mustDocument(t, themeXML("five", 36, true)),
	}
	var attempts []int
	m := testThemeModel(t)
	err := m.loadThemes(func(n int) (*etree.Document, bool) {
		attempts = append(attempts, n)
		doc, ok := docs[n]
		return doc, ok
	})
	if err != nil {
		t.Fatalf("loadThemes: %v", err)
	}

	loaded := 0
	for _, n := range attempts {
		if _, ok := docs[n]; ok {
			loaded++
		}
	}
	if loaded != 3 || len(attempts) != 4 || attempts[3] != 4 {
		t.Fatalf("unexpected load attempts %v", attempts)
	}
	if got := m.themes.Keys(); len(got) != 3 || got[0] != 33 || got[2] != 35 {
		t.Fatalf("unexpected theme indices %v", got)
	}
}

func TestThemeLoaderLimit(t *testing.T) {
	m := testThemeModel(t)
	m.maxThemes = 2
	calls := 0
	err := m.loadThemes(func(n int) (*etree.Document, bool) {
		calls++
		return mustDocument(t, themeXML("any", n, true)), true
	})
	if err != nil {
		t.Fatalf("loadThemes: %v", err)
	}
	if m.themes.Len() != 2 || calls != 3 {
		t.Fatalf("expected 2 themes and single lookup past limit, got %d themes %d calls", m.themes.Len(), calls)
	}
}

func TestThemeMergeByIndex(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		want string
	}{
		{
			name: "pure replaces impure",
			docs: []string{themeXML("partial", 33, false), themeXML("full", 33, true)},
			want: "full",
		},
		{
			name: "first pure wins",
			docs: []string{themeXML("first", 33, true), themeXML("second", 33, true)},
			want: "first",
		},
		{
			name: "impure never replaces pure",
			docs: []string{themeXML("full", 33, true), themeXML("partial", 33, false)},
			want: "full",
		},
		{
			name: "later impure replaces impure",
			docs: []string{themeXML("partial", 33, false), themeXML("later", 33, false)},
			want: "later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testThemeModel(t)
			err := m.loadThemes(func(n int) (*etree.Document, bool) {
				if n > len(tt.docs) {
					return nil, false
				}
				return mustDocument(t, tt.docs[n-1]), true
			})
			if err != nil {
				t.Fatalf("loadThemes: %v", err)
			}
			th, ok := m.themes.Get(33)
			if !ok || m.themes.Len() != 1 {
				t.Fatalf("expected single theme with index 33")
			}
			if th.Name != tt.want {
				t.Fatalf("expected theme %q, got %q", tt.want, th.Name)
			}
		})
	}
}

func TestThemeContents(t *testing.T) {
	th, err := newTheme(ThemePart(1), mustDocument(t, themeXML("Office", 33, true)).Root(), testLogger(t))
	if err != nil {
		t.Fatalf("newTheme: %v", err)
	}
	if th.Index() != -1 {
		t.Fatalf("index must be computed lazily")
	}
	if err := th.process(); err != nil {
		t.Fatalf("process: %v", err)
	}
	if th.Index() != 33 || !th.IsPure() {
		t.Fatalf("unexpected index %d pure %t", th.Index(), th.IsPure())
	}
	if th.Color("dk1") != "#000000" || th.ColorByIndex(1) != "#FFFFFF" || th.ColorByIndex(2) != "#4472C4" {
		t.Fatalf("unexpected colors %v", th.colors)
	}
	if th.ColorByIndex(7) != "" || th.ColorByIndex(-1) != "" {
		t.Fatalf("unexpected color for missing index")
	}
	if major, minor := th.Fonts(); major != "Calibri Light" || minor != "Calibri" {
		t.Fatalf("unexpected fonts %q %q", major, minor)
	}
}

func TestThemeIndexSources(t *testing.T) {
	embedded := `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" thmIdx="7"/>`
	th, err := newTheme("embedded", mustDocument(t, embedded).Root(), testLogger(t))
	if err != nil {
		t.Fatalf("newTheme: %v", err)
	}
	if th.Index() != 7 || th.IsPure() {
		t.Fatalf("unexpected embedded index %d pure %t", th.Index(), th.IsPure())
	}

	bare := `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"/>`
	th, err = newTheme("bare", mustDocument(t, bare).Root(), testLogger(t))
	if err != nil {
		t.Fatalf("newTheme: %v", err)
	}
	if err := th.process(); err != nil || th.Index() != 0 {
		t.Fatalf("theme without index must get 0, got %d (%v)", th.Index(), err)
	}

	bad := `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" thmIdx="x"/>`
	if _, err := newTheme("bad", mustDocument(t, bad).Root(), testLogger(t)); !errors.Is(err, ErrMalformedNumber) {
		t.Fatalf("expected malformed number, got %v", err)
	}

	if _, err := newTheme("wrong", mustDocument(t, `<theme2/>`).Root(), testLogger(t)); !errors.Is(err, ErrMalformedPackage) {
		t.Fatalf("expected malformed package, got %v", err)
	}
}

func TestThemesLoadedByModel(t *testing.T) {
	src := samplePackage()
	src[ThemePart(1)] = themeXML("Office", 33, true)
	src[ThemePart(2)] = themeXML("Other", 34, false)
	m, err := loadSample(t, src, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Themes().Len() != 2 || m.Theme(33) == nil || m.Theme(34).IsPure() {
		t.Fatalf("unexpected themes %v", m.Themes().Keys())
	}
}

// Package debug has helpers producing human readable dumps of parsed
// documents.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted value, empty value is left as is.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Attrs writes label followed by key=value pairs in natural key order on a
// single line. Nothing is written for empty map.
func (tw *TreeWriter) Attrs(depth int, label string, attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteByte(':')
	for _, k := range SortedKeys(attrs) {
		tw.w.WriteByte(' ')
		tw.w.WriteString(k)
		tw.w.WriteByte('=')
		tw.w.WriteString(encodeText(attrs[k]))
	}
	tw.w.WriteByte('\n')
}

// Section writes header with number of entries and lets body write them one
// level deeper. Empty sections are skipped.
func (tw *TreeWriter) Section(depth int, header string, count int, body func(depth int)) {
	if count == 0 {
		return
	}
	tw.Line(depth, "%s (%d)", header, count)
	body(depth + 1)
}

// SortedKeys returns map keys in natural order ("2" before "10").
func SortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	sort.Sort(natural.StringSlice(keys))
	return keys
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

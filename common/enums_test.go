package common

import (
	"errors"
	"testing"
)

func TestParseOutputFmt(t *testing.T) {
	for _, name := range OutputFmtNames() {
		f, err := ParseOutputFmt(name)
		if err != nil {
			t.Fatalf("ParseOutputFmt(%q): %v", name, err)
		}
		if f.String() != name || !f.IsValid() {
			t.Fatalf("round trip mismatch for %q: %v", name, f)
		}
	}
	if _, err := ParseOutputFmt("svg"); !errors.Is(err, ErrInvalidOutputFmt) {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestOutputFmtExt(t *testing.T) {
	if OutputFmtText.Ext() != ".txt" || OutputFmtYaml.Ext() != ".yaml" {
		t.Fatalf("unexpected extensions")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown format")
		}
	}()
	_ = OutputFmt(42).Ext()
}

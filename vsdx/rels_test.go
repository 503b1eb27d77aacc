package vsdx

import (
	"testing"
)

func TestResolveRelationshipWithoutCompanion(t *testing.T) {
	parts := mustParts(t, map[string]string{
		PagesPart: `<Pages ` + nsVisio + `/>`,
	})
	for _, id := range []string{"rId1", "rId2", ""} {
		if rel, ok := ResolveRelationship(parts, id, RelsPath(PagesPart)); ok {
			t.Fatalf("unexpected relationship for %q: %+v", id, rel)
		}
	}
	if _, ok := ResolveRelationship(nil, "rId1", RelsPath(PagesPart)); ok {
		t.Fatalf("unexpected relationship in empty package")
	}
}

func TestResolveRelationship(t *testing.T) {
	relsPath := "visio/pages/_rels/page1.xml.rels"
	parts := mustParts(t, map[string]string{
		relsPath: `<Relationships ` + nsRels + `>
  <Relationship Id="rId1" Type="` + typeMaster + `" Target="../masters/master1.xml"/>
  <Relationship Id="rId2" Type="` + typeImage + `" Target="/visio/media/image2.emf"/>
  <Relationship Id="rId3" Type="` + typeImage + `" Target="https://example.com/a.png" TargetMode="External"/>
  <Relationship Id="rId4" Type="` + typePage + `" Target="page5.xml"/>
</Relationships>`,
	})

	tests := []struct {
		id       string
		kind     string
		target   string
		external bool
	}{
		{id: "rId1", kind: relTypeMaster, target: "visio/masters/master1.xml"},
		{id: "rId2", kind: relTypeImage, target: "visio/media/image2.emf"},
		{id: "rId3", kind: relTypeImage, target: "https://example.com/a.png", external: true},
		{id: "rId4", kind: relTypePage, target: "visio/pages/page5.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rel, ok := ResolveRelationship(parts, tt.id, relsPath)
			if !ok {
				t.Fatalf("relationship not found")
			}
			if !rel.Is(tt.kind) {
				t.Fatalf("relationship type %q is not %q", rel.Type, tt.kind)
			}
			if rel.Target != tt.target || rel.External != tt.external {
				t.Fatalf("unexpected relationship %+v", rel)
			}
		})
	}

	if _, ok := ResolveRelationship(parts, "rId9", relsPath); ok {
		t.Fatalf("unexpected relationship for unknown id")
	}
}

func TestRelsPath(t *testing.T) {
	tests := []struct {
		part string
		rels string
	}{
		{part: PagesPart, rels: "visio/pages/_rels/pages.xml.rels"},
		{part: MastersPart, rels: "visio/masters/_rels/masters.xml.rels"},
		{part: "visio/pages/page12.xml", rels: "visio/pages/_rels/page12.xml.rels"},
		{part: "document.xml", rels: "_rels/document.xml.rels"},
	}
	for _, tt := range tests {
		if got := RelsPath(tt.part); got != tt.rels {
			t.Fatalf("RelsPath(%q) = %q, want %q", tt.part, got, tt.rels)
		}
		if got := ownerPart(tt.rels); got != tt.part {
			t.Fatalf("ownerPart(%q) = %q, want %q", tt.rels, got, tt.part)
		}
	}
}

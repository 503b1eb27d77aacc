package vsdx

import (
	"path"
	"strings"

	"github.com/beevik/etree"
)

// Relationship type suffixes we know how to follow.
const (
	relTypeMaster = "master"
	relTypePage   = "page"
	relTypeImage  = "image"
)

// Relationship is a single record from companion "_rels/*.rels" part. It is
// produced on demand and never cached.
type Relationship struct {
	ID     string
	Type   string
	Target string
	// External targets are URLs, they are never dereferenced.
	External bool
}

// Is checks relationship type suffix, types are URIs ending with the kind of
// link: ".../relationships/page", ".../relationships/master".
func (r Relationship) Is(kind string) bool {
	return strings.HasSuffix(r.Type, kind)
}

// RelsPath returns path of the companion relationships part for the given
// part: "dir/name.xml" -> "dir/_rels/name.xml.rels".
func RelsPath(part string) string {
	dir, name := path.Split(part)
	return dir + "_rels/" + name + ".rels"
}

// ResolveRelationship looks up relationship id in the companion part. Absent
// companion or unknown id are not errors - there is simply no link. Target
// is returned as package path of the linked part.
func ResolveRelationship(parts Parts, id, relsPath string) (Relationship, bool) {
	doc, ok := parts[relsPath]
	if !ok || doc == nil || doc.Root() == nil {
		return Relationship{}, false
	}
	for _, el := range doc.Root().SelectElements("Relationship") {
		if el.SelectAttrValue("Id", "") != id {
			continue
		}
		rel := Relationship{
			ID:       id,
			Type:     el.SelectAttrValue("Type", ""),
			Target:   el.SelectAttrValue("Target", ""),
			External: strings.EqualFold(el.SelectAttrValue("TargetMode", ""), "External"),
		}
		if !rel.External {
			rel.Target = resolveTarget(relsPath, rel.Target)
		}
		return rel, true
	}
	return Relationship{}, false
}

// resolveTarget makes relationship target package absolute. Relative targets
// are relative to the directory of the owner part (parent of "_rels").
func resolveTarget(relsPath, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	owner := path.Dir(path.Dir(relsPath))
	if owner == "." {
		return path.Clean(target)
	}
	return path.Join(owner, target)
}

// relID returns relationship id of Rel element, it is always in relationships
// namespace, but prefix is not fixed.
func relID(el *etree.Element) string {
	for _, a := range el.Attr {
		if a.Key == "id" {
			return a.Value
		}
	}
	return ""
}

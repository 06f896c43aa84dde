package types

import "strings"

// Path identifies a prim or property in the scene hierarchy. The prim part
// is a '/'-rooted element sequence (variant selections appear inline as
// `{set=sel}` elements); the prop part is empty for prim paths.
//
// Path is a small value type; build paths with RootPath/AppendElement/
// AppendProperty so the two parts stay consistent.
type Path struct {
	prim string
	prop string
}

// RootPath returns the absolute root path "/".
func RootPath() Path { return Path{prim: "/"} }

// NewPath builds a path from explicit prim and prop parts.
func NewPath(prim, prop string) Path { return Path{prim: prim, prop: prop} }

// ParsePath splits a path string of the form "/A/B" or "/A/B.attr" into its
// prim and prop parts. Only the last '.' separates the prop part.
func ParsePath(s string) Path {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return Path{prim: s[:i], prop: s[i+1:]}
	}
	return Path{prim: s}
}

// IsEmpty reports whether the path has no prim and no prop part.
func (p Path) IsEmpty() bool { return p.prim == "" && p.prop == "" }

// IsRoot reports whether the path is the absolute root "/".
func (p Path) IsRoot() bool { return p.prim == "/" && p.prop == "" }

// IsPropertyPath reports whether the path addresses a property.
func (p Path) IsPropertyPath() bool { return p.prop != "" }

// PrimPart returns the prim component ("/Scene/Cube").
func (p Path) PrimPart() string { return p.prim }

// PropPart returns the property component ("xformOp:translate"), or "".
func (p Path) PropPart() string { return p.prop }

// AppendElement returns the path extended by one prim element. Variant
// selection elements (`{set=sel}`) attach without a '/' separator.
func (p Path) AppendElement(elem string) Path {
	if strings.HasPrefix(elem, "{") {
		return Path{prim: p.prim + elem}
	}
	if p.prim == "/" {
		return Path{prim: "/" + elem}
	}
	return Path{prim: p.prim + "/" + elem}
}

// AppendProperty returns the path with prop set to name.
func (p Path) AppendProperty(name string) Path {
	return Path{prim: p.prim, prop: name}
}

// ElementName returns the last prim element of the path, or the prop part
// for property paths.
func (p Path) ElementName() string {
	if p.prop != "" {
		return p.prop
	}
	if p.prim == "/" {
		return "/"
	}
	if i := strings.LastIndexByte(p.prim, '/'); i >= 0 {
		return p.prim[i+1:]
	}
	return p.prim
}

// String renders the full path ("/A/B" or "/A/B.attr").
func (p Path) String() string {
	if p.prop == "" {
		return p.prim
	}
	return p.prim + "." + p.prop
}

// VariantSelection decomposes a `{set=sel}` element name into its variant
// set name and variant name. ok is false if elem is not a variant element.
func VariantSelection(elem string) (set, variant string, ok bool) {
	if !strings.HasPrefix(elem, "{") || !strings.HasSuffix(elem, "}") {
		return "", "", false
	}
	body := elem[1 : len(elem)-1]
	i := strings.IndexByte(body, '=')
	if i < 0 {
		return "", "", false
	}
	return body[:i], body[i+1:], true
}

// ValidatePrimName reports whether name is a legal prim element name:
// nonempty, leading letter or underscore, then letters, digits, or
// underscores.
func ValidatePrimName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Package scene defines the composed scene data model the crate decoder
// produces: a stage with metadata and a tree of generic prims carrying
// typed properties. Everything here is plain owned data; nothing
// references the source byte buffer.
package scene

import (
	"strings"

	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// StageMetas carries the pseudo-root layer metadata.
type StageMetas struct {
	UpAxis             types.Axis
	MetersPerUnit      float64
	TimeCodesPerSecond float64
	StartTimeCode      float64
	EndTimeCode        float64
	DefaultPrim        value.Token
	CustomLayerData    value.Dictionary
	Doc                string
	Comment            string
	PrimChildren       []value.Token
}

// DefaultStageMetas returns the USD fallback values.
func DefaultStageMetas() StageMetas {
	return StageMetas{
		UpAxis:             types.AxisY,
		MetersPerUnit:      1.0,
		TimeCodesPerSecond: 24.0,
	}
}

// PropertyKind distinguishes the four property shapes.
type PropertyKind int

const (
	// PropertyEmptyAttribute declares a typed attribute with no value.
	PropertyEmptyAttribute PropertyKind = iota
	// PropertyAttribute carries a default value and/or time samples.
	PropertyAttribute
	// PropertyConnection is a typed attribute whose value is one or more
	// target paths.
	PropertyConnection
	// PropertyRelationship is untyped and carries list-edited targets.
	PropertyRelationship
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyEmptyAttribute:
		return "empty"
	case PropertyAttribute:
		return "attribute"
	case PropertyConnection:
		return "connection"
	case PropertyRelationship:
		return "relationship"
	default:
		return "unknown"
	}
}

// PropertyMeta is the optional attribute metadata bundle.
type PropertyMeta struct {
	Interpolation types.Interpolation
	ElementSize   int // 0 = unset
	Hidden        *bool
	CustomData    *value.Dictionary
	Comment       string
}

// Property is one named property of a prim.
type Property struct {
	Name        string
	Kind        PropertyKind
	TypeName    string // declared type; empty for relationships and for attributes stored without a typeName field
	Custom      bool
	Variability types.Variability

	// Default holds the scalar value for PropertyAttribute; invalid when
	// only time samples exist.
	Default value.Value
	// TimeSamples holds the time-varying value, if any.
	TimeSamples *value.TimeSamples

	// Targets holds connection or relationship target paths.
	Targets []types.Path
	// ListEdit qualifies relationship targets.
	ListEdit types.ListEditQual

	Meta PropertyMeta
}

// HasValue reports whether the property carries a default or samples.
func (p Property) HasValue() bool {
	return p.Default.IsValid() || p.TimeSamples != nil
}

// PathListEdit is a decoded (qualifier, paths) list-op bucket.
type PathListEdit struct {
	Qual  types.ListEditQual
	Paths []types.Path
}

// StringListEdit is a decoded (qualifier, items) list-op bucket.
type StringListEdit struct {
	Qual  types.ListEditQual
	Items []string
}

// APISchemas is the validated apiSchemas metadata.
type APISchemas struct {
	Qual  types.ListEditQual
	Names []types.APISchema
}

// PrimMeta carries the optional per-prim metadata fields.
type PrimMeta struct {
	Active     *bool
	Hidden     *bool
	Kind       *types.Kind
	Doc        string
	Comment    string
	CustomData *value.Dictionary
	AssetInfo  *value.Dictionary
	APISchemas *APISchemas
	SceneName  *string

	Variants    value.VariantSelectionMap
	VariantSets *StringListEdit

	Inherits     *PathListEdit
	Specializes  *PathListEdit
	InheritPaths *PathListEdit

	// Crate bookkeeping lists, kept for diagnostics and ordering checks.
	Properties         []value.Token
	PrimChildren       []value.Token
	VariantChildren    []value.Token
	VariantSetChildren []value.Token
}

// Prim is one node of the composed scene tree.
type Prim struct {
	Name        string
	Path        types.Path
	ElementPath types.Path
	TypeName    string
	Specifier   types.Specifier
	Meta        PrimMeta

	Properties    map[string]Property
	PropertyOrder []string

	Children []*Prim

	// Variants maps variant set name -> variant name -> subtree, in
	// first-encounter order per VariantSetOrder.
	Variants        map[string]map[string]*Prim
	VariantSetOrder []string
}

// NewPrim returns an empty prim with initialized containers.
func NewPrim(name string) *Prim {
	return &Prim{
		Name:       name,
		Properties: map[string]Property{},
	}
}

// AddProperty inserts a property preserving insertion order.
func (p *Prim) AddProperty(prop Property) {
	if _, exists := p.Properties[prop.Name]; !exists {
		p.PropertyOrder = append(p.PropertyOrder, prop.Name)
	}
	p.Properties[prop.Name] = prop
}

// AddVariant attaches a variant subtree under setName/variantName.
func (p *Prim) AddVariant(setName, variantName string, prim *Prim) {
	if p.Variants == nil {
		p.Variants = map[string]map[string]*Prim{}
	}
	if _, ok := p.Variants[setName]; !ok {
		p.Variants[setName] = map[string]*Prim{}
		p.VariantSetOrder = append(p.VariantSetOrder, setName)
	}
	p.Variants[setName][variantName] = prim
}

// Property looks up a property by name.
func (p *Prim) Property(name string) (Property, bool) {
	prop, ok := p.Properties[name]
	return prop, ok
}

// Stage is the root container produced by decoding one crate layer.
type Stage struct {
	Metas     StageMetas
	RootPrims []*Prim
}

// GetPrimAtPath resolves an absolute prim path ("/A/B", optionally with
// `{set=sel}` variant elements) against the tree.
func (s *Stage) GetPrimAtPath(path string) (*Prim, error) {
	prim := findPrim(s.RootPrims, path)
	if prim == nil {
		return nil, &types.Error{Kind: types.ErrKindNotFound,
			Msg: "prim not found at path " + path, Err: types.ErrNotFound}
	}
	return prim, nil
}

func findPrim(roots []*Prim, path string) *Prim {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	elems := splitPathElements(path)

	var cur *Prim
	scope := roots
	for _, elem := range elems {
		if set, variant, ok := types.VariantSelection(elem); ok {
			if cur == nil || cur.Variants[set] == nil {
				return nil
			}
			cur = cur.Variants[set][variant]
			if cur == nil {
				return nil
			}
			scope = cur.Children
			continue
		}
		var next *Prim
		for _, child := range scope {
			if child.Name == elem {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
		scope = cur.Children
	}
	return cur
}

// splitPathElements splits "A/B{v=x}/C" into ["A", "B", "{v=x}", "C"].
func splitPathElements(path string) []string {
	var out []string
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		for {
			brace := strings.IndexByte(part, '{')
			if brace < 0 {
				out = append(out, part)
				break
			}
			if brace > 0 {
				out = append(out, part[:brace])
			}
			end := strings.IndexByte(part, '}')
			if end < 0 {
				out = append(out, part[brace:])
				break
			}
			out = append(out, part[brace:end+1])
			part = part[end+1:]
			if part == "" {
				break
			}
		}
	}
	return out
}

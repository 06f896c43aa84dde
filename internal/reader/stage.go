package reader

import (
	"fmt"

	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

const stageSection = format.SectionSpecs

// stageBuilder walks the decoded node hierarchy and assembles the prim
// tree. Variant subtrees are buffered and attached after the walk since
// their owning prims finish construction first.
type stageBuilder struct {
	r     *Reader
	stage *scene.Stage
	psmap map[uint32]uint32 // path index -> spec index

	primByNode   map[uint32]*scene.Prim
	variantPrims map[uint32]*scene.Prim
	// variantRefs records (variant node, variantset node) pairs in
	// encounter order so variant sets attach deterministically.
	variantRefs []variantRef
}

type variantRef struct {
	variantNode uint32
	setNode     uint32
}

// BuildStage assembles the Stage from the decoded tables. Decode must
// have been called first.
func (r *Reader) BuildStage() (*scene.Stage, error) {
	stage := &scene.Stage{Metas: scene.DefaultStageMetas()}
	if len(r.nodes) == 0 {
		r.warnf("empty scene: no paths decoded")
		return stage, nil
	}

	psmap := make(map[uint32]uint32, len(r.specs))
	for i, spec := range r.specs {
		if spec.PathIndex == format.InvalidIndex {
			continue
		}
		if _, dup := psmap[spec.PathIndex]; dup {
			return nil, types.CorruptError(stageSection, 0,
				fmt.Sprintf("multiple specs reference path index %d", spec.PathIndex))
		}
		psmap[spec.PathIndex] = uint32(i)
	}

	b := &stageBuilder{
		r:            r,
		stage:        stage,
		psmap:        psmap,
		primByNode:   map[uint32]*scene.Prim{},
		variantPrims: map[uint32]*scene.Prim{},
	}
	if err := b.walk(NoParent, r.rootNode, nil, 0); err != nil {
		return nil, err
	}
	if err := b.attachVariants(); err != nil {
		return nil, err
	}
	return stage, nil
}

func (b *stageBuilder) fieldSet(spec Spec) ([]FieldValue, error) {
	fvs, ok := b.r.liveFieldSets[spec.FieldSetIndex]
	if !ok {
		return nil, types.CorruptError(stageSection, 0,
			fmt.Sprintf("fieldset %d missing from live fieldsets", spec.FieldSetIndex))
	}
	if len(fvs) > b.r.cfg.MaxFieldValuePairsPerSpec {
		return nil, types.LimitError(stageSection, 0,
			fmt.Sprintf("spec carries %d fields, limit %d", len(fvs), b.r.cfg.MaxFieldValuePairsPerSpec))
	}
	return fvs, nil
}

// walk processes one node and recurses into its children in on-disk
// order. parentPrim is nil when the parent produced no prim (pseudo-root,
// class/over pass-through, variant buffering).
func (b *stageBuilder) walk(parent int64, current uint32, parentPrim *scene.Prim, level int) error {
	if level > b.r.cfg.MaxPrimNestLevel {
		return types.LimitError(stageSection, 0,
			fmt.Sprintf("prim nesting exceeds limit %d", b.r.cfg.MaxPrimNestLevel))
	}
	if int(current) >= len(b.r.nodes) {
		return types.CorruptError(stageSection, 0,
			fmt.Sprintf("node index %d out of range", current))
	}

	prim, err := b.reconstructNode(parent, current)
	if err != nil {
		return err
	}

	nextParent := parentPrim
	if prim != nil {
		nextParent = prim
	}
	for _, child := range b.r.nodes[current].Children {
		if err := b.walk(int64(current), child, nextParent, level+1); err != nil {
			return err
		}
	}

	if prim != nil && b.variantPrims[current] != prim {
		if parent == int64(b.r.rootNode) {
			b.stage.RootPrims = append(b.stage.RootPrims, prim)
		} else if parentPrim != nil {
			parentPrim.Children = append(parentPrim.Children, prim)
		}
	}
	return nil
}

// reconstructNode dispatches on the node's spec type. It returns the
// constructed prim for Prim and Variant specs, nil otherwise.
func (b *stageBuilder) reconstructNode(parent int64, current uint32) (*scene.Prim, error) {
	specIndex, ok := b.psmap[current]
	if !ok {
		// No spec attached to this path; nothing to build.
		return nil, nil
	}
	if int(specIndex) >= len(b.r.specs) {
		return nil, types.CorruptError(stageSection, 0,
			fmt.Sprintf("spec index %d out of range", specIndex))
	}
	spec := b.r.specs[specIndex]

	if current == b.r.rootNode {
		if spec.Type != types.SpecTypePseudoRoot {
			return nil, types.CorruptError(stageSection, 0,
				fmt.Sprintf("root spec must be PseudoRoot, got %s", spec.Type))
		}
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return nil, err
		}
		return nil, b.parseStageMetas(fvs)
	}

	switch spec.Type {
	case types.SpecTypePseudoRoot:
		return nil, types.CorruptError(stageSection, 0,
			"PseudoRoot spec below the root node")

	case types.SpecTypePrim:
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return nil, err
		}
		return b.reconstructPrim(current, fvs, false)

	case types.SpecTypeVariantSet:
		parentPrim := b.owningPrim(parent)
		if parentPrim == nil {
			return nil, types.CorruptError(stageSection, 0,
				"VariantSet spec has no parent prim")
		}
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return nil, err
		}
		for _, fv := range fvs {
			switch fv.Name {
			case "variantChildren":
				toks, ok := value.As[[]value.Token](fv.Value)
				if !ok {
					return nil, types.CorruptError(stageSection, 0,
						"`variantChildren` must be token[], got "+fv.Value.TypeName())
				}
				parentPrim.Meta.VariantChildren = append(parentPrim.Meta.VariantChildren, toks...)
			default:
				b.r.warnf("unhandled VariantSet field %q", fv.Name)
			}
		}
		return nil, nil

	case types.SpecTypeVariant:
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return nil, err
		}
		prim, err := b.reconstructPrim(current, fvs, true)
		if err != nil {
			return nil, err
		}
		if prim != nil {
			b.variantPrims[current] = prim
			if parent >= 0 {
				b.variantRefs = append(b.variantRefs, variantRef{variantNode: current, setNode: uint32(parent)})
			}
		}
		return prim, nil

	case types.SpecTypeAttribute, types.SpecTypeRelationship:
		// Properties of a prim are assembled by buildProperties when the
		// owning prim is reconstructed; nothing to do here.
		if b.owningPrim(parent) != nil {
			return nil, nil
		}
		// Property under a node that produced no prim (class/over
		// pass-through); decode it only for validation.
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return nil, err
		}
		if _, err := b.parseProperty(spec.Type, b.propName(current), fvs); err != nil {
			return nil, err
		}
		return nil, nil

	case types.SpecTypeConnection, types.SpecTypeRelationshipTarget,
		types.SpecTypeExpression, types.SpecTypeMapper, types.SpecTypeMapperArg:
		return nil, &types.Error{
			Kind: types.ErrKindUnsupportedType, Section: stageSection,
			Msg: fmt.Sprintf("unsupported spec type %s", spec.Type),
			Err: types.ErrUnsupportedType,
		}

	default:
		return nil, types.CorruptError(stageSection, 0,
			fmt.Sprintf("invalid spec type %d", uint32(spec.Type)))
	}
}

// owningPrim resolves the prim constructed for a node, walking through to
// variant prims. Returns nil for property nodes or pass-through parents.
func (b *stageBuilder) owningPrim(nodeIndex int64) *scene.Prim {
	if nodeIndex < 0 {
		return nil
	}
	if p, ok := b.primByNode[uint32(nodeIndex)]; ok {
		return p
	}
	if p, ok := b.variantPrims[uint32(nodeIndex)]; ok {
		return p
	}
	return nil
}

func (b *stageBuilder) propName(nodeIndex uint32) string {
	if int(nodeIndex) < len(b.r.paths) {
		return b.r.paths[nodeIndex].PropPart()
	}
	return ""
}

// reconstructPrim builds a prim (or variant prim) from its fieldset and
// the properties held by its child nodes.
func (b *stageBuilder) reconstructPrim(current uint32, fvs []FieldValue, isVariant bool) (*scene.Prim, error) {
	parsed, err := b.parsePrimSpec(fvs)
	if err != nil {
		return nil, err
	}

	elemPath, err := b.r.elemPath(current)
	if err != nil {
		return nil, err
	}
	elemName := elemPath.PrimPart()

	name := elemName
	if isVariant {
		if _, _, ok := types.VariantSelection(elemName); !ok {
			return nil, types.CorruptError(stageSection, 0,
				fmt.Sprintf("variant element path %q is not {set=variant}", elemName))
		}
		_, variantName, _ := types.VariantSelection(elemName)
		name = variantName
	}

	specifier := parsed.specifier
	if specifier == nil {
		if !isVariant {
			return nil, &types.Error{
				Kind: types.ErrKindInvalidSpecifier, Section: stageSection,
				Msg: fmt.Sprintf("prim %q is missing the required specifier", name),
				Err: types.ErrInvalidSpecifier,
			}
		}
		// Variants composed purely of properties act as `def`.
		def := types.SpecifierDef
		specifier = &def
	}
	if *specifier != types.SpecifierDef {
		// class/over declarations are accepted but reduce to pass-through
		// traversal; their children decode without attaching.
		b.r.warnf("skipping %s prim %q (pass-through)", specifier, name)
		return nil, nil
	}

	typeName := parsed.typeName
	if typeName == "" {
		b.r.warnf("prim %q has no typeName; treating as Model", name)
		typeName = "Model"
	}
	if !types.ValidatePrimName(name) {
		return nil, types.CorruptError(stageSection, 0,
			fmt.Sprintf("invalid prim name %q", name))
	}

	prim := scene.NewPrim(name)
	prim.TypeName = typeName
	prim.Specifier = *specifier
	prim.Meta = parsed.meta
	prim.ElementPath = elemPath
	if path, err := b.r.path(current); err == nil {
		prim.Path = path
	}

	if err := b.buildProperties(current, prim); err != nil {
		return nil, err
	}
	b.primByNode[current] = prim
	return prim, nil
}

// buildProperties assembles the property map of a prim from its child
// attribute and relationship nodes, in traversal order.
func (b *stageBuilder) buildProperties(current uint32, prim *scene.Prim) error {
	for _, child := range b.r.nodes[current].Children {
		specIndex, ok := b.psmap[child]
		if !ok {
			continue
		}
		spec := b.r.specs[specIndex]
		if spec.Type != types.SpecTypeAttribute && spec.Type != types.SpecTypeRelationship {
			continue
		}
		path, err := b.r.path(spec.PathIndex)
		if err != nil {
			return err
		}
		fvs, err := b.fieldSet(spec)
		if err != nil {
			return err
		}
		prop, err := b.parseProperty(spec.Type, path.PropPart(), fvs)
		if err != nil {
			return err
		}
		prim.AddProperty(prop)
	}
	return nil
}

// attachVariants wires buffered variant prims onto their owning prims.
// The owner is the parent of the variant's VariantSet node.
func (b *stageBuilder) attachVariants() error {
	for _, ref := range b.variantRefs {
		variantNode, setNode := ref.variantNode, ref.setNode
		prim := b.variantPrims[variantNode]
		elemPath, err := b.r.elemPath(variantNode)
		if err != nil {
			return err
		}
		setName, variantName, ok := types.VariantSelection(elemPath.PrimPart())
		if !ok {
			return types.CorruptError(stageSection, 0,
				fmt.Sprintf("variant node %d has malformed element path %q", variantNode, elemPath.PrimPart()))
		}

		ownerNode := b.r.nodes[setNode].Parent
		owner := b.owningPrim(ownerNode)
		if owner == nil {
			return types.CorruptError(stageSection, 0,
				fmt.Sprintf("variant %s=%s has no owning prim", setName, variantName))
		}
		owner.AddVariant(setName, variantName, prim)
	}
	return nil
}

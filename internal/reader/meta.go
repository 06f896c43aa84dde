package reader

import (
	"fmt"

	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// parseStageMetas fills the stage metadata from the pseudo-root fieldset.
func (b *stageBuilder) parseStageMetas(fvs []FieldValue) error {
	metas := &b.stage.Metas
	for _, fv := range fvs {
		switch fv.Name {
		case "upAxis":
			tok, ok := value.As[value.Token](fv.Value)
			if !ok {
				return fieldTypeErr("upAxis", "token", fv.Value)
			}
			axis, ok := types.AxisFromToken(string(tok))
			if !ok {
				return &types.Error{
					Kind: types.ErrKindInvalidUpAxis, Section: stageSection,
					Msg: fmt.Sprintf("`upAxis` must be 'X', 'Y' or 'Z', got %q", tok),
					Err: types.ErrInvalidUpAxis,
				}
			}
			metas.UpAxis = axis

		case "metersPerUnit":
			v, ok := floatOrDouble(fv.Value)
			if !ok {
				return fieldTypeErr("metersPerUnit", "double", fv.Value)
			}
			metas.MetersPerUnit = v

		case "timeCodesPerSecond":
			v, ok := floatOrDouble(fv.Value)
			if !ok {
				return fieldTypeErr("timeCodesPerSecond", "double", fv.Value)
			}
			metas.TimeCodesPerSecond = v

		case "startTimeCode":
			v, ok := floatOrDouble(fv.Value)
			if !ok {
				return fieldTypeErr("startTimeCode", "double", fv.Value)
			}
			metas.StartTimeCode = v

		case "endTimeCode":
			v, ok := floatOrDouble(fv.Value)
			if !ok {
				return fieldTypeErr("endTimeCode", "double", fv.Value)
			}
			metas.EndTimeCode = v

		case "defaultPrim":
			tok, ok := value.As[value.Token](fv.Value)
			if !ok {
				return fieldTypeErr("defaultPrim", "token", fv.Value)
			}
			metas.DefaultPrim = tok

		case "customLayerData":
			d, ok := value.As[value.Dictionary](fv.Value)
			if !ok {
				return fieldTypeErr("customLayerData", "dictionary", fv.Value)
			}
			metas.CustomLayerData = d

		case "primChildren":
			toks, ok := value.As[[]value.Token](fv.Value)
			if !ok {
				return fieldTypeErr("primChildren", "token[]", fv.Value)
			}
			metas.PrimChildren = toks

		case "documentation":
			s, ok := value.As[string](fv.Value)
			if !ok {
				return fieldTypeErr("documentation", "string", fv.Value)
			}
			metas.Doc = s

		case "comment":
			s, ok := value.As[string](fv.Value)
			if !ok {
				return fieldTypeErr("comment", "string", fv.Value)
			}
			metas.Comment = s

		default:
			b.r.warnf("unhandled stage metadata field %q", fv.Name)
		}
	}
	return nil
}

// floatOrDouble accepts the metadata fields USD stores interchangeably as
// float or double.
func floatOrDouble(v value.Value) (float64, bool) {
	if d, ok := value.As[float64](v); ok {
		return d, true
	}
	if f, ok := value.As[float32](v); ok {
		return float64(f), true
	}
	return 0, false
}

// parsedPrimSpec is the result of parsing a Prim or Variant fieldset.
type parsedPrimSpec struct {
	typeName  string
	specifier *types.Specifier
	meta      scene.PrimMeta
}

// parsePrimSpec extracts the declaration fields and every recognized prim
// metadata field. Unknown fields warn rather than fail.
func (b *stageBuilder) parsePrimSpec(fvs []FieldValue) (parsedPrimSpec, error) {
	var out parsedPrimSpec
	for _, fv := range fvs {
		switch fv.Name {
		case "typeName":
			tok, ok := value.As[value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("typeName", "token", fv.Value)
			}
			out.typeName = string(tok)

		case "specifier":
			s, ok := value.As[types.Specifier](fv.Value)
			if !ok {
				return out, fieldTypeErr("specifier", "Specifier", fv.Value)
			}
			out.specifier = &s

		case "properties":
			toks, ok := value.As[[]value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("properties", "token[]", fv.Value)
			}
			out.meta.Properties = toks

		case "primChildren":
			toks, ok := value.As[[]value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("primChildren", "token[]", fv.Value)
			}
			out.meta.PrimChildren = toks

		case "variantChildren":
			toks, ok := value.As[[]value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("variantChildren", "token[]", fv.Value)
			}
			out.meta.VariantChildren = toks

		case "variantSetChildren":
			toks, ok := value.As[[]value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("variantSetChildren", "token[]", fv.Value)
			}
			out.meta.VariantSetChildren = toks

		case "active":
			v, ok := value.As[bool](fv.Value)
			if !ok {
				return out, fieldTypeErr("active", "bool", fv.Value)
			}
			out.meta.Active = &v

		case "hidden":
			v, ok := value.As[bool](fv.Value)
			if !ok {
				return out, fieldTypeErr("hidden", "bool", fv.Value)
			}
			out.meta.Hidden = &v

		case "kind":
			tok, ok := value.As[value.Token](fv.Value)
			if !ok {
				return out, fieldTypeErr("kind", "token", fv.Value)
			}
			kind, ok := types.KindFromToken(string(tok))
			if !ok {
				return out, &types.Error{
					Kind: types.ErrKindInvalidKind, Section: stageSection,
					Msg: fmt.Sprintf("invalid `kind` metadata token %q", tok),
					Err: types.ErrInvalidKind,
				}
			}
			out.meta.Kind = &kind

		case "apiSchemas":
			op, ok := value.As[value.ListOp[value.Token]](fv.Value)
			if !ok {
				return out, fieldTypeErr("apiSchemas", "TokenListOp", fv.Value)
			}
			schemas, err := b.toAPISchemas(op)
			if err != nil {
				return out, err
			}
			out.meta.APISchemas = schemas

		case "documentation":
			s, ok := value.As[string](fv.Value)
			if !ok {
				return out, fieldTypeErr("documentation", "string", fv.Value)
			}
			out.meta.Doc = s

		case "comment":
			s, ok := value.As[string](fv.Value)
			if !ok {
				return out, fieldTypeErr("comment", "string", fv.Value)
			}
			out.meta.Comment = s

		case "customData":
			d, ok := value.As[value.Dictionary](fv.Value)
			if !ok {
				return out, fieldTypeErr("customData", "dictionary", fv.Value)
			}
			out.meta.CustomData = &d

		case "assetInfo":
			d, ok := value.As[value.Dictionary](fv.Value)
			if !ok {
				return out, fieldTypeErr("assetInfo", "dictionary", fv.Value)
			}
			out.meta.AssetInfo = &d

		case "variantSelection":
			m, ok := value.As[value.VariantSelectionMap](fv.Value)
			if !ok {
				return out, fieldTypeErr("variantSelection", "variants", fv.Value)
			}
			out.meta.Variants = m

		case "variantSetNames":
			op, ok := value.As[value.ListOp[string]](fv.Value)
			if !ok {
				return out, fieldTypeErr("variantSetNames", "StringListOp", fv.Value)
			}
			pairs := op.Decode()
			if len(pairs) == 0 {
				break
			}
			if len(pairs) > 1 {
				b.r.warnf("variantSetNames carries multiple list-op buckets; using %s", pairs[0].Qual)
			}
			out.meta.VariantSets = &scene.StringListEdit{Qual: pairs[0].Qual, Items: pairs[0].Items}

		case "sceneName":
			s, ok := value.As[string](fv.Value)
			if !ok {
				return out, fieldTypeErr("sceneName", "string", fv.Value)
			}
			out.meta.SceneName = &s

		case "inherits":
			edit, err := b.pathListEdit("inherits", fv.Value)
			if err != nil {
				return out, err
			}
			out.meta.Inherits = edit

		case "specializes":
			edit, err := b.pathListEdit("specializes", fv.Value)
			if err != nil {
				return out, err
			}
			out.meta.Specializes = edit

		case "inheritPaths":
			edit, err := b.pathListEdit("inheritPaths", fv.Value)
			if err != nil {
				return out, err
			}
			out.meta.InheritPaths = edit

		default:
			b.r.warnf("unhandled prim metadata field %q", fv.Name)
		}
	}
	return out, nil
}

// pathListEdit decodes a composition arc field. A ValueBlock stands for
// an explicitly empty arc; multiple populated buckets warn and collapse
// to the first in the fixed bucket order.
func (b *stageBuilder) pathListEdit(name string, v value.Value) (*scene.PathListEdit, error) {
	if v.IsBlock() {
		return &scene.PathListEdit{Qual: types.ListEditResetToExplicit}, nil
	}
	op, ok := value.As[value.ListOp[types.Path]](v)
	if !ok {
		return nil, fieldTypeErr(name, "PathListOp", v)
	}
	pairs := op.Decode()
	if len(pairs) == 0 {
		return &scene.PathListEdit{Qual: types.ListEditResetToExplicit}, nil
	}
	if len(pairs) > 1 {
		b.r.warnf("`%s` carries multiple list-op buckets; using %s", name, pairs[0].Qual)
	}
	return &scene.PathListEdit{Qual: pairs[0].Qual, Paths: pairs[0].Items}, nil
}

// toAPISchemas validates an apiSchemas list-op against the closed schema
// set. Mixing qualifiers is rejected outright.
func (b *stageBuilder) toAPISchemas(op value.ListOp[value.Token]) (*scene.APISchemas, error) {
	pairs := op.Decode()
	if len(pairs) == 0 {
		return &scene.APISchemas{Qual: types.ListEditResetToExplicit}, nil
	}
	if len(pairs) > 1 {
		return nil, &types.Error{
			Kind: types.ErrKindInvalidApiSchema, Section: stageSection,
			Msg: "`apiSchemas` mixes list-op qualifiers",
			Err: types.ErrInvalidApiSchema,
		}
	}
	out := &scene.APISchemas{Qual: pairs[0].Qual}
	for _, tok := range pairs[0].Items {
		schema, ok := types.APISchemaFromToken(string(tok))
		if !ok {
			return nil, &types.Error{
				Kind: types.ErrKindInvalidApiSchema, Section: stageSection,
				Msg: fmt.Sprintf("invalid or unsupported API schema %q", tok),
				Err: types.ErrInvalidApiSchema,
			}
		}
		out.Names = append(out.Names, schema)
	}
	return out, nil
}

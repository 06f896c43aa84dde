package reader

import (
	"fmt"

	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

func fieldTypeErr(name, want string, got value.Value) error {
	return types.CorruptError(stageSection, 0,
		fmt.Sprintf("`%s` must be type `%s`, but got `%s`", name, want, got.TypeName()))
}

// parseProperty assembles one Property from a fieldset. The property
// shape (empty, attribute, connection, relationship) is chosen from the
// fields present, then checked against the spec type.
func (b *stageBuilder) parseProperty(specType types.SpecType, name string, fvs []FieldValue) (scene.Property, error) {
	prop := scene.Property{
		Name:        name,
		Kind:        scene.PropertyEmptyAttribute,
		Variability: types.VariabilityVarying,
	}

	var typeName string
	var hasDefault bool
	var defaultValue value.Value

	for _, fv := range fvs {
		switch fv.Name {
		case "custom":
			v, ok := value.As[bool](fv.Value)
			if !ok {
				return prop, fieldTypeErr("custom", "bool", fv.Value)
			}
			prop.Custom = v

		case "variability":
			v, ok := value.As[types.Variability](fv.Value)
			if !ok {
				return prop, fieldTypeErr("variability", "variability", fv.Value)
			}
			prop.Variability = v

		case "typeName":
			v, ok := value.As[value.Token](fv.Value)
			if !ok {
				return prop, fieldTypeErr("typeName", "token", fv.Value)
			}
			typeName = string(v)

		case "default":
			hasDefault = true
			defaultValue = fv.Value
			if prop.Kind == scene.PropertyEmptyAttribute {
				prop.Kind = scene.PropertyAttribute
			}

		case "timeSamples":
			ts, ok := value.As[value.TimeSamples](fv.Value)
			if !ok {
				return prop, fieldTypeErr("timeSamples", "TimeSamples", fv.Value)
			}
			prop.TimeSamples = &ts
			if prop.Kind == scene.PropertyEmptyAttribute {
				prop.Kind = scene.PropertyAttribute
			}

		case "interpolation":
			v, ok := value.As[value.Token](fv.Value)
			if !ok {
				return prop, fieldTypeErr("interpolation", "token", fv.Value)
			}
			interp, ok := types.InterpolationFromToken(string(v))
			if !ok {
				return prop, types.CorruptError(stageSection, 0,
					fmt.Sprintf("invalid interpolation token %q", v))
			}
			prop.Meta.Interpolation = interp

		case "elementSize":
			v, ok := value.As[int32](fv.Value)
			if !ok {
				return prop, fieldTypeErr("elementSize", "int", fv.Value)
			}
			if v < 1 || int(v) > b.r.cfg.MaxElementSize {
				return prop, types.LimitError(stageSection, 0,
					fmt.Sprintf("elementSize %d outside [1, %d]", v, b.r.cfg.MaxElementSize))
			}
			prop.Meta.ElementSize = int(v)

		case "hidden":
			v, ok := value.As[bool](fv.Value)
			if !ok {
				return prop, fieldTypeErr("hidden", "bool", fv.Value)
			}
			prop.Meta.Hidden = &v

		case "customData":
			v, ok := value.As[value.Dictionary](fv.Value)
			if !ok {
				return prop, fieldTypeErr("customData", "dictionary", fv.Value)
			}
			prop.Meta.CustomData = &v

		case "comment":
			v, ok := value.As[string](fv.Value)
			if !ok {
				return prop, fieldTypeErr("comment", "string", fv.Value)
			}
			prop.Meta.Comment = v

		case "connectionPaths":
			op, ok := value.As[value.ListOp[types.Path]](fv.Value)
			if !ok {
				return prop, fieldTypeErr("connectionPaths", "ListOp[Path]", fv.Value)
			}
			pairs := op.Decode()
			if len(pairs) == 0 || len(pairs[0].Items) == 0 {
				return prop, &types.Error{
					Kind: types.ErrKindInvalidConnection, Section: stageSection,
					Msg: fmt.Sprintf("`connectionPaths` of %q is empty", name),
					Err: types.ErrInvalidConnection,
				}
			}
			if len(pairs) > 1 {
				b.r.warnf("connectionPaths of %q carries multiple list-op buckets; using %s", name, pairs[0].Qual)
			}
			prop.Kind = scene.PropertyConnection
			prop.Targets = pairs[0].Items
			prop.ListEdit = pairs[0].Qual

		case "targetPaths":
			op, ok := value.As[value.ListOp[types.Path]](fv.Value)
			if !ok {
				return prop, fieldTypeErr("targetPaths", "ListOp[Path]", fv.Value)
			}
			pairs := op.Decode()
			prop.Kind = scene.PropertyRelationship
			if len(pairs) > 0 {
				if len(pairs) > 1 {
					b.r.warnf("targetPaths of %q carries multiple list-op buckets; using %s", name, pairs[0].Qual)
				}
				prop.Targets = pairs[0].Items
				prop.ListEdit = pairs[0].Qual
			}

		case "targetChildren", "connectionChildren":
			// Cross-reference lists kept by the writer for validation.
			if _, ok := value.As[[]types.Path](fv.Value); !ok {
				return prop, fieldTypeErr(fv.Name, "PathVector", fv.Value)
			}

		default:
			b.r.warnf("unhandled property field %q on %q", fv.Name, name)
		}
	}

	prop.TypeName = typeName

	if hasDefault {
		if typeName != "" {
			upcast, err := b.upcastToTypeName(name, typeName, defaultValue)
			if err != nil {
				return prop, err
			}
			defaultValue = upcast
		}
		prop.Default = defaultValue
	}

	// Shape checks.
	switch prop.Kind {
	case scene.PropertyConnection:
		if typeName == "" {
			return prop, &types.Error{
				Kind: types.ErrKindInvalidConnection, Section: stageSection,
				Msg: fmt.Sprintf("connection %q is missing `typeName`", name),
				Err: types.ErrInvalidConnection,
			}
		}
	case scene.PropertyEmptyAttribute:
		if typeName == "" {
			if specType == types.SpecTypeRelationship {
				// `rel target` with no targets.
				prop.Kind = scene.PropertyRelationship
				break
			}
			return prop, types.CorruptError(stageSection, 0,
				fmt.Sprintf("attribute %q declares neither `typeName` nor a value", name))
		}
	}
	return prop, nil
}

// upcastToTypeName reconciles a stored value with the declared attribute
// type: role types re-tag, and lower-precision storage (e.g. an inline
// half3 for a float3 attribute) widens losslessly component-wise. An
// unknown or unrelated type name leaves the value as stored, with a
// warning in either case.
func (b *stageBuilder) upcastToTypeName(propName, typeName string, v value.Value) (value.Value, error) {
	reqID, ok := value.TypeIDFromName(typeName)
	if !ok {
		b.r.warnf("attribute %q declares unknown type %q; keeping stored type %s",
			propName, typeName, v.TypeName())
		return v, nil
	}
	if reqID == v.TypeID() {
		return v, nil
	}

	// Same layout: just re-tag (float3 -> point3f and friends).
	if reqID.Underlying() == v.UnderlyingTypeID() {
		return value.Retype(v, reqID)
	}

	// Lossless precision widening toward the declared type.
	if widened, ok := value.Widen(v, reqID.Underlying()); ok {
		return value.Retype(widened, reqID)
	}

	b.r.warnf("attribute %q declares type %q but stores %s; keeping stored value",
		propName, typeName, v.TypeName())
	return v, nil
}

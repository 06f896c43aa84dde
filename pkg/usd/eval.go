package usd

import (
	"fmt"

	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// EvaluateAttribute resolves the attribute at primPath.attrName at time t
// with the requested interpolation. Connection chains are followed up to
// the configured hop limit; revisiting a path fails with
// CircularConnection. An attribute with neither a default nor samples
// evaluates to the Block sentinel.
func (s *Stage) EvaluateAttribute(primPath, attrName string, t float64, mode value.InterpolationMode) (value.Value, error) {
	visited := map[string]struct{}{}
	maxHops := s.cfg.MaxConnectionHops
	if maxHops <= 0 {
		maxHops = types.DefaultMaxConnectionHops
	}
	return s.evaluate(primPath, attrName, t, mode, visited, maxHops)
}

func (s *Stage) evaluate(primPath, attrName string, t float64, mode value.InterpolationMode,
	visited map[string]struct{}, hopsLeft int) (value.Value, error) {

	abs := primPath + "." + attrName
	if _, seen := visited[abs]; seen {
		return value.Value{}, &types.Error{
			Kind: types.ErrKindCircularConnection,
			Msg:  "connection chain revisits " + abs,
			Err:  types.ErrCircularConnection,
		}
	}
	visited[abs] = struct{}{}

	prim, err := s.GetPrimAtPath(primPath)
	if err != nil {
		return value.Value{}, err
	}
	prop, ok := prim.Property(attrName)
	if !ok {
		return value.Value{}, &types.Error{
			Kind: types.ErrKindNotFound,
			Msg:  fmt.Sprintf("prim %s has no property %q", primPath, attrName),
			Err:  types.ErrNotFound,
		}
	}

	switch prop.Kind {
	case scene.PropertyConnection:
		if hopsLeft <= 0 {
			return value.Value{}, &types.Error{
				Kind: types.ErrKindInvalidConnection,
				Msg:  "connection chain exceeds hop limit at " + abs,
				Err:  types.ErrInvalidConnection,
			}
		}
		if len(prop.Targets) == 0 {
			return value.Value{}, &types.Error{
				Kind: types.ErrKindInvalidConnection,
				Msg:  "connection " + abs + " has no target",
				Err:  types.ErrInvalidConnection,
			}
		}
		target := prop.Targets[0]
		if target.PropPart() == "" {
			return value.Value{}, &types.Error{
				Kind: types.ErrKindInvalidConnection,
				Msg:  fmt.Sprintf("connection %s targets a prim (%s), not a property", abs, target),
				Err:  types.ErrInvalidConnection,
			}
		}
		v, err := s.evaluate(target.PrimPart(), target.PropPart(), t, mode, visited, hopsLeft-1)
		if err != nil {
			// A dangling target surfaces as InvalidConnection; cycles keep
			// their own kind.
			var te *types.Error
			if ok := asTypeError(err, &te); ok && te.Kind == types.ErrKindNotFound {
				return value.Value{}, &types.Error{
					Kind: types.ErrKindInvalidConnection,
					Msg:  fmt.Sprintf("connection %s targets missing %s", abs, target),
					Err:  types.ErrInvalidConnection,
				}
			}
			return value.Value{}, err
		}
		return v, nil

	case scene.PropertyRelationship:
		return value.Value{}, &types.Error{
			Kind: types.ErrKindInvalidConnection,
			Msg:  "cannot evaluate relationship " + abs,
			Err:  types.ErrInvalidConnection,
		}

	default:
		if prop.TimeSamples != nil {
			return prop.TimeSamples.Get(t, mode), nil
		}
		if prop.Default.IsValid() {
			return prop.Default, nil
		}
		return value.New(value.Block{}), nil
	}
}

func asTypeError(err error, out **types.Error) bool {
	te, ok := err.(*types.Error)
	if ok {
		*out = te
	}
	return ok
}

// EvaluateAttributeAs evaluates and extracts the result as T, failing
// with TypeMismatch when the resolved value is not castable.
func EvaluateAttributeAs[T any](s *Stage, primPath, attrName string, t float64, mode value.InterpolationMode) (T, error) {
	var zero T
	v, err := s.EvaluateAttribute(primPath, attrName, t, mode)
	if err != nil {
		return zero, err
	}
	out, ok := value.As[T](v)
	if !ok {
		return zero, &types.Error{
			Kind: types.ErrKindTypeMismatch,
			Msg:  fmt.Sprintf("attribute %s.%s has type %s", primPath, attrName, v.TypeName()),
			Err:  types.ErrTypeMismatch,
		}
	}
	return out, nil
}

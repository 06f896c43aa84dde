// Package value implements the type-erased container for every USD value
// the crate decoder can produce: ~60 scalar and composite types, their 1-D
// array forms, role-typed variants, list-edit operations, ordered
// dictionaries, and time-sample stores.
package value

import (
	"fmt"
	"reflect"

	"github.com/joshuapare/cratekit/pkg/types"
)

// Value owns one concrete payload and exposes it behind a stable TypeID.
// The zero Value is invalid.
type Value struct {
	tid TypeID
	v   any
}

// TypeID returns the concrete type of the payload.
func (v Value) TypeID() TypeID { return v.tid }

// UnderlyingTypeID returns the layout-equivalent POD id. Role types report
// their POD shape (point3f -> float3); other types report themselves.
func (v Value) UnderlyingTypeID() TypeID { return v.tid.Underlying() }

// TypeName returns the USD name of the payload type.
func (v Value) TypeName() string { return v.tid.Name() }

// IsValid reports whether the value holds a payload.
func (v Value) IsValid() bool { return v.tid != TypeInvalid }

// IsBlock reports whether the value is the USD "None" sentinel.
func (v Value) IsBlock() bool { return v.tid == TypeValueBlock }

// Interface exposes the raw payload.
func (v Value) Interface() any { return v.v }

func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.tid.Name(), v.v)
}

// -----------------------------------------------------------------------------
// Type registry
// -----------------------------------------------------------------------------

var (
	idByType = map[reflect.Type]TypeID{}
	typeByID = map[TypeID]reflect.Type{}
)

func register[T any](id TypeID) {
	t := reflect.TypeOf(*new(T))
	if _, dup := typeByID[id]; dup {
		panic(fmt.Sprintf("value: duplicate TypeID registration %d", id))
	}
	typeByID[id] = t
	if _, taken := idByType[t]; taken {
		panic(fmt.Sprintf("value: duplicate Go type registration for %s", id.Name()))
	}
	idByType[t] = id
}

// registerVector records a Go representation for a vector container id
// (TokenVector and friends) without claiming the reverse mapping: their
// Go type already denotes the plain array form.
func registerVector[T any](id TypeID) {
	typeByID[id] = reflect.TypeOf(*new(T))
}

func init() {
	register[bool](TypeBool)
	register[uint8](TypeUChar)
	register[int32](TypeInt)
	register[uint32](TypeUInt)
	register[int64](TypeInt64)
	register[uint64](TypeUInt64)
	register[Half](TypeHalf)
	register[float32](TypeFloat)
	register[float64](TypeDouble)
	register[string](TypeString)
	register[Token](TypeToken)
	register[AssetPath](TypeAssetPath)
	register[TimeCode](TypeTimeCode)

	register[Matrix2d](TypeMatrix2d)
	register[Matrix3d](TypeMatrix3d)
	register[Matrix4d](TypeMatrix4d)
	register[Quatd](TypeQuatd)
	register[Quatf](TypeQuatf)
	register[Quath](TypeQuath)

	register[Double2](TypeDouble2)
	register[Float2](TypeFloat2)
	register[Half2](TypeHalf2)
	register[Int2](TypeInt2)
	register[Double3](TypeDouble3)
	register[Float3](TypeFloat3)
	register[Half3](TypeHalf3)
	register[Int3](TypeInt3)
	register[Double4](TypeDouble4)
	register[Float4](TypeFloat4)
	register[Half4](TypeHalf4)
	register[Int4](TypeInt4)

	register[Point3h](TypePoint3h)
	register[Point3f](TypePoint3f)
	register[Point3d](TypePoint3d)
	register[Normal3h](TypeNormal3h)
	register[Normal3f](TypeNormal3f)
	register[Normal3d](TypeNormal3d)
	register[Vector3h](TypeVector3h)
	register[Vector3f](TypeVector3f)
	register[Vector3d](TypeVector3d)
	register[Color3h](TypeColor3h)
	register[Color3f](TypeColor3f)
	register[Color3d](TypeColor3d)
	register[Color4h](TypeColor4h)
	register[Color4f](TypeColor4f)
	register[Color4d](TypeColor4d)
	register[TexCoord2h](TypeTexCoord2h)
	register[TexCoord2f](TypeTexCoord2f)
	register[TexCoord2d](TypeTexCoord2d)
	register[TexCoord3h](TypeTexCoord3h)
	register[TexCoord3f](TypeTexCoord3f)
	register[TexCoord3d](TypeTexCoord3d)
	register[Frame4d](TypeFrame4d)

	register[Specifier](TypeSpecifier)
	register[Permission](TypePermission)
	register[Variability](TypeVariability)
	register[VariantSelectionMap](TypeVariantSelectionMap)

	register[Dictionary](TypeDictionary)
	register[Block](TypeValueBlock)
	register[TimeSamples](TypeTimeSamples)

	register[ListOp[Token]](TypeTokenListOp)
	register[ListOp[string]](TypeStringListOp)
	register[ListOp[types.Path]](TypePathListOp)
	register[ListOp[int32]](TypeIntListOp)
	register[ListOp[int64]](TypeInt64ListOp)
	register[ListOp[uint32]](TypeUIntListOp)
	register[ListOp[uint64]](TypeUInt64ListOp)

	// PathVector is the only vector container without a scalar array
	// form; it owns its Go type outright.
	register[[]types.Path](TypePathVector)
	registerVector[[]Token](TypeTokenVector)
	registerVector[[]string](TypeStringVector)
	registerVector[[]float64](TypeDoubleVector)
}

// typeIDFor resolves the TypeID of a Go type. Slices of registered
// element types derive the array id; everything else resolves through
// the registry.
func typeIDFor(t reflect.Type) (TypeID, bool) {
	if t.Kind() == reflect.Slice {
		if elemID, ok := idByType[t.Elem()]; ok {
			return elemID | ArrayBit, true
		}
	}
	if id, ok := idByType[t]; ok {
		return id, true
	}
	return TypeInvalid, false
}

// New wraps a concrete payload. It panics on unregistered types; decoders
// only construct values from the registered set.
func New(payload any) Value {
	id, ok := typeIDFor(reflect.TypeOf(payload))
	if !ok {
		panic(fmt.Sprintf("value: unregistered payload type %T", payload))
	}
	return Value{tid: id, v: payload}
}

// NewTyped wraps a payload under an explicit TypeID. The payload's layout
// must match the id's underlying shape; used for role tagging.
func NewTyped(id TypeID, payload any) Value {
	return Value{tid: id, v: payload}
}

// As extracts the payload as T. It succeeds when T's TypeID equals the
// stored TypeID, or when both share an underlying POD layout (role type
// punning), in which case the payload is reinterpreted.
func As[T any](v Value) (T, bool) {
	var zero T
	if t, ok := v.v.(T); ok && typeMatches[T](v.tid) {
		return t, true
	}
	want, ok := typeIDFor(reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	if want.Underlying() != v.tid.Underlying() {
		return zero, false
	}
	converted, ok := convertPayload(reflect.ValueOf(v.v), reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	out, ok := converted.Interface().(T)
	return out, ok
}

// convertPayload reinterprets rv as type tt. Scalars and fixed-size
// composites convert directly; slices convert element-wise since Go does
// not allow retyping slice elements in one step.
func convertPayload(rv reflect.Value, tt reflect.Type) (reflect.Value, bool) {
	if rv.Type() == tt {
		return rv, true
	}
	if rv.Type().ConvertibleTo(tt) {
		return rv.Convert(tt), true
	}
	if rv.Kind() == reflect.Slice && tt.Kind() == reflect.Slice &&
		rv.Type().Elem().ConvertibleTo(tt.Elem()) {
		out := reflect.MakeSlice(tt, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(rv.Index(i).Convert(tt.Elem()))
		}
		return out, true
	}
	return reflect.Value{}, false
}

// typeMatches guards the fast path: a direct type assertion alone is not
// enough because role types and their PODs may share assertion behavior
// through aliasing.
func typeMatches[T any](tid TypeID) bool {
	var zero T
	want, ok := typeIDFor(reflect.TypeOf(zero))
	if !ok {
		return false
	}
	return want == tid || want.Underlying() == tid.Underlying()
}

// Retype re-tags v with a role (or otherwise layout-compatible) TypeID.
// Fails with TypeMismatch if the layouts differ.
func Retype(v Value, id TypeID) (Value, error) {
	if v.tid == id {
		return v, nil
	}
	if v.tid.Underlying() != id.Underlying() {
		return Value{}, &types.Error{Kind: types.ErrKindTypeMismatch,
			Msg:  fmt.Sprintf("cannot retype %s as %s", v.tid.Name(), id.Name()),
			Err:  types.ErrTypeMismatch,
		}
	}
	want, ok := goTypeFor(id)
	if !ok {
		return Value{}, &types.Error{Kind: types.ErrKindTypeMismatch,
			Msg: fmt.Sprintf("no concrete representation for %s", id.Name()),
			Err: types.ErrTypeMismatch,
		}
	}
	converted, okc := convertPayload(reflect.ValueOf(v.v), want)
	if !okc {
		return Value{}, &types.Error{Kind: types.ErrKindTypeMismatch,
			Msg: fmt.Sprintf("layout mismatch retyping %s as %s", v.tid.Name(), id.Name()),
			Err: types.ErrTypeMismatch,
		}
	}
	return Value{tid: id, v: converted.Interface()}, nil
}

func goTypeFor(id TypeID) (reflect.Type, bool) {
	if t, ok := typeByID[id]; ok {
		return t, true
	}
	if id.IsArray() {
		if elem, ok := typeByID[id.Elem()]; ok {
			return reflect.SliceOf(elem), true
		}
	}
	return nil, false
}

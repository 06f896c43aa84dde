package value

import (
	"github.com/x448/float16"

	"github.com/joshuapare/cratekit/pkg/types"
)

// Half is an IEEE 754 half-precision float.
type Half = float16.Float16

// HalfFromFloat32 converts with round-to-nearest-even.
func HalfFromFloat32(f float32) Half { return float16.Fromfloat32(f) }

// Vector and matrix PODs. Component order matches the on-disk layout, so a
// vector can be filled by reading its components in file order.
type (
	Half2 [2]Half
	Half3 [3]Half
	Half4 [4]Half

	Float2 [2]float32
	Float3 [3]float32
	Float4 [4]float32

	Double2 [2]float64
	Double3 [3]float64
	Double4 [4]float64

	Int2 [2]int32
	Int3 [3]int32
	Int4 [4]int32

	Matrix2d [2][2]float64
	Matrix3d [3][3]float64
	Matrix4d [4][4]float64

	// Quaternions store (x, y, z, w) with the real part last.
	Quath [4]Half
	Quatf [4]float32
	Quatd [4]float64
)

// Role types. Layout-identical to their POD underlying types; the distinct
// Go type carries the semantic tag.
type (
	Point3h  Half3
	Point3f  Float3
	Point3d  Double3
	Normal3h Half3
	Normal3f Float3
	Normal3d Double3
	Vector3h Half3
	Vector3f Float3
	Vector3d Double3
	Color3h  Half3
	Color3f  Float3
	Color3d  Double3
	Color4h  Half4
	Color4f  Float4
	Color4d  Double4

	TexCoord2h Half2
	TexCoord2f Float2
	TexCoord2d Double2
	TexCoord3h Half3
	TexCoord3f Float3
	TexCoord3d Double3

	Frame4d Matrix4d
)

// Token is an interned identifier. Equality is by content.
type Token string

// AssetPath references an external asset by (unresolved) path.
type AssetPath struct {
	Path string
}

// TimeCode is a double tagged as a stage time coordinate.
type TimeCode float64

// Block is the USD "None" sentinel: the attribute is explicitly blocked.
type Block struct{}

// VariantSelectionMap maps variant set names to selected variant names.
type VariantSelectionMap map[string]string

// Specifier/Permission/Variability values reuse the enums from pkg/types.
type (
	Specifier   = types.Specifier
	Permission  = types.Permission
	Variability = types.Variability
)

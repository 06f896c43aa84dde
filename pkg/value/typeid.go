package value

import "fmt"

// TypeID identifies the concrete type held by a Value. The low bits of the
// base ids align with the crate file's data-type codes; role types (which
// never appear in the file as codes, only as typeName metadata) live above
// them. ArrayBit marks the 1-D array form of a scalar id.
type TypeID uint32

// ArrayBit distinguishes `T[]` from `T`.
const ArrayBit TypeID = 1 << 16

// Base ids, aligned with the crate serialization codes.
const (
	TypeInvalid TypeID = iota
	TypeBool
	TypeUChar
	TypeInt
	TypeUInt
	TypeInt64
	TypeUInt64
	TypeHalf
	TypeFloat
	TypeDouble
	TypeString
	TypeToken
	TypeAssetPath
	TypeMatrix2d
	TypeMatrix3d
	TypeMatrix4d
	TypeQuatd
	TypeQuatf
	TypeQuath
	TypeDouble2
	TypeFloat2
	TypeHalf2
	TypeInt2
	TypeDouble3
	TypeFloat3
	TypeHalf3
	TypeInt3
	TypeDouble4
	TypeFloat4
	TypeHalf4
	TypeInt4
	TypeDictionary
	TypeTokenListOp
	TypeStringListOp
	TypePathListOp
	TypeReferenceListOp
	TypeIntListOp
	TypeInt64ListOp
	TypeUIntListOp
	TypeUInt64ListOp
	TypePathVector
	TypeTokenVector
	TypeSpecifier
	TypePermission
	TypeVariability
	TypeVariantSelectionMap
	TypeTimeSamples
	TypePayload
	TypeDoubleVector
	TypeLayerOffsetVector
	TypeStringVector
	TypeValueBlock
	TypeValue
	TypeUnregisteredValue
	TypeUnregisteredValueListOp
	TypePayloadListOp
	TypeTimeCode
)

// Role ids. Each is layout-identical to a POD id above; Underlying maps it
// back so role values can be reinterpreted safely.
const (
	TypePoint3h TypeID = iota + 1<<8
	TypePoint3f
	TypePoint3d
	TypeNormal3h
	TypeNormal3f
	TypeNormal3d
	TypeVector3h
	TypeVector3f
	TypeVector3d
	TypeColor3h
	TypeColor3f
	TypeColor3d
	TypeColor4h
	TypeColor4f
	TypeColor4d
	TypeTexCoord2h
	TypeTexCoord2f
	TypeTexCoord2d
	TypeTexCoord3h
	TypeTexCoord3f
	TypeTexCoord3d
	TypeFrame4d
)

// IsArray reports whether id is the array form of a type.
func (id TypeID) IsArray() bool { return id&ArrayBit != 0 }

// Elem strips the array bit.
func (id TypeID) Elem() TypeID { return id &^ ArrayBit }

// Array sets the array bit.
func (id TypeID) Array() TypeID { return id | ArrayBit }

var roleUnderlying = map[TypeID]TypeID{
	TypePoint3h:    TypeHalf3,
	TypePoint3f:    TypeFloat3,
	TypePoint3d:    TypeDouble3,
	TypeNormal3h:   TypeHalf3,
	TypeNormal3f:   TypeFloat3,
	TypeNormal3d:   TypeDouble3,
	TypeVector3h:   TypeHalf3,
	TypeVector3f:   TypeFloat3,
	TypeVector3d:   TypeDouble3,
	TypeColor3h:    TypeHalf3,
	TypeColor3f:    TypeFloat3,
	TypeColor3d:    TypeDouble3,
	TypeColor4h:    TypeHalf4,
	TypeColor4f:    TypeFloat4,
	TypeColor4d:    TypeDouble4,
	TypeTexCoord2h: TypeHalf2,
	TypeTexCoord2f: TypeFloat2,
	TypeTexCoord2d: TypeDouble2,
	TypeTexCoord3h: TypeHalf3,
	TypeTexCoord3f: TypeFloat3,
	TypeTexCoord3d: TypeDouble3,
	TypeFrame4d:    TypeMatrix4d,
}

// Vector-of-X container types alias the corresponding array id so typed
// gets treat e.g. a TokenVector like a token[].
var vectorUnderlying = map[TypeID]TypeID{
	TypeTokenVector:  TypeToken | ArrayBit,
	TypeStringVector: TypeString | ArrayBit,
	TypeDoubleVector: TypeDouble | ArrayBit,
}

// Underlying returns the layout-equivalent POD id for role and vector
// container types; all other ids map to themselves. The array bit is
// preserved.
func (id TypeID) Underlying() TypeID {
	arr := id & ArrayBit
	base := id.Elem()
	if u, ok := roleUnderlying[base]; ok {
		return u | arr
	}
	if u, ok := vectorUnderlying[base]; ok {
		// Vector containers already denote a sequence; the array bit
		// never combines with them.
		return u
	}
	return id
}

var typeNames = map[TypeID]string{
	TypeInvalid:                 "[invalid]",
	TypeBool:                    "bool",
	TypeUChar:                   "uchar",
	TypeInt:                     "int",
	TypeUInt:                    "uint",
	TypeInt64:                   "int64",
	TypeUInt64:                  "uint64",
	TypeHalf:                    "half",
	TypeFloat:                   "float",
	TypeDouble:                  "double",
	TypeString:                  "string",
	TypeToken:                   "token",
	TypeAssetPath:               "asset",
	TypeMatrix2d:                "matrix2d",
	TypeMatrix3d:                "matrix3d",
	TypeMatrix4d:                "matrix4d",
	TypeQuatd:                   "quatd",
	TypeQuatf:                   "quatf",
	TypeQuath:                   "quath",
	TypeDouble2:                 "double2",
	TypeFloat2:                  "float2",
	TypeHalf2:                   "half2",
	TypeInt2:                    "int2",
	TypeDouble3:                 "double3",
	TypeFloat3:                  "float3",
	TypeHalf3:                   "half3",
	TypeInt3:                    "int3",
	TypeDouble4:                 "double4",
	TypeFloat4:                  "float4",
	TypeHalf4:                   "half4",
	TypeInt4:                    "int4",
	TypeDictionary:              "dictionary",
	TypeTokenListOp:             "TokenListOp",
	TypeStringListOp:            "StringListOp",
	TypePathListOp:              "PathListOp",
	TypeReferenceListOp:         "ReferenceListOp",
	TypeIntListOp:               "IntListOp",
	TypeInt64ListOp:             "Int64ListOp",
	TypeUIntListOp:              "UIntListOp",
	TypeUInt64ListOp:            "UInt64ListOp",
	TypePathVector:              "PathVector",
	TypeTokenVector:             "TokenVector",
	TypeSpecifier:               "Specifier",
	TypePermission:              "Permission",
	TypeVariability:             "Variability",
	TypeVariantSelectionMap:     "variants",
	TypeTimeSamples:             "TimeSamples",
	TypePayload:                 "Payload",
	TypeDoubleVector:            "DoubleVector",
	TypeLayerOffsetVector:       "LayerOffsetVector",
	TypeStringVector:            "StringVector",
	TypeValueBlock:              "None",
	TypeValue:                   "Value",
	TypeUnregisteredValue:       "UnregisteredValue",
	TypeUnregisteredValueListOp: "UnregisteredValueListOp",
	TypePayloadListOp:           "PayloadListOp",
	TypeTimeCode:                "timecode",

	TypePoint3h:    "point3h",
	TypePoint3f:    "point3f",
	TypePoint3d:    "point3d",
	TypeNormal3h:   "normal3h",
	TypeNormal3f:   "normal3f",
	TypeNormal3d:   "normal3d",
	TypeVector3h:   "vector3h",
	TypeVector3f:   "vector3f",
	TypeVector3d:   "vector3d",
	TypeColor3h:    "color3h",
	TypeColor3f:    "color3f",
	TypeColor3d:    "color3d",
	TypeColor4h:    "color4h",
	TypeColor4f:    "color4f",
	TypeColor4d:    "color4d",
	TypeTexCoord2h: "texCoord2h",
	TypeTexCoord2f: "texCoord2f",
	TypeTexCoord2d: "texCoord2d",
	TypeTexCoord3h: "texCoord3h",
	TypeTexCoord3f: "texCoord3f",
	TypeTexCoord3d: "texCoord3d",
	TypeFrame4d:    "frame4d",
}

// Name returns the USD type name of id ("float3", "point3f[]", ...).
func (id TypeID) Name() string {
	if id.IsArray() {
		return id.Elem().Name() + "[]"
	}
	if n, ok := typeNames[id]; ok {
		return n
	}
	return fmt.Sprintf("UNKNOWN_TYPE_%d", uint32(id))
}

var idsByName map[string]TypeID

func init() {
	idsByName = make(map[string]TypeID, 2*len(typeNames))
	for id, name := range typeNames {
		idsByName[name] = id
		idsByName[name+"[]"] = id | ArrayBit
	}
}

// TypeIDFromName resolves a USD type name (as found in `typeName`
// metadata) to its TypeID.
func TypeIDFromName(name string) (TypeID, bool) {
	id, ok := idsByName[name]
	return id, ok
}

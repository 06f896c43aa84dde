package format

import "fmt"

// DataType is the 8-bit type code carried in a ValueRep. The values match
// the crate serialization; 0 is reserved as invalid.
type DataType uint8

const (
	DataTypeInvalid DataType = iota
	DataTypeBool
	DataTypeUChar
	DataTypeInt
	DataTypeUInt
	DataTypeInt64
	DataTypeUInt64
	DataTypeHalf
	DataTypeFloat
	DataTypeDouble
	DataTypeString
	DataTypeToken
	DataTypeAssetPath
	DataTypeMatrix2d
	DataTypeMatrix3d
	DataTypeMatrix4d
	DataTypeQuatd
	DataTypeQuatf
	DataTypeQuath
	DataTypeVec2d
	DataTypeVec2f
	DataTypeVec2h
	DataTypeVec2i
	DataTypeVec3d
	DataTypeVec3f
	DataTypeVec3h
	DataTypeVec3i
	DataTypeVec4d
	DataTypeVec4f
	DataTypeVec4h
	DataTypeVec4i
	DataTypeDictionary
	DataTypeTokenListOp
	DataTypeStringListOp
	DataTypePathListOp
	DataTypeReferenceListOp
	DataTypeIntListOp
	DataTypeInt64ListOp
	DataTypeUIntListOp
	DataTypeUInt64ListOp
	DataTypePathVector
	DataTypeTokenVector
	DataTypeSpecifier
	DataTypePermission
	DataTypeVariability
	DataTypeVariantSelectionMap
	DataTypeTimeSamples
	DataTypePayload
	DataTypeDoubleVector
	DataTypeLayerOffsetVector
	DataTypeStringVector
	DataTypeValueBlock
	DataTypeValue
	DataTypeUnregisteredValue
	DataTypeUnregisteredValueListOp
	DataTypePayloadListOp
	DataTypeTimeCode

	numDataTypes
)

type dataTypeInfo struct {
	name          string
	supportsArray bool
}

var dataTypes = [numDataTypes]dataTypeInfo{
	DataTypeInvalid:   {"Invalid", false},
	DataTypeBool:      {"Bool", true},
	DataTypeUChar:     {"UChar", true},
	DataTypeInt:       {"Int", true},
	DataTypeUInt:      {"UInt", true},
	DataTypeInt64:     {"Int64", true},
	DataTypeUInt64:    {"UInt64", true},
	DataTypeHalf:      {"Half", true},
	DataTypeFloat:     {"Float", true},
	DataTypeDouble:    {"Double", true},
	DataTypeString:    {"String", true},
	DataTypeToken:     {"Token", true},
	DataTypeAssetPath: {"AssetPath", true},
	DataTypeMatrix2d:  {"Matrix2d", true},
	DataTypeMatrix3d:  {"Matrix3d", true},
	DataTypeMatrix4d:  {"Matrix4d", true},
	DataTypeQuatd:     {"Quatd", true},
	DataTypeQuatf:     {"Quatf", true},
	DataTypeQuath:     {"Quath", true},
	DataTypeVec2d:     {"Vec2d", true},
	DataTypeVec2f:     {"Vec2f", true},
	DataTypeVec2h:     {"Vec2h", true},
	DataTypeVec2i:     {"Vec2i", true},
	DataTypeVec3d:     {"Vec3d", true},
	DataTypeVec3f:     {"Vec3f", true},
	DataTypeVec3h:     {"Vec3h", true},
	DataTypeVec3i:     {"Vec3i", true},
	DataTypeVec4d:     {"Vec4d", true},
	DataTypeVec4f:     {"Vec4f", true},
	DataTypeVec4h:     {"Vec4h", true},
	DataTypeVec4i:     {"Vec4i", true},

	DataTypeDictionary:              {"Dictionary", false},
	DataTypeTokenListOp:             {"TokenListOp", false},
	DataTypeStringListOp:            {"StringListOp", false},
	DataTypePathListOp:              {"PathListOp", false},
	DataTypeReferenceListOp:         {"ReferenceListOp", false},
	DataTypeIntListOp:               {"IntListOp", false},
	DataTypeInt64ListOp:             {"Int64ListOp", false},
	DataTypeUIntListOp:              {"UIntListOp", false},
	DataTypeUInt64ListOp:            {"UInt64ListOp", false},
	DataTypePathVector:              {"PathVector", false},
	DataTypeTokenVector:             {"TokenVector", false},
	DataTypeSpecifier:               {"Specifier", false},
	DataTypePermission:              {"Permission", false},
	DataTypeVariability:             {"Variability", false},
	DataTypeVariantSelectionMap:     {"VariantSelectionMap", false},
	DataTypeTimeSamples:             {"TimeSamples", false},
	DataTypePayload:                 {"Payload", false},
	DataTypeDoubleVector:            {"DoubleVector", false},
	DataTypeLayerOffsetVector:       {"LayerOffsetVector", false},
	DataTypeStringVector:            {"StringVector", false},
	DataTypeValueBlock:              {"ValueBlock", false},
	DataTypeValue:                   {"Value", false},
	DataTypeUnregisteredValue:       {"UnregisteredValue", false},
	DataTypeUnregisteredValueListOp: {"UnregisteredValueListOp", false},
	DataTypePayloadListOp:           {"PayloadListOp", false},
	DataTypeTimeCode:                {"TimeCode", true},
}

// Known reports whether t is a registered type code.
func (t DataType) Known() bool {
	return t > DataTypeInvalid && t < numDataTypes
}

// SupportsArray reports whether the array bit is legal for t.
func (t DataType) SupportsArray() bool {
	if !t.Known() {
		return false
	}
	return dataTypes[t].supportsArray
}

func (t DataType) String() string {
	if t < numDataTypes {
		return dataTypes[t].name
	}
	return fmt.Sprintf("UNKNOWN_DATA_TYPE_%d", uint8(t))
}

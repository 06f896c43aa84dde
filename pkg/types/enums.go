package types

import "fmt"

// SpecType enumerates the on-disk record kinds in the SPECS section.
// The numbers align with the crate serialization.
type SpecType uint32

const (
	SpecTypeUnknown            SpecType = 0
	SpecTypeAttribute          SpecType = 1
	SpecTypeConnection         SpecType = 2
	SpecTypeExpression         SpecType = 3
	SpecTypeMapper             SpecType = 4
	SpecTypeMapperArg          SpecType = 5
	SpecTypePrim               SpecType = 6
	SpecTypePseudoRoot         SpecType = 7
	SpecTypeRelationship       SpecType = 8
	SpecTypeRelationshipTarget SpecType = 9
	SpecTypeVariant            SpecType = 10
	SpecTypeVariantSet         SpecType = 11
)

func (t SpecType) String() string {
	switch t {
	case SpecTypeAttribute:
		return "Attribute"
	case SpecTypeConnection:
		return "Connection"
	case SpecTypeExpression:
		return "Expression"
	case SpecTypeMapper:
		return "Mapper"
	case SpecTypeMapperArg:
		return "MapperArg"
	case SpecTypePrim:
		return "Prim"
	case SpecTypePseudoRoot:
		return "PseudoRoot"
	case SpecTypeRelationship:
		return "Relationship"
	case SpecTypeRelationshipTarget:
		return "RelationshipTarget"
	case SpecTypeVariant:
		return "Variant"
	case SpecTypeVariantSet:
		return "VariantSet"
	default:
		return fmt.Sprintf("UNKNOWN_SPEC_TYPE_%d", uint32(t))
	}
}

// Specifier is the prim declaration form.
type Specifier uint32

const (
	SpecifierDef Specifier = iota
	SpecifierOver
	SpecifierClass
	specifierInvalid
)

func (s Specifier) String() string {
	switch s {
	case SpecifierDef:
		return "def"
	case SpecifierOver:
		return "over"
	case SpecifierClass:
		return "class"
	default:
		return fmt.Sprintf("UNKNOWN_SPECIFIER_%d", uint32(s))
	}
}

// SpecifierFromOrdinal validates an inline enum ordinal from the crate file.
func SpecifierFromOrdinal(v uint32) (Specifier, bool) {
	if v >= uint32(specifierInvalid) {
		return 0, false
	}
	return Specifier(v), true
}

// Permission is the namespace edit permission of a spec.
type Permission uint32

const (
	PermissionPublic Permission = iota
	PermissionPrivate
	permissionInvalid
)

func (p Permission) String() string {
	switch p {
	case PermissionPublic:
		return "public"
	case PermissionPrivate:
		return "private"
	default:
		return fmt.Sprintf("UNKNOWN_PERMISSION_%d", uint32(p))
	}
}

// PermissionFromOrdinal validates an inline enum ordinal from the crate file.
func PermissionFromOrdinal(v uint32) (Permission, bool) {
	if v >= uint32(permissionInvalid) {
		return 0, false
	}
	return Permission(v), true
}

// Variability declares whether an attribute may vary over time.
type Variability uint32

const (
	VariabilityVarying Variability = iota
	VariabilityUniform
	VariabilityConfig
	variabilityInvalid
)

func (v Variability) String() string {
	switch v {
	case VariabilityVarying:
		return "varying"
	case VariabilityUniform:
		return "uniform"
	case VariabilityConfig:
		return "config"
	default:
		return fmt.Sprintf("UNKNOWN_VARIABILITY_%d", uint32(v))
	}
}

// VariabilityFromOrdinal validates an inline enum ordinal from the crate file.
func VariabilityFromOrdinal(v uint32) (Variability, bool) {
	if v >= uint32(variabilityInvalid) {
		return 0, false
	}
	return Variability(v), true
}

// Axis is the stage up-axis.
type Axis uint8

const (
	AxisY Axis = iota // USD default
	AxisX
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisZ:
		return "Z"
	default:
		return "Y"
	}
}

// AxisFromToken parses an upAxis token. Case sensitive per USD.
func AxisFromToken(s string) (Axis, bool) {
	switch s {
	case "X":
		return AxisX, true
	case "Y":
		return AxisY, true
	case "Z":
		return AxisZ, true
	}
	return 0, false
}

// ListEditQual qualifies one bucket of a list-edit operation.
type ListEditQual int

const (
	ListEditResetToExplicit ListEditQual = iota
	ListEditAdd
	ListEditPrepend
	ListEditAppend
	ListEditDelete
	ListEditOrder
)

func (q ListEditQual) String() string {
	switch q {
	case ListEditResetToExplicit:
		return "explicit"
	case ListEditAdd:
		return "add"
	case ListEditPrepend:
		return "prepend"
	case ListEditAppend:
		return "append"
	case ListEditDelete:
		return "delete"
	case ListEditOrder:
		return "order"
	default:
		return fmt.Sprintf("UNKNOWN_LIST_EDIT_%d", int(q))
	}
}

// Interpolation is the primvar interpolation mode of an attribute.
type Interpolation int

const (
	InterpolationInvalid Interpolation = iota
	InterpolationConstant
	InterpolationUniform
	InterpolationVarying
	InterpolationVertex
	InterpolationFaceVarying
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationConstant:
		return "constant"
	case InterpolationUniform:
		return "uniform"
	case InterpolationVarying:
		return "varying"
	case InterpolationVertex:
		return "vertex"
	case InterpolationFaceVarying:
		return "faceVarying"
	default:
		return "[invalid]"
	}
}

// InterpolationFromToken parses the `interpolation` attribute metadata token.
func InterpolationFromToken(s string) (Interpolation, bool) {
	switch s {
	case "constant":
		return InterpolationConstant, true
	case "uniform":
		return InterpolationUniform, true
	case "varying":
		return InterpolationVarying, true
	case "vertex":
		return InterpolationVertex, true
	case "faceVarying":
		return InterpolationFaceVarying, true
	}
	return InterpolationInvalid, false
}

// Kind is the model-hierarchy kind metadata of a prim.
type Kind int

const (
	KindModel Kind = iota
	KindGroup
	KindAssembly
	KindComponent
	KindSubcomponent
	KindSceneLibrary // USDZ extension
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindGroup:
		return "group"
	case KindAssembly:
		return "assembly"
	case KindComponent:
		return "component"
	case KindSubcomponent:
		return "subcomponent"
	case KindSceneLibrary:
		return "sceneLibrary"
	default:
		return fmt.Sprintf("UNKNOWN_KIND_%d", int(k))
	}
}

// KindFromToken parses the `kind` metadata token. Unknown kinds are rejected.
func KindFromToken(s string) (Kind, bool) {
	switch s {
	case "model":
		return KindModel, true
	case "group":
		return KindGroup, true
	case "assembly":
		return KindAssembly, true
	case "component":
		return KindComponent, true
	case "subcomponent":
		return KindSubcomponent, true
	case "sceneLibrary":
		return KindSceneLibrary, true
	}
	return 0, false
}

// APISchema enumerates the closed set of applied API schemas the decoder
// accepts in `apiSchemas` prim metadata.
type APISchema int

const (
	APISchemaMaterialBindingAPI APISchema = iota
	APISchemaSkelBindingAPI
	APISchemaPreliminaryAnchoringAPI
	APISchemaPreliminaryPhysicsColliderAPI
	APISchemaPreliminaryPhysicsMaterialAPI
	APISchemaPreliminaryPhysicsRigidBodyAPI
)

func (a APISchema) String() string {
	switch a {
	case APISchemaMaterialBindingAPI:
		return "MaterialBindingAPI"
	case APISchemaSkelBindingAPI:
		return "SkelBindingAPI"
	case APISchemaPreliminaryAnchoringAPI:
		return "Preliminary_AnchoringAPI"
	case APISchemaPreliminaryPhysicsColliderAPI:
		return "Preliminary_PhysicsColliderAPI"
	case APISchemaPreliminaryPhysicsMaterialAPI:
		return "Preliminary_PhysicsMaterialAPI"
	case APISchemaPreliminaryPhysicsRigidBodyAPI:
		return "Preliminary_PhysicsRigidBodyAPI"
	default:
		return fmt.Sprintf("UNKNOWN_API_SCHEMA_%d", int(a))
	}
}

// APISchemaFromToken maps a token to the closed schema set.
func APISchemaFromToken(s string) (APISchema, bool) {
	switch s {
	case "MaterialBindingAPI":
		return APISchemaMaterialBindingAPI, true
	case "SkelBindingAPI":
		return APISchemaSkelBindingAPI, true
	case "Preliminary_AnchoringAPI":
		return APISchemaPreliminaryAnchoringAPI, true
	case "Preliminary_PhysicsColliderAPI":
		return APISchemaPreliminaryPhysicsColliderAPI, true
	case "Preliminary_PhysicsMaterialAPI":
		return APISchemaPreliminaryPhysicsMaterialAPI, true
	case "Preliminary_PhysicsRigidBodyAPI":
		return APISchemaPreliminaryPhysicsRigidBodyAPI, true
	}
	return 0, false
}

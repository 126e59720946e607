package cildiff

// Flavor is the kind tag carried by every CIL AST node. The real grammar
// has on the order of 80 distinct flavors; cildiff specialises the ones
// whose structure matters for comparison and falls back to a default
// rule for everything else.
type Flavor uint16

const (
	FlavorUnknown Flavor = iota

	// container-like: have a child set built from AST children.
	FlavorRoot
	FlavorSourceInfo
	FlavorBlock
	FlavorMacro
	FlavorClass
	FlavorCommon
	FlavorMapClass
	FlavorIn
	FlavorOptional

	// conditional containers: two fixed-position branches.
	FlavorBooleanIf
	FlavorTunableIf

	// access-vector rules.
	FlavorAllow
	FlavorAuditAllow
	FlavorDontAudit
	FlavorNeverAllow

	// transition-style rules.
	FlavorTypeTransition
	FlavorTypeChange
	FlavorTypeMember
	FlavorNameTransition

	// simple declarations.
	FlavorType
	FlavorTypeAttribute
	FlavorTypeAlias
	FlavorRole
	FlavorRoleType
	FlavorRoleAttribute
	FlavorRoleTransition
	FlavorUser
	FlavorUserRole
	FlavorUserLevel
	FlavorUserRange
	FlavorCategory
	FlavorCategoryAlias
	FlavorSensitivity
	FlavorSensitivityAlias
	FlavorBool
	FlavorTunable
	FlavorSid
	FlavorSidContext
	FlavorSidOrder
	FlavorContext
	FlavorLevel
	FlavorLevelRange
	FlavorCatRange
	FlavorClassPermission
	FlavorClassMapping
	FlavorClassCommon
	FlavorPermissionX
	FlavorPerm // a single named permission leaf, child of class/common/map_class
	FlavorMacroParam

	// orderings: always absorbed in position order; none is sorted.
	FlavorClassOrder
	FlavorSensitivityOrder
	FlavorCategoryOrder

	// boolean/constraint-style expressions.
	FlavorExpr

	flavorSentinel // keeps len(flavorNames) in sync; never assigned to a node
)

var flavorNames = [...]string{
	FlavorUnknown:          "unknown",
	FlavorRoot:             "root",
	FlavorSourceInfo:       "source_info",
	FlavorBlock:            "block",
	FlavorMacro:            "macro",
	FlavorClass:            "class",
	FlavorCommon:           "common",
	FlavorMapClass:         "map_class",
	FlavorIn:               "in",
	FlavorOptional:         "optional",
	FlavorBooleanIf:        "booleanif",
	FlavorTunableIf:        "tunableif",
	FlavorAllow:            "allow",
	FlavorAuditAllow:       "auditallow",
	FlavorDontAudit:        "dontaudit",
	FlavorNeverAllow:       "neverallow",
	FlavorTypeTransition:   "typetransition",
	FlavorTypeChange:       "typechange",
	FlavorTypeMember:       "typemember",
	FlavorNameTransition:   "nametransition",
	FlavorType:             "type",
	FlavorTypeAttribute:    "typeattribute",
	FlavorTypeAlias:        "typealias",
	FlavorRole:             "role",
	FlavorRoleType:         "roletype",
	FlavorRoleAttribute:    "roleattribute",
	FlavorRoleTransition:   "roletransition",
	FlavorUser:             "user",
	FlavorUserRole:         "userrole",
	FlavorUserLevel:        "userlevel",
	FlavorUserRange:        "userrange",
	FlavorCategory:         "category",
	FlavorCategoryAlias:    "categoryalias",
	FlavorSensitivity:      "sensitivity",
	FlavorSensitivityAlias: "sensitivityalias",
	FlavorBool:             "boolean",
	FlavorTunable:          "tunable",
	FlavorSid:              "sid",
	FlavorSidContext:       "sidcontext",
	FlavorSidOrder:         "sidorder",
	FlavorContext:          "context",
	FlavorLevel:            "level",
	FlavorLevelRange:       "levelrange",
	FlavorCatRange:         "catrange",
	FlavorClassPermission:  "classpermission",
	FlavorClassMapping:     "classmapping",
	FlavorClassCommon:      "classcommon",
	FlavorPermissionX:      "permissionx",
	FlavorPerm:             "perm",
	FlavorMacroParam:       "macro_param",
	FlavorClassOrder:       "classorder",
	FlavorSensitivityOrder: "sensitivityorder",
	FlavorCategoryOrder:    "categoryorder",
	FlavorExpr:             "expr",
}

// String returns the lowercase construct name used in reports. Flavors
// outside the closed set documented above fall back to a numeric tag so a
// report can still be produced rather than crashing the emitter.
func (f Flavor) String() string {
	if int(f) < len(flavorNames) && flavorNames[f] != "" {
		return flavorNames[f]
	}
	return "flavor(" + itoa(uint(f)) + ")"
}

// validFlavor reports whether f is a member of cildiff's closed flavor
// enum. Checked once per node, in buildCmpNode, before anything else
// looks at that node.
func validFlavor(f Flavor) bool {
	return f < flavorSentinel
}

func itoa(v uint) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// containerFlavors build a child set from the AST's children. optional
// is included here alongside block/in: a changed-but-same-named optional
// only produces a meaningful inner diff if its body is compared via a
// child set the same way block/in bodies are, so the container
// initialiser generalises to it too.
var containerFlavors = map[Flavor]bool{
	FlavorRoot:       true,
	FlavorSourceInfo: true,
	FlavorBlock:      true,
	FlavorMacro:      true,
	FlavorClass:      true,
	FlavorCommon:     true,
	FlavorMapClass:   true,
	FlavorIn:         true,
	FlavorOptional:   true,
}

// conditionalFlavors get the two-branch (CondFalse/CondTrue) initialiser.
var conditionalFlavors = map[Flavor]bool{
	FlavorBooleanIf: true,
	FlavorTunableIf: true,
}

// subsetStrategy names the per-flavor subset comparator.
type subsetStrategy uint8

const (
	strategyDefault subsetStrategy = iota
	strategySingleChild
	strategySingleChildJump
	strategySimilarity
)

var subsetStrategies = map[Flavor]subsetStrategy{
	FlavorBlock:      strategySingleChild,
	FlavorMacro:      strategySingleChild,
	FlavorRoot:       strategySingleChildJump,
	FlavorSourceInfo: strategySingleChildJump,
	FlavorOptional:   strategySimilarity,
	FlavorIn:         strategySimilarity,
	FlavorBooleanIf:  strategySimilarity,
	FlavorTunableIf:  strategySimilarity,
}

func strategyFor(f Flavor) subsetStrategy {
	if s, ok := subsetStrategies[f]; ok {
		return s
	}
	return strategyDefault
}

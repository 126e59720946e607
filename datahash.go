package cildiff

import "sort"

// dataHashFunc absorbs one AST node's own immediate data fields (never
// its children) into a fresh hash state and produces (full, partial).
// Every flavor's hasher opens with the flavor tag; most of
// the work below is just choosing, for that flavor, which fields are
// absorbed and where — if anywhere — the partial/full boundary falls.
type dataHashFunc func(n ASTNode) (full, partial Hash)

var dataHashers = map[Flavor]dataHashFunc{
	FlavorType:             hashNameOnly,
	FlavorTypeAttribute:    hashNameOnly,
	FlavorRole:             hashNameOnly,
	FlavorRoleAttribute:    hashNameOnly,
	FlavorUser:             hashNameOnly,
	FlavorCategory:         hashNameOnly,
	FlavorSensitivity:      hashNameOnly,
	FlavorSid:              hashNameOnly,
	FlavorPerm:             hashNameOnly,
	FlavorMacroParam:       hashMacroParam,

	FlavorTypeAlias:        hashNamePair,
	FlavorRoleType:         hashNamePair,
	FlavorUserRole:         hashNamePair,
	FlavorCategoryAlias:    hashNamePair,
	FlavorSensitivityAlias: hashNamePair,
	FlavorClassCommon:      hashClassCommon,
	FlavorRoleTransition:   hashNamePair,

	FlavorBool:    hashBoolDecl,
	FlavorTunable: hashBoolDecl, // CIL tunables carry a default value too

	FlavorRoot:       hashContainerName,
	FlavorSourceInfo: hashContainerName,
	FlavorBlock:      hashContainerName,
	FlavorMacro:      hashContainerName,
	FlavorIn:         hashContainerName,
	FlavorOptional:   hashContainerName,

	FlavorClass:     hashClass,
	FlavorCommon:    hashClass,
	FlavorMapClass:  hashMapClass,

	FlavorAllow:      hashAVRule,
	FlavorAuditAllow: hashAVRule,
	FlavorDontAudit:  hashAVRule,
	FlavorNeverAllow: hashAVRule,

	FlavorTypeTransition: hashTransitionRule,
	FlavorTypeChange:     hashTransitionRule,
	FlavorTypeMember:     hashTransitionRule,
	FlavorNameTransition: hashTransitionRule,

	FlavorClassPermission: hashClassPermission,
	FlavorClassMapping:    hashClassMapping,
	FlavorPermissionX:     hashPermissionX,

	FlavorLevel:      hashLevel,
	FlavorLevelRange: hashLevelRange,
	FlavorContext:    hashContext,
	FlavorSidContext: hashSidContext,
	FlavorUserRange:  hashUserRange,
	FlavorUserLevel:  hashUserLevel,

	FlavorClassOrder:       hashOrderedNames,
	FlavorSensitivityOrder: hashOrderedNames,
	FlavorCategoryOrder:    hashOrderedNames,
	FlavorSidOrder:         hashOrderedNames,

	FlavorBooleanIf: hashConditionOnly,
	FlavorTunableIf: hashConditionOnly,

	FlavorExpr: hashExprNode,
}

// dataHash dispatches to the node's flavor-specific hasher, or to the
// default rule (absorb only the flavor tag) for flavors cildiff does not
// specialise.
func dataHash(n ASTNode) (full, partial Hash) {
	if fn, ok := dataHashers[n.Flavor()]; ok {
		return fn(n)
	}
	return defaultDataHash(n)
}

func defaultDataHash(n ASTNode) (full, partial Hash) {
	hs := beginHash(n.Flavor())
	full = hs.finish()
	return full, full
}

func hashNameOnly(n ASTNode) (full, partial Hash) {
	d := n.Data().(NameData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	full = hs.finish()
	return full, full
}

func hashNamePair(n ASTNode) (full, partial Hash) {
	d := n.Data().(NamePairData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.First)
	hs.updateString(d.Second)
	full = hs.finish()
	return full, full
}

func hashClassCommon(n ASTNode) (full, partial Hash) {
	d := n.Data().(ClassCommonData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Class)
	hs.updateString(d.Common)
	full = hs.finish()
	return full, full
}

// hashBoolDecl snapshots after the name: two booleans with the same name
// and differing default values collide on partial hash (same merge key)
// so they land in one subset and the value change surfaces as a
// left/right pair instead of as unrelated add+delete noise.
func hashBoolDecl(n ASTNode) (full, partial Hash) {
	d := n.Data().(BoolDeclData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	partial = hs.copy().finish()
	hs.updateBool(d.Value)
	full = hs.finish()
	return full, partial
}

// hashContainerName is used by every container-like flavor whose own data
// reduces to a single name (block, macro, in, optional; root/source-info
// pass an empty name). partial == full: the name alone is the merge key,
// the body is folded in separately by the container node initialiser,
// never by the data hasher.
func hashContainerName(n ASTNode) (full, partial Hash) {
	d := n.Data().(ContainerData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	full = hs.finish()
	return full, full
}

func hashMacroParam(n ASTNode) (full, partial Hash) {
	d := n.Data().(MacroParamData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Kind)
	hs.updateString(d.Name)
	full = hs.finish()
	return full, full
}

// hashClass snapshots after the name (and, for a class, the common it
// inherits from): same-named class/common redeclarations with a changed
// permission list pair up in one subset via the container's child set,
// not here — the declared permissions are FlavorPerm children, not part
// of this data hash at all.
func hashClass(n ASTNode) (full, partial Hash) {
	d := n.Data().(ClassData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	hs.updateString(d.CommonName)
	full = hs.finish()
	return full, full
}

func hashMapClass(n ASTNode) (full, partial Hash) {
	d := n.Data().(MapClassData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	full = hs.finish()
	return full, full
}

// hashAVRule snapshots after (source, target, class): the merge key. Two
// rules agreeing on source/target/class but differing in their
// permission set land in the same subset, producing a clean left/right
// pair instead of being scattered by an unrelated full-set mismatch.
func hashAVRule(n ASTNode) (full, partial Hash) {
	d := n.Data().(AVRuleData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Source)
	hs.updateString(d.Target)
	hs.updateString(d.Class)
	partial = hs.copy().finish()
	hashStringSetInto(hs, d.Perms)
	full = hs.finish()
	return full, partial
}

func hashTransitionRule(n ASTNode) (full, partial Hash) {
	d := n.Data().(TransitionRuleData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Source)
	hs.updateString(d.Target)
	hs.updateString(d.Class)
	partial = hs.copy().finish()
	hs.updateString(d.Result)
	hs.updateString(d.ObjectName)
	full = hs.finish()
	return full, partial
}

func hashClassPermission(n ASTNode) (full, partial Hash) {
	d := n.Data().(ClassPermissionData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	partial = hs.copy().finish()
	hs.updateString(d.Class)
	hashStringSetInto(hs, d.Perms)
	full = hs.finish()
	return full, partial
}

func hashClassMapping(n ASTNode) (full, partial Hash) {
	d := n.Data().(ClassMappingData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.MapClass)
	hs.updateString(d.MapPerm)
	partial = hs.copy().finish()
	hs.updateString(d.Class)
	hs.updateString(d.Perm)
	full = hs.finish()
	return full, partial
}

func hashPermissionX(n ASTNode) (full, partial Hash) {
	d := n.Data().(PermissionXData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Name)
	partial = hs.copy().finish()
	hs.updateString(d.Direction)
	hs.updateString(d.Class)
	hs.updateHash(hashExpr(d.Ops))
	full = hs.finish()
	return full, partial
}

// hashLevel absorbs the literal anonymous sentinel instead of a name for
// inline levels, so two syntactically distinct anonymous levels with
// identical fields collide on partial hash. This is an intended
// equivalence, not a bug.
func hashLevel(n ASTNode) (full, partial Hash) {
	d := n.Data().(LevelData)
	hs := beginHash(n.Flavor())
	if d.Anonymous {
		hs.updateString(anonymousLevelSentinel)
	} else {
		hs.updateString(d.Name)
	}
	full = hs.finish()
	hs.updateString(d.Sensitivity)
	hs.updateHash(hashExpr(d.Categories))
	full = hs.finish()
	return full, full
}

func hashLevelRange(n ASTNode) (full, partial Hash) {
	d := n.Data().(LevelRangeData)
	hs := beginHash(n.Flavor())
	if d.Anonymous {
		hs.updateString(anonymousLevelRangeSentinel)
	} else {
		hs.updateString(d.Name)
	}
	hs.updateHash(hashLevelRef(d.Low))
	hs.updateHash(hashLevelRef(d.High))
	full = hs.finish()
	return full, full
}

func hashLevelRef(r LevelRefData) Hash {
	hs := beginHash(FlavorLevel)
	if r.Inline != nil {
		full, _ := hashLevel(inlineNode{FlavorLevel, *r.Inline})
		return full
	}
	hs.updateString(r.Name)
	return hs.finish()
}

func hashContext(n ASTNode) (full, partial Hash) {
	d := n.Data().(ContextData)
	hs := beginHash(n.Flavor())
	if d.Anonymous {
		hs.updateString(anonymousContextSentinel)
	} else {
		hs.updateString(d.Name)
	}
	hs.updateString(d.User)
	hs.updateString(d.Role)
	hs.updateString(d.Type)
	hs.updateHash(hashLevelRangeRef(d.Range))
	full = hs.finish()
	return full, full
}

func hashLevelRangeRef(r LevelRangeRefData) Hash {
	if r.Inline != nil {
		full, _ := hashLevelRange(inlineNode{FlavorLevelRange, *r.Inline})
		return full
	}
	hs := beginHash(FlavorLevelRange)
	hs.updateString(r.Name)
	return hs.finish()
}

func hashSidContext(n ASTNode) (full, partial Hash) {
	d := n.Data().(SidContextData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.Sid)
	partial = hs.copy().finish()
	hs.updateHash(hashContextRef(d.Context))
	full = hs.finish()
	return full, partial
}

func hashContextRef(r ContextRefData) Hash {
	if r.Inline != nil {
		full, _ := hashContext(inlineNode{FlavorContext, *r.Inline})
		return full
	}
	hs := beginHash(FlavorContext)
	hs.updateString(r.Name)
	return hs.finish()
}

func hashUserRange(n ASTNode) (full, partial Hash) {
	d := n.Data().(UserRangeData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.User)
	partial = hs.copy().finish()
	hs.updateHash(hashLevelRangeRef(d.Range))
	full = hs.finish()
	return full, partial
}

func hashUserLevel(n ASTNode) (full, partial Hash) {
	d := n.Data().(UserLevelData)
	hs := beginHash(n.Flavor())
	hs.updateString(d.User)
	partial = hs.copy().finish()
	hs.updateHash(hashLevelRef(d.Level))
	full = hs.finish()
	return full, partial
}

// hashOrderedNames absorbs a *positionally significant* list in position
// order — classorder/sensitivityorder/categoryorder are never flagged
// unordered.
func hashOrderedNames(n ASTNode) (full, partial Hash) {
	d := n.Data().(OrderedNamesData)
	hs := beginHash(n.Flavor())
	for _, name := range d.Names {
		hs.updateString(name)
	}
	full = hs.finish()
	return full, full
}

// hashConditionOnly is the data hasher for booleanif/tunableif: their only
// "own" field is the boolean expression being tested. The true/false
// branch bodies are folded in by the conditional-container node
// initialiser, never here.
func hashConditionOnly(n ASTNode) (full, partial Hash) {
	d := n.Data().(*ExprData)
	hs := beginHash(n.Flavor())
	hs.updateHash(hashExpr(d))
	full = hs.finish()
	return full, full
}

func hashExprNode(n ASTNode) (full, partial Hash) {
	d := n.Data().(*ExprData)
	full = hashExpr(d)
	return full, full
}

// hashStringSetInto absorbs an unordered string list into hs: the source
// order carries no meaning for a rule's permission set, so it is sorted
// first and then folded in, canonicalising equal sets to equal hashes
// regardless of how the parser happened to list them.
func hashStringSetInto(hs *hashState, items []string) {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	for _, s := range sorted {
		hs.updateString(s)
	}
}

// hashExpr absorbs an expression tree: recursively hash each operand,
// then sort the operand hashes lexicographically before folding them
// into the operator's hash, so that semantically equal
// expressions over commutative operators collide regardless of the
// source's operand order. This over-canonicalises non-commutative
// operators (e.g. CONS_DOMBY) but that is accepted, not a bug: CIL's
// constraint grammar keeps non-commutative operands in a fixed shape
// such that sorting their hashes doesn't collapse distinct expressions.
func hashExpr(e *ExprData) Hash {
	hs := beginHash(FlavorExpr)
	if e == nil {
		return hs.finish()
	}
	hs.updateString(e.Operator)

	operandHashes := make([]Hash, len(e.Operands))
	for i, op := range e.Operands {
		operandHashes[i] = hashExprOperand(op)
	}
	sort.Slice(operandHashes, func(i, j int) bool {
		return lessHash(operandHashes[i], operandHashes[j])
	})
	for _, h := range operandHashes {
		hs.updateHash(h)
	}
	return hs.finish()
}

func hashExprOperand(op ExprOperand) Hash {
	hs := beginHash(FlavorExpr)
	switch op.Kind {
	case OperandString:
		hs.updateUint64(uint64(OperandString))
		hs.updateString(op.String)
	case OperandOperator:
		hs.updateUint64(uint64(OperandOperator))
		hs.updateString(op.Operator)
	case OperandExpr:
		hs.updateUint64(uint64(OperandExpr))
		hs.updateHash(hashExpr(op.SubExpr))
	default:
		panic(errorMalformedExpr(op.Kind))
	}
	return hs.finish()
}

// inlineNode is a minimal ASTNode used only to recurse the data hasher of
// a nested flavor over an inline payload: a nested anonymous payload is
// absorbed by running the data hasher of the nested flavor over it. It
// carries no children and no line, since a nested
// inline payload is not itself a place a diff record ever anchors to.
type inlineNode struct {
	flavor Flavor
	data   interface{}
}

func (n inlineNode) Flavor() Flavor       { return n.flavor }
func (n inlineNode) Data() interface{}    { return n.data }
func (n inlineNode) FirstChild() ASTNode  { return nil }
func (n inlineNode) NextSibling() ASTNode { return nil }
func (n inlineNode) Line() uint32         { return 0 }

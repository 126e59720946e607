package cilparse

import (
	"github.com/pkg/errors"

	"github.com/cildiff/cildiff"
)

// Parse reads CIL policy text into the AST contract cildiff.ASTNode
// describes. The returned root is always a FlavorRoot node with a single
// FlavorSourceInfo child, whose children are the policy's top-level
// statements — mirroring the native tool's root/source-info wrapping,
// itself a "transparent wrapper construct" that never shows up as its
// own diff-tree level.
func Parse(src []byte) (cildiff.ASTNode, error) {
	forms, err := parseSexprs(src)
	if err != nil {
		return nil, errors.Wrap(err, "cilparse: parse")
	}

	root := &astNode{flavor: cildiff.FlavorRoot, data: cildiff.ContainerData{}}
	srcInfo := &astNode{flavor: cildiff.FlavorSourceInfo, data: cildiff.ContainerData{}, line: 1}
	for _, f := range forms {
		stmt, err := buildForm(f)
		if err != nil {
			return nil, err
		}
		appendChild(srcInfo, stmt)
	}
	appendChild(root, srcInfo)
	return root, nil
}

type formBuilder func(s *sexpr) (*astNode, error)

var formBuilders map[string]formBuilder

func init() {
	formBuilders = map[string]formBuilder{
		"type":             buildName(cildiff.FlavorType),
		"typeattribute":    buildName(cildiff.FlavorTypeAttribute),
		"role":             buildName(cildiff.FlavorRole),
		"roleattribute":    buildName(cildiff.FlavorRoleAttribute),
		"user":             buildName(cildiff.FlavorUser),
		"category":         buildName(cildiff.FlavorCategory),
		"sensitivity":      buildName(cildiff.FlavorSensitivity),
		"sid":              buildName(cildiff.FlavorSid),

		"typealias":        buildNamePair(cildiff.FlavorTypeAlias),
		"roletype":         buildNamePair(cildiff.FlavorRoleType),
		"roletransition":   buildNamePair(cildiff.FlavorRoleTransition),
		"userrole":         buildNamePair(cildiff.FlavorUserRole),
		"categoryalias":    buildNamePair(cildiff.FlavorCategoryAlias),
		"sensitivityalias": buildNamePair(cildiff.FlavorSensitivityAlias),

		"boolean": buildBoolDecl(cildiff.FlavorBool),
		"tunable": buildBoolDecl(cildiff.FlavorTunable),

		"classorder":       buildOrderedNames(cildiff.FlavorClassOrder),
		"sensitivityorder": buildOrderedNames(cildiff.FlavorSensitivityOrder),
		"categoryorder":    buildOrderedNames(cildiff.FlavorCategoryOrder),
		"sidorder":         buildOrderedNames(cildiff.FlavorSidOrder),

		"class":           buildClassLike(cildiff.FlavorClass),
		"common":          buildClassLike(cildiff.FlavorCommon),
		"classcommon":     buildClassCommon,
		"map_class":       buildMapClass,
		"classmapping":    buildClassMapping,
		"classpermission": buildClassPermission,
		"permissionx":     buildPermissionX,

		"allow":      buildAVRule(cildiff.FlavorAllow),
		"auditallow": buildAVRule(cildiff.FlavorAuditAllow),
		"dontaudit":  buildAVRule(cildiff.FlavorDontAudit),
		"neverallow": buildAVRule(cildiff.FlavorNeverAllow),

		"typetransition": buildTransitionRule(cildiff.FlavorTypeTransition),
		"typechange":     buildTransitionRule(cildiff.FlavorTypeChange),
		"typemember":     buildTransitionRule(cildiff.FlavorTypeMember),
		"nametransition": buildTransitionRule(cildiff.FlavorNameTransition),

		"level":      buildNamedLevel,
		"levelrange": buildNamedLevelRange,
		"context":    buildNamedContext,
		"sidcontext": buildSidContext,
		"userlevel":  buildUserLevel,
		"userrange":  buildUserRange,

		"block":     buildContainer(cildiff.FlavorBlock),
		"optional":  buildContainer(cildiff.FlavorOptional),
		"in":        buildContainer(cildiff.FlavorIn),
		"macro":     buildMacro,
		"booleanif": buildConditional(cildiff.FlavorBooleanIf),
		"tunableif": buildConditional(cildiff.FlavorTunableIf),
	}
}

func buildForm(s *sexpr) (*astNode, error) {
	if s.isAtom() {
		return nil, errors.Errorf("cilparse: line %d: expected a statement, got bare atom %q", s.line, s.atom)
	}
	if len(s.list) == 0 {
		return nil, errors.Errorf("cilparse: line %d: empty statement", s.line)
	}
	keyword, err := atomAt(s, 0)
	if err != nil {
		return nil, err
	}
	b, ok := formBuilders[keyword]
	if !ok {
		return nil, errors.Errorf("cilparse: line %d: unrecognised statement %q", s.line, keyword)
	}
	return b(s)
}

func buildName(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		name, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		return &astNode{flavor: flavor, data: cildiff.NameData{Name: name}, line: s.line}, nil
	}
}

func buildNamePair(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		a, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		b, err := atomAt(s, 2)
		if err != nil {
			return nil, err
		}
		return &astNode{flavor: flavor, data: cildiff.NamePairData{First: a, Second: b}, line: s.line}, nil
	}
}

func buildBoolDecl(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		name, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		valStr, err := atomAt(s, 2)
		if err != nil {
			return nil, err
		}
		return &astNode{flavor: flavor, data: cildiff.BoolDeclData{Name: name, Value: valStr == "true"}, line: s.line}, nil
	}
}

func buildOrderedNames(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		body, err := listAt(s, 1)
		if err != nil {
			return nil, err
		}
		return &astNode{flavor: flavor, data: cildiff.OrderedNamesData{Names: atomsOf(body)}, line: s.line}, nil
	}
}

// buildClassLike parses (class NAME (perm1 perm2 ...)) and (common NAME
// (perm1 perm2 ...)) into a container node whose data is just the name and
// whose children are FlavorPerm leaves — so a permission-set change flows
// through the ordinary container child-set machinery.
func buildClassLike(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		name, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		n := &astNode{flavor: flavor, data: cildiff.ClassData{Name: name}, line: s.line}
		if len(s.list) > 2 {
			perms, err := listAt(s, 2)
			if err != nil {
				return nil, err
			}
			for _, p := range atomsOf(perms) {
				appendChild(n, &astNode{flavor: cildiff.FlavorPerm, data: cildiff.NameData{Name: p}, line: s.line})
			}
		}
		return n, nil
	}
}

func buildClassCommon(s *sexpr) (*astNode, error) {
	class, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	common, err := atomAt(s, 2)
	if err != nil {
		return nil, err
	}
	return &astNode{flavor: cildiff.FlavorClassCommon, data: cildiff.ClassCommonData{Class: class, Common: common}, line: s.line}, nil
}

func buildMapClass(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	n := &astNode{flavor: cildiff.FlavorMapClass, data: cildiff.MapClassData{Name: name}, line: s.line}
	if len(s.list) > 2 {
		perms, err := listAt(s, 2)
		if err != nil {
			return nil, err
		}
		for _, p := range atomsOf(perms) {
			appendChild(n, &astNode{flavor: cildiff.FlavorPerm, data: cildiff.NameData{Name: p}, line: s.line})
		}
	}
	return n, nil
}

func buildClassMapping(s *sexpr) (*astNode, error) {
	mapClass, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	mapPerm, err := atomAt(s, 2)
	if err != nil {
		return nil, err
	}
	pair, err := listAt(s, 3)
	if err != nil {
		return nil, err
	}
	class, err := atomAt(pair, 0)
	if err != nil {
		return nil, err
	}
	perm, err := atomAt(pair, 1)
	if err != nil {
		return nil, err
	}
	return &astNode{flavor: cildiff.FlavorClassMapping, data: cildiff.ClassMappingData{
		MapClass: mapClass, MapPerm: mapPerm, Class: class, Perm: perm,
	}, line: s.line}, nil
}

func buildClassPermission(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	d := cildiff.ClassPermissionData{Name: name}
	if len(s.list) > 2 {
		d.Class, err = atomAt(s, 2)
		if err != nil {
			return nil, err
		}
	}
	if len(s.list) > 3 {
		perms, err := listAt(s, 3)
		if err != nil {
			return nil, err
		}
		d.Perms = atomsOf(perms)
	}
	return &astNode{flavor: cildiff.FlavorClassPermission, data: d, line: s.line}, nil
}

func buildPermissionX(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	dir, err := atomAt(s, 2)
	if err != nil {
		return nil, err
	}
	class, err := atomAt(s, 3)
	if err != nil {
		return nil, err
	}
	var ops *cildiff.ExprData
	if len(s.list) > 4 {
		opsList, err := listAt(s, 4)
		if err != nil {
			return nil, err
		}
		ops = exprFromSexpr(opsList)
	}
	return &astNode{flavor: cildiff.FlavorPermissionX, data: cildiff.PermissionXData{
		Name: name, Direction: dir, Class: class, Ops: ops,
	}, line: s.line}, nil
}

// buildAVRule parses (allow SRC TGT (CLASS (perm1 perm2 ...))).
func buildAVRule(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		src, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		tgt, err := atomAt(s, 2)
		if err != nil {
			return nil, err
		}
		cps, err := listAt(s, 3)
		if err != nil {
			return nil, err
		}
		class, err := atomAt(cps, 0)
		if err != nil {
			return nil, err
		}
		perms, err := listAt(cps, 1)
		if err != nil {
			return nil, err
		}
		return &astNode{flavor: flavor, data: cildiff.AVRuleData{
			Source: src, Target: tgt, Class: class, Perms: atomsOf(perms),
		}, line: s.line}, nil
	}
}

// buildTransitionRule parses (typetransition SRC TGT CLASS RESULT) and,
// for nametransition, (nametransition SRC TGT CLASS "objname" RESULT).
func buildTransitionRule(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		src, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		tgt, err := atomAt(s, 2)
		if err != nil {
			return nil, err
		}
		class, err := atomAt(s, 3)
		if err != nil {
			return nil, err
		}
		d := cildiff.TransitionRuleData{Source: src, Target: tgt, Class: class}
		if flavor == cildiff.FlavorNameTransition && len(s.list) > 5 {
			d.ObjectName, err = atomAt(s, 4)
			if err != nil {
				return nil, err
			}
			d.Result, err = atomAt(s, 5)
			if err != nil {
				return nil, err
			}
		} else {
			d.Result, err = atomAt(s, 4)
			if err != nil {
				return nil, err
			}
		}
		return &astNode{flavor: flavor, data: d, line: s.line}, nil
	}
}

func levelRefFromSexpr(s *sexpr) cildiff.LevelRefData {
	if s.isAtom() {
		return cildiff.LevelRefData{Name: s.atom}
	}
	inline := levelDataFromSexpr(s, true)
	return cildiff.LevelRefData{Inline: &inline}
}

// levelDataFromSexpr parses a level body (SENS (cat1 cat2 ...)) or just
// SENS. anonymous is true when this level has no declared name of its own.
func levelDataFromSexpr(s *sexpr, anonymous bool) cildiff.LevelData {
	d := cildiff.LevelData{Anonymous: anonymous}
	if len(s.list) == 0 {
		return d
	}
	if sens, err := atomAt(s, 0); err == nil {
		d.Sensitivity = sens
	}
	if len(s.list) > 1 {
		if cats, err := listAt(s, 1); err == nil {
			d.Categories = exprFromSexpr(cats)
		}
	}
	return d
}

func buildNamedLevel(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	body, err := listAt(s, 2)
	if err != nil {
		return nil, err
	}
	d := levelDataFromSexpr(body, false)
	d.Name = name
	return &astNode{flavor: cildiff.FlavorLevel, data: d, line: s.line}, nil
}

func levelRangeRefFromSexpr(s *sexpr) cildiff.LevelRangeRefData {
	if s.isAtom() {
		return cildiff.LevelRangeRefData{Name: s.atom}
	}
	inline := levelRangeDataFromSexpr(s, true)
	return cildiff.LevelRangeRefData{Inline: &inline}
}

func levelRangeDataFromSexpr(s *sexpr, anonymous bool) cildiff.LevelRangeData {
	d := cildiff.LevelRangeData{Anonymous: anonymous}
	if len(s.list) >= 1 {
		d.Low = levelRefFromSexpr(s.list[0])
	}
	if len(s.list) >= 2 {
		d.High = levelRefFromSexpr(s.list[1])
	}
	return d
}

func buildNamedLevelRange(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	body, err := listAt(s, 2)
	if err != nil {
		return nil, err
	}
	d := levelRangeDataFromSexpr(body, false)
	d.Name = name
	return &astNode{flavor: cildiff.FlavorLevelRange, data: d, line: s.line}, nil
}

func contextRefFromSexpr(s *sexpr) cildiff.ContextRefData {
	if s.isAtom() {
		return cildiff.ContextRefData{Name: s.atom}
	}
	inline := contextDataFromSexpr(s, true)
	return cildiff.ContextRefData{Inline: &inline}
}

func contextDataFromSexpr(s *sexpr, anonymous bool) cildiff.ContextData {
	d := cildiff.ContextData{Anonymous: anonymous}
	if len(s.list) >= 1 {
		if a, err := atomAt(s, 0); err == nil {
			d.User = a
		}
	}
	if len(s.list) >= 2 {
		if a, err := atomAt(s, 1); err == nil {
			d.Role = a
		}
	}
	if len(s.list) >= 3 {
		if a, err := atomAt(s, 2); err == nil {
			d.Type = a
		}
	}
	if len(s.list) >= 4 {
		d.Range = levelRangeRefFromSexpr(s.list[3])
	}
	return d
}

func buildNamedContext(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	body, err := listAt(s, 2)
	if err != nil {
		return nil, err
	}
	d := contextDataFromSexpr(body, false)
	d.Name = name
	return &astNode{flavor: cildiff.FlavorContext, data: d, line: s.line}, nil
}

func buildSidContext(s *sexpr) (*astNode, error) {
	sid, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	ctxRef, err := atOrListAt(s, 2)
	if err != nil {
		return nil, err
	}
	return &astNode{flavor: cildiff.FlavorSidContext, data: cildiff.SidContextData{
		Sid: sid, Context: contextRefFromSexpr(ctxRef),
	}, line: s.line}, nil
}

func buildUserLevel(s *sexpr) (*astNode, error) {
	user, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	ref, err := atOrListAt(s, 2)
	if err != nil {
		return nil, err
	}
	return &astNode{flavor: cildiff.FlavorUserLevel, data: cildiff.UserLevelData{
		User: user, Level: levelRefFromSexpr(ref),
	}, line: s.line}, nil
}

func buildUserRange(s *sexpr) (*astNode, error) {
	user, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	var rangeRef cildiff.LevelRangeRefData
	if len(s.list) >= 3 {
		ref, err := atOrListAt(s, 2)
		if err != nil {
			return nil, err
		}
		rangeRef = levelRangeRefFromSexpr(ref)
	}
	return &astNode{flavor: cildiff.FlavorUserRange, data: cildiff.UserRangeData{
		User: user, Range: rangeRef,
	}, line: s.line}, nil
}

// atOrListAt returns the sub-form at position i, whether it is an atom or
// a list — unlike atomAt/listAt, which each require one or the other.
func atOrListAt(s *sexpr, i int) (*sexpr, error) {
	if i >= len(s.list) {
		return nil, errors.Errorf("cilparse: line %d: expected at least %d elements, got %d", s.line, i+1, len(s.list))
	}
	return s.list[i], nil
}

// buildContainer parses (KEYWORD NAME stmt...) into a container node:
// block, optional, in.
func buildContainer(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		name, err := atomAt(s, 1)
		if err != nil {
			return nil, err
		}
		n := &astNode{flavor: flavor, data: cildiff.ContainerData{Name: name}, line: s.line}
		for _, stmtForm := range s.list[2:] {
			stmt, err := buildForm(stmtForm)
			if err != nil {
				return nil, err
			}
			appendChild(n, stmt)
		}
		return n, nil
	}
}

// buildMacro parses (macro NAME ((kind1 name1) (kind2 name2) ...) stmt...).
// The parameter signature is modeled as ordered FlavorMacroParam children
// prepended to the body, so a parameter-list change surfaces through the
// normal child-set diff machinery instead of a bespoke comparator.
func buildMacro(s *sexpr) (*astNode, error) {
	name, err := atomAt(s, 1)
	if err != nil {
		return nil, err
	}
	n := &astNode{flavor: cildiff.FlavorMacro, data: cildiff.ContainerData{Name: name}, line: s.line}

	params, err := listAt(s, 2)
	if err != nil {
		return nil, err
	}
	for _, p := range params.list {
		if p.isAtom() {
			return nil, errors.Errorf("cilparse: line %d: expected (kind name) parameter", p.line)
		}
		kind, err := atomAt(p, 0)
		if err != nil {
			return nil, err
		}
		pname, err := atomAt(p, 1)
		if err != nil {
			return nil, err
		}
		appendChild(n, &astNode{flavor: cildiff.FlavorMacroParam, data: cildiff.MacroParamData{Kind: kind, Name: pname}, line: p.line})
	}

	for _, stmtForm := range s.list[3:] {
		stmt, err := buildForm(stmtForm)
		if err != nil {
			return nil, err
		}
		appendChild(n, stmt)
	}
	return n, nil
}

// buildConditional parses (booleanif COND (true stmt...) (false
// stmt...)): the "true" and "false" branches may appear in either order
// or be omitted entirely.
func buildConditional(flavor cildiff.Flavor) formBuilder {
	return func(s *sexpr) (*astNode, error) {
		condForm, err := atOrListAt(s, 1)
		if err != nil {
			return nil, err
		}
		n := &astNode{flavor: flavor, data: exprFromSexpr(condForm), line: s.line}

		for _, branchForm := range s.list[2:] {
			if branchForm.isAtom() || len(branchForm.list) == 0 {
				return nil, errors.Errorf("cilparse: line %d: expected (true ...) or (false ...) branch", s.line)
			}
			tag, err := atomAt(branchForm, 0)
			if err != nil {
				return nil, err
			}
			var branch cildiff.CondBranch
			switch tag {
			case "true":
				branch = cildiff.CondTrue
			case "false":
				branch = cildiff.CondFalse
			default:
				return nil, errors.Errorf("cilparse: line %d: unknown conditional branch %q", branchForm.line, tag)
			}
			for _, stmtForm := range branchForm.list[1:] {
				stmt, err := buildForm(stmtForm)
				if err != nil {
					return nil, err
				}
				stmt.branch = branch
				appendChild(n, stmt)
			}
		}
		return n, nil
	}
}

// exprFromSexpr converts a boolean/constraint-style expression form into
// cildiff.ExprData: a bare atom is a named reference; a list's first
// atom is the operator when it is one of the keywords below, and the
// remaining elements are operands.
// exprOperatorKeywords are the CIL boolean/constraint operators that may
// head an expression list. A list whose first element is NOT one of
// these (e.g. a bare category set like (c0 c1)) has no operator at all —
// every element is just an operand of an implicit union.
var exprOperatorKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "xor": true, "eq": true, "neq": true,
	"dom": true, "domby": true, "incomp": true, "range": true,
	"all": true, "cons": true, "consrange": true,
}

func exprFromSexpr(s *sexpr) *cildiff.ExprData {
	if s.isAtom() {
		return &cildiff.ExprData{Operands: []cildiff.ExprOperand{{Kind: cildiff.OperandString, String: s.atom}}}
	}
	if len(s.list) == 0 {
		return &cildiff.ExprData{}
	}
	d := &cildiff.ExprData{}
	first := s.list[0]
	operands := s.list
	if first.isAtom() && exprOperatorKeywords[first.atom] {
		d.Operator = first.atom
		operands = s.list[1:]
	}
	for _, opForm := range operands {
		if opForm.isAtom() {
			d.Operands = append(d.Operands, cildiff.ExprOperand{Kind: cildiff.OperandString, String: opForm.atom})
		} else {
			d.Operands = append(d.Operands, cildiff.ExprOperand{Kind: cildiff.OperandExpr, SubExpr: exprFromSexpr(opForm)})
		}
	}
	return d
}

package cilparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cildiff/cildiff"
)

// Renderer implements cildiff.NodeRenderer by rendering one node's own
// fields back to CIL-like text — used by the plain-text emitter to show
// what a LEFT/RIGHT record actually was.
type Renderer struct{}

var _ cildiff.NodeRenderer = Renderer{}

func (Renderer) RenderNode(n cildiff.ASTNode) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.Flavor().String())
	if s := renderData(n.Data()); s != "" {
		b.WriteString(" ")
		b.WriteString(s)
	}
	b.WriteString(")")
	return b.String()
}

func renderData(data interface{}) string {
	switch d := data.(type) {
	case cildiff.NameData:
		return d.Name
	case cildiff.NamePairData:
		return d.First + " " + d.Second
	case cildiff.BoolDeclData:
		return d.Name + " " + strconv.FormatBool(d.Value)
	case cildiff.ContainerData:
		return d.Name
	case cildiff.AVRuleData:
		return fmt.Sprintf("%s %s (%s (%s))", d.Source, d.Target, d.Class, strings.Join(d.Perms, " "))
	case cildiff.TransitionRuleData:
		if d.ObjectName != "" {
			return fmt.Sprintf("%s %s %s %q %s", d.Source, d.Target, d.Class, d.ObjectName, d.Result)
		}
		return fmt.Sprintf("%s %s %s %s", d.Source, d.Target, d.Class, d.Result)
	case cildiff.ClassData:
		if d.CommonName != "" {
			return d.Name + " : " + d.CommonName
		}
		return d.Name
	case cildiff.MapClassData:
		return d.Name
	case cildiff.ClassPermissionData:
		return fmt.Sprintf("%s %s (%s)", d.Name, d.Class, strings.Join(d.Perms, " "))
	case cildiff.ClassMappingData:
		return fmt.Sprintf("%s %s (%s %s)", d.MapClass, d.MapPerm, d.Class, d.Perm)
	case cildiff.ClassCommonData:
		return d.Class + " " + d.Common
	case cildiff.PermissionXData:
		return fmt.Sprintf("%s %s %s", d.Name, d.Direction, d.Class)
	case cildiff.OrderedNamesData:
		return strings.Join(d.Names, " ")
	case cildiff.MacroParamData:
		return fmt.Sprintf("(%s %s)", d.Kind, d.Name)
	case *cildiff.ExprData:
		return renderExpr(d)
	case cildiff.ContextData:
		return fmt.Sprintf("%s %s %s", d.User, d.Role, d.Type)
	case cildiff.LevelData:
		return d.Sensitivity
	case cildiff.LevelRangeData:
		return renderLevelRef(d.Low) + " " + renderLevelRef(d.High)
	case cildiff.SidContextData:
		return d.Sid
	case cildiff.UserRangeData:
		return d.User
	case cildiff.UserLevelData:
		return d.User
	}
	return ""
}

func renderLevelRef(r cildiff.LevelRefData) string {
	if r.Inline != nil {
		return renderData(*r.Inline)
	}
	return r.Name
}

func renderExpr(e *cildiff.ExprData) string {
	if e == nil {
		return ""
	}
	if e.Operator == "" && len(e.Operands) == 1 && e.Operands[0].Kind == cildiff.OperandString {
		return e.Operands[0].String
	}
	parts := make([]string, 0, len(e.Operands)+1)
	if e.Operator != "" {
		parts = append(parts, e.Operator)
	}
	for _, op := range e.Operands {
		switch op.Kind {
		case cildiff.OperandString, cildiff.OperandOperator:
			parts = append(parts, op.String)
		case cildiff.OperandExpr:
			parts = append(parts, "("+renderExpr(op.SubExpr)+")")
		}
	}
	return strings.Join(parts, " ")
}

// renderSexpr renders a parsed s-expression back to text, for the rare
// case atomsOf finds a nested list where an atom list was expected: the
// rendered text becomes one item of the resulting name list, and so is
// stored in the node's data and hashed with it.
func renderSexpr(s *sexpr) string {
	if s.isAtom() {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i, c := range s.list {
		parts[i] = renderSexpr(c)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

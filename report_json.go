package cildiff

import (
	"encoding/json"
	"io"
)

// jsonNodeRef is the {"left": ..., "right": ...} shape used for a
// diff-tree node's paired roots.
type jsonNodeRef struct {
	Flavor string `json:"flavor"`
	Line   uint32 `json:"line"`
	Hash   string `json:"hash"`
}

// jsonDiff is one entry of a diff-tree node's "diffs" array.
type jsonDiff struct {
	Side        string                 `json:"side"`
	Hash        string                 `json:"hash"`
	Description *string                `json:"description"`
	Node        map[string]interface{} `json:"node"`
}

// jsonDiffTreeNode is the top-level JSON object shape, used recursively
// for every "children" entry too.
type jsonDiffTreeNode struct {
	Left     *jsonNodeRef       `json:"left,omitempty"`
	Right    *jsonNodeRef       `json:"right,omitempty"`
	Diffs    []jsonDiff         `json:"diffs"`
	Children []jsonDiffTreeNode `json:"children"`
}

// PrintDiffTreeJSON writes the JSON report for root to w. When pretty is
// true the output is indented.
func PrintDiffTreeJSON(w io.Writer, root *DiffTreeNode, pretty bool) error {
	doc := toJSONDiffTree(root)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}

func toJSONDiffTree(dt *DiffTreeNode) jsonDiffTreeNode {
	out := jsonDiffTreeNode{Diffs: []jsonDiff{}, Children: []jsonDiffTreeNode{}}
	if dt.Left != nil {
		out.Left = toJSONNodeRef(dt.Left)
	}
	if dt.Right != nil {
		out.Right = toJSONNodeRef(dt.Right)
	}
	for _, rec := range dt.Diffs {
		out.Diffs = append(out.Diffs, toJSONDiff(rec))
	}
	for _, child := range dt.Children {
		out.Children = append(out.Children, toJSONDiffTree(child))
	}
	return out
}

func toJSONNodeRef(n *cmpNode) *jsonNodeRef {
	return &jsonNodeRef{
		Flavor: n.Flavor().String(),
		Line:   n.AST().Line(),
		Hash:   n.FullHash().Hex(),
	}
}

func toJSONDiff(rec *DiffRecord) jsonDiff {
	var desc *string
	if rec.Description != "" {
		desc = &rec.Description
	}
	return jsonDiff{
		Side:        rec.Side.String(),
		Hash:        buildCmpNode(rec.Node).full.Hex(),
		Description: desc,
		Node:        nodeJSON(rec.Node),
	}
}

// nodeJSON renders one AST node as {"flavor": ..., "line": ...,
// ...flavor-specific fields...}. JSON keys
// are stable per flavor, matching the data payload types in ast.go.
func nodeJSON(n ASTNode) map[string]interface{} {
	out := map[string]interface{}{
		"flavor": n.Flavor().String(),
		"line":   n.Line(),
	}
	mergeDataFields(out, n.Data())
	return out
}

func mergeDataFields(out map[string]interface{}, data interface{}) {
	switch d := data.(type) {
	case NameData:
		out["name"] = d.Name
	case NamePairData:
		out["first"] = d.First
		out["second"] = d.Second
	case BoolDeclData:
		out["name"] = d.Name
		out["value"] = d.Value
	case ContainerData:
		out["name"] = d.Name
	case AVRuleData:
		out["source"] = d.Source
		out["target"] = d.Target
		out["class"] = d.Class
		out["perms"] = d.Perms
	case TransitionRuleData:
		out["source"] = d.Source
		out["target"] = d.Target
		out["class"] = d.Class
		out["result"] = d.Result
		if d.ObjectName != "" {
			out["objectName"] = d.ObjectName
		}
	case ClassData:
		out["name"] = d.Name
		if d.CommonName != "" {
			out["common"] = d.CommonName
		}
	case MapClassData:
		out["name"] = d.Name
	case ClassPermissionData:
		out["name"] = d.Name
		out["class"] = d.Class
		out["perms"] = d.Perms
	case ClassMappingData:
		out["mapClass"] = d.MapClass
		out["mapPerm"] = d.MapPerm
		out["class"] = d.Class
		out["perm"] = d.Perm
	case ClassCommonData:
		out["class"] = d.Class
		out["common"] = d.Common
	case PermissionXData:
		out["name"] = d.Name
		out["direction"] = d.Direction
		out["class"] = d.Class
	case OrderedNamesData:
		out["names"] = d.Names
	case MacroParamData:
		out["kind"] = d.Kind
		out["name"] = d.Name
	case *ExprData:
		out["operator"] = d.Operator
	case ContextData:
		out["user"] = d.User
		out["role"] = d.Role
		out["type"] = d.Type
	case LevelData:
		out["sensitivity"] = d.Sensitivity
	case LevelRangeData:
		out["low"] = d.Low.Name
		out["high"] = d.High.Name
	case SidContextData:
		out["sid"] = d.Sid
	case UserRangeData:
		out["user"] = d.User
	case UserLevelData:
		out["user"] = d.User
	}
}

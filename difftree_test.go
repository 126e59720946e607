package cildiff

import "testing"

func TestDiffTreeIsEmptyReflexive(t *testing.T) {
	left := BuildComparisonRoot(block("b", namedType("a_t")))
	right := BuildComparisonRoot(block("b", namedType("a_t")))
	tree := CompareRoots(left, right)

	if !tree.IsEmpty() {
		t.Fatal("expected comparing a root against an identical copy of itself to produce an empty diff tree")
	}
}

func TestDiffTreeIsEmptyFalseWhenDiffsExist(t *testing.T) {
	left := BuildComparisonRoot(block("b", namedType("a_t")))
	right := BuildComparisonRoot(block("b", namedType("z_t")))
	tree := CompareRoots(left, right)

	if tree.IsEmpty() {
		t.Fatal("expected a genuine type rename to produce a non-empty diff tree")
	}
}

func TestDiffTreeContextWalksToRoot(t *testing.T) {
	parent := NewDiffTree(nil, nil)
	mid := parent.AppendChild(nil, nil)

	leaf := buildCmpNode(namedType("leaf_t"))
	mid.Left = leaf

	ctx := mid.context()
	if len(ctx) != 1 || ctx[0] != leaf.ast {
		t.Fatalf("expected context() to surface the mid level's own node, got %d entries", len(ctx))
	}
}

func TestAppendChildLinksParent(t *testing.T) {
	parent := NewDiffTree(nil, nil)
	child := parent.AppendChild(nil, nil)

	if child.Parent != parent {
		t.Fatal("expected AppendChild to set the child's Parent back-pointer")
	}
	if len(parent.Children) != 1 || parent.Children[0] != child {
		t.Fatal("expected AppendChild to register the new child under its parent")
	}
}

package cildiff_test

import (
	"testing"

	"github.com/cildiff/cildiff"
	"github.com/cildiff/cildiff/internal/cilparse"
)

func diffOf(t *testing.T, leftSrc, rightSrc string) *cildiff.DiffTreeNode {
	t.Helper()
	leftAST, err := cilparse.Parse([]byte(leftSrc))
	if err != nil {
		t.Fatalf("parsing left: %v", err)
	}
	rightAST, err := cilparse.Parse([]byte(rightSrc))
	if err != nil {
		t.Fatalf("parsing right: %v", err)
	}
	leftRoot := cildiff.BuildComparisonRoot(leftAST)
	rightRoot := cildiff.BuildComparisonRoot(rightAST)
	return cildiff.CompareRoots(leftRoot, rightRoot)
}

func countRecords(dt *cildiff.DiffTreeNode) (left, right int) {
	for _, d := range dt.Diffs {
		if d.Side == cildiff.LEFT {
			left++
		} else {
			right++
		}
	}
	for _, c := range dt.Children {
		l, r := countRecords(c)
		left += l
		right += r
	}
	return
}

// S1: identity.
func TestScenarioIdentity(t *testing.T) {
	src := "(allow a_t b_t (file (read)))"
	tree := diffOf(t, src, src)
	if !tree.IsEmpty() {
		t.Fatal("expected an identical pair to produce an empty diff tree")
	}
}

// S2: unordered perms canonicalize to the same hash.
func TestScenarioUnorderedPerms(t *testing.T) {
	left := "(allow a_t b_t (file (read write)))"
	right := "(allow a_t b_t (file (write read)))"
	tree := diffOf(t, left, right)
	if !tree.IsEmpty() {
		t.Fatal("expected permission order to not matter")
	}
}

// S3: pure addition.
func TestScenarioPureAdd(t *testing.T) {
	tree := diffOf(t, "", "(type t_new)")
	left, right := countRecords(tree)
	if left != 0 || right != 1 {
		t.Fatalf("expected 0 left / 1 right record, got %d/%d", left, right)
	}
}

// S4: renaming a named optional is an add+delete, not a modification,
// because the name is part of the merge key.
func TestScenarioRenamedOptional(t *testing.T) {
	left := "(optional o1 (allow a_t b_t (file (read))))"
	right := "(optional o2 (allow a_t b_t (file (read))))"
	tree := diffOf(t, left, right)

	l, r := countRecords(tree)
	if l != 1 || r != 1 {
		t.Fatalf("expected exactly one LEFT (o1) and one RIGHT (o2) record, got %d/%d", l, r)
	}
	if len(tree.Children) != 0 {
		t.Fatal("expected no descent into either optional's body; a rename is add+delete, not a paired modification")
	}
}

// S5: a rule changes inside a booleanif's true branch.
func TestScenarioBooleanIfBranchChange(t *testing.T) {
	left := "(booleanif mybool (true (allow a_t b_t (file (read)))))"
	right := "(booleanif mybool (true (allow a_t b_t (file (write)))))"
	tree := diffOf(t, left, right)

	l, r := countRecords(tree)
	if l != 1 || r != 1 {
		t.Fatalf("expected one LEFT and one RIGHT record from the changed rule, got %d/%d", l, r)
	}

	// the records should be attached after descending through the
	// booleanif pairing, not at the top level.
	if len(tree.Diffs) != 0 {
		t.Fatal("expected the booleanif itself to be paired (same name), descending rather than reporting at the root")
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected exactly one descent into the paired booleanif, got %d", len(tree.Children))
	}
}

// S6: two same-named optionals on each side are matched by similarity —
// the pairing that shares the most rules wins, not source order — and
// each pairing's leftover rule surfaces as a residual record under its
// own descent.
func TestScenarioSimilarityPairing(t *testing.T) {
	left := `
(optional grp
  (allow a_t b_t (file (read)))
  (allow c_t d_t (dir (read))))
(optional grp
  (allow e_t f_t (file (write))))
`
	right := `
(optional grp
  (allow a_t b_t (file (read))))
(optional grp
  (allow c_t d_t (dir (read)))
  (allow e_t f_t (file (write))))
`
	tree := diffOf(t, left, right)

	if len(tree.Children) != 2 {
		t.Fatalf("expected both same-named optionals to be paired and descended into, got %d descents", len(tree.Children))
	}
	l, r := countRecords(tree)
	if l != 1 || r != 1 {
		t.Fatalf("expected the rule dropped from one optional (LEFT) and the rule added to the other (RIGHT) to surface as exactly one record each, got %d left / %d right", l, r)
	}
	if len(tree.Diffs) != 0 {
		t.Fatal("expected no root-level records — every difference is attributed to one of the two optional pairings")
	}
}

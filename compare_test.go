package cildiff

import "testing"

func TestCompareDefaultBagDiff(t *testing.T) {
	left := newSubset(FlavorType, Hash{})
	right := newSubset(FlavorType, Hash{})
	left.insert(buildCmpNode(namedType("a_t")))
	left.insert(buildCmpNode(namedType("shared_t")))
	right.insert(buildCmpNode(namedType("shared_t")))
	right.insert(buildCmpNode(namedType("b_t")))
	left.finalize()
	right.finalize()

	dt := &DiffTreeNode{}
	compareDefault(left, right, dt)

	var lefts, rights int
	for _, d := range dt.Diffs {
		if d.Side == LEFT {
			lefts++
		} else {
			rights++
		}
	}
	if lefts != 1 || rights != 1 {
		t.Fatalf("expected exactly one LEFT and one RIGHT record, got %d/%d", lefts, rights)
	}
}

func TestCompareSingleChildPanicsOnDuplicateNames(t *testing.T) {
	left := newSubset(FlavorBlock, Hash{})
	left.insert(buildCmpNode(block("b", namedType("x_t"))))
	left.insert(buildCmpNode(block("b", namedType("y_t"))))
	left.finalize()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected compareSingleChild to panic when a subset has more than one same-name member")
		}
	}()
	compareSingleChild(left, nil, &DiffTreeNode{}, true)
}

func TestCompareSingleChildOneSidedEmitsRecord(t *testing.T) {
	left := newSubset(FlavorBlock, Hash{})
	left.insert(buildCmpNode(block("onlyleft")))
	left.finalize()

	dt := &DiffTreeNode{}
	compareSingleChild(left, nil, dt, false)

	if len(dt.Diffs) != 1 || dt.Diffs[0].Side != LEFT {
		t.Fatal("expected a single LEFT record when only the left side has the block")
	}
}

func TestCompareSingleChildJumpDoesNotCreateDiffTreeLevel(t *testing.T) {
	leftBlock := block("b", namedType("x_t"))
	rightBlock := block("b", namedType("y_t"))

	left := newSubset(FlavorRoot, Hash{})
	right := newSubset(FlavorRoot, Hash{})
	left.insert(buildCmpNode(leftBlock))
	right.insert(buildCmpNode(rightBlock))
	left.finalize()
	right.finalize()

	dt := &DiffTreeNode{}
	compareSingleChild(left, right, dt, true)

	if len(dt.Children) != 0 {
		t.Fatal("expected the jump strategy to keep descending on the caller's diff-tree node, not add a child level")
	}
	if len(dt.Diffs) != 2 {
		t.Fatalf("expected the mismatched type children to surface as 2 records, got %d", len(dt.Diffs))
	}
}

func TestCompareSingleChildNonJumpCreatesChildLevel(t *testing.T) {
	leftBlock := block("b", namedType("x_t"))
	rightBlock := block("b", namedType("y_t"))

	left := newSubset(FlavorBlock, Hash{})
	right := newSubset(FlavorBlock, Hash{})
	left.insert(buildCmpNode(leftBlock))
	right.insert(buildCmpNode(rightBlock))
	left.finalize()
	right.finalize()

	dt := &DiffTreeNode{}
	compareSingleChild(left, right, dt, false)

	if len(dt.Children) != 1 {
		t.Fatalf("expected block/macro strategy to create exactly one child diff-tree level, got %d", len(dt.Children))
	}
}

func TestCompareSimilarityMatchesHighestOverlapFirst(t *testing.T) {
	leftA := optional("opt", namedType("a_t"), namedType("b_t"), namedType("c_t"))
	leftB := optional("opt", namedType("x_t"))
	rightA := optional("opt", namedType("a_t"), namedType("b_t"), namedType("z_t"))

	left := newSubset(FlavorOptional, Hash{})
	right := newSubset(FlavorOptional, Hash{})
	left.insert(buildCmpNode(leftA))
	left.insert(buildCmpNode(leftB))
	right.insert(buildCmpNode(rightA))
	left.finalize()
	right.finalize()

	dt := &DiffTreeNode{}
	compareSimilarity(left, right, dt)

	if len(dt.Children) != 1 {
		t.Fatalf("expected the best-matching pair (leftA/rightA, sharing 2 of 3 children) to be paired as one child level, got %d", len(dt.Children))
	}
	var leftRecords int
	for _, d := range dt.Diffs {
		if d.Side == LEFT {
			leftRecords++
		}
	}
	if leftRecords != 1 {
		t.Fatalf("expected leftB (unmatched) to surface as a residual LEFT record, got %d LEFT records", leftRecords)
	}
}

func TestCompareSimilarityAllOneSidedFallsBackToBagDiff(t *testing.T) {
	leftOnly := optional("opt", namedType("a_t"))
	left := newSubset(FlavorOptional, Hash{})
	left.insert(buildCmpNode(leftOnly))
	left.finalize()

	dt := &DiffTreeNode{}
	compareSimilarity(left, nil, dt)

	if len(dt.Children) != 0 {
		t.Fatal("expected no pairing when one side is entirely absent")
	}
	if len(dt.Diffs) != 1 || dt.Diffs[0].Side != LEFT {
		t.Fatal("expected the sole member to surface as a plain LEFT record")
	}
}

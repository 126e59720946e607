package cildiff

import "sort"

// compareSubsets picks a comparison strategy by flavor and emits diff
// records (and, for
// recursive strategies, descends into new diff-tree levels).
func compareSubsets(left, right *subset, leftParent, rightParent *cmpNode, dt *diffTreeNode) {
	flavor := subsetFlavor(left, right)
	switch strategyFor(flavor) {
	case strategySingleChild:
		compareSingleChild(left, right, dt, false)
	case strategySingleChildJump:
		compareSingleChild(left, right, dt, true)
	case strategySimilarity:
		compareSimilarity(left, right, dt)
	default:
		compareDefault(left, right, dt)
	}
}

func subsetFlavor(left, right *subset) Flavor {
	if left != nil {
		return left.flavor
	}
	if right != nil {
		return right.flavor
	}
	return FlavorUnknown
}

// compareDefault treats both subsets as content-addressed bags: every
// left member absent from right (by full hash) becomes a
// LEFT record, every right member absent from left becomes a RIGHT
// record, and members present on both sides need no further work. This
// is the strategy used for the vast majority of flavors.
func compareDefault(left, right *subset, dt *diffTreeNode) {
	leftOnly, rightOnly := diffMembers(left, right)
	for _, n := range leftOnly {
		dt.AppendDiff(LEFT, n.ast, "")
	}
	for _, n := range rightOnly {
		dt.AppendDiff(RIGHT, n.ast, "")
	}
}

// diffMembers partitions two subsets' members by full-hash presence,
// returning left-only and right-only members sorted by full hash for
// deterministic output.
func diffMembers(left, right *subset) (leftOnly, rightOnly []*cmpNode) {
	rightSet := map[Hash]bool{}
	if right != nil {
		for _, h := range right.order {
			rightSet[h] = true
		}
	}
	if left != nil {
		for _, n := range left.sorted() {
			if !rightSet[n.full] {
				leftOnly = append(leftOnly, n)
			}
		}
	}
	leftSet := map[Hash]bool{}
	if left != nil {
		for _, h := range left.order {
			leftSet[h] = true
		}
	}
	if right != nil {
		for _, n := range right.sorted() {
			if !leftSet[n.full] {
				rightOnly = append(rightOnly, n)
			}
		}
	}
	return
}

// compareSingleChild implements the single-child / single-child-jump
// strategies: the subset is guaranteed at most one member per side,
// since a declaration's name is unique within its container. If jump is
// true (root, source-info) the
// descent continues on the caller's diff-tree node instead of creating a
// new level, so transparent wrapper constructs never show up as diff-tree
// levels.
func compareSingleChild(left, right *subset, dt *diffTreeNode, jump bool) {
	var leftNode, rightNode *cmpNode
	if left != nil {
		members := left.sorted()
		if len(members) > 1 {
			panic(errorTooManySingleChildMembers(left))
		}
		if len(members) == 1 {
			leftNode = members[0]
		}
	}
	if right != nil {
		members := right.sorted()
		if len(members) > 1 {
			panic(errorTooManySingleChildMembers(right))
		}
		if len(members) == 1 {
			rightNode = members[0]
		}
	}

	switch {
	case leftNode == nil && rightNode == nil:
		return
	case leftNode == nil:
		dt.AppendDiff(RIGHT, rightNode.ast, "")
	case rightNode == nil:
		dt.AppendDiff(LEFT, leftNode.ast, "")
	default:
		target := dt
		if !jump {
			target = dt.AppendChild(leftNode, rightNode)
		}
		leftNode.compare(leftNode, rightNode, target)
	}
}

// compareSimilarity implements similarity matching for flavors whose
// sibling constructs lack stable identity across sides —
// optional, in, booleanif, tunableif.
func compareSimilarity(left, right *subset, dt *diffTreeNode) {
	uniqueLeft, uniqueRight := diffMembers(left, right)

	// step 1: if either side has nothing left to pair, fall back to the
	// default bag treatment on the residual members.
	if len(uniqueLeft) == 0 || len(uniqueRight) == 0 {
		for _, n := range uniqueLeft {
			dt.AppendDiff(LEFT, n.ast, "")
		}
		for _, n := range uniqueRight {
			dt.AppendDiff(RIGHT, n.ast, "")
		}
		return
	}

	// step 2-3: compute sim for every pair, sort by descending rate.
	type pair struct {
		li, ri int
		common, leftOnly, rightOnly int
		rate   float64
	}
	pairs := make([]pair, 0, len(uniqueLeft)*len(uniqueRight))
	for li, l := range uniqueLeft {
		for ri, r := range uniqueRight {
			common, lo, ro := l.sim(l, r)
			sum := common + lo + ro
			rate := 0.0
			if sum > 0 {
				rate = float64(common) / float64(sum)
			}
			pairs = append(pairs, pair{li: li, ri: ri, common: common, leftOnly: lo, rightOnly: ro, rate: rate})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].rate > pairs[j].rate })

	// step 4: walk the sorted list, greedily matching unmatched endpoints.
	leftMatched := make([]bool, len(uniqueLeft))
	rightMatched := make([]bool, len(uniqueRight))
	for _, p := range pairs {
		if leftMatched[p.li] || rightMatched[p.ri] {
			continue
		}
		leftMatched[p.li] = true
		rightMatched[p.ri] = true
		l, r := uniqueLeft[p.li], uniqueRight[p.ri]
		child := dt.AppendChild(l, r)
		l.compare(l, r, child)
	}

	// step 5: residual unmatched members become LEFT/RIGHT records.
	for i, matched := range leftMatched {
		if !matched {
			dt.AppendDiff(LEFT, uniqueLeft[i].ast, "")
		}
	}
	for i, matched := range rightMatched {
		if !matched {
			dt.AppendDiff(RIGHT, uniqueRight[i].ast, "")
		}
	}
}

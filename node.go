package cildiff

// cmpNode is cildiff's wrapper over a
// single AST node, holding a back-reference to it plus whatever
// flavor-specific derived state that node's initialiser built — a child
// set for containers, two branch sets for conditionals, or nothing at all
// for a leaf.
type cmpNode struct {
	ast     ASTNode
	flavor  Flavor
	full    Hash
	partial Hash

	// container-like flavors only.
	children *set

	// conditional-container flavors only (booleanif, tunableif). Both
	// sets are always built: a branch with no statements is an empty set
	// whether or not it was written out, so an empty branch and an absent
	// one are not told apart.
	branchFalse *set
	branchTrue  *set
}

// Flavor returns the wrapped AST node's flavor.
func (c *cmpNode) Flavor() Flavor { return c.flavor }

// FullHash returns the node's identity hash.
func (c *cmpNode) FullHash() Hash { return c.full }

// PartialHash returns the node's merge-key hash.
func (c *cmpNode) PartialHash() Hash { return c.partial }

// AST returns the underlying AST node this comparison node wraps.
func (c *cmpNode) AST() ASTNode { return c.ast }

// buildCmpNode runs the per-flavor node initialiser for n: the default
// initialiser copies the data hasher's results verbatim,
// container flavors additionally build a child set, and conditional
// containers build two branch sets instead.
func buildCmpNode(n ASTNode) *cmpNode {
	flavor := n.Flavor()
	if !validFlavor(flavor) {
		panic(errorUnknownFlavor(flavor))
	}
	c := &cmpNode{ast: n, flavor: flavor}

	switch {
	case containerFlavors[flavor]:
		dataFull, dataPartial := dataHash(n)
		c.children = buildSet(Children(n))
		c.partial = dataPartial
		hs := beginHash(flavor)
		hs.updateHash(dataFull)
		hs.updateHash(c.children.fullHash)
		c.full = hs.finish()

	case conditionalFlavors[flavor]:
		dataFull, dataPartial := dataHash(n)
		var falseKids, trueKids []ASTNode
		for _, ch := range Children(n) {
			switch branchOf(ch) {
			case CondFalse:
				falseKids = append(falseKids, ch)
			case CondTrue:
				trueKids = append(trueKids, ch)
			}
		}
		c.branchFalse = buildSet(falseKids)
		c.branchTrue = buildSet(trueKids)
		c.partial = dataPartial

		hs := beginHash(flavor)
		hs.updateHash(dataFull)
		hs.updateString("<cond::false>")
		hs.updateHash(c.branchFalse.fullHash)
		hs.updateString("<cond::true>")
		hs.updateHash(c.branchTrue.fullHash)
		c.full = hs.finish()

	default:
		c.full, c.partial = dataHash(n)
	}

	return c
}

// branchOf reports which conditional branch an AST child belongs to. The
// concrete parser's nodes report it through the condTagged interface; a
// node that doesn't implement it reports CondNone, and the conditional
// initialiser places such a child in neither branch. This only matters
// directly under booleanif/tunableif.
func branchOf(n ASTNode) CondBranch {
	if t, ok := n.(condTagged); ok {
		return t.CondBranch()
	}
	return CondNone
}

// condTagged is implemented by AST nodes that know which fixed-position
// branch of a conditional container they belong to.
type condTagged interface {
	CondBranch() CondBranch
}

// compare dispatches per flavor. The default strategy for
// non-container, non-conditional flavors needs no recursion: by the time
// compare is called on a pair, the caller (the subset comparator) has
// already established their full hashes differ, and there is nothing
// beneath a leaf node to descend into.
func (c *cmpNode) compare(left, right *cmpNode, dt *diffTreeNode) {
	switch {
	case left != nil && left.children != nil:
		var rightChildren *set
		if right != nil {
			rightChildren = right.children
		}
		compareSets(left.children, rightChildren, left, right, dt)
	case right != nil && right.children != nil:
		compareSets(nil, right.children, left, right, dt)
	case left != nil && (left.branchFalse != nil || left.branchTrue != nil):
		compareConditional(left, right, dt)
	case right != nil && (right.branchFalse != nil || right.branchTrue != nil):
		compareConditional(left, right, dt)
	}
}

func compareConditional(left, right *cmpNode, dt *diffTreeNode) {
	var lf, lt, rf, rt *set
	if left != nil {
		lf, lt = left.branchFalse, left.branchTrue
	}
	if right != nil {
		rf, rt = right.branchFalse, right.branchTrue
	}
	compareSets(lf, rf, left, right, dt)
	compareSets(lt, rt, left, right, dt)
}

// sim computes the (common, left_only, right_only) similarity triple used
// by similarity matching. The default is an exact-hash comparison;
// container flavors delegate to their child set's similarity instead so
// that e.g. two optionals with mostly-overlapping bodies score a high
// rate even though their own full hashes differ.
func (c *cmpNode) sim(left, right *cmpNode) (common, leftOnly, rightOnly int) {
	switch {
	case left != nil && left.children != nil:
		var rightChildren *set
		if right != nil {
			rightChildren = right.children
		}
		return simSets(left.children, rightChildren)
	case right != nil && right.children != nil:
		return simSets(nil, right.children)
	case left != nil && (left.branchFalse != nil || left.branchTrue != nil):
		return simConditional(left, right)
	case right != nil && (right.branchFalse != nil || right.branchTrue != nil):
		return simConditional(left, right)
	default:
		return simDefault(left, right)
	}
}

func simConditional(left, right *cmpNode) (common, leftOnly, rightOnly int) {
	var lf, lt, rf, rt *set
	if left != nil {
		lf, lt = left.branchFalse, left.branchTrue
	}
	if right != nil {
		rf, rt = right.branchFalse, right.branchTrue
	}
	c1, l1, r1 := simSets(lf, rf)
	c2, l2, r2 := simSets(lt, rt)
	return c1 + c2, l1 + l2, r1 + r2
}

func simDefault(left, right *cmpNode) (common, leftOnly, rightOnly int) {
	switch {
	case left != nil && right != nil:
		if left.full == right.full {
			return 1, 0, 0
		}
		return 0, 1, 1
	case left != nil:
		return 0, 1, 0
	case right != nil:
		return 0, 0, 1
	default:
		return 0, 0, 0
	}
}

package cildiff

import "sort"

// subset is the set of comparison nodes sharing one partial hash: the
// merge-eligible group for a flavor. Membership is keyed by full hash,
// so two AST children with identical full hashes in the same subset
// silently collide — the later one is discarded, since their diff
// contribution would be indistinguishable.
type subset struct {
	flavor  Flavor
	partial Hash
	full    Hash
	members map[Hash]*cmpNode
	// order preserves first-insertion order so iteration (and therefore
	// diff output) is deterministic independent of map iteration order.
	order []Hash
}

func newSubset(flavor Flavor, partial Hash) *subset {
	return &subset{flavor: flavor, partial: partial, members: map[Hash]*cmpNode{}}
}

// insert adds n, keyed by its full hash. A repeat full hash within one
// subset is a no-op — benign duplicate declarations collapse silently.
func (s *subset) insert(n *cmpNode) {
	if _, exists := s.members[n.full]; exists {
		return
	}
	s.members[n.full] = n
	s.order = append(s.order, n.full)
}

// sorted returns the subset's members ordered by full hash, for
// deterministic traversal.
func (s *subset) sorted() []*cmpNode {
	hashes := append([]Hash(nil), s.order...)
	sort.Slice(hashes, func(i, j int) bool { return lessHash(hashes[i], hashes[j]) })
	out := make([]*cmpNode, len(hashes))
	for i, h := range hashes {
		out[i] = s.members[h]
	}
	return out
}

// finalize computes the subset's full hash from its members' full
// hashes, sorted. A single member's hash becomes the subset hash
// verbatim; no flavor in this implementation overrides this default.
func (s *subset) finalize() {
	members := s.sorted()
	if len(members) == 1 {
		s.full = members[0].full
		return
	}
	hs := beginHash(s.flavor)
	for _, m := range members {
		hs.updateHash(m.full)
	}
	s.full = hs.finish()
}

// set represents the children of one container, grouped first by partial
// hash then by full hash.
type set struct {
	subsets  map[Hash]*subset
	order    []Hash
	fullHash Hash
}

// buildSet constructs a set from a container's AST children.
func buildSet(children []ASTNode) *set {
	s := &set{subsets: map[Hash]*subset{}}
	for _, child := range children {
		cn := buildCmpNode(child)
		sub, ok := s.subsets[cn.partial]
		if !ok {
			sub = newSubset(cn.flavor, cn.partial)
			s.subsets[cn.partial] = sub
			s.order = append(s.order, cn.partial)
		}
		sub.insert(cn)
	}

	for _, sub := range s.subsets {
		sub.finalize()
	}
	s.fullHash = s.computeFullHash()
	return s
}

// computeFullHash digests the set's subsets' full hashes, sorted. An
// empty set uses the well-known sentinel hash.
func (s *set) computeFullHash() Hash {
	if len(s.subsets) == 0 {
		return emptySetHash
	}
	hashes := make([]Hash, 0, len(s.subsets))
	for _, sub := range s.subsets {
		hashes = append(hashes, sub.full)
	}
	sort.Slice(hashes, func(i, j int) bool { return lessHash(hashes[i], hashes[j]) })

	hs := beginHash(FlavorUnknown)
	for _, h := range hashes {
		hs.updateHash(h)
	}
	return hs.finish()
}

// sortedPartials returns the set's partial-hash keys in deterministic
// (lexicographic) order, for traversal.
func (s *set) sortedPartials() []Hash {
	keys := append([]Hash(nil), s.order...)
	sort.Slice(keys, func(i, j int) bool { return lessHash(keys[i], keys[j]) })
	return keys
}

// compareSets is the set comparator: if both set hashes are equal there
// is nothing to report. Otherwise every left subset is
// paired with its same-partial-hash right subset (possibly absent) and
// handed to the subset comparator; right subsets whose partial hash is
// wholly absent on the left are then visited on their own, since the
// left-side pass already covered every partial hash present on both
// sides.
func compareSets(left, right *set, leftParent, rightParent *cmpNode, dt *diffTreeNode) {
	leftHash, rightHash := emptySetHash, emptySetHash
	if left != nil {
		leftHash = left.fullHash
	}
	if right != nil {
		rightHash = right.fullHash
	}
	if leftHash == rightHash {
		return
	}

	visited := map[Hash]bool{}
	if left != nil {
		for _, partial := range left.sortedPartials() {
			leftSub := left.subsets[partial]
			var rightSub *subset
			if right != nil {
				rightSub = right.subsets[partial]
			}
			visited[partial] = true
			compareSubsets(leftSub, rightSub, leftParent, rightParent, dt)
		}
	}
	if right != nil {
		for _, partial := range right.sortedPartials() {
			if visited[partial] {
				continue
			}
			compareSubsets(nil, right.subsets[partial], leftParent, rightParent, dt)
		}
	}
}

// simSets totals the sims of subset pairs sharing a partial hash,
// one-sided where the other side lacks that partial hash entirely.
func simSets(left, right *set) (common, leftOnly, rightOnly int) {
	visited := map[Hash]bool{}
	if left != nil {
		for partial, leftSub := range left.subsets {
			var rightSub *subset
			if right != nil {
				rightSub = right.subsets[partial]
			}
			visited[partial] = true
			c, l, r := simSubsets(leftSub, rightSub)
			common += c
			leftOnly += l
			rightOnly += r
		}
	}
	if right != nil {
		for partial, rightSub := range right.subsets {
			if visited[partial] {
				continue
			}
			_, _, r := simSubsets(nil, rightSub)
			rightOnly += r
		}
	}
	return
}

func simSubsets(left, right *subset) (common, leftOnly, rightOnly int) {
	leftMembers := map[Hash]bool{}
	if left != nil {
		for _, h := range left.order {
			leftMembers[h] = true
		}
	}
	if right != nil {
		for _, h := range right.order {
			if leftMembers[h] {
				common++
				delete(leftMembers, h)
			} else {
				rightOnly++
			}
		}
	}
	leftOnly = len(leftMembers)
	return
}

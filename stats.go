package cildiff

// Stats is a summary of how big a diff tree turned out to be: LEFT/RIGHT
// record counts and node counts, since CIL diffs have no update or move
// concept — only additions and deletions.
type Stats struct {
	// LeftRecords counts every LEFT (deletion) record in the diff tree.
	LeftRecords int `json:"leftRecords"`
	// RightRecords counts every RIGHT (addition) record in the diff tree.
	RightRecords int `json:"rightRecords"`
	// NodesVisited counts every diff-tree node (root plus descendants),
	// regardless of whether it carries any records.
	NodesVisited int `json:"nodesVisited"`
}

// NodeChange returns the net shift in record count: positive means the
// right input added more than the left input removed.
func (s Stats) NodeChange() int {
	return s.RightRecords - s.LeftRecords
}

// ComputeStats walks a diff tree and tallies Stats.
func ComputeStats(root *DiffTreeNode) *Stats {
	st := &Stats{}
	walkDiffTree(root, st)
	return st
}

func walkDiffTree(dt *DiffTreeNode, st *Stats) {
	if dt == nil {
		return
	}
	st.NodesVisited++
	for _, rec := range dt.Diffs {
		switch rec.Side {
		case LEFT:
			st.LeftRecords++
		case RIGHT:
			st.RightRecords++
		}
	}
	for _, child := range dt.Children {
		walkDiffTree(child, st)
	}
}

package cildiff

import (
	"fmt"
	"io"
	"strings"
)

// NodeRenderer is an external collaborator that can render a single AST
// node back to canonical CIL-like text. The plain-text emitter takes one
// as a parameter rather than importing a concrete writer, since
// producing CIL text is the parser's domain, not the comparison
// engine's. cmd/cildiff supplies the concrete implementation from
// internal/cilparse.
type NodeRenderer interface {
	RenderNode(ASTNode) string
}

// PrintDiffTree writes the plain-text report for root to w: two comment
// lines naming the left and right root full hashes, then diff records
// depth-first, children before records at each level, so deeper
// differences are reported before shallower ones at the same ancestor.
func PrintDiffTree(w io.Writer, root *DiffTreeNode, renderer NodeRenderer) error {
	leftHash, rightHash := Hash{}, Hash{}
	if root.Left != nil {
		leftHash = root.Left.FullHash()
	}
	if root.Right != nil {
		rightHash = root.Right.FullHash()
	}
	if _, err := fmt.Fprintf(w, "; left  %s\n; right %s\n", leftHash.Hex(), rightHash.Hex()); err != nil {
		return err
	}
	return printDiffTreeNode(w, root, renderer)
}

func printDiffTreeNode(w io.Writer, dt *DiffTreeNode, renderer NodeRenderer) error {
	for _, child := range dt.Children {
		if err := printDiffTreeNode(w, child, renderer); err != nil {
			return err
		}
	}
	for _, rec := range dt.Diffs {
		if err := printDiffRecord(w, dt, rec, renderer); err != nil {
			return err
		}
	}
	return nil
}

func printDiffRecord(w io.Writer, dt *DiffTreeNode, rec *DiffRecord, renderer NodeRenderer) error {
	verb := "deleted"
	if rec.Side == RIGHT {
		verb = "added"
	}

	desc := ""
	if rec.Description != "" {
		desc = ": " + rec.Description
	}
	if _, err := fmt.Fprintf(w, "; %s%s (%s)\n", verb, desc, recordHash(rec).Hex()); err != nil {
		return err
	}

	ctx := dt.context()
	if len(ctx) > 0 {
		parts := make([]string, len(ctx))
		for i, n := range ctx {
			parts[i] = fmt.Sprintf("%s:%d", n.Flavor(), n.Line())
		}
		if _, err := fmt.Fprintf(w, ";   in %s\n", strings.Join(parts, " > ")); err != nil {
			return err
		}
	}

	text := renderText(rec.Node, renderer)
	_, err := fmt.Fprintln(w, text)
	return err
}

func recordHash(rec *DiffRecord) Hash {
	return buildCmpNode(rec.Node).full
}

func renderText(n ASTNode, renderer NodeRenderer) string {
	if renderer == nil {
		return fmt.Sprintf("(%s)", n.Flavor())
	}
	return renderer.RenderNode(n)
}

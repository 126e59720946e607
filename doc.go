// Package cildiff computes structural differences between two parsed
// SELinux Common Intermediate Language (CIL) policy trees.
//
// Given the abstract syntax trees of a left and right policy, produced by
// an external parser (see ASTNode), cildiff builds a canonicalized,
// content-addressed comparison tree for each side and then walks both
// trees together to produce a diff tree of additions and deletions. Rule
// ordering within order-insensitive containers, the naming of anonymous
// constructs, and textual reformatting are all abstracted away; only
// semantic additions and deletions are reported.
//
// The comparison proceeds in stages:
//
//  1. every AST node gets a full hash (an identity) and a partial hash
//     (a merge key used to pair siblings that should be compared against
//     each other when order doesn't matter) via the per-flavor data
//     hasher in datahash.go.
//  2. comparison nodes (node.go) wrap each AST node together with
//     flavor-specific derived state: a child set for containers, or a
//     pair of branches for conditionals.
//  3. the children of a container are grouped into a set of subsets
//     (set.go), first by partial hash then by full hash, so pairing
//     siblings across trees becomes a hash lookup instead of a tree walk.
//  4. a subset comparator (compare.go) descends per flavor, using a
//     default bag diff, a single-child descent, or similarity matching
//     for containers whose members lack stable identity.
//  5. a diff tree (difftree.go) accumulates the resulting records,
//     preserving the parent context each record was found under.
//
// cildiff treats the input ASTs as immutable and never mutates or
// reclaims them; it consumes the contract described by ASTNode read-only.
// It performs no parsing, decompression, or I/O of its own — those are
// the surrounding CLI's job (see cmd/cildiff) — and it does no semantic
// reasoning about SELinux access decisions: it compares structure, not
// effect.
package cildiff

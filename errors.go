package cildiff

import "github.com/pkg/errors"

// Structural invariant violations are never a user mistake — they
// indicate the supplied AST breaches the contract ASTNode promises.
// cildiff does not try to recover from them: it panics with a diagnostic
// naming the failing contract (the diagnostic does not carry a source
// line), and leaves recovery (if any) to the caller — the CLI recovers at its
// outermost boundary and turns this into a clean non-zero exit rather
// than a raw stack trace (see cmd/cildiff).

// errorTooManySingleChildMembers reports a duplicate declaration name
// detected inside a single-child subset (block or macro): |subset| <= 1
// must always hold for these flavors, because declaration names are
// required to be unique within a container. Seeing more than one member
// here means the parser handed us two same-named declarations, which the
// CIL grammar forbids.
func errorTooManySingleChildMembers(s *subset) error {
	return errors.Errorf(
		"cildiff: invariant violation: %s subset has %d members, want at most 1 (duplicate declaration name)",
		s.flavor, len(s.order),
	)
}

// errorUnknownFlavor reports an AST node whose flavor isn't in cildiff's
// closed set at all — not just unspecialised (those fall back to the
// default data hasher), but literally outside the enum the parser
// contract promises.
func errorUnknownFlavor(f Flavor) error {
	return errors.Errorf("cildiff: invariant violation: unknown flavor %d", uint16(f))
}

// errorMalformedExpr reports an ExprOperand whose Kind is none of
// OperandString, OperandExpr, OperandOperator — a malformed expression
// list the parser contract never promises to hand us.
func errorMalformedExpr(kind ExprOperandKind) error {
	return errors.Errorf("cildiff: invariant violation: malformed expression operand with unknown kind %d", uint8(kind))
}

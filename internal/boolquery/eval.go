package boolquery

// LeafResult is whether a given leaf participated positively in making the
// expression true at the evaluated granularity (a line, or — for
// ScopeFiles — "some line in the file").
type LeafResult struct {
	Matched bool
}

// Eval evaluates the CNF tree given each leaf's truth value. It returns
// whether the overall expression is satisfied, and the set of leaf indices
// that contributed positively to the satisfying assignment — used for
// highlighting.
func Eval(tree *Expr, leaves []LeafResult) (bool, map[int]bool) {
	ok := evalNode(tree, leaves)
	contributing := map[int]bool{}
	if ok {
		collectContributing(tree, leaves, contributing)
	}
	return ok, contributing
}

func evalNode(e *Expr, leaves []LeafResult) bool {
	switch e.Op {
	case OpLeaf:
		if len(leaves) == 0 {
			return true // no leaf results supplied: every leaf counts as matched
		}
		return leaves[e.LeafIdx].Matched
	case OpNot:
		return !evalNode(e.Children[0], leaves)
	case OpAnd:
		for _, c := range e.Children {
			if !evalNode(c, leaves) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range e.Children {
			if evalNode(c, leaves) {
				return true
			}
		}
		return false
	}
	return false
}

func collectContributing(e *Expr, leaves []LeafResult, out map[int]bool) {
	switch e.Op {
	case OpLeaf:
		if len(leaves) == 0 || leaves[e.LeafIdx].Matched {
			out[e.LeafIdx] = true
		}
	case OpNot:
		// NOT leaves never contribute to highlighting.
	case OpAnd:
		for _, c := range e.Children {
			collectContributing(c, leaves, out)
		}
	case OpOr:
		for _, c := range e.Children {
			if evalNode(c, leaves) {
				collectContributing(c, leaves, out)
			}
		}
	}
}

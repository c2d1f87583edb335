package flake

import "github.com/DeterminateSystems/flakedit/internal/nix"

// FindFirst walks the expression tree for the first binding matching the
// dotted attribute path, in source order. A nil path returns the first
// KeyValue binding of the map, whatever its name.
//
// A binding key may bundle several path segments (`inputs.nixpkgs.url = ...;`
// is one binding with a three-segment key) or spread them across nested
// attrsets, and the two styles can mix, so matching compares segment by
// segment from the front:
//
//   - every target segment matched and the binding key is the same length or
//     longer: this binding is the match;
//   - the binding key ran out first with every segment matched (a strict
//     prefix of the target): recurse into the binding's value with the
//     remaining target segments;
//   - first mismatch: this binding is not a prefix, move on.
//
// A path that matches nothing returns (nil, nil); only structural problems
// (an `inherit`, a non-attrset in search position) are errors.
func FindFirst(expr nix.Expression, path []string) (*nix.KeyValue, error) {
	m, ok := expr.(*nix.Map)
	if !ok {
		return nil, &UnsupportedExpressionError{Kind: expr.Kind(), Pos: expr.Span().Start}
	}

	for _, binding := range m.Bindings {
		kv, err := asKeyValue(binding)
		if err != nil {
			return nil, err
		}

		if path == nil {
			return kv, nil
		}

		matched, remainder := matchKey(kv, path)
		switch {
		case matched:
			return kv, nil
		case remainder != nil:
			return FindFirst(kv.To, remainder)
		}
	}

	return nil, nil
}

// FindAll is FindFirst without the early return: it collects every binding
// in the tree matching the path, still in source order, recursing through
// strict-prefix matches.
func FindAll(expr nix.Expression, path []string) ([]*nix.KeyValue, error) {
	m, ok := expr.(*nix.Map)
	if !ok {
		return nil, &UnsupportedExpressionError{Kind: expr.Kind(), Pos: expr.Span().Start}
	}

	var found []*nix.KeyValue
	for _, binding := range m.Bindings {
		kv, err := asKeyValue(binding)
		if err != nil {
			return nil, err
		}

		if path == nil {
			found = append(found, kv)
			continue
		}

		matched, remainder := matchKey(kv, path)
		switch {
		case matched:
			found = append(found, kv)
		case remainder != nil:
			sub, err := FindAll(kv.To, remainder)
			if err != nil {
				return nil, err
			}
			found = append(found, sub...)
		}
	}

	return found, nil
}

// matchKey compares the target path against the binding's key segments from
// the front, stopping at the first mismatch. It returns matched=true when
// every target segment was consumed by a matching key segment. When instead
// the key was consumed as a strict prefix of the target, it returns the
// unconsumed target segments for recursion into the binding's value; a nil
// remainder means no prefix relationship at all.
func matchKey(kv *nix.KeyValue, path []string) (matched bool, remainder []string) {
	key := kv.KeyPath()

	n := 0
	for n < len(path) && n < len(key) {
		if path[n] != key[n] {
			return false, nil
		}
		n++
	}

	if n == len(path) {
		return true, nil
	}
	return false, path[n:]
}

func asKeyValue(binding nix.Binding) (*nix.KeyValue, error) {
	switch b := binding.(type) {
	case *nix.KeyValue:
		return b, nil
	case *nix.Inherit:
		return nil, &InheritError{Pos: b.Src.Start}
	}
	// The binding set is closed; anything else is a bug in the parser.
	return nil, &UnsupportedExpressionError{Kind: "binding"}
}

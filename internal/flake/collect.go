package flake

import (
	"strings"

	"github.com/DeterminateSystems/flakedit/internal/nix"
)

// CollectInputs flattens the top-level `inputs` bindings found by
// FindAll(expr, ["inputs"]) into one binding per input, whichever style the
// manifest wrote them in:
//
//	inputs = { nixpkgs.url = "..."; };    one binding per child of the set
//	inputs.nixpkgs = { url = "..."; };    passed through unchanged
//	inputs.nixpkgs.url = "...";           passed through unchanged
//
// Bindings addressing anything deeper (`inputs.foo.inputs.bar.follows`,
// for example) are skipped, not errors.
func CollectInputs(toplevel []*nix.KeyValue) ([]*nix.KeyValue, error) {
	var inputs []*nix.KeyValue

	for _, kv := range toplevel {
		key := kv.KeyPath()
		switch len(key) {
		case 1:
			set, ok := kv.To.(*nix.Map)
			if !ok {
				return nil, &UnsupportedExpressionError{Kind: kv.To.Kind(), Pos: kv.To.Span().Start}
			}
			for _, binding := range set.Bindings {
				child, err := asKeyValue(binding)
				if err != nil {
					return nil, err
				}
				inputs = append(inputs, child)
			}

		case 2:
			inputs = append(inputs, kv)

		case 3:
			if key[2] == "url" {
				inputs = append(inputs, kv)
			}

		default:
			// Deeper or degenerate key paths never name an input directly.
		}
	}

	return inputs, nil
}

// InputName extracts the input's name from a collected binding's key path:
// the first segment that is neither `inputs` nor `url`. The second return
// is false when no segment qualifies.
func InputName(kv *nix.KeyValue) (string, bool) {
	for _, segment := range kv.KeyPath() {
		segment = strings.TrimSpace(segment)
		if segment != "inputs" && segment != "url" {
			return segment, true
		}
	}
	return "", false
}

// InputURL extracts the input's URL from a collected binding: the binding's
// own value when its key already ends in `url`, otherwise the `url`
// attribute of its record. The second return is false when the input
// declares no literal URL the editor understands.
func InputURL(kv *nix.KeyValue) (string, bool, error) {
	key := kv.KeyPath()
	if len(key) > 0 && key[len(key)-1] == "url" {
		return literalValue(kv.To)
	}

	urlKV, err := findURLAttr(kv.To)
	if err != nil {
		return "", false, err
	}
	if urlKV == nil {
		return "", false, nil
	}
	return literalValue(urlKV.To)
}

// findURLAttr locates a `url` binding inside an input's record value. A
// non-attrset value simply has no `url` attribute to offer.
func findURLAttr(expr nix.Expression) (*nix.KeyValue, error) {
	if _, ok := expr.(*nix.Map); !ok {
		return nil, nil
	}
	return FindFirst(expr, []string{"url"})
}

// literalValue reads a string, indented-string or URI expression as plain
// text. Interpolated and unsupported shapes report ok=false rather than an
// error: a listing should still show the inputs it can read.
func literalValue(expr nix.Expression) (string, bool, error) {
	switch v := expr.(type) {
	case *nix.String:
		return singleRawPart(v.Parts)
	case *nix.IndentedString:
		return singleRawPart(v.Parts)
	case *nix.Uri:
		return v.Value, true, nil
	}
	return "", false, nil
}

func singleRawPart(parts []nix.Part) (string, bool, error) {
	if len(parts) != 1 {
		return "", false, nil
	}
	raw, ok := parts[0].(*nix.PartRaw)
	if !ok {
		return "", false, nil
	}
	return strings.TrimSpace(raw.Content), true, nil
}

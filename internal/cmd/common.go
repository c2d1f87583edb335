package cmd

import (
	"fmt"
	"os"

	"github.com/DeterminateSystems/flakedit/internal/nix"
	"github.com/DeterminateSystems/flakedit/internal/scaffold"
	"github.com/DeterminateSystems/flakedit/pkg/log"
)

// loadFlake reads and parses the manifest at path. A missing file, or one
// that parses to an empty attrset, is replaced with the scaffold so a first
// input has somewhere to land.
func loadFlake(path string) (string, nix.Expression, error) {
	contents, err := readOrScaffold(path)
	if err != nil {
		return "", nil, err
	}

	expr, err := nix.Parse(contents)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if m, ok := expr.(*nix.Map); ok && len(m.Bindings) == 0 {
		log.Linef("INFO", "%s is an empty attrset, starting from the scaffold", path)
		contents, err = scaffold.Fallback("")
		if err != nil {
			return "", nil, err
		}
		expr, err = nix.Parse(contents)
		if err != nil {
			return "", nil, err
		}
	}

	return contents, expr, nil
}

func readOrScaffold(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Linef("INFO", "%s does not exist, starting from the scaffold", path)
		return scaffold.Fallback("")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}

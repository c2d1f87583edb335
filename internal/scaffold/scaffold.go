// Package scaffold renders the starter manifest used when a flake.nix does
// not exist yet or is an empty attrset.
package scaffold

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultDescription is used when the caller has nothing better to say.
const DefaultDescription = "My new flake."

const fallbackTemplate = `{
  description = {{ .Description | quote }};

  outputs = { ... } @ inputs: { };
}
`

// Fallback renders a minimal flake with the given description and an
// outputs function open to extra inputs, so newly added inputs have
// somewhere to land.
func Fallback(description string) (string, error) {
	if description == "" {
		description = DefaultDescription
	}

	tmpl := template.New("flake")
	tmpl.Funcs(sprig.TxtFuncMap())
	if _, err := tmpl.Parse(fallbackTemplate); err != nil {
		return "", fmt.Errorf("failed to parse fallback flake template: %w", err)
	}

	res := new(strings.Builder)
	if err := tmpl.Execute(res, struct{ Description string }{Description: description}); err != nil {
		return "", fmt.Errorf("failed to render fallback flake: %w", err)
	}

	return res.String(), nil
}

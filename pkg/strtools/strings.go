package strtools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// IndentSpaces indents every line of s after the first by n spaces. The
// first line is left alone so the result can be appended to an existing
// prefix.
func IndentSpaces(n int, s string) string {
	var out strings.Builder
	first := true
	for _, line := range strings.SplitAfter(s, "\n") {
		if !first && line != "" {
			fmt.Fprint(&out, strings.Repeat(" ", n))
		}
		fmt.Fprint(&out, line)
		first = false
	}
	return out.String()
}

// MakeMatch turns a name into a doublestar glob for locating flake
// manifests. An empty match finds every flake.nix in the tree; a bare
// directory name is treated as one containing a flake.nix.
func MakeMatch(match string) string {
	if match == "" {
		return "**/flake.nix"
	}

	if len(strings.Split(match, "/")) == 1 {
		match = "**/" + match
	}

	if filepath.Ext(match) == "" {
		match += "/flake.nix"
	}

	return match
}

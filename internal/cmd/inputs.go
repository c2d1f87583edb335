package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/DeterminateSystems/flakedit/internal/attrsel"
	"github.com/DeterminateSystems/flakedit/internal/flake"
	"github.com/DeterminateSystems/flakedit/pkg/log"
	"github.com/DeterminateSystems/flakedit/pkg/strtools"
)

var (
	inputsFind   string
	inputsFormat string

	inputsCmd = &cobra.Command{
		Use:   "inputs",
		Short: "Inspect the inputs declared by flake manifests",
	}

	inputsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the inputs of every matching flake manifest",
		Args:  cobra.NoArgs,
		RunE:  runInputsList,
	}

	inputsGetCmd = &cobra.Command{
		Use:   "get <selector>",
		Short: "Print the value of one attribute of the flake manifest",
		Long: `Look up a single attribute by a dotted selector, such as
inputs.nixpkgs.url, and print its source text. Segments containing dots may
be quoted: inputs."dotted.name".url.`,
		Args: cobra.ExactArgs(1),
		RunE: runInputsGet,
	}
)

func init() {
	inputsListCmd.Flags().StringVar(&inputsFind, "find", "", "glob or directory selecting the manifests to list")
	inputsListCmd.Flags().StringVar(&inputsFormat, "format", "table", "listing format: table, json or toml")
	inputsCmd.AddCommand(inputsListCmd)
	inputsCmd.AddCommand(inputsGetCmd)
	rootCmd.AddCommand(inputsCmd)
}

// flakeInputs is one manifest's worth of listing output.
type flakeInputs struct {
	File   string            `json:"file" toml:"file"`
	Inputs map[string]string `json:"inputs" toml:"inputs"`
}

func runInputsList(cmd *cobra.Command, args []string) error {
	files, err := findFlakeFiles(".", inputsFind)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no flake manifests match %q", strtools.MakeMatch(inputsFind))
	}

	listing := make([]flakeInputs, 0, len(files))
	for _, file := range files {
		inputs, err := listInputs(file)
		if err != nil {
			return err
		}
		listing = append(listing, flakeInputs{File: file, Inputs: inputs})
	}

	switch inputsFormat {
	case "table":
		w := out()
		for i, entry := range listing {
			if i > 0 {
				w.Println()
			}
			w.Header(entry.File)
			names := make([]string, 0, len(entry.Inputs))
			for name := range entry.Inputs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				w.Bullet(name, entry.Inputs[name])
			}
		}
		return nil

	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listing)

	case "toml":
		bs, err := toml.Marshal(map[string][]flakeInputs{"flake": listing})
		if err != nil {
			return fmt.Errorf("failed to render listing as TOML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(bs))
		return nil

	default:
		return fmt.Errorf("unknown listing format %q", inputsFormat)
	}
}

func runInputsGet(cmd *cobra.Command, args []string) error {
	parser, err := attrsel.NewParser()
	if err != nil {
		return err
	}
	path, err := parser.Parse(args[0])
	if err != nil {
		return err
	}

	contents, expr, err := loadFlake(cfg.FlakePath)
	if err != nil {
		return err
	}

	kv, err := flake.FindFirst(expr, path)
	if err != nil {
		return err
	}
	if kv == nil {
		return fmt.Errorf("%s does not declare %s", cfg.FlakePath, args[0])
	}

	start, end, err := flake.SpanToOffsets(contents, kv.To.Span())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), contents[start:end])
	return nil
}

// findFlakeFiles walks root and returns every file matching the manifest
// glob derived from match, sorted for stable output.
func findFlakeFiles(root, match string) ([]string, error) {
	pattern := strtools.MakeMatch(match)

	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error reading %q: %w", path, err)
		}

		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// listInputs parses one manifest and flattens its input declarations into a
// name to URL map. Inputs without a literal URL are listed with an empty
// value rather than dropped.
func listInputs(file string) (map[string]string, error) {
	_, expr, err := loadFlake(file)
	if err != nil {
		return nil, err
	}

	bindings, err := flake.FindAll(expr, []string{"inputs"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	collected, err := flake.CollectInputs(bindings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	inputs := make(map[string]string, len(collected))
	for _, kv := range collected {
		name, ok := flake.InputName(kv)
		if !ok {
			continue
		}
		url, ok, err := flake.InputURL(kv)
		if err != nil {
			return nil, fmt.Errorf("%s: input %s: %w", file, name, err)
		}
		if !ok {
			url = ""
		}
		inputs[name] = url
	}

	log.Linef("INFO", "found %d inputs in %s", len(inputs), file)
	return inputs, nil
}

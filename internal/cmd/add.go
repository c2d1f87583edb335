package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeterminateSystems/flakedit/internal/flake"
	"github.com/DeterminateSystems/flakedit/internal/nix"
	"github.com/DeterminateSystems/flakedit/internal/refs"
	"github.com/DeterminateSystems/flakedit/pkg/client/flakehub"
	"github.com/DeterminateSystems/flakedit/pkg/log"
)

var (
	addInputName         string
	addFlakePath         string
	addInsertionLocation string
	addDryRun            bool

	addCmd = &cobra.Command{
		Use:   "add <flake-ref>",
		Short: "Add or update a flake input",
		Long: `Add a new input to the flake.nix manifest, or repin an existing one. The
reference may be FlakeHub shorthand (org/project or org/project/version), a
scheme reference like github:NixOS/nixpkgs, or a full URL (which needs
--input-name). The input's name is threaded into the outputs function's
parameter list when that function destructures its argument.`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}
)

func init() {
	addCmd.Flags().StringVarP(&addInputName, "input-name", "n", "", "name to declare the input under, overriding the inferred one")
	addCmd.Flags().StringVarP(&addFlakePath, "flake-path", "f", "", "flake.nix to edit (defaults to the configured flake path)")
	addCmd.Flags().StringVarP(&addInsertionLocation, "insertion-location", "l", "", "where to insert a new input relative to existing ones: top or bottom")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "print the patched flake to stdout instead of writing it")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	flakePath := addFlakePath
	if flakePath == "" {
		flakePath = cfg.FlakePath
	}
	locationName := addInsertionLocation
	if locationName == "" {
		locationName = cfg.InsertionLocation
	}
	location, err := flake.ParseInsertionLocation(locationName)
	if err != nil {
		return err
	}

	client := flakehub.New(cfg.APIAddr)
	input, err := refs.Resolve(cmd.Context(), client, args[0], addInputName)
	if err != nil {
		return err
	}
	log.Linef("INFO", "resolved %s to input %s = %s", args[0], input.Name, input.URL)

	contents, expr, err := loadFlake(flakePath)
	if err != nil {
		return err
	}

	previous := previousURL(expr, input.Name)

	patched, err := flake.UpsertInput(expr, contents, input.Name, input.URL, location)
	if err != nil {
		return err
	}

	if addDryRun {
		fmt.Print(patched)
		return nil
	}

	if err := os.WriteFile(flakePath, []byte(patched), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", flakePath, err)
	}
	log.Linef("INFO", "wrote %s", flakePath)

	w := out()
	if previous != "" {
		w.Replaced(input.Name, previous, input.URL)
	} else {
		w.Added(input.Name, input.URL)
	}
	w.UpdatedFile(flakePath)
	return nil
}

// previousURL reports the URL the input is currently pinned to, or "" when
// the flake does not declare it.
func previousURL(expr nix.Expression, name string) string {
	bindings, err := flake.FindAll(expr, []string{"inputs"})
	if err != nil {
		return ""
	}
	inputs, err := flake.CollectInputs(bindings)
	if err != nil {
		return ""
	}
	for _, kv := range inputs {
		inputName, ok := flake.InputName(kv)
		if !ok || inputName != name {
			continue
		}
		url, ok, err := flake.InputURL(kv)
		if err != nil || !ok {
			return ""
		}
		return url
	}
	return ""
}

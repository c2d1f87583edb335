package cmd

import (
	_ "embed"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeterminateSystems/flakedit/internal/output"
	"github.com/DeterminateSystems/flakedit/pkg/config"
	"github.com/DeterminateSystems/flakedit/pkg/log"
)

//go:embed version.txt
var Version string

var (
	rootCmd = &cobra.Command{
		Use:   "flakedit",
		Short: "Edit flake.nix inputs without disturbing the rest of the file",
		Long: `flakedit adds and updates the inputs of a flake.nix manifest by patching
only the bytes that declare them. Comments, formatting and attribute order
elsewhere in the file are left exactly as written. References are resolved
against FlakeHub, so inputs can be added as org/project shorthand.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			if apiAddr != "" {
				cfg.APIAddr = apiAddr
			}
			return log.Setup(".", cfg.LogFile, cfg.LogFile == "", false)
		},
	}

	cfg        *config.Config
	cfgFile    string
	apiAddr    string
	outputMode string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file to use instead of the default search path")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", "", "base URL of the FlakeHub API")
	rootCmd.PersistentFlags().StringVar(&outputMode, "output-mode", "", "output mode: color, plain or markdown")
}

// out builds the output writer for the selected mode, falling back to TTY
// detection.
func out() output.Writer {
	mode := output.OutputMode(outputMode)
	if outputMode == "" {
		mode = output.DetectDefaultMode()
	}
	return output.NewWriter(mode, os.Stdout)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		out().Error(err.Error())
		os.Exit(1)
	}
}

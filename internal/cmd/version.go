package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information for flakedit",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("flakedit", strings.TrimSpace(Version), strings.Join([]string{runtime.GOOS, runtime.GOARCH}, "/"))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

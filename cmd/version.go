package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dealcoach %s (%s, %s/%s)\n", version, goVersion, runtime.GOOS, runtime.GOARCH)
		if gitCommit != "" {
			fmt.Printf("commit: %s\n", gitCommit)
		}
		if buildDate != "unknown" {
			fmt.Printf("built:  %s\n", buildDate)
		}
	},
}

// set at build time with -ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = ""
	goVersion = runtime.Version()
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

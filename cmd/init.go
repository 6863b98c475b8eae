package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealcoach/pkg/config"
)

// initCmd writes a starter config to the user's home directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Writes a config file with defaults to ~/.dealcoach/config.json.
Fails if one already exists; edit the file directly to change settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Init()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

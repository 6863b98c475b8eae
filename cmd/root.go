package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealcoach",
	Short: "In-person car deal negotiation coach",
	Long: `Dealcoach keeps your numbers straight while you sit across the desk.

Set a target and walk-away out-the-door price once, then feed the tool what
the dealer says. It classifies the pressure tactic, tracks every quote against
your ladder, and hands you a short script for the next thing to say. Guidance
comes from a model when one is configured and from a deterministic playbook
when it is not; either way nothing it tells you ever crosses your walk-away.

Available commands:
  coach    - Interactive negotiation session at the dealership
  quote    - One-shot OTD estimate or dealer-quote parse
  serve    - Run the local HTTP/WebSocket API
  init     - Write a starter config file
  version  - Print version information

Typical use: dealcoach coach --target 25000 --walk 25800 --state TX`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
}

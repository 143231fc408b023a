// Type command group for the shelf CLI.
package main

import "github.com/spf13/cobra"

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Manage asset types",
}

func init() {
	typeCmd.AddCommand(typeCreateCmd)
	typeCmd.AddCommand(typeListCmd)
	typeCmd.AddCommand(typeShowCmd)
	typeCmd.AddCommand(typeDeleteCmd)
	typeCmd.AddCommand(typeCountCmd)
}

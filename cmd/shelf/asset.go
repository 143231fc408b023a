// Asset command group for the shelf CLI.
package main

import "github.com/spf13/cobra"

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage asset records",
}

func init() {
	assetCmd.AddCommand(assetAddCmd)
	assetCmd.AddCommand(assetGetCmd)
	assetCmd.AddCommand(assetListCmd)
	assetCmd.AddCommand(assetDeleteCmd)
	assetCmd.AddCommand(assetCountCmd)
}

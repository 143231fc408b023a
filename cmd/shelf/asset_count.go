// Asset count command reports the number of records of a type.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assetCountType string

var assetCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count records of an asset type",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, reg, mgr, err := openManagers()
		if err != nil {
			return err
		}
		defer store.Close()

		at, err := lookupType(reg, 0, assetCountType, false)
		if err != nil {
			return err
		}
		n, err := mgr.Count(at, nil)
		if err != nil {
			return fmt.Errorf("count assets: %w", err)
		}
		if flagJSON {
			return printJSON(map[string]int{"count": n})
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	assetCountCmd.Flags().StringVar(&assetCountType, "type", "", "asset type name (required)")
	_ = assetCountCmd.MarkFlagRequired("type")
}

// Asset delete command removes one record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

var (
	assetDeleteType string
	assetDeleteID   int64
)

var assetDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one asset record",
	Long: `Delete removes a record of the given type by id. Records of the
super-type chain linked from it are kept.

Example:
  shelf asset delete --type Book --id 7`,
	RunE: runAssetDelete,
}

func init() {
	assetDeleteCmd.Flags().StringVar(&assetDeleteType, "type", "", "asset type name (required)")
	assetDeleteCmd.Flags().Int64Var(&assetDeleteID, "id", 0, "record id (required)")
	_ = assetDeleteCmd.MarkFlagRequired("type")
	_ = assetDeleteCmd.MarkFlagRequired("id")
}

func runAssetDelete(cmd *cobra.Command, args []string) error {
	store, reg, mgr, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	at, err := lookupType(reg, 0, assetDeleteType, false)
	if err != nil {
		return err
	}
	if err := mgr.Delete(at, &types.Asset{ID: assetDeleteID}); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	fmt.Printf("Deleted %s record %d\n", at.Name, assetDeleteID)
	return nil
}

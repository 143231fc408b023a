// Type delete command removes an asset type and its records.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	typeDeleteID   int64
	typeDeleteName string
)

var typeDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an asset type",
	Long: `Delete removes an asset type from the catalog and drops its backing
table with all stored records.

Example:
  shelf type delete --name Book
  shelf type delete --id 3`,
	RunE: runTypeDelete,
}

func init() {
	typeDeleteCmd.Flags().Int64Var(&typeDeleteID, "id", 0, "type id")
	typeDeleteCmd.Flags().StringVar(&typeDeleteName, "name", "", "type name")
}

func runTypeDelete(cmd *cobra.Command, args []string) error {
	store, reg, _, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	at, err := lookupType(reg, typeDeleteID, typeDeleteName, false)
	if err != nil {
		return err
	}
	if err := reg.Delete(at); err != nil {
		return fmt.Errorf("delete type: %w", err)
	}
	fmt.Printf("Deleted type %q (id %d)\n", at.Name, at.ID)
	return nil
}

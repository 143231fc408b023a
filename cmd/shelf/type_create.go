// Type create command registers a new asset type.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

var (
	typeCreateName     string
	typeCreateColumns  []string
	typeCreateSuper    int64
	typeCreateBookable bool
	typeCreateSlave    bool
	typeCreateOwner    int64
)

var typeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new asset type",
	Long: `Create registers a new asset type and creates its backing table.

Each --column takes "Label:db_name:type" with optional ":required",
":unique" and ":ref=ID" suffixes. Types: text, number, integer, boolean,
datetime, date, asset, assetlist.

Example:
  shelf type create --name Book --column "Title:title:text:required" --column "Pages:pages:integer"
  shelf type create --name Room --bookable --column "Label:label:text:required"
  shelf type create --name Novel --super 1 --column "Genre:genre:text"`,
	RunE: runTypeCreate,
}

func init() {
	typeCreateCmd.Flags().StringVar(&typeCreateName, "name", "", "name of the new type (required)")
	typeCreateCmd.Flags().StringArrayVar(&typeCreateColumns, "column", nil, "column spec, repeatable")
	typeCreateCmd.Flags().Int64Var(&typeCreateSuper, "super", 0, "id of the super type to extend")
	typeCreateCmd.Flags().BoolVar(&typeCreateBookable, "bookable", false, "create a booking companion type")
	typeCreateCmd.Flags().BoolVar(&typeCreateSlave, "slave", false, "mark the type as a slave type")
	typeCreateCmd.Flags().Int64Var(&typeCreateOwner, "owner", 0, "id of the owning type for a slave type")
	_ = typeCreateCmd.MarkFlagRequired("name")
}

func runTypeCreate(cmd *cobra.Command, args []string) error {
	cols := make([]types.Column, 0, len(typeCreateColumns))
	for _, spec := range typeCreateColumns {
		c, err := parseColumnSpec(spec)
		if err != nil {
			return err
		}
		cols = append(cols, c)
	}

	store, reg, _, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	at, err := reg.Create(&types.AssetType{
		Name:        typeCreateName,
		Columns:     cols,
		SuperTypeID: typeCreateSuper,
		IsSlave:     typeCreateSlave,
		OwnerID:     typeCreateOwner,
		Bookable:    typeCreateBookable,
	})
	if err != nil {
		return fmt.Errorf("create type: %w", err)
	}

	if flagJSON {
		return printJSON(at)
	}
	fmt.Printf("Created type %q (id %d, table %s)\n", at.Name, at.ID, at.TableName)
	if at.BookingTypeID > 0 {
		fmt.Printf("  booking companion: id %d\n", at.BookingTypeID)
	}
	return nil
}

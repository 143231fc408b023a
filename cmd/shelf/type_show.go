// Type show command prints one asset type in full.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	typeShowID     int64
	typeShowName   string
	typeShowExtend bool
)

var typeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one asset type",
	Long: `Show prints a single asset type with its column declarations.
With --extend, columns inherited from the super-type chain are included.

Example:
  shelf type show --name Book
  shelf type show --id 3 --extend --json`,
	RunE: runTypeShow,
}

func init() {
	typeShowCmd.Flags().Int64Var(&typeShowID, "id", 0, "type id")
	typeShowCmd.Flags().StringVar(&typeShowName, "name", "", "type name")
	typeShowCmd.Flags().BoolVar(&typeShowExtend, "extend", false, "include inherited columns")
}

func runTypeShow(cmd *cobra.Command, args []string) error {
	store, reg, _, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	at, err := lookupType(reg, typeShowID, typeShowName, typeShowExtend)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(at)
	}

	fmt.Printf("ID:        %d\n", at.ID)
	fmt.Printf("Name:      %s\n", at.Name)
	fmt.Printf("Table:     %s\n", at.TableName)
	fmt.Printf("Created:   %s\n", at.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", at.UpdatedAt.Format("2006-01-02 15:04:05"))
	if at.SuperTypeID > 0 {
		fmt.Printf("Super:     %d\n", at.SuperTypeID)
	}
	if at.IsSlave {
		fmt.Printf("Slave of:  %d\n", at.OwnerID)
	}
	if at.Bookable {
		fmt.Printf("Bookings:  type %d\n", at.BookingTypeID)
	}
	fmt.Println("Columns:")
	for _, c := range at.Columns {
		line := fmt.Sprintf("  %s (%s, %s)", c.Label, c.DBName, c.Type)
		if c.Required {
			line += " required"
		}
		if c.Unique {
			line += " unique"
		}
		if c.RefTypeID > 0 {
			line += fmt.Sprintf(" ref=%d", c.RefTypeID)
		}
		fmt.Println(line)
	}
	return nil
}

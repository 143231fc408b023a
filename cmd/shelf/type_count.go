// Type count command reports the number of registered asset types.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	typeCountNoChildren bool
	typeCountNoSlaves   bool
)

var typeCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count registered asset types",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, reg, _, err := openManagers()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := reg.Count(typeCountNoChildren, typeCountNoSlaves)
		if err != nil {
			return fmt.Errorf("count types: %w", err)
		}
		if flagJSON {
			return printJSON(map[string]int{"count": n})
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	typeCountCmd.Flags().BoolVar(&typeCountNoChildren, "no-children", false, "exclude types extending a super type")
	typeCountCmd.Flags().BoolVar(&typeCountNoSlaves, "no-slaves", false, "exclude slave types")
}

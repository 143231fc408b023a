// Type list command shows the registered asset types.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var typeListAll bool

var typeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered asset types",
	Long: `List shows the registered asset types. Owned slave types such as
booking companions are hidden unless --all is given.

Example:
  shelf type list
  shelf type list --all
  shelf type list --json`,
	RunE: runTypeList,
}

func init() {
	typeListCmd.Flags().BoolVar(&typeListAll, "all", false, "include owned slave types")
}

func runTypeList(cmd *cobra.Command, args []string) error {
	store, reg, _, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := reg.GetAll(!typeListAll)
	if err != nil {
		return fmt.Errorf("list types: %w", err)
	}

	if flagJSON {
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Println("No asset types registered.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLUMNS\tSUPER\tSLAVE\tBOOKABLE")
	fmt.Fprintln(w, "--\t----\t-------\t-----\t-----\t--------")
	for _, at := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%t\t%t\n",
			at.ID, at.Name, len(at.Columns), at.SuperTypeID, at.IsSlave, at.Bookable)
	}
	w.Flush()
	for _, line := range strings.Split(sb.String(), "\n") {
		if line != "" {
			fmt.Println(strings.TrimRight(line, " "))
		}
	}
	fmt.Printf("Total: %d type(s)\n", len(list))
	return nil
}

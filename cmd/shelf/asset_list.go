// Asset list command queries the records of a type.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	assetListType   string
	assetListLimit  int
	assetListOffset int
	assetListDepth  int
)

var assetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records of an asset type",
	Long: `List fetches the records of the given type, ordered by id.

Example:
  shelf asset list --type Book
  shelf asset list --type Book --limit 10 --offset 20
  shelf asset list --type Shelf --depth 1 --json`,
	RunE: runAssetList,
}

func init() {
	assetListCmd.Flags().StringVar(&assetListType, "type", "", "asset type name (required)")
	assetListCmd.Flags().IntVar(&assetListLimit, "limit", 0, "maximum number of results (0 = no limit)")
	assetListCmd.Flags().IntVar(&assetListOffset, "offset", 0, "number of records to skip")
	assetListCmd.Flags().IntVar(&assetListDepth, "depth", 0, "reference resolution depth")
	_ = assetListCmd.MarkFlagRequired("type")
}

func runAssetList(cmd *cobra.Command, args []string) error {
	store, reg, mgr, err := openManagers()
	if err != nil {
		return err
	}
	defer store.Close()

	at, err := lookupType(reg, 0, assetListType, false)
	if err != nil {
		return err
	}
	list, err := mgr.GetBatch(at, nil, nil, assetListOffset, assetListLimit, assetListDepth)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	if flagJSON {
		return printJSON(list)
	}

	if len(list) == 0 {
		fmt.Printf("No %s records found.\n", at.Name)
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, c := range at.Columns {
		header = append(header, strings.ToUpper(c.DBName))
	}
	header = append(header, "CREATED")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, a := range list {
		row := []string{fmt.Sprintf("%d", a.ID)}
		for _, c := range at.Columns {
			row = append(row, fmt.Sprintf("%v", a.Data[c.DBName]))
		}
		row = append(row, a.CreatedAt.Format("2006-01-02"))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	for _, line := range strings.Split(sb.String(), "\n") {
		if line != "" {
			fmt.Println(strings.TrimRight(line, " "))
		}
	}
	fmt.Printf("Total: %d record(s)\n", len(list))
	return nil
}

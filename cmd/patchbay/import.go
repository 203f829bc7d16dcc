// Import command for the patchbay CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagImportFamily string
	flagImportActor  string
)

var importCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Bulk-import links from a YAML manifest",
	Long: `Import link rows from a YAML manifest, creating providers, links,
optical equipment and ports as needed. Re-importing the same manifest is
a no-op. With --family, link names matching the family pattern are
registered in its uniqueness table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open manifest: %w", err)
		}
		defer f.Close()

		result, err := inventory.ImportLinks(cmd.Context(), f, flagImportFamily, flagImportActor)
		if err != nil {
			return err
		}

		fmt.Printf("imported %d links, %d entities created, %d ids registered\n",
			result.Links, result.Created, result.Registered)
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, "skipped:", e)
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d rows skipped", len(result.Errors))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&flagImportFamily, "family", "", "unique-id family to register link names in")
	importCmd.Flags().StringVar(&flagImportActor, "actor", "import", "actor recorded on created entities")
}

// Init command for the patchbay CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patchbay/internal/domain"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the patchbay databases",
	Long: `Initialize the record and graph databases. Opening the stores runs
the schema migrations and seeds the meta-type roots, so this command only
confirms the result and lists the registered entity types.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("patchbay initialized")
		fmt.Println("registered types:")
		for _, et := range domain.RegisteredTypes() {
			fmt.Printf("  %-16s %s (%s)\n", et.Slug, et.Label, et.DefaultMeta)
		}
		return nil
	},
}

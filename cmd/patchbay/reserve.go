// Reserve command for the patchbay CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagReserver string
	flagMessage  string
	flagCount    int
)

var reserveCmd = &cobra.Command{
	Use:   "reserve <family> [value]",
	Short: "Reserve identifiers in a family",
	Long: `Reserve a specific identifier, or with --count issue and reserve a
consecutive range from the family counter.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		family := args[0]

		if flagCount > 0 {
			if len(args) > 1 {
				return fmt.Errorf("--count and an explicit value are mutually exclusive")
			}
			values, err := inventory.ReserveRange(cmd.Context(), family, flagCount, flagReserver, flagMessage)
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Println(v)
			}
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("a value to reserve is required without --count")
		}
		uid, err := inventory.Reserve(cmd.Context(), family, args[1], flagReserver, flagMessage)
		if err != nil {
			return err
		}
		fmt.Printf("reserved %s in %s\n", uid.Value, uid.Family)
		return nil
	},
}

func init() {
	reserveCmd.Flags().StringVar(&flagReserver, "reserver", "cli", "who reserves the identifier")
	reserveCmd.Flags().StringVar(&flagMessage, "message", "", "reservation note")
	reserveCmd.Flags().IntVar(&flagCount, "count", 0, "reserve a range of this many new identifiers")
}

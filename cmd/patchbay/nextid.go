// Next-id command for the patchbay CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextIDCmd = &cobra.Command{
	Use:   "next-id <family>",
	Short: "Issue the next identifier from a family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := inventory.NextID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

// Generator management commands for the patchbay CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"patchbay/internal/domain"
)

var (
	flagGenPrefix   string
	flagGenSuffix   string
	flagGenBaseID   int64
	flagGenZeroFill bool
	flagGenLength   int
	flagActor       string
)

var generatorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Manage unique-id generators",
}

var generatorAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new unique-id family",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := &domain.Generator{
			Name:         args[0],
			BaseID:       flagGenBaseID,
			ZeroFill:     flagGenZeroFill,
			BaseIDLength: flagGenLength,
			Prefix:       flagGenPrefix,
			Suffix:       flagGenSuffix,
		}
		if err := inventory.CreateGenerator(cmd.Context(), gen, flagActor); err != nil {
			return err
		}
		fmt.Printf("generator %s registered, next id %s\n", gen.Name, gen.NextID)
		return nil
	},
}

var generatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered unique-id families",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gens, err := inventory.Generators(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tNEXT\tLAST\tPREFIX\tSUFFIX")
		for _, g := range gens {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", g.Name, g.NextID, g.LastID, g.Prefix, g.Suffix)
		}
		return w.Flush()
	},
}

func init() {
	generatorAddCmd.Flags().StringVar(&flagGenPrefix, "prefix", "", "identifier prefix")
	generatorAddCmd.Flags().StringVar(&flagGenSuffix, "suffix", "", "identifier suffix")
	generatorAddCmd.Flags().Int64Var(&flagGenBaseID, "base-id", 1, "starting counter value")
	generatorAddCmd.Flags().BoolVar(&flagGenZeroFill, "zero-fill", false, "left-pad the counter with zeros")
	generatorAddCmd.Flags().IntVar(&flagGenLength, "length", 0, "padded counter length")
	generatorAddCmd.Flags().StringVar(&flagActor, "actor", "cli", "actor recorded on the generator")

	generatorCmd.AddCommand(generatorAddCmd)
	generatorCmd.AddCommand(generatorListCmd)
}

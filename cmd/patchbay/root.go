// Root command for the patchbay CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"patchbay/internal/config"
	"patchbay/internal/graph"
	"patchbay/internal/records"
	"patchbay/internal/service"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// inventory is the global service instance, initialized on startup.
	inventory *service.Inventory

	// stores held for shutdown.
	recordStore records.Store
	graphStore  graph.Store
)

var rootCmd = &cobra.Command{
	Use:   "patchbay",
	Short: "Patchbay is a network inventory engine",
	Long: `Patchbay keeps a network inventory as a typed graph backed by
relational stores. It manages entity placement, physical connections,
and unique identifier families.`,
	PersistentPreRunE:  initInventory,
	PersistentPostRunE: closeInventory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: patchbay.yaml in the working directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generatorCmd)
	rootCmd.AddCommand(nextIDCmd)
	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(importCmd)
}

// initInventory loads config and opens the stores.
func initInventory(cmd *cobra.Command, args []string) error {
	// Version needs no stores.
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	recordStore, err = records.Open(cfg.Driver, cfg.RecordDSN())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	graphStore, err = graph.OpenSQLite(cfg.SQLiteGraph)
	if err != nil {
		recordStore.Close()
		return fmt.Errorf("open graph store: %w", err)
	}

	inventory = service.New(recordStore, graphStore, service.NewEventBus())
	return nil
}

// closeInventory releases store resources.
func closeInventory(cmd *cobra.Command, args []string) error {
	if graphStore != nil {
		graphStore.Close()
	}
	if recordStore != nil {
		recordStore.Close()
	}
	return nil
}

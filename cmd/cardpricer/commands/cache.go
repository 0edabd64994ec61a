package commands

import (
	"fmt"

	"cardpricer/lib/cliutil"
	"cardpricer/lib/pricestore"

	"github.com/spf13/cobra"
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects and manages the on-disk price cache.",
}

func openStore() *pricestore.Store {
	cfg := loadConfig()
	store, err := pricestore.Open(cfg.CachePath)
	if err != nil {
		cliutil.Fatal("failed to open price cache", err)
	}
	return store
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the cache location and entry count.",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		fmt.Printf("cache file: %s\n", store.Path())
		fmt.Printf("entries: %d\n", store.Len())
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drops every cached price table.",
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		before := store.Len()
		store.Clear()
		if err := store.Persist(); err != nil {
			cliutil.Fatal("failed to persist cleared cache", err)
		}
		fmt.Printf("cleared %d entries\n", before)
	},
}

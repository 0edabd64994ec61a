package commands

import (
	"fmt"

	"cardpricer/lib/cliutil"
	"cardpricer/lib/decklist"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean <path/to/cards.txt>",
	Short: "Rewrites a card list in place with quantities and set suffixes stripped.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := decklist.CleanFile(args[0]); err != nil {
			cliutil.Fatal("failed to clean card list", err)
		}
		fmt.Printf("cleaned %s\n", args[0])
	},
}

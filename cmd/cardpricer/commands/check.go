package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"cardpricer/lib/cliutil"
	"cardpricer/lib/config"
	"cardpricer/lib/decklist"
	"cardpricer/lib/pricestore"
	"cardpricer/lib/pricing"
	"cardpricer/lib/report"
	"cardpricer/lib/scrapers/cardmarket"

	"github.com/spf13/cobra"
)

var (
	checkInput     *string
	checkLanguages *[]string
	checkWorkers   *int
	checkHtml      *string
	checkEmail     *bool
)

func init() {
	checkInput = checkCmd.Flags().StringP("input", "i", "cards.txt", "Card list file, one card per line.")
	checkLanguages = checkCmd.Flags().StringSlice("lang", nil, "Languages to query, overriding the config (e.g. en,es).")
	checkWorkers = checkCmd.Flags().Int("workers", 0, "Concurrent lookups, overriding the config.")
	checkHtml = checkCmd.Flags().String("html", "", "Also write the report to this HTML file.")
	checkEmail = checkCmd.Flags().Bool("email", false, "E-mail the report using the config's smtp settings.")
	rootCmd.AddCommand(checkCmd)
}

func loadConfig() config.Config {
	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file, using defaults", "path", *configPath)
		return config.Default()
	}
	if err != nil {
		cliutil.Fatal("failed to load config", err)
	}
	return cfg
}

var checkCmd = &cobra.Command{
	Use:   "check [-i <path/to/cards.txt>]",
	Short: "Prices every card in the input list and prints a grouped report.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		if len(*checkLanguages) > 0 {
			if len(*checkLanguages) == 1 && (*checkLanguages)[0] == "all" {
				cfg.Languages = cardmarket.AllLanguages()
			} else {
				cfg.Languages = *checkLanguages
			}
		}
		if *checkWorkers > 0 {
			cfg.Workers = *checkWorkers
		}
		if err := cfg.Validate(); err != nil {
			cliutil.Fatal("invalid configuration", err)
		}

		rawLines, err := decklist.ReadFileRaw(*checkInput)
		if err != nil {
			cliutil.Fatal("failed to read card list", err)
		}
		names := decklist.Names(rawLines)
		if len(names) == 0 {
			cliutil.Fatal("card list is empty", errors.New(*checkInput))
		}

		store, err := pricestore.Open(cfg.CachePath)
		if err != nil {
			cliutil.Fatal("failed to open price cache", err)
		}
		slog.Info("price cache ready", "path", store.Path(), "entries", store.Len())

		pool, err := cardmarket.NewSessionPool(cfg.Workers, cfg.ScraperOptions())
		if err != nil {
			cliutil.Fatal("failed to initialize scraper sessions", err)
		}

		runner := &pricing.Runner{
			Resolver: &pricing.Resolver{
				Source:       pool,
				Cache:        store,
				Workers:      cfg.Workers,
				QueryTimeout: cfg.RequestTimeout(),
			},
			Languages:          cfg.Languages,
			Sellers:            cfg.Sellers,
			PreferredSeller:    cfg.PreferredSeller,
			PreferredTolerance: cfg.PreferredTolerance,
			LowThreshold:       cfg.LowThreshold,
			HighThreshold:      cfg.HighThreshold,
		}

		start := time.Now()
		records, totals := runner.Run(ctx, names)
		duration := time.Since(start)

		r := report.New(cfg.Languages, cfg.Sellers, rawLines, records, totals, duration,
			cfg.LowThreshold, cfg.HighThreshold)
		r.RenderText(os.Stdout)

		if *checkHtml != "" {
			if err := r.WriteHTML(*checkHtml); err != nil {
				slog.Error("failed to write html report", "err", err.Error())
			}
		}
		if *checkEmail {
			if err := r.Email(cfg.Email); err != nil {
				slog.Error("failed to email report", "err", err.Error())
			}
		}

		if err := store.Persist(); err != nil {
			cliutil.Fatal("failed to persist price cache", err)
		}
	},
}

// Package report renders a finished pricing run for humans: grouped
// console tables, a standalone HTML page, and optional e-mail delivery.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cardpricer/lib/pricing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

type Report struct {
	Languages []string
	// Sellers in configuration order; the HTML matrix renders one column
	// per entry.
	Sellers []string
	// Input is the decklist as read, reproduced in the HTML appendix.
	Input    []string
	Records  []pricing.Record
	Totals   pricing.Totals
	Duration time.Duration

	LowThreshold  decimal.Decimal
	HighThreshold decimal.Decimal
}

func New(languages, sellers, input []string, records []pricing.Record, totals pricing.Totals, duration time.Duration, low, high decimal.Decimal) *Report {
	return &Report{
		Languages:     languages,
		Sellers:       sellers,
		Input:         input,
		Records:       records,
		Totals:        totals,
		Duration:      duration,
		LowThreshold:  low,
		HighThreshold: high,
	}
}

func (r *Report) languagesLabel() string {
	upper := make([]string, len(r.Languages))
	for i, lang := range r.Languages {
		upper[i] = strings.ToUpper(lang)
	}
	return strings.Join(upper, "+")
}

// bucket returns the records of one classification re-sorted by
// (seller, name) for display. Record order inside r.Records stays by
// insertion index; sorting here is presentation only.
func (r *Report) bucket(class pricing.Classification) []pricing.Record {
	var out []pricing.Record
	for _, record := range r.Records {
		if record.Class == class {
			out = append(out, record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Best.Seller != out[j].Best.Seller {
			return out[i].Best.Seller < out[j].Best.Seller
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type sellerTotal struct {
	Seller string
	Count  int
	Sum    decimal.Decimal
}

func sellerBreakdown(records []pricing.Record) []sellerTotal {
	byName := map[string]*sellerTotal{}
	for _, record := range records {
		if !record.Best.Found {
			continue
		}
		entry, ok := byName[record.Best.Seller]
		if !ok {
			entry = &sellerTotal{Seller: record.Best.Seller}
			byName[record.Best.Seller] = entry
		}
		entry.Count++
		entry.Sum = entry.Sum.Add(record.Best.Price)
	}

	out := make([]sellerTotal, 0, len(byName))
	for _, entry := range byName {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seller < out[j].Seller })
	return out
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if w != nil {
		t.SetOutputMirror(w)
	}
	return t
}

func pricedTable(w io.Writer, records []pricing.Record) table.Writer {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Card", "Price", "Seller"})
	for _, record := range records {
		t.AppendRow(table.Row{
			record.Index,
			record.Name,
			record.Best.Price.StringFixed(2) + " €",
			record.Best.Seller,
		})
	}
	return t
}

func notFoundTable(w io.Writer, records []pricing.Record) table.Writer {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Card", "Reason"})
	for _, record := range records {
		t.AppendRow(table.Row{record.Index, record.Name, record.Reason})
	}
	return t
}

// RenderText writes the full console report: summary, one table per
// non-empty bucket, per-seller breakdowns.
func (r *Report) RenderText(w io.Writer) {
	fmt.Fprintf(w, "Card Search Results (%s)\n", r.languagesLabel())
	fmt.Fprintf(w, "Total cards searched: %d\n", len(r.Records))
	fmt.Fprintf(w, "Cards not found: %d\n", r.Totals.NotFoundCount)
	fmt.Fprintf(w, "Total price: %s €\n", r.Totals.Grand().StringFixed(2))
	fmt.Fprintf(w, "Execution time: %.2f seconds\n", r.Duration.Seconds())

	if decklist := r.bucket(pricing.ClassDecklist); len(decklist) > 0 {
		fmt.Fprintf(w, "\nDecklist (<= %s €)\n", r.LowThreshold.StringFixed(2))
		pricedTable(w, decklist).Render()
		fmt.Fprintf(w, "Decklist total value: %s €\n", r.Totals.DecklistSum.StringFixed(2))
		renderBreakdown(w, decklist)
	}

	if expansion := r.bucket(pricing.ClassExpansion); len(expansion) > 0 {
		fmt.Fprintf(w, "\nExpansion (%s € - %s €)\n",
			r.LowThreshold.StringFixed(2), r.HighThreshold.StringFixed(2))
		pricedTable(w, expansion).Render()
		fmt.Fprintf(w, "Expansion total value: %s €\n", r.Totals.ExpansionSum.StringFixed(2))
		renderBreakdown(w, expansion)
	}

	if notFound := r.bucket(pricing.ClassNotFound); len(notFound) > 0 {
		fmt.Fprintf(w, "\nNot Found\n")
		notFoundTable(w, notFound).Render()
	}
}

func renderBreakdown(w io.Writer, records []pricing.Record) {
	breakdown := sellerBreakdown(records)
	if len(breakdown) == 0 {
		return
	}
	fmt.Fprintln(w, "Breakdown by seller:")
	for _, entry := range breakdown {
		fmt.Fprintf(w, "  %s: %d cards - %s €\n", entry.Seller, entry.Count, entry.Sum.StringFixed(2))
	}
}

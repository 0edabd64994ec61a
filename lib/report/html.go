package report

import (
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"cardpricer/lib/pricing"
)

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Card Search Results ({{.Languages}})</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
th { background: #eee; }
h2 { margin-top: 2em; }
.price-cell { text-align: center; }
.lowest-price { background-color: #d4edda; font-weight: bold; }
.not-found { color: #c0392b; }
ol.input-list { columns: 3; }
</style>
</head>
<body>
<h1>Card Search Results ({{.Languages}})</h1>
<p>
Generated: {{.Generated}}<br>
Total cards searched: {{.TotalCards}}<br>
Cards not found: {{.NotFound}}<br>
Total price: {{.TotalPrice}} €<br>
Execution time: {{.Duration}}
</p>

{{if .Decklist.Rows}}<h2>Decklist (&le; {{.LowThreshold}} €)</h2>
{{template "matrix" .Decklist}}
<p>Decklist total value: {{.DecklistTotal}} €</p>{{end}}

{{if .Expansion.Rows}}<h2>Expansion ({{.LowThreshold}} € - {{.HighThreshold}} €)</h2>
{{template "matrix" .Expansion}}
<p>Expansion total value: {{.ExpansionTotal}} €</p>{{end}}

{{if .NotFoundRows}}<h2>Not Found</h2>
<table>
<tr><th>#</th><th>Card</th><th>Reason</th></tr>
{{range .NotFoundRows}}<tr><td>{{.Index}}</td><td>{{.Card}}</td><td class="not-found">{{.Reason}}</td></tr>
{{end}}</table>{{end}}

<h2>Input Cards List</h2>
<ol class="input-list">
{{range .Input}}<li>{{.}}</li>
{{end}}</ol>
</body>
</html>

{{define "matrix"}}<table>
<tr><th>#</th><th>Card</th>{{range .Sellers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr><td>{{.Index}}</td><td>{{.Card}}</td>{{range .Cells}}{{if not .Found}}<td class="price-cell not-found">-</td>{{else if .Winning}}<td class="price-cell lowest-price">{{.Price}} €</td>{{else}}<td class="price-cell">{{.Price}} €</td>{{end}}{{end}}</tr>
{{end}}</table>{{end}}
`))

type htmlCell struct {
	Price   string
	Found   bool
	Winning bool
}

type htmlRow struct {
	Index  int
	Card   string
	Reason string
	Cells  []htmlCell
}

type htmlMatrix struct {
	Sellers []string
	Rows    []htmlRow
}

type htmlData struct {
	Languages      string
	Generated      string
	TotalCards     int
	NotFound       int
	TotalPrice     string
	Duration       string
	LowThreshold   string
	HighThreshold  string
	Decklist       htmlMatrix
	DecklistTotal  string
	Expansion      htmlMatrix
	ExpansionTotal string
	NotFoundRows   []htmlRow
	Input          []string
}

// matrix expands each record's full price table into one cell per
// configured seller, in configuration order. The winning cell is the one
// the best offer came from; sellers without a price render as "-".
func (r *Report) matrix(records []pricing.Record) htmlMatrix {
	m := htmlMatrix{Sellers: r.Sellers}
	for _, record := range records {
		row := htmlRow{Index: record.Index, Card: record.Name}
		for _, seller := range r.Sellers {
			quote, ok := record.Table[seller]
			if !ok || !quote.Found {
				row.Cells = append(row.Cells, htmlCell{})
				continue
			}
			row.Cells = append(row.Cells, htmlCell{
				Price:   quote.Price.StringFixed(2),
				Found:   true,
				Winning: record.Best.Found && seller == record.Best.Seller,
			})
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func notFoundRows(records []pricing.Record) []htmlRow {
	rows := make([]htmlRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, htmlRow{Index: record.Index, Card: record.Name, Reason: record.Reason})
	}
	return rows
}

// HTML renders the report as a standalone page.
func (r *Report) HTML() (string, error) {
	data := htmlData{
		Languages:      r.languagesLabel(),
		Generated:      time.Now().Format(time.RFC1123),
		TotalCards:     len(r.Records),
		NotFound:       r.Totals.NotFoundCount,
		TotalPrice:     r.Totals.Grand().StringFixed(2),
		Duration:       fmt.Sprintf("%.2f seconds", r.Duration.Seconds()),
		LowThreshold:   r.LowThreshold.StringFixed(2),
		HighThreshold:  r.HighThreshold.StringFixed(2),
		DecklistTotal:  r.Totals.DecklistSum.StringFixed(2),
		ExpansionTotal: r.Totals.ExpansionSum.StringFixed(2),
		Input:          r.Input,
	}

	data.Decklist = r.matrix(r.bucket(pricing.ClassDecklist))
	data.Expansion = r.matrix(r.bucket(pricing.ClassExpansion))
	data.NotFoundRows = notFoundRows(r.bucket(pricing.ClassNotFound))

	var out strings.Builder
	if err := htmlPage.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (r *Report) WriteHTML(path string) error {
	if !strings.HasSuffix(path, ".html") {
		path += ".html"
	}
	page, err := r.HTML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

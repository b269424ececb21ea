// Package renderer turns ledger views into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	ledger "github.com/belisario-afk/cakepop-ledger"
)

//go:embed templates/*.md
var templates embed.FS

const (
	// DailyDays is the length of the dashboard revenue series.
	DailyDays = 30
	// TopLimit is the number of products in the dashboard ranking.
	TopLimit = 5
)

// Dashboard is the data behind the dashboard page.
type Dashboard struct {
	Range      ledger.Range
	Currency   string
	Metrics    ledger.Metrics
	Daily      []ledger.DailyRevenue
	Top        []ledger.ProductVolume
	Categories []ledger.CategoryTotal
}

// NewDashboard computes the dashboard of d over r. The revenue series always
// covers the DailyDays days ending today, and the ranking all sales, whatever r.
func NewDashboard(d *ledger.Document, r ledger.Range, today ledger.Date, currency string) *Dashboard {
	sales := ledger.FilterSales(d.Sales, r)
	expenses := ledger.FilterExpenses(d.Expenses, r)
	return &Dashboard{
		Range:      r,
		Currency:   currency,
		Metrics:    d.Metrics(sales, expenses),
		Daily:      ledger.DailyRevenueSeries(d.Sales, today, DailyDays),
		Top:        ledger.TopProducts(d.Sales, d.Products, TopLimit),
		Categories: ledger.ExpensesByCategory(expenses),
	}
}

// Money formats m in the dashboard currency.
func (db *Dashboard) Money(m ledger.Money) string { return m.Format(db.Currency) }

// ActiveDays returns the days of the series with some revenue.
func (db *Dashboard) ActiveDays() []ledger.DailyRevenue {
	var days []ledger.DailyRevenue
	for _, d := range db.Daily {
		if !d.Revenue.IsZero() {
			days = append(days, d)
		}
	}
	return days
}

// RenderDashboard renders the dashboard to a markdown string.
func RenderDashboard(db *Dashboard) string {
	partials := map[string]string{
		"dashboard_metrics":    "dashboard_metrics.md",
		"dashboard_daily":      "dashboard_daily.md",
		"dashboard_top":        "dashboard_top.md",
		"dashboard_categories": "dashboard_categories.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, db)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

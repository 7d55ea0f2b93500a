package report

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"finmodel/pkg/models"
)

func samplePeriods() []models.CalculatedPeriodData {
	return []models.CalculatedPeriodData{
		{
			PeriodLabel:          "Month 1",
			Revenue:              1000000,
			Cogs:                 550000,
			GrossProfit:          450000,
			OperatingExpenses:    300000,
			Ebitda:               150000,
			Ebit:                 130000,
			NetProfit:            97500,
			OpeningCash:          200000,
			ClosingCash:          267500,
			ArDays:               3.6,
			InventoryDays:        4.9,
			ApDays:               3.8,
			WcDays:               4.7,
			WorkingCapitalValue:  140000,
			EstimatedTotalAssets: 877500,
		},
		{
			PeriodLabel: "Month 2",
			Revenue:     1100000,
			Cogs:        605000,
			GrossProfit: 495000,
			NetProfit:   105000,
			OpeningCash: 267500,
			ClosingCash: 340000,
		},
	}
}

func TestRenderMarkdownSections(t *testing.T) {
	md := RenderMarkdown(samplePeriods(), nil)

	for _, heading := range []string{
		"## Income Statement",
		"## Working Capital",
		"## Cash Flow",
		"## Balance Sheet Estimate",
		"## Consistency",
	} {
		if !strings.Contains(md, heading) {
			t.Errorf("Expected heading %q in the report", heading)
		}
	}

	if !strings.Contains(md, "| Revenue | 1000000.00 | 1100000.00 |") {
		t.Error("Expected the revenue row with both period columns")
	}
	// Day metrics render at one decimal, currency at two.
	if !strings.Contains(md, "| AR Days | 3.6 |") {
		t.Error("Expected AR days at one-decimal precision")
	}
	if !strings.Contains(md, "All periods reconcile.") {
		t.Error("Expected the clean-reconciliation note")
	}
	// Revenue 1,000,000 -> 1,100,000 over one period: 10% compound growth.
	if !strings.Contains(md, "Compound revenue growth: 10.00% per period.") {
		t.Error("Expected the compound revenue growth line")
	}
}

func TestRenderMarkdownSinglePeriodOmitsGrowth(t *testing.T) {
	md := RenderMarkdown(samplePeriods()[:1], nil)
	if strings.Contains(md, "Compound revenue growth") {
		t.Error("A single period has no growth rate to report")
	}
}

func TestRenderMarkdownIssues(t *testing.T) {
	issues := []models.ConsistencyIssue{
		{
			Type:        "CASH_RECONCILIATION",
			PeriodLabel: "Month 2",
			Message:     "closing cash does not equal opening cash + net change in cash",
			Severity:    models.SeverityCritical,
		},
	}

	md := RenderMarkdown(samplePeriods(), issues)
	if strings.Contains(md, "All periods reconcile.") {
		t.Error("A report with issues must not claim reconciliation")
	}
	if !strings.Contains(md, "CASH_RECONCILIATION") || !strings.Contains(md, "Month 2") {
		t.Error("Expected the issue line with type and period label")
	}
}

func TestRenderHTMLTables(t *testing.T) {
	md := RenderMarkdown(samplePeriods(), nil)
	html, err := RenderHTML(md)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse rendered HTML: %v", err)
	}

	// Four statement sections, four GFM tables.
	if n := doc.Find("table").Length(); n != 4 {
		t.Errorf("Expected 4 tables, got %d", n)
	}

	// Header row carries the period labels.
	headers := doc.Find("table").First().Find("th").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	if len(headers) != 3 || headers[1] != "Month 1" || headers[2] != "Month 2" {
		t.Errorf("Unexpected header row: %v", headers)
	}

	// The revenue row must survive the markdown -> HTML conversion intact.
	found := false
	doc.Find("td").Each(func(_ int, s *goquery.Selection) {
		if s.Text() == "Revenue" {
			found = true
		}
	})
	if !found {
		t.Error("Expected a 'Revenue' cell in the rendered HTML")
	}
}

func TestRenderMarkdownEmptyLabelFallback(t *testing.T) {
	periods := samplePeriods()
	periods[0].PeriodLabel = ""

	md := RenderMarkdown(periods, nil)
	if !strings.Contains(md, "Period 1") {
		t.Error("Expected a fallback label for an unlabeled period")
	}
}

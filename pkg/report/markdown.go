// Package report renders a derived forecast batch as a markdown summary and
// converts it to HTML for export surfaces. Rendering is read-only over the
// SSOT.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"finmodel/pkg/core/calc"
	"finmodel/pkg/models"
)

// line is one report row: a label plus an extractor over the SSOT.
type line struct {
	label  string
	value  func(p *models.CalculatedPeriodData) float64
	asDays bool
}

var incomeStatementLines = []line{
	{label: "Revenue", value: func(p *models.CalculatedPeriodData) float64 { return p.Revenue }},
	{label: "COGS", value: func(p *models.CalculatedPeriodData) float64 { return p.Cogs }},
	{label: "Gross Profit", value: func(p *models.CalculatedPeriodData) float64 { return p.GrossProfit }},
	{label: "Operating Expenses", value: func(p *models.CalculatedPeriodData) float64 { return p.OperatingExpenses }},
	{label: "EBITDA", value: func(p *models.CalculatedPeriodData) float64 { return p.Ebitda }},
	{label: "EBIT", value: func(p *models.CalculatedPeriodData) float64 { return p.Ebit }},
	{label: "Profit Before Tax", value: func(p *models.CalculatedPeriodData) float64 { return p.Pbt }},
	{label: "Income Tax", value: func(p *models.CalculatedPeriodData) float64 { return p.IncomeTax }},
	{label: "Net Profit", value: func(p *models.CalculatedPeriodData) float64 { return p.NetProfit }},
}

var cashFlowLines = []line{
	{label: "Operating Cash Flow", value: func(p *models.CalculatedPeriodData) float64 { return p.OperatingCashFlow }},
	{label: "Working Capital Change", value: func(p *models.CalculatedPeriodData) float64 { return p.WorkingCapitalChange }},
	{label: "Capital Expenditures", value: func(p *models.CalculatedPeriodData) float64 { return p.CapitalExpenditures }},
	{label: "Net Cash Flow Before Financing", value: func(p *models.CalculatedPeriodData) float64 { return p.NetCashFlowBeforeFinancing }},
	{label: "Cash Flow From Financing", value: func(p *models.CalculatedPeriodData) float64 { return p.CashFlowFromFinancing }},
	{label: "Opening Cash", value: func(p *models.CalculatedPeriodData) float64 { return p.OpeningCash }},
	{label: "Closing Cash", value: func(p *models.CalculatedPeriodData) float64 { return p.ClosingCash }},
	{label: "Funding Gap / Surplus", value: func(p *models.CalculatedPeriodData) float64 { return p.FundingGapOrSurplus }},
}

var balanceSheetLines = []line{
	{label: "Estimated Total Assets", value: func(p *models.CalculatedPeriodData) float64 { return p.EstimatedTotalAssets }},
	{label: "Estimated Total Liabilities", value: func(p *models.CalculatedPeriodData) float64 { return p.EstimatedTotalLiabilities }},
	{label: "Equity", value: func(p *models.CalculatedPeriodData) float64 { return p.Equity }},
	{label: "Balance Sheet Difference", value: func(p *models.CalculatedPeriodData) float64 { return p.BalanceSheetDifference }},
}

var workingCapitalLines = []line{
	{label: "Working Capital Value", value: func(p *models.CalculatedPeriodData) float64 { return p.WorkingCapitalValue }},
	{label: "AR Days", value: func(p *models.CalculatedPeriodData) float64 { return p.ArDays }, asDays: true},
	{label: "Inventory Days", value: func(p *models.CalculatedPeriodData) float64 { return p.InventoryDays }, asDays: true},
	{label: "AP Days", value: func(p *models.CalculatedPeriodData) float64 { return p.ApDays }, asDays: true},
	{label: "Cash Conversion Cycle", value: func(p *models.CalculatedPeriodData) float64 { return p.WcDays }, asDays: true},
}

// RenderMarkdown builds the full GFM report for a derived batch.
func RenderMarkdown(periods []models.CalculatedPeriodData, issues []models.ConsistencyIssue) string {
	var b strings.Builder

	b.WriteString("# Financial Forecast\n\n")

	writeSection(&b, "Income Statement", incomeStatementLines, periods)
	writeSection(&b, "Working Capital", workingCapitalLines, periods)
	writeSection(&b, "Cash Flow", cashFlowLines, periods)
	writeSection(&b, "Balance Sheet Estimate", balanceSheetLines, periods)

	if len(periods) > 1 {
		first := periods[0].Revenue
		last := periods[len(periods)-1].Revenue
		cagr := calc.CAGR(last, first, len(periods)-1) * 100
		fmt.Fprintf(&b, "Compound revenue growth: %.2f%% per period.\n\n", cagr)
	}

	b.WriteString("## Consistency\n\n")
	if len(issues) == 0 {
		b.WriteString("All periods reconcile.\n")
	} else {
		for _, issue := range issues {
			fmt.Fprintf(&b, "- **%s** [%s] %s: %s\n", issue.Severity, issue.Type, issue.PeriodLabel, issue.Message)
		}
	}

	return b.String()
}

// RenderHTML converts the markdown report to HTML. GFM tables are the whole
// point of the report, so the GFM extension is always on.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return buf.String(), nil
}

func writeSection(b *strings.Builder, title string, lines []line, periods []models.CalculatedPeriodData) {
	fmt.Fprintf(b, "## %s\n\n", title)

	b.WriteString("| Line Item |")
	for i := range periods {
		label := periods[i].PeriodLabel
		if label == "" {
			label = fmt.Sprintf("Period %d", i+1)
		}
		fmt.Fprintf(b, " %s |", label)
	}
	b.WriteString("\n|---|")
	for range periods {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, ln := range lines {
		fmt.Fprintf(b, "| %s |", ln.label)
		for i := range periods {
			v := ln.value(&periods[i])
			if ln.asDays {
				fmt.Fprintf(b, " %.1f |", v)
			} else {
				fmt.Fprintf(b, " %.2f |", v)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

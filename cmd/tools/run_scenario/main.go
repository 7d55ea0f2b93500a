// run_scenario derives a forecast from an HJSON scenario file and writes the
// markdown report. Useful for eyeballing a scenario without the API server.
package main

import (
	"flag"
	"fmt"
	"os"

	"finmodel/pkg/core/engine"
	"finmodel/pkg/core/fields"
	"finmodel/pkg/core/utils"
	"finmodel/pkg/core/worker"
	"finmodel/pkg/report"
)

func main() {
	scenarioPath := flag.String("scenario", "scenarios/sample_forecast.hjson", "Path to scenario HJSON file")
	outPath := flag.String("out", "", "Write the markdown report here (default stdout)")
	configPath := flag.String("config", "config/engine.yaml", "Engine config file")
	flag.Parse()

	if err := engine.LoadConfig(*configPath); err != nil {
		fmt.Printf("[WARNING] engine config not loaded (%v), using defaults\n", err)
	}

	raw, err := os.ReadFile(*scenarioPath)
	if err != nil {
		fmt.Printf("[FATAL] read scenario: %v\n", err)
		os.Exit(1)
	}

	var req worker.DeriveRequest
	if err := utils.ParseHJSONToStruct(string(raw), &req); err != nil {
		fmt.Printf("[FATAL] parse scenario: %v\n", err)
		os.Exit(1)
	}

	if errs := fields.ValidateAllFields(req.PeriodsInputDataRaw); len(errs) > 0 {
		for _, e := range errs {
			for key, msg := range e.Fields {
				fmt.Printf("[VALIDATION] period %d, %s: %s\n", e.Period, key, msg)
			}
		}
		os.Exit(1)
	}

	results, err := engine.DeriveAll(req.PeriodsInputDataRaw, req.PeriodTypeLabel)
	if err != nil {
		fmt.Printf("[FATAL] derive: %v\n", err)
		os.Exit(1)
	}

	issues := engine.ValidateSequenceConsistency(results)
	markdown := report.RenderMarkdown(results, issues)

	if *outPath == "" {
		fmt.Print(markdown)
	} else {
		if err := os.WriteFile(*outPath, []byte(markdown), 0644); err != nil {
			fmt.Printf("[FATAL] write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[DONE] report written to %s (%d periods, %d issues)\n", *outPath, len(results), len(issues))
	}
}

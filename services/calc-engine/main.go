package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"finmodel/pkg/core/engine"
	"finmodel/pkg/core/utils"
	"finmodel/pkg/core/worker"
)

func main() {
	mode := flag.String("mode", "derive", "Mode: derive or check")
	dataStr := flag.String("data", "", "JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	switch *mode {
	case "derive":
		runDerive(*dataStr)
	case "check":
		runCheck(*dataStr)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runDerive(payload string) {
	var req worker.DeriveRequest
	if _, err := utils.SmartParse(payload, &req); err != nil {
		fmt.Printf("Error parsing data: %v\n", err)
		os.Exit(1)
	}

	resp := worker.Derive(req)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !resp.Success {
		os.Exit(1)
	}
}

func runCheck(payload string) {
	var req worker.DeriveRequest
	if _, err := utils.SmartParse(payload, &req); err != nil {
		fmt.Printf("Error parsing data: %v\n", err)
		os.Exit(1)
	}

	resp := worker.Derive(req)
	if !resp.Success {
		fmt.Printf("Error: derivation failed: %s\n", resp.Error)
		os.Exit(1)
	}

	issues := engine.ValidateSequenceConsistency(resp.Data)
	if len(issues) == 0 {
		fmt.Println("Success: all periods reconcile")
		return
	}
	for _, issue := range issues {
		fmt.Printf("Error: %s [%s] %s: %s\n", issue.Severity, issue.Type, issue.PeriodLabel, issue.Message)
	}
	os.Exit(1)
}

// Package analysis exposes the standalone investment calculators over HTTP.
package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"finmodel/pkg/core/utils"
	"finmodel/pkg/core/worker"
)

// HandleCalculate routes a calculation request (NPV, IRR, PAYBACK, BREAKEVEN,
// PROJECTION, BATCH, CLEANUP) to the calculation engine.
func HandleCalculate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req worker.CalcRequest
	if _, err := utils.SmartParse(string(body), &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fmt.Printf("[ANALYSIS] calculate type=%s\n", req.Type)
	resp := worker.Calculate(req)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("[WARNING] response encode failed: %v\n", err)
	}
}

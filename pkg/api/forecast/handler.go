// Package forecast exposes the derivation engine over HTTP: derive,
// validate, consistency-check, report, and stored-run retrieval.
package forecast

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"finmodel/pkg/core/engine"
	"finmodel/pkg/core/fields"
	"finmodel/pkg/core/store"
	"finmodel/pkg/core/utils"
	"finmodel/pkg/core/worker"
	"finmodel/pkg/models"
	"finmodel/pkg/report"
)

var runStore *store.RunStore

// InitHandler wires the optional run store. A nil store disables
// persistence; derivation still works.
func InitHandler(s *store.RunStore) {
	runStore = s
}

// deriveResult is the derive envelope plus the advisory extras the UI wants
// in the same roundtrip.
type deriveResult struct {
	worker.DeriveResponse
	Issues []models.ConsistencyIssue `json:"issues,omitempty"`
	RunID  string                    `json:"runId,omitempty"`
}

// HandleDerive runs input validation, derivation, and the consistency pass
// for a whole batch. Invalid input never reaches the engine.
func HandleDerive(w http.ResponseWriter, r *http.Request) {
	if done := cors(w, r); done {
		return
	}

	var req worker.DeriveRequest
	if !parseBody(w, r, &req) {
		return
	}

	if errs := fields.ValidateAllFields(req.PeriodsInputDataRaw); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success":          false,
			"error":            "input validation failed",
			"validationErrors": errs,
		})
		return
	}

	resp := worker.Derive(req)
	if !resp.Success {
		fmt.Printf("[FORECAST] derivation failed: %s\n", resp.Error)
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	result := deriveResult{
		DeriveResponse: resp,
		Issues:         engine.ValidateSequenceConsistency(resp.Data),
	}

	// Persistence is best effort; a storage failure never fails the request.
	if runStore != nil {
		rec := &store.RunRecord{
			ID:         uuid.New().String(),
			PeriodType: req.PeriodTypeLabel,
			Inputs:     req.PeriodsInputDataRaw,
			Results:    resp.Data,
			Issues:     result.Issues,
		}
		if err := runStore.Save(r.Context(), rec); err != nil {
			fmt.Printf("[WARNING] run save failed: %v\n", err)
		} else {
			result.RunID = rec.ID
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleValidate runs only the pre-derivation input validator.
func HandleValidate(w http.ResponseWriter, r *http.Request) {
	if done := cors(w, r); done {
		return
	}

	var req worker.DeriveRequest
	if !parseBody(w, r, &req) {
		return
	}

	errs := fields.ValidateAllFields(req.PeriodsInputDataRaw)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// consistencyRequest carries already-derived periods, e.g. after manual
// override edits in the UI.
type consistencyRequest struct {
	Data []models.CalculatedPeriodData `json:"data"`
}

// HandleConsistency re-checks the four invariants over a submitted batch.
func HandleConsistency(w http.ResponseWriter, r *http.Request) {
	if done := cors(w, r); done {
		return
	}

	var req consistencyRequest
	if !parseBody(w, r, &req) {
		return
	}

	issues := engine.ValidateSequenceConsistency(req.Data)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"consistent": len(issues) == 0,
		"issues":     issues,
	})
}

// HandleReport derives a batch and renders it as markdown + HTML.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if done := cors(w, r); done {
		return
	}

	var req worker.DeriveRequest
	if !parseBody(w, r, &req) {
		return
	}

	if errs := fields.ValidateAllFields(req.PeriodsInputDataRaw); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success":          false,
			"error":            "input validation failed",
			"validationErrors": errs,
		})
		return
	}

	resp := worker.Derive(req)
	if !resp.Success {
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	issues := engine.ValidateSequenceConsistency(resp.Data)
	markdown := report.RenderMarkdown(resp.Data, issues)
	html, err := report.RenderHTML(markdown)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"markdown": markdown,
		"html":     html,
	})
}

// HandleGetRun retrieves a persisted run by id.
func HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if done := cors(w, r); done {
		return
	}

	if runStore == nil {
		http.Error(w, "run persistence is not configured", http.StatusNotFound)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	rec, err := runStore.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, fmt.Sprintf("run not found: %s", id), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// cors applies the permissive headers the local UI needs and swallows
// preflight requests. Returns true when the request is already handled.
func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// parseBody reads the request body through the lenient codec. Producers on
// the ingestion side occasionally emit near-JSON; strict JSON still wins.
func parseBody(w http.ResponseWriter, r *http.Request, schema interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if _, err := utils.SmartParse(string(body), schema); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Printf("[WARNING] response encode failed: %v\n", err)
	}
}

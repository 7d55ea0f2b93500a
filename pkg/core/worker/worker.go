// Package worker is the request/response boundary that runs the engine off
// the interactive path. It defines the transport envelopes, routes auxiliary
// calculation requests, and keeps a small registry of background derivation
// jobs so a host can submit a batch and collect the response later. Fatal
// errors (including panics) never escape: they are caught here and surfaced
// as {success:false, error, stack} envelopes with no partial data.
package worker

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"finmodel/pkg/core/calc"
	"finmodel/pkg/core/engine"
	"finmodel/pkg/models"
)

// Calculation request types.
const (
	TypeNPV        = "NPV"
	TypeIRR        = "IRR"
	TypePayback    = "PAYBACK"
	TypeBreakeven  = "BREAKEVEN"
	TypeProjection = "PROJECTION"
	TypeBatch      = "BATCH"
	TypeCleanup    = "CLEANUP"
)

// DeriveRequest asks for a full multi-period derivation.
type DeriveRequest struct {
	PeriodsInputDataRaw []models.PeriodInput `json:"periodsInputDataRaw"`
	PeriodTypeLabel     string               `json:"periodTypeLabel"`
}

// DeriveResponse is the derivation envelope. Data is nil whenever Success is
// false: a fatal error aborts the whole batch.
type DeriveResponse struct {
	Success   bool                          `json:"success"`
	Data      []models.CalculatedPeriodData `json:"data,omitempty"`
	Error     string                        `json:"error,omitempty"`
	Stack     string                        `json:"stack,omitempty"`
	Timestamp int64                         `json:"timestamp"`
}

// CalcRequest is the auxiliary calculation envelope. Only the parameters of
// the requested type need to be set; BATCH carries nested requests.
type CalcRequest struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	CashFlows           []float64 `json:"cashFlows,omitempty"`
	DiscountRate        float64   `json:"discountRate,omitempty"`
	InitialInvestment   float64   `json:"initialInvestment,omitempty"`
	FixedCosts          float64   `json:"fixedCosts,omitempty"`
	VariableCostPerUnit float64   `json:"variableCostPerUnit,omitempty"`
	PricePerUnit        float64   `json:"pricePerUnit,omitempty"`
	InitialCashFlow     float64   `json:"initialCashFlow,omitempty"`
	GrowthRate          float64   `json:"growthRate,omitempty"`
	Periods             int       `json:"periods,omitempty"`

	Requests []CalcRequest `json:"requests,omitempty"`
}

// CalcResponse carries one calculation result, or the ordered results of a
// batch.
type CalcResponse struct {
	Success   bool           `json:"success"`
	Type      string         `json:"type"`
	ID        string         `json:"id,omitempty"`
	Result    interface{}    `json:"result,omitempty"`
	Results   []CalcResponse `json:"results,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Derive validates nothing (the validation surface is separate) but
// guarantees atomicity: any error or panic yields a failure envelope and no
// data.
func Derive(req DeriveRequest) (resp DeriveResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = DeriveResponse{
				Success:   false,
				Error:     fmt.Sprintf("derivation panic: %v", r),
				Stack:     string(debug.Stack()),
				Timestamp: nowMillis(),
			}
		}
	}()

	data, err := engine.DeriveAll(req.PeriodsInputDataRaw, req.PeriodTypeLabel)
	if err != nil {
		return DeriveResponse{Success: false, Error: err.Error(), Timestamp: nowMillis()}
	}
	return DeriveResponse{Success: true, Data: data, Timestamp: nowMillis()}
}

// Calculate routes one auxiliary calculation request.
func Calculate(req CalcRequest) CalcResponse {
	resp := CalcResponse{Type: req.Type, ID: req.ID, Timestamp: nowMillis()}

	fail := func(err error) CalcResponse {
		resp.Success = false
		resp.Error = err.Error()
		return resp
	}

	switch req.Type {
	case TypeNPV:
		result, err := calc.NetPresentValue(req.CashFlows, req.DiscountRate, req.InitialInvestment)
		if err != nil {
			return fail(err)
		}
		resp.Result = result

	case TypeIRR:
		resp.Result = calc.InternalRateOfReturn(req.CashFlows, req.InitialInvestment)

	case TypePayback:
		result, err := calc.PaybackPeriod(req.CashFlows, req.InitialInvestment)
		if err != nil {
			return fail(err)
		}
		resp.Result = result

	case TypeBreakeven:
		result, err := calc.Breakeven(req.FixedCosts, req.VariableCostPerUnit, req.PricePerUnit)
		if err != nil {
			return fail(err)
		}
		resp.Result = result

	case TypeProjection:
		result, err := calc.ProjectCashFlows(req.InitialCashFlow, req.GrowthRate, req.DiscountRate, req.Periods)
		if err != nil {
			return fail(err)
		}
		resp.Result = result

	case TypeBatch:
		// Fan out and return results tagged by type, preserving order.
		results := make([]CalcResponse, 0, len(req.Requests))
		for _, sub := range req.Requests {
			results = append(results, Calculate(sub))
		}
		resp.Results = results

	case TypeCleanup:
		// No-op acknowledgment: the engine holds no per-call state.

	default:
		return fail(fmt.Errorf("Unknown calculation type: %s", req.Type))
	}

	resp.Success = true
	return resp
}

// =============================================================================
// BACKGROUND JOB REGISTRY
// =============================================================================

// job is one submitted derivation and, once finished, its response.
type job struct {
	response  DeriveResponse
	done      bool
	updatedAt time.Time
}

// Manager runs derivations in background goroutines and keeps finished
// responses until they are collected or expire. Cancellation mid-derivation
// is not meaningful (periods derive in well under a millisecond); stale
// responses are simply discarded by the cleanup loop.
type Manager struct {
	jobs map[string]*job
	mu   sync.RWMutex
	ttl  time.Duration
}

var (
	instance *Manager
	once     sync.Once
)

// GetManager returns the process-wide manager.
func GetManager() *Manager {
	once.Do(func() {
		instance = &Manager{
			jobs: make(map[string]*job),
			ttl:  10 * time.Minute,
		}
		go instance.cleanupLoop(time.Minute)
	})
	return instance
}

// Submit starts a derivation in the background and returns its job id.
func (m *Manager) Submit(req DeriveRequest) string {
	id := uuid.New().String()

	m.mu.Lock()
	m.jobs[id] = &job{updatedAt: time.Now()}
	m.mu.Unlock()

	go func() {
		resp := Derive(req)
		m.mu.Lock()
		if j, ok := m.jobs[id]; ok {
			j.response = resp
			j.done = true
			j.updatedAt = time.Now()
		}
		m.mu.Unlock()
	}()

	return id
}

// Result returns the response for id. ok is false while the job is still
// running or when the id is unknown (expired or never submitted).
func (m *Manager) Result(id string) (DeriveResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, exists := m.jobs[id]
	if !exists || !j.done {
		return DeriveResponse{}, false
	}
	return j.response, true
}

// Discard drops a job regardless of state.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		m.mu.Lock()
		for id, j := range m.jobs {
			if time.Since(j.updatedAt) > m.ttl {
				delete(m.jobs, id)
			}
		}
		m.mu.Unlock()
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

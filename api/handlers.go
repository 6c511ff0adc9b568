/*
handlers.go - HTTP API handlers for the payroll deduction estimator

PURPOSE:
  Exposes the weekly deduction calculator via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the payroll package.

ENDPOINTS:
  Deductions:
    POST   /api/deductions              Calculate one week (recorded)
    POST   /api/deductions/compare      Same week under both modes (recorded)
    GET    /api/calculations            Calculation audit log

  Constant sets:
    GET    /api/constant-sets           Built-in and stored sets
    POST   /api/constant-sets           Create or replace a stored set
    GET    /api/constant-sets/{id}      One set
    DELETE /api/constant-sets/{id}      Remove a stored set

  Scenarios:
    GET    /api/scenarios               Sample earners under both modes

  Health:
    GET    /healthz

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Constant sets and calculation log
  - Factory: JSON to ConstantSet conversion
  - Cache: Memoized breakdowns (optional)
  - One Calculator per constant set, rebuilt when a set is replaced;
    cache keys carry a fingerprint of the set's contents

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (negative earnings and bad rates are rejected here;
     the calculator itself never validates)
  3. Look up the calculator, consult the cache, calculate
  4. Record the calculation
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Constant set not found
  - 409: Deleting the default set
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/cache"
	"github.com/warp/paycalc/factory"
	"github.com/warp/paycalc/generic"
	"github.com/warp/paycalc/payroll"
	"github.com/warp/paycalc/store/sqlite"
	"go.uber.org/zap"
)

// maxRoundPlaces bounds the "round" request field.
const maxRoundPlaces = 10

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Factory    *factory.ConstantSetFactory
	Cache      cache.Cache
	Logger     *zap.Logger
	DefaultSet string

	mu           sync.RWMutex
	calculators  map[string]*payroll.Calculator
	fingerprints map[string]string
}

// NewHandler creates a handler serving every registered constant set.
// A nil cache disables caching; a nil logger discards logs.
func NewHandler(store *sqlite.Store, c cache.Cache, logger *zap.Logger, defaultSet string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSet == "" {
		defaultSet = payroll.DefaultConstantSetID
	}
	h := &Handler{
		Store:        store,
		Factory:      factory.NewConstantSetFactory(),
		Cache:        c,
		Logger:       logger,
		DefaultSet:   defaultSet,
		calculators:  make(map[string]*payroll.Calculator),
		fingerprints: make(map[string]string),
	}
	for _, id := range payroll.ConstantSetIDs() {
		if err := h.install(payroll.MustLookupConstantSet(id)); err != nil {
			logger.Error("skipping built-in constant set", zap.String("id", id), zap.Error(err))
		}
	}
	return h
}

// InstallConstantSet makes cs available by its id, replacing any set with
// the same id. Used by the constants file watcher. On error the previous set
// stays active.
func (h *Handler) InstallConstantSet(cs payroll.ConstantSet) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.install(cs); err != nil {
		return err
	}
	h.Logger.Info("constant set installed", zap.String("id", cs.ID), zap.String("fingerprint", h.fingerprints[cs.ID]))
	return nil
}

// install requires h.mu held for writing (or exclusive access). Nothing is
// replaced unless the set can be fingerprinted.
func (h *Handler) install(cs payroll.ConstantSet) error {
	data, err := h.Factory.MarshalJSON(cs)
	if err != nil {
		return fmt.Errorf("failed to fingerprint constant set %q: %w", cs.ID, err)
	}
	h.calculators[cs.ID] = payroll.NewCalculator(cs)
	h.fingerprints[cs.ID] = cache.Fingerprint(data)
	return nil
}

// LoadConstantSets loads stored sets from the database. Stored sets take
// precedence over built-in sets with the same id.
func (h *Handler) LoadConstantSets(ctx context.Context) error {
	records, err := h.Store.ListConstantSets(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range records {
		cs, err := h.Factory.ParseJSON([]byte(r.ConfigJSON))
		if err == nil {
			err = h.install(cs)
		}
		if err != nil {
			h.Logger.Warn("skipping invalid stored constant set", zap.String("id", r.ID), zap.Error(err))
		}
	}
	return nil
}

// calculator returns the calculator for id ("" means the default set) and a
// cache namespace that changes whenever the set is replaced.
func (h *Handler) calculator(id string) (*payroll.Calculator, string, error) {
	if id == "" {
		id = h.DefaultSet
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	calc, ok := h.calculators[id]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", generic.ErrConstantSetNotFound, id)
	}
	return calc, id + "@" + h.fingerprints[id], nil
}

// =============================================================================
// DEDUCTION HANDLERS
// =============================================================================

// CalculateDeductions computes and records one week's deductions.
func (h *Handler) CalculateDeductions(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	places, err := roundPlaces(req.Round)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}
	in, err := weeklyInput(req.TaxableWeekly, req.NonTaxableWeekly, req.Mode, req.UnionDuesRate)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}

	calc, cacheNS, err := h.calculator(req.ConstantSetID)
	if err != nil {
		writeDomainError(w, "Unknown constant set", err)
		return
	}
	setID := calc.Constants().ID

	ctx := r.Context()
	breakdown, cached := h.cachedCalculate(ctx, calc, cacheNS, in, req.UnionDuesRate)

	record, err := h.recordCalculation(ctx, setID, in, req.UnionDuesRate, breakdown)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record calculation", err)
		return
	}

	h.Logger.Debug("calculated deductions",
		zap.String("id", record.ID),
		zap.String("constant_set", setID),
		zap.String("mode", record.Mode),
		zap.Bool("cached", cached),
	)

	dto := toCalculationDTO(record, breakdown, places)
	dto.Cached = cached
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) cachedCalculate(ctx context.Context, calc *payroll.Calculator, cacheNS string, in payroll.WeeklyInput, duesRate *decimal.Decimal) (payroll.DeductionBreakdown, bool) {
	if h.Cache == nil {
		return calc.Calculate(in, duesRate), false
	}
	key := cache.Key(cacheNS, in, duesRate)
	if b, ok := h.Cache.Get(ctx, key); ok {
		return b, true
	}
	b := calc.Calculate(in, duesRate)
	if err := h.Cache.Set(ctx, key, b); err != nil {
		h.Logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return b, false
}

// recordCalculation appends one served breakdown to the audit log.
func (h *Handler) recordCalculation(ctx context.Context, setID string, in payroll.WeeklyInput, duesRate *decimal.Decimal, b payroll.DeductionBreakdown) (sqlite.CalculationRecord, error) {
	breakdownJSON, err := json.Marshal(b)
	if err != nil {
		return sqlite.CalculationRecord{}, fmt.Errorf("failed to encode breakdown: %w", err)
	}

	record := sqlite.CalculationRecord{
		ID:               uuid.NewString(),
		ConstantSetID:    setID,
		Mode:             string(in.Mode),
		TaxableWeekly:    in.TaxableWeekly,
		NonTaxableWeekly: in.NonTaxableWeekly,
		UnionDuesRate:    duesRate,
		BreakdownJSON:    string(breakdownJSON),
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.Store.SaveCalculation(ctx, record); err != nil {
		return sqlite.CalculationRecord{}, err
	}
	return record, nil
}

// CompareModes returns the same week under both modes and their difference.
// Each mode's breakdown is recorded like a single calculation.
func (h *Handler) CompareModes(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	places, err := roundPlaces(req.Round)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}
	in, err := weeklyInput(req.TaxableWeekly, req.NonTaxableWeekly, "", req.UnionDuesRate)
	if err != nil {
		writeDomainError(w, "Invalid request", err)
		return
	}

	calc, cacheNS, err := h.calculator(req.ConstantSetID)
	if err != nil {
		writeDomainError(w, "Unknown constant set", err)
		return
	}
	setID := calc.Constants().ID

	ctx := r.Context()
	modes := payroll.Modes()
	dto := CompareDTO{
		ConstantSetID:    setID,
		TaxableWeekly:    in.TaxableWeekly.String(),
		NonTaxableWeekly: in.NonTaxableWeekly.String(),
		Modes:            make(map[string]BreakdownDTO, len(modes)),
		CalculationIDs:   make(map[string]string, len(modes)),
	}
	results := make(map[payroll.Mode]payroll.DeductionBreakdown, len(modes))
	for _, mode := range modes {
		in.Mode = mode
		b, _ := h.cachedCalculate(ctx, calc, cacheNS, in, req.UnionDuesRate)
		record, err := h.recordCalculation(ctx, setID, in, req.UnionDuesRate, b)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to record calculation", err)
			return
		}
		results[mode] = b
		dto.Modes[string(mode)] = toBreakdownDTO(b, places)
		dto.CalculationIDs[string(mode)] = record.ID
	}
	dto.Delta = toBreakdownDTO(subtractBreakdown(
		results[payroll.ModeAnnualized], results[payroll.ModeEarlyYear]), places)

	writeJSON(w, http.StatusOK, dto)
}

// ListCalculations returns the audit log, newest first.
// Query: constantSetId (optional), limit (default 100).
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	records, err := h.Store.ListCalculations(r.Context(), r.URL.Query().Get("constantSetId"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}

	dtos := make([]CalculationDTO, 0, len(records))
	for _, rec := range records {
		var b payroll.DeductionBreakdown
		if err := json.Unmarshal([]byte(rec.BreakdownJSON), &b); err != nil {
			h.Logger.Warn("skipping unreadable calculation", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		dtos = append(dtos, toCalculationDTO(rec, b, DefaultRoundPlaces))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CONSTANT SET HANDLERS
// =============================================================================

// ListConstantSets returns every set the handler can calculate with.
func (h *Handler) ListConstantSets(w http.ResponseWriter, r *http.Request) {
	stored, err := h.Store.ListConstantSets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list constant sets", err)
		return
	}
	byID := make(map[string]sqlite.ConstantSetRecord, len(stored))
	for _, rec := range stored {
		byID[rec.ID] = rec
	}

	h.mu.RLock()
	ids := make([]string, 0, len(h.calculators))
	for id := range h.calculators {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)

	dtos := make([]ConstantSetDTO, 0, len(ids))
	for _, id := range ids {
		calc, _, err := h.calculator(id)
		if err != nil {
			continue
		}
		var rec *sqlite.ConstantSetRecord
		if sr, ok := byID[id]; ok {
			rec = &sr
		}
		dtos = append(dtos, h.toConstantSetDTO(calc.Constants(), rec))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetConstantSet returns a single constant set.
func (h *Handler) GetConstantSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	calc, _, err := h.calculator(id)
	if err != nil {
		writeDomainError(w, "Constant set not found", err)
		return
	}

	rec, err := h.Store.GetConstantSet(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get constant set", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toConstantSetDTO(calc.Constants(), rec))
}

// CreateConstantSet validates and stores a set, replacing any set with the
// same id.
func (h *Handler) CreateConstantSet(w http.ResponseWriter, r *http.Request) {
	var req factory.ConstantSetJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cs, err := h.Factory.FromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid constant set", err)
		return
	}

	// Store the normalized form so defaults are explicit.
	configJSON, err := h.Factory.MarshalJSON(cs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode constant set", err)
		return
	}

	ctx := r.Context()
	record := sqlite.ConstantSetRecord{
		ID:         cs.ID,
		Name:       cs.Name,
		TaxYear:    cs.TaxYear,
		Province:   cs.Province,
		ConfigJSON: string(configJSON),
	}
	if err := h.Store.SaveConstantSet(ctx, record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save constant set", err)
		return
	}

	saved, err := h.Store.GetConstantSet(ctx, cs.ID)
	if err != nil || saved == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload constant set", err)
		return
	}

	h.mu.Lock()
	err = h.install(cs)
	h.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to install constant set", err)
		return
	}

	h.Logger.Info("constant set saved", zap.String("id", cs.ID), zap.Int("version", saved.Version))
	writeJSON(w, http.StatusCreated, h.toConstantSetDTO(cs, saved))
}

// DeleteConstantSet removes a stored set. If a built-in set has the same id
// it becomes active again.
func (h *Handler) DeleteConstantSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	_, builtinErr := payroll.LookupConstantSet(id)
	isBuiltin := builtinErr == nil

	if id == h.DefaultSet && !isBuiltin {
		writeError(w, http.StatusConflict, "Cannot delete the default constant set", nil)
		return
	}

	if err := h.Store.DeleteConstantSet(r.Context(), id); err != nil {
		if generic.IsNotFound(err) && isBuiltin {
			writeError(w, http.StatusBadRequest, "Built-in constant sets cannot be deleted", err)
			return
		}
		writeDomainError(w, "Failed to delete constant set", err)
		return
	}

	h.mu.Lock()
	if isBuiltin {
		if err := h.install(payroll.MustLookupConstantSet(id)); err != nil {
			h.Logger.Error("failed to restore built-in constant set", zap.String("id", id), zap.Error(err))
		}
	} else {
		delete(h.calculators, id)
		delete(h.fingerprints, id)
	}
	h.mu.Unlock()

	h.Logger.Info("constant set deleted", zap.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HEALTH
// =============================================================================

// Pinger is implemented by caches that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports store and cache status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}

	cacheStatus, cacheEntries := "disabled", 0
	if h.Cache != nil {
		cacheStatus = "ok"
		if p, ok := h.Cache.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				cacheStatus = "unavailable"
			}
		}
		if l, ok := h.Cache.(interface{ Len() int }); ok {
			cacheEntries = l.Len()
		}
	}

	h.mu.RLock()
	ids := make([]string, 0, len(h.calculators))
	for id := range h.calculators {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Strings(ids)

	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", ConstantSets: ids, Cache: cacheStatus, CacheEntries: cacheEntries})
}

// =============================================================================
// HELPERS
// =============================================================================

// weeklyInput applies the boundary checks the calculator leaves to callers.
func weeklyInput(taxable *decimal.Decimal, nonTaxable decimal.Decimal, mode string, duesRate *decimal.Decimal) (payroll.WeeklyInput, error) {
	if taxable == nil {
		return payroll.WeeklyInput{}, &generic.InputError{Field: "taxableWeekly", Reason: "required"}
	}
	in := payroll.WeeklyInput{
		TaxableWeekly:    *taxable,
		NonTaxableWeekly: nonTaxable,
		Mode:             payroll.NormalizeMode(mode),
	}
	if err := in.Validate(); err != nil {
		return payroll.WeeklyInput{}, err
	}
	if duesRate != nil {
		if err := payroll.ValidateDuesRate(*duesRate); err != nil {
			return payroll.WeeklyInput{}, err
		}
	}
	return in, nil
}

func roundPlaces(p *int32) (int32, error) {
	if p == nil {
		return DefaultRoundPlaces, nil
	}
	if *p < 0 || *p > maxRoundPlaces {
		return 0, &generic.InputError{Field: "round", Value: strconv.Itoa(int(*p)), Reason: "must be between 0 and 10"}
	}
	return *p, nil
}

func toCalculationDTO(rec sqlite.CalculationRecord, b payroll.DeductionBreakdown, places int32) CalculationDTO {
	dto := CalculationDTO{
		ID:               rec.ID,
		ConstantSetID:    rec.ConstantSetID,
		Mode:             rec.Mode,
		TaxableWeekly:    rec.TaxableWeekly.String(),
		NonTaxableWeekly: rec.NonTaxableWeekly.String(),
		Breakdown:        toBreakdownDTO(b, places),
		Exact:            b,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.UnionDuesRate != nil {
		dto.UnionDuesRate = strPtr(rec.UnionDuesRate.String())
	}
	return dto
}

func (h *Handler) toConstantSetDTO(cs payroll.ConstantSet, rec *sqlite.ConstantSetRecord) ConstantSetDTO {
	dto := ConstantSetDTO{
		ID:       cs.ID,
		Name:     cs.Name,
		TaxYear:  cs.TaxYear,
		Province: cs.Province,
		Source:   "builtin",
		Default:  cs.ID == h.DefaultSet,
		Config:   h.Factory.ToJSON(cs),
	}
	if rec != nil {
		dto.Source = "stored"
		dto.Version = rec.Version
		dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's sentinel.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	code := ""
	switch {
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case generic.IsClientError(err):
		status, code = http.StatusBadRequest, "invalid"
		var ie *generic.InputError
		if errors.As(err, &ie) {
			code = "invalid_" + ie.Field
		}
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}

// Package analysis exposes the pipeline over HTTP. One handler, constructor
// injected: base configuration comes from the server, per-request overrides
// from the body, and every run is stateless so concurrent requests with
// different assumptions never observe each other.
package analysis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"financial_analyst/pkg/core/config"
	"financial_analyst/pkg/core/forecast"
	"financial_analyst/pkg/core/normalize"
	"financial_analyst/pkg/core/pipeline"
	"financial_analyst/pkg/core/render"
	"financial_analyst/pkg/core/store"
	"financial_analyst/pkg/core/validate"
	"financial_analyst/pkg/core/valuation"
	"financial_analyst/pkg/models"
)

// Handler serves the analysis endpoints.
type Handler struct {
	assumptions config.Assumptions
	rates       config.RateTable
	store       *store.Store // nil disables run history
	log         zerolog.Logger
}

func NewHandler(assumptions config.Assumptions, rates config.RateTable, st *store.Store, log zerolog.Logger) *Handler {
	return &Handler{assumptions: assumptions, rates: rates, store: st, log: log}
}

// Routes mounts the endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/analysis/run", h.handleRun)
	r.Get("/api/analysis/runs/{id}", h.handleGetRun)
	r.Get("/api/analysis/runs", h.handleListRuns)
}

// RunRequest is the analysis request body. Overrides are merged over the
// server's base assumptions for this request only.
type RunRequest struct {
	CompanyName string                   `json:"company_name"`
	Periods     []models.FinancialPeriod `json:"periods"`
	Overrides   config.Overrides         `json:"overrides"`
}

// RunResponse wraps the pipeline result. Warnings name the stages that
// failed after the historical analysis succeeded; RunID is set when the run
// was persisted. Spreadsheet carries the formula view of the valuation.
type RunResponse struct {
	RunID       *uuid.UUID       `json:"run_id,omitempty"`
	Result      *pipeline.Result `json:"result"`
	Spreadsheet []render.Row     `json:"spreadsheet,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type errorBody struct {
	Error       string `json:"error"`
	Field       string `json:"field,omitempty"`
	PeriodLabel string `json:"period_label,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Reason: err.Error()})
		return
	}
	if len(req.Periods) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "no periods supplied"})
		return
	}

	assumptions := h.assumptions.Apply(req.Overrides)
	orch := pipeline.New(assumptions, h.rates, validate.DefaultOptions(), h.log)

	res, err := orch.RunReport(models.CompanyReport{CompanyName: req.CompanyName, Periods: req.Periods})
	if err != nil && res == nil {
		status, body := classifyError(err)
		writeJSON(w, status, body)
		return
	}

	resp := RunResponse{Result: res}
	if err != nil {
		resp.Warnings = append(resp.Warnings, err.Error())
	}
	if res.Valuation != nil {
		resp.Spreadsheet = render.SpreadsheetRows(res.Valuation)
	}

	if h.store != nil {
		if id, serr := h.store.SaveRun(r.Context(), res); serr != nil {
			h.log.Warn().Err(serr).Msg("run not persisted")
		} else {
			resp.RunID = &id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "run history disabled"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid run id"})
		return
	}

	run, err := h.store.LoadRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "run not found"})
			return
		}
		h.log.Error().Err(err).Msg("load run failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "storage failure"})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody{Error: "run history disabled"})
		return
	}
	company := r.URL.Query().Get("company")
	if company == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "company query parameter required"})
		return
	}

	runs, err := h.store.ListRuns(r.Context(), company, 20)
	if err != nil {
		h.log.Error().Err(err).Msg("list runs failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "storage failure"})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// classifyError maps the engine's error types onto HTTP statuses. Bad input
// data and unworkable assumptions are the client's problem (422); anything
// unrecognized is a 500.
func classifyError(err error) (int, errorBody) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, errorBody{
			Error: "validation failed", Field: verr.Field, PeriodLabel: verr.PeriodLabel, Reason: verr.Reason,
		}
	}
	var cerr *normalize.UnsupportedCurrencyError
	if errors.As(err, &cerr) {
		return http.StatusUnprocessableEntity, errorBody{
			Error: "unsupported currency", Field: "currency", Reason: cerr.Error(),
		}
	}
	var aerr *valuation.InvalidAssumptionError
	if errors.As(err, &aerr) {
		return http.StatusUnprocessableEntity, errorBody{
			Error: "invalid assumption", Field: aerr.Name, Reason: aerr.Reason,
		}
	}
	var ierr *forecast.InsufficientDataError
	if errors.As(err, &ierr) {
		return http.StatusUnprocessableEntity, errorBody{Error: "insufficient data", Reason: ierr.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal error", Reason: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

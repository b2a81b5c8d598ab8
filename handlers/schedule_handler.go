package handlers

import (
	"net/http"

	"github.com/courtside/matchday/models"
	"github.com/courtside/matchday/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
	bracketService  services.BracketService
}

func NewScheduleHandler(scheduleService services.ScheduleService, bracketService services.BracketService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		bracketService:  bracketService,
	}
}

func (h *ScheduleHandler) GeneratePoolPlay(w http.ResponseWriter, r *http.Request) {
	var params services.GeneratePoolPlayParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.scheduleService.GeneratePoolPlay(r.Context(), params)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type generateBracketsRequest struct {
	// AdvancePerPool is the top-N cutoff per pool; -1 advances everyone.
	AdvancePerPool int `json:"advance_per_pool"`
}

func (h *ScheduleHandler) GenerateBrackets(w http.ResponseWriter, r *http.Request) {
	var req generateBracketsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.bracketService.GenerateBrackets(r.Context(), req.AdvancePerPool)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ScheduleHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	phase := models.Phase(r.URL.Query().Get("phase"))
	if phase == "" {
		phase = models.PhasePoolPlay
	}

	var category *string
	if c := r.URL.Query().Get("category"); c != "" {
		category = &c
	}

	matches, err := h.scheduleService.ListMatches(r.Context(), phase, category)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"matches": matches})
}

func (h *ScheduleHandler) Standings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.scheduleService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": standings})
}

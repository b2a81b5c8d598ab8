package handlers

import (
	"net/http"
	"strconv"

	"github.com/courtside/matchday/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	scoreService services.ScoreService
}

func NewMatchHandler(scoreService services.ScoreService) *MatchHandler {
	return &MatchHandler{scoreService: scoreService}
}

func matchIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := matchIDParam(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "invalid match id")
		return
	}

	match, err := h.scoreService.StartMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type applyPointRequest struct {
	Side  int `json:"side"`
	Delta int `json:"delta"`
}

func (h *MatchHandler) ApplyPoint(w http.ResponseWriter, r *http.Request) {
	id, ok := matchIDParam(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req applyPointRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}
	if req.Delta == 0 {
		req.Delta = 1
	}

	match, outcome, err := h.scoreService.ApplyPoint(r.Context(), id, req.Side, req.Delta)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match, "outcome": outcome})
}

type manualScoreRequest struct {
	Side  int `json:"side"`
	Value int `json:"value"`
}

func (h *MatchHandler) ApplyManualScore(w http.ResponseWriter, r *http.Request) {
	id, ok := matchIDParam(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req manualScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.scoreService.ApplyManualScore(r.Context(), id, req.Side, req.Value)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

package handler

import (
	"net/http"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

type RiddleHandler struct {
	riddleSvc *service.RiddleService
}

func NewRiddleHandler(riddleSvc *service.RiddleService) *RiddleHandler {
	return &RiddleHandler{riddleSvc: riddleSvc}
}

func (h *RiddleHandler) List(w http.ResponseWriter, r *http.Request) {
	riddles, err := h.riddleSvc.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, riddles)
}

func (h *RiddleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title    string `json:"title"`
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Points   int    `json:"points"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	riddle, err := h.riddleSvc.CreateRiddle(r.Context(), in.Title, in.Question, in.Answer, in.Points)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, riddle)
}

func (h *RiddleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	riddleID, ok := pathID(w, r, "riddle_id")
	if !ok {
		return
	}
	var in struct {
		Answer string `json:"answer"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	points, err := h.riddleSvc.SubmitAnswer(r.Context(), riddleID, principal.ID, in.Answer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"solved": true,
		"points": points,
	})
}

func (h *RiddleHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.riddleSvc.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, entries)
}

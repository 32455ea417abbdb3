package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/middleware"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/service"
)

type EventHandler struct {
	regSvc *service.RegistrationService
}

func NewEventHandler(regSvc *service.RegistrationService) *EventHandler {
	return &EventHandler{regSvc: regSvc}
}

// pathID parses the named url parameter as an object id; a failure has
// already been written to the response.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid id", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return nil, false
	}
	return principal, true
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.regSvc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	event, err := h.regSvc.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, event)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var event domain.Event
	if !decodeJSON(w, r, &event) {
		return
	}
	if err := h.regSvc.CreateEvent(r.Context(), &event); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	var event domain.Event
	if !decodeJSON(w, r, &event) {
		return
	}
	event.ID = id
	if err := h.regSvc.UpdateEvent(r.Context(), &event); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	if err := h.regSvc.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

func (h *EventHandler) RegisterSolo(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	if err := h.regSvc.RegisterSolo(r.Context(), eventID, principal.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"registered": true})
}

func (h *EventHandler) UnregisterSolo(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	if err := h.regSvc.UnregisterSolo(r.Context(), eventID, principal.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"registered": false})
}

func (h *EventHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	team, err := h.regSvc.CreateTeam(r.Context(), eventID, principal.ID, in.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, team)
}

func (h *EventHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	teams, err := h.regSvc.ListTeams(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, teams)
}

func (h *EventHandler) MyTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}
	team, err := h.regSvc.TeamForAccount(r.Context(), eventID, principal.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, team)
}

func (h *EventHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "team_id")
	if !ok {
		return
	}
	if err := h.regSvc.JoinTeam(r.Context(), teamID, principal.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"joined": true})
}

func (h *EventHandler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "team_id")
	if !ok {
		return
	}
	if err := h.regSvc.LeaveTeam(r.Context(), teamID, principal.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"left": true})
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
}

func NewLeagueHandler(leagueService services.LeagueService) *LeagueHandler {
	return &LeagueHandler{
		leagueService: leagueService,
	}
}

type createLeagueRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type joinLeagueRequest struct {
	JoinCode string `json:"join_code" validate:"required,max=16"`
}

// CreateLeague godoc
// @Summary      Create a private league; the creator joins it
// @Tags         leagues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      createLeagueRequest  true  "League"
// @Success      201    {object}  map[string]interface{}
// @Router       /leagues [post]
func (h *LeagueHandler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input createLeagueRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	league, err := h.leagueService.Create(r.Context(), userID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"league": league})
}

// JoinLeague godoc
// @Summary      Join a league by its code
// @Tags         leagues
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      joinLeagueRequest  true  "Join code"
// @Success      200    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Failure      409    {object}  map[string]interface{}
// @Router       /leagues/join [post]
func (h *LeagueHandler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input joinLeagueRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	league, err := h.leagueService.Join(r.Context(), userID, input.JoinCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"league": league})
}

// ListLeagues godoc
// @Summary      Leagues the current user belongs to
// @Tags         leagues
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /leagues [get]
func (h *LeagueHandler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	leagues, err := h.leagueService.ListForUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"leagues": leagues})
}

// Standings godoc
// @Summary      Ranked league table
// @Tags         leagues
// @Produce      json
// @Security     BearerAuth
// @Param        leagueID  path      int  true  "League ID"
// @Success      200       {object}  map[string]interface{}
// @Failure      403       {object}  map[string]interface{}
// @Router       /leagues/{leagueID}/standings [get]
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.leagueService.Standings(r.Context(), leagueID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"standings": standings})
}

package handlers

import (
	"net/http"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
)

type FixtureHandler struct {
	fixtureService services.FixtureService
}

func NewFixtureHandler(fixtureService services.FixtureService) *FixtureHandler {
	return &FixtureHandler{
		fixtureService: fixtureService,
	}
}

// ListFixtures godoc
// @Summary      Fixtures of a gameweek (current gameweek when omitted)
// @Tags         fixtures
// @Produce      json
// @Param        gameweek  query     int  false  "Gameweek number"
// @Success      200       {object}  map[string]interface{}
// @Router       /fixtures [get]
func (h *FixtureHandler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	gameweek, err := readIntQuery(r, "gameweek")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if gameweek == nil {
		current, err := h.fixtureService.CurrentGameweek(r.Context())
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		gameweek = &current
	}

	fixtures, err := h.fixtureService.ListByGameweek(r.Context(), *gameweek)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"gameweek": *gameweek, "fixtures": fixtures})
}

// GetFixture godoc
// @Summary      Fixture by id
// @Tags         fixtures
// @Produce      json
// @Param        fixtureID  path      int  true  "Fixture ID"
// @Success      200        {object}  map[string]interface{}
// @Failure      404        {object}  map[string]interface{}
// @Router       /fixtures/{fixtureID} [get]
func (h *FixtureHandler) GetFixture(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.fixtureService.GetByID(r.Context(), fixtureID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"fixture": fixture})
}

// CurrentGameweek godoc
// @Summary      The gameweek players should be predicting
// @Tags         fixtures
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /gameweeks/current [get]
func (h *FixtureHandler) CurrentGameweek(w http.ResponseWriter, r *http.Request) {
	gameweek, err := h.fixtureService.CurrentGameweek(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"gameweek": gameweek})
}

// CreateFixture godoc
// @Summary      Schedule a fixture (admin)
// @Tags         fixtures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      services.CreateFixtureInput  true  "Fixture"
// @Success      201    {object}  map[string]interface{}
// @Failure      409    {object}  map[string]interface{}
// @Router       /fixtures [post]
func (h *FixtureHandler) CreateFixture(w http.ResponseWriter, r *http.Request) {
	var input services.CreateFixtureInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	fixture, err := h.fixtureService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"fixture": fixture})
}

// RecordResult godoc
// @Summary      Record the final result and settle predictions (admin)
// @Tags         fixtures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fixtureID  path      int                   true  "Fixture ID"
// @Param        input      body      models.FixtureResult  true  "Final result"
// @Success      200        {object}  map[string]interface{}
// @Router       /fixtures/{fixtureID}/result [put]
func (h *FixtureHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input models.FixtureResult
	if !decodeAndValidate(w, r, &input) {
		return
	}

	fixture, err := h.fixtureService.RecordResult(r.Context(), fixtureID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"fixture": fixture})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(predictionService services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// ListPredictions godoc
// @Summary      The current user's predictions
// @Tags         predictions
// @Produce      json
// @Security     BearerAuth
// @Param        gameweek  query     int     false  "Gameweek number"
// @Param        status    query     string  false  "pending or completed"
// @Success      200       {object}  map[string]interface{}
// @Router       /predictions [get]
func (h *PredictionHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	filter, err := readPredictionFilter(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	predictions, err := h.predictionService.List(r.Context(), userID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"predictions": predictions})
}

func readPredictionFilter(r *http.Request) (models.PredictionFilter, error) {
	var filter models.PredictionFilter

	gameweek, err := readIntQuery(r, "gameweek")
	if err != nil {
		return filter, err
	}
	filter.Gameweek = gameweek

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.PredictionStatus(raw)
		switch status {
		case models.PredictionPending, models.PredictionCompleted:
			filter.Status = &status
		default:
			return filter, fmt.Errorf("status must be %q or %q", models.PredictionPending, models.PredictionCompleted)
		}
	}
	return filter, nil
}

// SubmitPrediction godoc
// @Summary      Create or replace the prediction for a fixture
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      services.PredictionInput  true  "Prediction"
// @Success      201    {object}  map[string]interface{}
// @Failure      422    {object}  map[string]interface{}
// @Router       /predictions [post]
func (h *PredictionHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.PredictionInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if input.FixtureID == 0 {
		failedValidationResponse(w, r, map[string]string{"fixture_id": "failed required"})
		return
	}

	prediction, err := h.predictionService.Submit(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"prediction": prediction})
}

// GetPrediction godoc
// @Summary      Prediction with its points breakdown
// @Tags         predictions
// @Produce      json
// @Security     BearerAuth
// @Param        predictionID  path      int  true  "Prediction ID"
// @Success      200           {object}  services.PredictionDetails
// @Failure      404           {object}  map[string]interface{}
// @Router       /predictions/{predictionID} [get]
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	predictionID, err := getIDFromURL(r, "predictionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.predictionService.Get(r.Context(), userID, predictionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, details)
}

// UpdatePrediction godoc
// @Summary      Edit a prediction before its deadline
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        predictionID  path      int                       true  "Prediction ID"
// @Param        input         body      services.PredictionInput  true  "Prediction"
// @Success      200           {object}  map[string]interface{}
// @Router       /predictions/{predictionID} [put]
func (h *PredictionHandler) UpdatePrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	predictionID, err := getIDFromURL(r, "predictionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PredictionInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	prediction, err := h.predictionService.Update(r.Context(), userID, predictionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"prediction": prediction})
}

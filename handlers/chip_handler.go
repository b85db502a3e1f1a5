package handlers

import (
	"net/http"

	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
)

type ChipHandler struct {
	chipService services.ChipService
}

func NewChipHandler(chipService services.ChipService) *ChipHandler {
	return &ChipHandler{
		chipService: chipService,
	}
}

type activateChipRequest struct {
	ChipID models.ChipID `json:"chip_id" validate:"required"`
}

type dismissRequest struct {
	PredictionIDs []int `json:"prediction_ids" validate:"required,min=1,dive,min=1"`
}

// ListCatalog godoc
// @Summary      All chips with their descriptions
// @Tags         chips
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /chips [get]
func (h *ChipHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{"chips": h.chipService.ListCatalog()})
}

// ListActive godoc
// @Summary      The current user's active gameweek chips keyed by gameweek
// @Tags         chips
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /chips/active [get]
func (h *ChipHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	active, err := h.chipService.ActiveChips(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"active_chips": active})
}

// Activate godoc
// @Summary      Activate a chip for a whole gameweek
// @Tags         chips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gameweek  path      int                  true  "Gameweek number"
// @Param        input     body      activateChipRequest  true  "Chip"
// @Success      201       {object}  map[string]interface{}
// @Failure      409       {object}  map[string]interface{}
// @Router       /gameweeks/{gameweek}/chips [post]
func (h *ChipHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, gameweek, ok := userAndGameweek(w, r)
	if !ok {
		return
	}

	var input activateChipRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	active, err := h.chipService.Activate(r.Context(), userID, gameweek, input.ChipID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"active_chip": active})
}

// Deactivate godoc
// @Summary      Deactivate a gameweek chip
// @Tags         chips
// @Security     BearerAuth
// @Param        gameweek  path  int     true  "Gameweek number"
// @Param        chipID    path  string  true  "Chip ID"
// @Success      204
// @Failure      404  {object}  map[string]interface{}
// @Router       /gameweeks/{gameweek}/chips/{chipID} [delete]
func (h *ChipHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, gameweek, ok := userAndGameweek(w, r)
	if !ok {
		return
	}
	chipID := models.ChipID(chi.URLParam(r, "chipID"))

	if err := h.chipService.Deactivate(r.Context(), userID, gameweek, chipID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Validation godoc
// @Summary      Pending predictions missing the gameweek's active chips
// @Tags         chips
// @Produce      json
// @Security     BearerAuth
// @Param        gameweek  path      int  true  "Gameweek number"
// @Success      200       {object}  chips.ValidationResult
// @Router       /gameweeks/{gameweek}/chip-validation [get]
func (h *ChipHandler) Validation(w http.ResponseWriter, r *http.Request) {
	userID, gameweek, ok := userAndGameweek(w, r)
	if !ok {
		return
	}

	result, err := h.chipService.Validate(r.Context(), userID, gameweek)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, result)
}

// Dismiss godoc
// @Summary      Hide predictions from the chip validation warning
// @Tags         chips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        gameweek  path      int             true  "Gameweek number"
// @Param        input     body      dismissRequest  true  "Predictions to dismiss"
// @Success      200       {object}  chips.ValidationResult
// @Router       /gameweeks/{gameweek}/chip-validation/dismiss [post]
func (h *ChipHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, gameweek, ok := userAndGameweek(w, r)
	if !ok {
		return
	}

	var input dismissRequest
	if !decodeAndValidate(w, r, &input) {
		return
	}

	result, err := h.chipService.Dismiss(r.Context(), userID, gameweek, input.PredictionIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, result)
}

// Sync godoc
// @Summary      Attach the missing gameweek chips to pending predictions
// @Tags         chips
// @Produce      json
// @Security     BearerAuth
// @Param        gameweek  path      int  true  "Gameweek number"
// @Success      200       {object}  chips.SyncResult
// @Router       /gameweeks/{gameweek}/chip-sync [post]
func (h *ChipHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, gameweek, ok := userAndGameweek(w, r)
	if !ok {
		return
	}

	result, err := h.chipService.Sync(r.Context(), userID, gameweek)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Частичный успех тоже 200: клиент смотрит на success и failed_ids
	respond(w, r, http.StatusOK, result)
}

func userAndGameweek(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, 0, false
	}
	gameweek, err := getIDFromURL(r, "gameweek")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return userID, gameweek, true
}

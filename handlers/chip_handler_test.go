package handlers

import (
	"net/http"
	"testing"

	"github.com/Dosada05/prediction-league/chips"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChipHandler_Activate(t *testing.T) {
	svc := &fakeChipService{}
	h := NewChipHandler(svc)

	rec := serve(http.MethodPost, "/gameweeks/{gameweek}/chips", "/gameweeks/5/chips", `{"chip_id":"wildcard"}`, 2, h.Activate)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, svc.gotUserID)
	assert.Equal(t, 5, svc.gotGameweek)
	assert.Equal(t, models.ChipWildcard, svc.gotChip)
}

func TestChipHandler_ActivateTwice(t *testing.T) {
	h := NewChipHandler(&fakeChipService{err: services.ErrChipAlreadyActive})

	rec := serve(http.MethodPost, "/gameweeks/{gameweek}/chips", "/gameweeks/5/chips", `{"chip_id":"wildcard"}`, 2, h.Activate)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChipHandler_Deactivate(t *testing.T) {
	svc := &fakeChipService{}
	h := NewChipHandler(svc)

	rec := serve(http.MethodDelete, "/gameweeks/{gameweek}/chips/{chipID}", "/gameweeks/5/chips/allInWeek", "", 2, h.Deactivate)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.ChipAllInWeek, svc.gotChip)

	svc.err = services.ErrChipNotActive
	rec = serve(http.MethodDelete, "/gameweeks/{gameweek}/chips/{chipID}", "/gameweeks/5/chips/allInWeek", "", 2, h.Deactivate)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChipHandler_DismissRequiresIDs(t *testing.T) {
	svc := &fakeChipService{}
	h := NewChipHandler(svc)

	rec := serve(http.MethodPost, "/gameweeks/{gameweek}/chip-validation/dismiss", "/gameweeks/5/chip-validation/dismiss",
		`{"prediction_ids":[]}`, 2, h.Dismiss)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(http.MethodPost, "/gameweeks/{gameweek}/chip-validation/dismiss", "/gameweeks/5/chip-validation/dismiss",
		`{"prediction_ids":[3,4]}`, 2, h.Dismiss)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{3, 4}, svc.gotIDs)
}

func TestChipHandler_SyncPartialFailureIsOK(t *testing.T) {
	svc := &fakeChipService{syncResult: chips.SyncResult{
		Success:   false,
		Synced:    1,
		ChipNames: []string{"Double Down"},
		Error:     "1 prediction could not be updated",
		SyncedIDs: []int{1},
		FailedIDs: []int{2},
	}}
	h := NewChipHandler(svc)

	rec := serve(http.MethodPost, "/gameweeks/{gameweek}/chip-sync", "/gameweeks/5/chip-sync", "", 2, h.Sync)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success": false`)
	assert.Contains(t, rec.Body.String(), `"failed_ids"`)
}

func TestChipHandler_InvalidGameweek(t *testing.T) {
	h := NewChipHandler(&fakeChipService{})

	rec := serve(http.MethodGet, "/gameweeks/{gameweek}/chip-validation", "/gameweeks/zero/chip-validation", "", 2, h.Validation)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(http.MethodGet, "/gameweeks/{gameweek}/chip-validation", "/gameweeks/5/chip-validation", "", 0, h.Validation)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChipHandler_Catalog(t *testing.T) {
	h := NewChipHandler(&fakeChipService{})

	rec := serve(http.MethodGet, "/chips", "/chips", "", 0, h.ListCatalog)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, id := range []models.ChipID{models.ChipDoubleDown, models.ChipWildcard, models.ChipAllInWeek} {
		assert.Contains(t, rec.Body.String(), string(id))
	}
}

package api

import (
	"net/http"
	"testing"
	"time"

	"joja_garden/internal/care"
	"joja_garden/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plantFixture struct {
	*testServer
	adminToken string
	userID     uint
	userToken  string
	otherToken string
	catalog    domain.CatalogPlant
	plant      domain.UserPlant
}

func newPlantFixture(t *testing.T) *plantFixture {
	s := newTestServer(t)
	f := &plantFixture{testServer: s, adminToken: s.bootstrapAdmin()}
	f.userID, f.userToken = s.createUser(f.adminToken, userCPF, "ana@example.com")
	_, f.otherToken = s.createUser(f.adminToken, otherCPF, "bia@example.com")
	f.catalog = s.createCatalogPlant(f.adminToken, "Blueberry", "Vaccinium corymbosum")
	f.plant = s.assignPlant(f.adminToken, f.userID, f.catalog.ID, "2024-01-01")
	return f
}

func TestListAndGetPlants(t *testing.T) {
	f := newPlantFixture(t)

	w := f.do(http.MethodGet, "/plants", f.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plants := decode[[]domain.UserPlant](t, w)
	require.Len(t, plants, 1)
	assert.Equal(t, "Vaccinium corymbosum", plants[0].CatalogPlant.ScientificName)

	w = f.do(http.MethodGet, "/plants", f.otherToken, nil)
	assert.Empty(t, decode[[]domain.UserPlant](t, w))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, pathf("/plants/%d", f.plant.ID), f.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, pathf("/plants/%d", f.plant.ID), f.otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/plants/999", f.userToken, nil).Code)
}

func TestUpdatePlant(t *testing.T) {
	f := newPlantFixture(t)

	w := f.do(http.MethodPut, pathf("/plants/%d", f.plant.ID), f.userToken, gin.H{"nickname": "Berry", "planted_on": "2024-02-10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.UserPlant](t, w)
	assert.Equal(t, "Berry", updated.Nickname)
	assert.Equal(t, "2024-02-10", updated.PlantedOn.Format(time.DateOnly))

	w = f.do(http.MethodGet, pathf("/plants/%d", f.plant.ID), f.userToken, nil)
	assert.Equal(t, "Berry", decode[domain.UserPlant](t, w).Nickname)

	w = f.do(http.MethodPut, pathf("/plants/%d", f.plant.ID), f.userToken, gin.H{"planted_on": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, pathf("/plants/%d", f.plant.ID), f.otherToken, gin.H{"nickname": "Mine"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActions(t *testing.T) {
	f := newPlantFixture(t)
	path := pathf("/plants/%d/actions", f.plant.ID)

	w := f.do(http.MethodPost, path, f.userToken, gin.H{"type": "singing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, path, f.userToken, gin.H{"description": "no type"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type is required", errorOf(t, w))
	w = f.do(http.MethodPost, path, f.userToken, gin.H{"type": "watering", "performed_at": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, path, f.otherToken, gin.H{"type": "watering"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, body := range []gin.H{
		{"type": "watering", "performed_at": "2024-01-05"},
		{"type": "pruning", "performed_at": "2024-01-20T10:00:00Z", "description": "shaped"},
		{"type": "watering", "performed_at": "2024-01-10"},
	} {
		w := f.do(http.MethodPost, path, f.userToken, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, path, f.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	actions := decode[[]domain.Action](t, w)
	require.Len(t, actions, 3)
	assert.Equal(t, domain.ActionPruning, actions[0].Type)
	assert.Equal(t, "shaped", actions[0].Description)
	assert.Equal(t, "2024-01-10", actions[1].PerformedAt.Format(time.DateOnly))
	assert.Equal(t, "2024-01-05", actions[2].PerformedAt.Format(time.DateOnly))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, path, f.otherToken, nil).Code)
}

func TestSchedule(t *testing.T) {
	f := newPlantFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, pathf("/plants/%d/actions", f.plant.ID), f.userToken,
		gin.H{"type": "watering", "performed_at": "2024-01-05"}).Code)

	w := f.do(http.MethodGet, pathf("/plants/%d/schedule", f.plant.ID), f.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		PlantID  uint       `json:"plant_id"`
		Schedule []care.Due `json:"schedule"`
	}](t, w)
	assert.Equal(t, f.plant.ID, resp.PlantID)
	require.Len(t, resp.Schedule, 3)

	watering := resp.Schedule[0]
	assert.Equal(t, domain.ActionWatering, watering.Type)
	require.NotNil(t, watering.LastDone)
	assert.Equal(t, "2024-01-07", watering.NextDue.Format(time.DateOnly))
	assert.True(t, watering.Overdue)

	pruning := resp.Schedule[1]
	assert.Nil(t, pruning.LastDone)
	assert.Equal(t, "2024-01-31", pruning.NextDue.Format(time.DateOnly))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, pathf("/plants/%d/schedule", f.plant.ID), f.otherToken, nil).Code)
}

func TestImages(t *testing.T) {
	f := newPlantFixture(t)
	path := pathf("/plants/%d/images", f.plant.ID)

	w := f.do(http.MethodPost, path, f.userToken, gin.H{"title": "no url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "url is required", errorOf(t, w))
	w = f.do(http.MethodPost, path, f.userToken, gin.H{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, path, f.otherToken, gin.H{"url": "https://img.example.com/x.jpg"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, path, f.userToken, gin.H{"url": "https://img.example.com/sprout.jpg", "title": "Sprout", "taken_at": "2024-01-02"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sprout := decode[domain.Image](t, w)
	w = f.do(http.MethodPost, path, f.userToken, gin.H{"url": "https://img.example.com/bloom.jpg", "title": "Bloom", "taken_at": "2024-04-02"})
	require.Equal(t, http.StatusCreated, w.Code)

	images := decode[[]domain.Image](t, f.do(http.MethodGet, path, f.userToken, nil))
	require.Len(t, images, 2)
	assert.Equal(t, "Bloom", images[0].Title)
	assert.Equal(t, "Sprout", images[1].Title)

	// an image is only reachable through its own plant
	second := f.assignPlant(f.adminToken, f.userID, f.catalog.ID, "2024-01-01")
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, pathf("/plants/%d/images/%d", second.ID, sprout.ID), f.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, pathf("/plants/%d/images/%d", f.plant.ID, sprout.ID), f.otherToken, nil).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, pathf("/plants/%d/images/%d", f.plant.ID, sprout.ID), f.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, pathf("/plants/%d/images/%d", f.plant.ID, sprout.ID), f.userToken, nil).Code)
	assert.Len(t, decode[[]domain.Image](t, f.do(http.MethodGet, path, f.userToken, nil)), 1)
}

func TestDeletePlant(t *testing.T) {
	f := newPlantFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, pathf("/plants/%d/actions", f.plant.ID), f.userToken, gin.H{"type": "fertilizing"}).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, pathf("/plants/%d/images", f.plant.ID), f.userToken, gin.H{"url": "https://img.example.com/a.jpg"}).Code)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, pathf("/plants/%d", f.plant.ID), f.otherToken, nil).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, pathf("/plants/%d", f.plant.ID), f.userToken, nil).Code)

	assert.Zero(t, f.count(&domain.UserPlant{}, "id = ?", f.plant.ID))
	assert.Zero(t, f.count(&domain.Action{}, "user_plant_id = ?", f.plant.ID))
	assert.Zero(t, f.count(&domain.Image{}, "user_plant_id = ?", f.plant.ID))
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, pathf("/plants/%d", f.plant.ID), f.userToken, nil).Code)
}

package unit_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"docloom/internal/models"
	"docloom/internal/services"
	"docloom/internal/tests/mocks"
)

func startedCatalog(t *testing.T, repo *mocks.ModelSettingRepositoryMock) services.ModelCatalogService {
	t.Helper()
	svc := services.NewModelCatalogService(repo)
	assert.NoError(t, svc.Startup(context.Background()))
	return svc
}

func TestModelCatalogService_StartupSeedsDefaults(t *testing.T) {
	seeded := map[string]bool{}
	repo := &mocks.ModelSettingRepositoryMock{
		UpsertFunc: func(modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
			seeded[modelKey] = enabled
			return &models.ModelSetting{ModelKey: modelKey, Provider: provider, Enabled: enabled}, nil
		},
	}
	startedCatalog(t, repo)

	assert.NotEmpty(t, seeded)
	for key, enabled := range seeded {
		assert.True(t, enabled, "model %s should default to enabled", key)
	}
}

func TestModelCatalogService_GetModelKnownKey(t *testing.T) {
	svc := startedCatalog(t, &mocks.ModelSettingRepositoryMock{})

	model, err := svc.GetModel("openai|gpt-5-mini")
	assert.NoError(t, err)
	assert.Equal(t, "openai", model.ProviderID)
	assert.Equal(t, "gpt-5-mini", model.APIName)
	assert.True(t, model.Enabled)
}

func TestModelCatalogService_GetModelUnknownKey(t *testing.T) {
	svc := startedCatalog(t, &mocks.ModelSettingRepositoryMock{})

	_, err := svc.GetModel("openai|made-up-model")
	assert.Error(t, err)
}

func TestModelCatalogService_SetModelEnabledPersists(t *testing.T) {
	var persistedKey string
	var persistedEnabled bool
	repo := &mocks.ModelSettingRepositoryMock{
		UpsertFunc: func(modelKey, provider string, enabled bool) (*models.ModelSetting, error) {
			persistedKey = modelKey
			persistedEnabled = enabled
			return &models.ModelSetting{ModelKey: modelKey, Provider: provider, Enabled: enabled}, nil
		},
	}
	svc := startedCatalog(t, repo)

	model, err := svc.SetModelEnabled("openai|gpt-5-mini", false)
	assert.NoError(t, err)
	assert.False(t, model.Enabled)
	assert.Equal(t, "openai|gpt-5-mini", persistedKey)
	assert.False(t, persistedEnabled)

	model, err = svc.GetModel("openai|gpt-5-mini")
	assert.NoError(t, err)
	assert.False(t, model.Enabled)
}

func TestModelCatalogService_ListModelGroupsKeepsProviderOrder(t *testing.T) {
	svc := startedCatalog(t, &mocks.ModelSettingRepositoryMock{})

	groups, err := svc.ListModelGroups()
	assert.NoError(t, err)
	assert.Len(t, groups, 3)
	assert.Equal(t, "anthropic", groups[0].ProviderID)
	assert.Equal(t, "openai", groups[1].ProviderID)
	assert.Equal(t, "gemini", groups[2].ProviderID)
	for _, group := range groups {
		assert.NotEmpty(t, group.Models)
	}
}

func TestModelCatalogService_SetProviderEnabledTogglesAll(t *testing.T) {
	svc := startedCatalog(t, &mocks.ModelSettingRepositoryMock{})

	updated, err := svc.SetProviderEnabled("gemini", false)
	assert.NoError(t, err)
	assert.NotEmpty(t, updated)
	for _, mdl := range updated {
		assert.False(t, mdl.Enabled)
	}
}

package app

import (
	"testing"

	"flowbridge/internal/api"
	"flowbridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication_RegistersHandlers(t *testing.T) {
	api.ResetForTesting()
	t.Cleanup(api.ResetForTesting)

	t.Setenv(config.EnvCoreAPI, "https://core.example.com/api/v1")
	t.Setenv(config.EnvToken, "test-token")

	application, err := NewApplication(NewConfig("", false, true), "test")
	require.NoError(t, err)

	assert.NotNil(t, api.GetPlatform())
	assert.NotNil(t, api.GetFlowBuilder())
	assert.NotNil(t, api.GetInvestigator())
	require.Len(t, api.ListToolProviders(), 1)

	assert.Equal(t, "https://core.example.com/api/v1", application.Settings().Platform.CoreAPI)
}

func TestNewApplication_FailsFastOnBadConfig(t *testing.T) {
	api.ResetForTesting()
	t.Cleanup(api.ResetForTesting)

	t.Setenv(config.EnvCoreAPI, "")
	t.Setenv(config.EnvToken, "")

	_, err := NewApplication(NewConfig("", false, true), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

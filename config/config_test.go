package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	assert.Equal(t, "development", AppConfig.Env)
	assert.False(t, IsProduction())
	assert.Equal(t, 6, AppConfig.OpenHour)
	assert.Equal(t, 20, AppConfig.CloseHour)
	assert.Equal(t, 15, AppConfig.SlotIntervalMinutes)
	assert.Equal(t, 4, AppConfig.SlotCapacity)
	assert.Equal(t, 0, AppConfig.MaxOverrideExtra)
	assert.Equal(t, 30*time.Second, AppConfig.ReconcileInterval)
}

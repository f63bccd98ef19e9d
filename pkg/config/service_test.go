package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestGetConfigReturnsIndependentCopy(t *testing.T) {
	svc := NewStatic(Default())
	a := svc.GetConfig()
	a.AI.Model = "mutated"

	b := svc.GetConfig()
	assert.NotEqual(t, a.AI.Model, b.AI.Model, "mutating a returned Config must not leak into the service")
	assert.Equal(t, "gpt-4o-mini", b.AI.Model)
}

func TestConfigHashStableForEqualValues(t *testing.T) {
	a := NewStatic(Default())
	b := NewStatic(Default())
	assert.Equal(t, a.ConfigHash(), b.ConfigHash())

	cfg := Default()
	cfg.AI.Model = "other-model"
	c := NewStatic(cfg)
	assert.NotEqual(t, a.ConfigHash(), c.ConfigHash())
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	cfg := Default()
	cfg.AI.Temperature = 3.0
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai.temperature")
}

func TestOverridesApplyOnTopOfFileAndEnv(t *testing.T) {
	svc, err := Load("", Overrides{"general.backup_enabled": true})
	require.NoError(t, err)
	assert.True(t, svc.GetConfig().General.BackupEnabled)
}

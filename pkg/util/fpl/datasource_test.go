package fpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeSeason(t *testing.T) {
	native, err := nativeSeason("2024/2025")
	require.NoError(t, err)
	assert.Equal(t, "2425", native)

	_, err = nativeSeason("24/25")
	assert.Error(t, err)
	_, err = nativeSeason("2024-2025")
	assert.Error(t, err)
}

func TestValidateConfigDefaults(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultFplConfig()))
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cfg := DefaultFplConfig()
	cfg.LearningRate = 1.5
	assert.Error(t, ValidateConfig(cfg))

	cfg = DefaultFplConfig()
	cfg.RecentFormWindow = 0
	assert.Error(t, ValidateConfig(cfg))

	cfg = DefaultFplConfig()
	cfg.Imbalance = "smote"
	assert.Error(t, ValidateConfig(cfg))
}

func TestGBTParamsNeutralisesScalePosWeightWhenResampling(t *testing.T) {
	cfg := DefaultFplConfig()
	cfg.Imbalance = ImbalanceResample
	assert.Equal(t, 1.0, cfg.GBTParams().ScalePosWeight)

	cfg.Imbalance = ImbalanceClassWeight
	assert.Equal(t, 12.0, cfg.GBTParams().ScalePosWeight)
}

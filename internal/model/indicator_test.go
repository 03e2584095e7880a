package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicatorKeys(t *testing.T) {
	keys := IndicatorKeys()
	assert.Len(t, keys, 19)
	assert.Equal(t, IndTempMax, keys[0])
	assert.Equal(t, IndLandslide, keys[len(keys)-1])

	for _, k := range keys {
		assert.True(t, ValidIndicator(k), k)
	}
	assert.False(t, ValidIndicator("nope"))
}

func TestIndicatorLabel(t *testing.T) {
	assert.Equal(t, "Total population", IndicatorLabel(IndPopulation))
	assert.Equal(t, "mystery", IndicatorLabel("mystery"))
}

func TestIsInfrastructure(t *testing.T) {
	for _, k := range InfrastructureKeys() {
		assert.True(t, IsInfrastructure(k), k)
	}
	assert.False(t, IsInfrastructure(IndPopulation))
	assert.False(t, IsInfrastructure(IndFloodRisk))
}

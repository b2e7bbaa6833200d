package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimatedEnergy(t *testing.T) {
	assert.Equal(t, 7.0, EstimatedEnergy(60))
	assert.Equal(t, 3.5, EstimatedEnergy(30))
	assert.Equal(t, 14.0, EstimatedEnergy(120))
}

func TestEstimatedCost(t *testing.T) {
	assert.Equal(t, 70.0, EstimatedCost(60, 10))
	assert.Equal(t, 52.5, EstimatedCost(90, 5))
}

func TestFinalCost(t *testing.T) {
	assert.Equal(t, 35.0, FinalCost(3.5, 10))
	assert.Equal(t, 0.0, FinalCost(0, 10))
}

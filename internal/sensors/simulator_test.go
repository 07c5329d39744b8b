package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernode/internal/models"
)

func TestSimulator_ValuesStayInExpandedRanges(t *testing.T) {
	s := NewSimulatorWithSeed(42)

	for i := 0; i < 500; i++ {
		require.NoError(t, s.Refresh())

		temp := s.Sample(models.ChannelTemperature)
		humid := s.Sample(models.ChannelHumidity)
		pressure := s.Sample(models.ChannelPressure)
		lux := s.Sample(models.ChannelLux)
		gas := s.Sample(models.ChannelGas)

		assert.GreaterOrEqual(t, temp, 15.0)
		assert.LessOrEqual(t, temp, 35.0)
		assert.GreaterOrEqual(t, humid, 20.0)
		assert.LessOrEqual(t, humid, 95.0)
		assert.GreaterOrEqual(t, pressure, 95000.0)
		assert.LessOrEqual(t, pressure, 103000.0)
		assert.GreaterOrEqual(t, lux, 0.0)
		assert.LessOrEqual(t, lux, 1000.0)
		assert.GreaterOrEqual(t, gas, 0.0)
		assert.LessOrEqual(t, gas, 2000.0)
	}
}

func TestSimulator_FrameStableBetweenRefreshes(t *testing.T) {
	s := NewSimulatorWithSeed(7)

	first := s.Sample(models.ChannelTemperature)
	second := s.Sample(models.ChannelTemperature)
	assert.Equal(t, first, second)
}

func TestSimulator_UnknownChannelReadsZero(t *testing.T) {
	s := NewSimulatorWithSeed(7)
	assert.Equal(t, 0.0, s.Sample(models.Channel(99)))
}

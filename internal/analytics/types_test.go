package analytics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateJSON(t *testing.T) {
	t.Run("defined rate marshals as number", func(t *testing.T) {
		data, err := json.Marshal(NewRate(12.5))
		require.NoError(t, err)
		assert.Equal(t, "12.5", string(data))
	})

	t.Run("undefined rate marshals as null", func(t *testing.T) {
		data, err := json.Marshal(UndefinedRate())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("null unmarshals as undefined", func(t *testing.T) {
		var r Rate
		require.NoError(t, json.Unmarshal([]byte("null"), &r))
		assert.False(t, r.Valid)

		require.NoError(t, json.Unmarshal([]byte("3.25"), &r))
		assert.True(t, r.Valid)
		assert.Equal(t, 3.25, r.Value)
	})
}

func TestRateFloat(t *testing.T) {
	assert.Equal(t, 2.5, NewRate(2.5).Float())
	assert.True(t, math.IsNaN(UndefinedRate().Float()))
}

func TestGrowthRate(t *testing.T) {
	t.Run("zero base is undefined", func(t *testing.T) {
		assert.False(t, growthRate(10, 0).Valid)
	})

	t.Run("percentage over previous", func(t *testing.T) {
		r := growthRate(150, 100)
		require.True(t, r.Valid)
		assert.InDelta(t, 50.0, r.Value, 1e-9)

		r = growthRate(50, 100)
		require.True(t, r.Valid)
		assert.InDelta(t, -50.0, r.Value, 1e-9)
	})
}

package kernel_test

import (
	"testing"

	"routing/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	t.Run("valid coordinates", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(43.238949, 76.889709)

		require.NoError(t, err)
		assert.InDelta(t, 43.238949, p.Lat(), 1e-12)
		assert.InDelta(t, 76.889709, p.Lon(), 1e-12)
	})

	t.Run("boundary coordinates are valid", func(t *testing.T) {
		for _, c := range [][2]float64{{-90, -180}, {90, 180}, {0, 0}} {
			_, err := kernel.NewGeoPoint(c[0], c[1])
			require.NoError(t, err)
		}
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(90.1, 0)
		require.Error(t, err)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(0, -180.5)
		require.Error(t, err)
	})
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, _ := kernel.NewGeoPoint(43.25, 76.95)
	b, _ := kernel.NewGeoPoint(43.25, 76.95)
	c, _ := kernel.NewGeoPoint(43.25, 76.950000001)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
}

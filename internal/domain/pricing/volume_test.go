package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeModel(t *testing.T) {
	model, err := NewChargeModel(ChargeModelVolume, Properties{
		VolumeRanges: []Tier{
			{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("0.10"), FlatAmount: dec("2")},
			{FromValue: dec("100"), ToValue: decPtr("500"), PerUnitAmount: dec("0.05"), FlatAmount: dec("1")},
			{FromValue: dec("500"), PerUnitAmount: dec("0.01")},
		},
	})
	require.NoError(t, err)

	t.Run("whole usage priced by the selected tier", func(t *testing.T) {
		// 250 units all at 0.05 plus the tier's flat fee
		result, err := model.Apply(usage("250", 4))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("13.5")))
	})

	t.Run("boundary usage selects the lower tier", func(t *testing.T) {
		result, err := model.Apply(usage("100", 1))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("12")))
	})

	t.Run("usage in the open tier", func(t *testing.T) {
		result, err := model.Apply(usage("1000", 1))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("10")))
	})

	t.Run("zero usage skips tier selection", func(t *testing.T) {
		result, err := model.Apply(usage("0", 0))
		require.NoError(t, err)
		assert.True(t, result.Amount.IsZero())
	})
}

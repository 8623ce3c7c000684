package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billing/engine/internal/domain/metering"
)

func percentageUsage(aggregation string, count int, runningTotal ...string) *metering.AggregationResult {
	result := usage(aggregation, count)
	for _, entry := range runningTotal {
		result.RunningTotal = append(result.RunningTotal, dec(entry))
	}
	return result
}

func TestPercentageModel(t *testing.T) {
	t.Run("rate applied to the aggregated value", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{Rate: decPtr("2.5")})
		require.NoError(t, err)

		result, err := model.Apply(percentageUsage("1000", 4))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("25")))
	})

	t.Run("fixed amount added per event", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:        decPtr("2"),
			FixedAmount: decPtr("0.50"),
		})
		require.NoError(t, err)

		// 1000 * 2% + 4 * 0.50
		result, err := model.Apply(percentageUsage("1000", 4))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("22")))
	})

	t.Run("per-events allowance exempts leading events entirely", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:               decPtr("10"),
			FixedAmount:        decPtr("1"),
			FreeUnitsPerEvents: int64Ptr(2),
		})
		require.NoError(t, err)

		// Four events of 12; running total [12, 24] marks two free events.
		// (48 - 24) * 10% + 2 * 1
		result, err := model.Apply(percentageUsage("48", 4, "12", "24"))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("4.4")), result.Amount.String())
	})

	t.Run("per-total allowance leaves the crossing event partially paid", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:                         decPtr("10"),
			FixedAmount:                  decPtr("1"),
			FreeUnitsPerTotalAggregation: decPtr("30"),
		})
		require.NoError(t, err)

		// Running total [12, 24, 36]: allowance 30 exempts 30 units and two
		// full events; the third event pays rate on its remainder plus its
		// fixed amount. (48 - 30) * 10% + 2 * 1
		result, err := model.Apply(percentageUsage("48", 4, "12", "24", "36"))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("3.8")), result.Amount.String())
	})

	t.Run("allowance covering all usage yields zero", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:               decPtr("10"),
			FreeUnitsPerEvents: int64Ptr(10),
		})
		require.NoError(t, err)

		result, err := model.Apply(percentageUsage("48", 4, "12", "24", "36", "48"))
		require.NoError(t, err)
		assert.True(t, result.Amount.IsZero())
	})

	t.Run("per-transaction minimum floors the amount", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:                    decPtr("1"),
			PerTransactionMinAmount: decPtr("5"),
		})
		require.NoError(t, err)

		result, err := model.Apply(percentageUsage("100", 1))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("5")))
	})

	t.Run("per-transaction maximum caps the amount", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:                    decPtr("10"),
			PerTransactionMaxAmount: decPtr("50"),
		})
		require.NoError(t, err)

		result, err := model.Apply(percentageUsage("10000", 1))
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("50")))
	})

	t.Run("empty running total means no allowance", func(t *testing.T) {
		model, err := NewChargeModel(ChargeModelPercentage, Properties{
			Rate:        decPtr("10"),
			FixedAmount: decPtr("1"),
		})
		require.NoError(t, err)

		result, err := model.Apply(&metering.AggregationResult{
			Aggregation:  dec("48"),
			Count:        4,
			RunningTotal: []decimal.Decimal{},
		})
		require.NoError(t, err)
		assert.True(t, result.Amount.Equal(dec("8.8")))
	})
}

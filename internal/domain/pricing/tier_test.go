package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func threeTiers() []Tier {
	return []Tier{
		{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("0.10")},
		{FromValue: dec("100"), ToValue: decPtr("500"), PerUnitAmount: dec("0.05")},
		{FromValue: dec("500"), PerUnitAmount: dec("0.01")},
	}
}

func TestValidateTiers(t *testing.T) {
	t.Run("contiguous ascending tiers pass", func(t *testing.T) {
		assert.NoError(t, validateTiers(ChargeModelGraduated, threeTiers()))
	})

	t.Run("bounded last tier passes", func(t *testing.T) {
		tiers := []Tier{
			{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("1")},
		}
		assert.NoError(t, validateTiers(ChargeModelVolume, tiers))
	})

	tests := []struct {
		name  string
		tiers []Tier
	}{
		{"empty", nil},
		{"first tier not at zero", []Tier{
			{FromValue: dec("10"), PerUnitAmount: dec("1")},
		}},
		{"gap between tiers", []Tier{
			{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("1")},
			{FromValue: dec("200"), PerUnitAmount: dec("1")},
		}},
		{"open tier before last", []Tier{
			{FromValue: dec("0"), PerUnitAmount: dec("1")},
			{FromValue: dec("100"), PerUnitAmount: dec("1")},
		}},
		{"upper bound below lower", []Tier{
			{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("1")},
			{FromValue: dec("100"), ToValue: decPtr("50"), PerUnitAmount: dec("1")},
		}},
		{"negative per-unit amount", []Tier{
			{FromValue: dec("0"), PerUnitAmount: dec("-1")},
		}},
		{"negative flat amount", []Tier{
			{FromValue: dec("0"), PerUnitAmount: dec("1"), FlatAmount: dec("-2")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateTiers(ChargeModelGraduated, tt.tiers))
		})
	}
}

func TestUnitsInTier(t *testing.T) {
	tiers := threeTiers()

	t.Run("usage below the tier", func(t *testing.T) {
		assert.True(t, unitsInTier(dec("50"), tiers[1]).IsZero())
	})

	t.Run("usage inside the tier", func(t *testing.T) {
		assert.True(t, unitsInTier(dec("250"), tiers[1]).Equal(dec("150")))
	})

	t.Run("usage beyond the tier is clamped to its width", func(t *testing.T) {
		assert.True(t, unitsInTier(dec("1000"), tiers[1]).Equal(dec("400")))
	})

	t.Run("usage at the inclusive upper bound fills the tier", func(t *testing.T) {
		assert.True(t, unitsInTier(dec("100"), tiers[0]).Equal(dec("100")))
	})

	t.Run("open-ended tier takes the remainder", func(t *testing.T) {
		assert.True(t, unitsInTier(dec("750"), tiers[2]).Equal(dec("250")))
	})
}

func TestTierFor(t *testing.T) {
	tiers := threeTiers()

	t.Run("boundary usage selects the lower tier", func(t *testing.T) {
		tier := tierFor(dec("100"), tiers)
		assert.True(t, tier.PerUnitAmount.Equal(dec("0.10")))
	})

	t.Run("usage just past a boundary selects the next tier", func(t *testing.T) {
		tier := tierFor(dec("100.001"), tiers)
		assert.True(t, tier.PerUnitAmount.Equal(dec("0.05")))
	})

	t.Run("open-ended tier catches everything beyond", func(t *testing.T) {
		tier := tierFor(dec("99999"), tiers)
		assert.True(t, tier.PerUnitAmount.Equal(dec("0.01")))
	})

	t.Run("usage beyond a bounded last tier is priced by it", func(t *testing.T) {
		bounded := []Tier{
			{FromValue: dec("0"), ToValue: decPtr("100"), PerUnitAmount: dec("0.10")},
		}
		tier := tierFor(dec("150"), bounded)
		assert.True(t, tier.PerUnitAmount.Equal(dec("0.10")))
	})
}

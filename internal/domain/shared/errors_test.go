package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorIs(t *testing.T) {
	t.Run("helpers match their sentinels", func(t *testing.T) {
		assert.True(t, errors.Is(AggregationFailure("bad event %s", "tx-1"), ErrAggregationFailure))
		assert.True(t, errors.Is(ValidationFailure("empty code"), ErrValidationFailure))
		assert.True(t, errors.Is(UnsupportedModel("charge model", "dynamic"), ErrUnsupportedModel))
		assert.True(t, errors.Is(CurrencyFailure("DOGE"), ErrCurrencyFailure))
		assert.True(t, errors.Is(TaxServiceFailure(errors.New("timeout")), ErrTaxServiceFailure))
	})

	t.Run("different codes do not match", func(t *testing.T) {
		assert.False(t, errors.Is(ValidationFailure("x"), ErrAggregationFailure))
	})

	t.Run("wrapped errors still match", func(t *testing.T) {
		wrapped := fmt.Errorf("computing fees: %w", AggregationFailure("bad"))
		assert.True(t, errors.Is(wrapped, ErrAggregationFailure))
	})
}

func TestDomainErrorMessages(t *testing.T) {
	err := AggregationFailure("event %s has a non-numeric value", "tx-1")
	assert.Equal(t, CodeAggregationFailure, err.Code)
	assert.Contains(t, err.Error(), "tx-1")

	err = UnsupportedModel("aggregation type", "median_agg")
	assert.Contains(t, err.Error(), "median_agg")
}

func TestTaxServiceFailureUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := TaxServiceFailure(cause)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

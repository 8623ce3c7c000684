package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/shared"
)

// Result is the monetary outcome of applying a charge model to aggregated
// usage. Amount is expressed in major currency units; rounding to minor
// units happens in the fee assembler.
type Result struct {
	Amount decimal.Decimal
	Units  decimal.Decimal
	Count  int
}

// ChargeModel maps an aggregation result to a monetary amount. All
// implementations are pure functions of their parameters: no side effects,
// no I/O.
type ChargeModel interface {
	Apply(result *metering.AggregationResult) (*Result, error)
}

// NewChargeModel builds the model for the charge's pricing shape with the
// given parameters (either the charge's own or a group override). The
// parameters are validated up front; the switch is exhaustive over the
// closed ChargeModelType set.
func NewChargeModel(model ChargeModelType, props Properties) (ChargeModel, error) {
	if err := props.Validate(model); err != nil {
		return nil, err
	}
	switch model {
	case ChargeModelStandard:
		return &StandardModel{props: props}, nil
	case ChargeModelGraduated:
		return &GraduatedModel{props: props}, nil
	case ChargeModelPackage:
		return &PackageModel{props: props}, nil
	case ChargeModelPercentage:
		return &PercentageModel{props: props}, nil
	case ChargeModelVolume:
		return &VolumeModel{props: props}, nil
	default:
		return nil, shared.UnsupportedModel("charge model", string(model))
	}
}

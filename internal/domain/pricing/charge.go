package pricing

import (
	"github.com/google/uuid"

	"github.com/billing/engine/internal/domain/shared"
)

// ChargeModelType represents the pricing shape applied to aggregated usage.
// The set is closed: dispatch over it is exhaustive and an unknown value is
// an unsupported_model error.
type ChargeModelType string

const (
	// ChargeModelStandard prices every unit at a flat rate
	ChargeModelStandard ChargeModelType = "standard"

	// ChargeModelGraduated splits usage across ascending tiers, each with
	// its own rate and optional flat fee
	ChargeModelGraduated ChargeModelType = "graduated"

	// ChargeModelPackage sells usage in fixed-size bundles
	ChargeModelPackage ChargeModelType = "package"

	// ChargeModelPercentage prices usage as a percentage of its value plus
	// an optional fixed amount per event
	ChargeModelPercentage ChargeModelType = "percentage"

	// ChargeModelVolume selects a single tier from total usage and applies
	// its rate to every unit
	ChargeModelVolume ChargeModelType = "volume"
)

// String returns the string representation of the charge model type
func (t ChargeModelType) String() string {
	return string(t)
}

// IsValid returns true if the charge model type is known
func (t ChargeModelType) IsValid() bool {
	switch t {
	case ChargeModelStandard,
		ChargeModelGraduated,
		ChargeModelPackage,
		ChargeModelPercentage,
		ChargeModelVolume:
		return true
	}
	return false
}

// AllChargeModelTypes returns all valid charge model types
func AllChargeModelTypes() []ChargeModelType {
	return []ChargeModelType{
		ChargeModelStandard,
		ChargeModelGraduated,
		ChargeModelPackage,
		ChargeModelPercentage,
		ChargeModelVolume,
	}
}

// GroupProperties overrides the charge parameters for one metric group
type GroupProperties struct {
	GroupID uuid.UUID
	Values  Properties
}

// Charge binds a billable metric to a pricing model within a plan
type Charge struct {
	shared.BaseEntity
	OrganizationID   uuid.UUID
	PlanID           uuid.UUID
	BillableMetricID uuid.UUID
	Model            ChargeModelType
	Properties       Properties

	// GroupProperties fans the charge out into one fee per group. Empty
	// means a single ungrouped fee from Properties.
	GroupProperties []GroupProperties

	// Invoiceable pay-in-advance charges trigger an invoice instead of a
	// bare fee on the event-time path
	Invoiceable bool

	// PayInAdvance charges are computed synchronously at event ingestion
	PayInAdvance bool

	// MinAmountCents is the minimum commitment in minor currency units; a
	// positive value makes the assembler create a true-up fee for any
	// shortfall
	MinAmountCents int64
}

// HasGroupProperties reports whether the charge fans out per group
func (c *Charge) HasGroupProperties() bool {
	return len(c.GroupProperties) > 0
}

// Validate checks the charge configuration against its model
func (c *Charge) Validate() error {
	if !c.Model.IsValid() {
		return shared.UnsupportedModel("charge model", string(c.Model))
	}
	if c.MinAmountCents < 0 {
		return shared.ValidationFailure("charge %s: minimum commitment cannot be negative", c.ID)
	}
	if err := c.Properties.Validate(c.Model); err != nil {
		return err
	}
	for _, gp := range c.GroupProperties {
		if gp.GroupID == uuid.Nil {
			return shared.ValidationFailure("charge %s: group properties require a group id", c.ID)
		}
		if err := gp.Values.Validate(c.Model); err != nil {
			return err
		}
	}
	return nil
}

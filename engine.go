// Package engine exposes the billing computation engine to embedders. It
// wires the gorm-backed stores to the application services and re-exports
// the types an embedder needs, so the internal packages stay internal.
package engine

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	appinvoicing "github.com/billing/engine/internal/application/invoicing"
	dominvoicing "github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/pricing"
	"github.com/billing/engine/internal/domain/shared"
	"github.com/billing/engine/internal/domain/shared/valueobject"
	"github.com/billing/engine/internal/infrastructure/persistence"
)

// Inputs and results of the two computation paths.
type (
	Boundaries          = appinvoicing.Boundaries
	ChargeInput         = appinvoicing.ChargeInput
	ChargeResult        = appinvoicing.ChargeResult
	ChargeServiceConfig = appinvoicing.ChargeServiceConfig
	PayInAdvanceInput   = appinvoicing.PayInAdvanceInput
	PayInAdvanceOutcome = appinvoicing.PayInAdvanceOutcome
	CatalogEntry        = appinvoicing.CatalogEntry
	ChargeCatalog       = appinvoicing.ChargeCatalog
)

// Domain types an embedder constructs or reads back.
type (
	BillableMetric  = metering.BillableMetric
	AggregationType = metering.AggregationType
	Event           = metering.Event
	Group           = metering.Group
	Charge          = pricing.Charge
	ChargeModelType = pricing.ChargeModelType
	ChargeProperty  = pricing.Properties
	Fee             = dominvoicing.Fee
	Currency        = valueobject.Currency
	TaxService      = dominvoicing.TaxService
	EventPublisher  = shared.EventPublisher
	DomainEvent     = shared.DomainEvent
)

// Aggregation types of the closed metric enum.
const (
	AggregationTypeCount          = metering.AggregationTypeCount
	AggregationTypeSum            = metering.AggregationTypeSum
	AggregationTypeMax            = metering.AggregationTypeMax
	AggregationTypeUniqueCount    = metering.AggregationTypeUniqueCount
	AggregationTypeRecurringCount = metering.AggregationTypeRecurringCount
)

// Charge models of the closed pricing enum.
const (
	ChargeModelStandard   = pricing.ChargeModelStandard
	ChargeModelGraduated  = pricing.ChargeModelGraduated
	ChargeModelPackage    = pricing.ChargeModelPackage
	ChargeModelPercentage = pricing.ChargeModelPercentage
	ChargeModelVolume     = pricing.ChargeModelVolume
)

// Engine bundles the two computation services over one database handle.
type Engine struct {
	// Charges runs the invoice-time path: windowed aggregation, charge
	// model, taxes, true-up, atomic commit.
	Charges *appinvoicing.ChargeService

	// PayInAdvance runs the event-time path. Nil unless Options.Catalog
	// was provided.
	PayInAdvance *appinvoicing.PayInAdvanceService

	db     *gorm.DB
	events *persistence.GormEventStore
}

// Ingest stores one usage event for later aggregation
func (e *Engine) Ingest(ctx context.Context, event *Event) error {
	return e.events.SaveEvent(ctx, event)
}

// Options configures New. Taxes, Publisher and Logger are optional; a nil
// Catalog disables the pay-in-advance service.
type Options struct {
	Catalog   ChargeCatalog
	Taxes     TaxService
	Publisher EventPublisher
	Logger    *zap.Logger
	Charge    ChargeServiceConfig
}

// New builds an engine over an open gorm handle. The caller owns the
// handle's lifecycle; Migrate creates the tables when needed.
func New(db *gorm.DB, opts Options) (*Engine, error) {
	if db == nil {
		return nil, shared.ValidationFailure("engine requires a database handle")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	taxes := opts.Taxes
	if taxes == nil {
		taxes = NoTaxes{}
	}

	events := persistence.NewGormEventStore(db)
	recurring := persistence.NewGormRecurringItemStore(db)
	fees := persistence.NewGormFeeStore(db)

	e := &Engine{
		Charges: appinvoicing.NewChargeService(
			events, recurring, fees, taxes, opts.Publisher, logger, opts.Charge,
		),
		db:     db,
		events: events,
	}
	if opts.Catalog != nil {
		e.PayInAdvance = appinvoicing.NewPayInAdvanceService(
			opts.Catalog, fees, taxes, opts.Publisher, logger,
		)
	}
	return e, nil
}

// Migrate creates or updates the engine's tables
func (e *Engine) Migrate() error {
	return persistence.AutoMigrate(e.db)
}

// NoTaxes leaves every fee untaxed. The default when no TaxService is wired.
type NoTaxes struct{}

// ApplyTaxes implements TaxService
func (NoTaxes) ApplyTaxes(context.Context, *Fee) error { return nil }

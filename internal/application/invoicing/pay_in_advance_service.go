package invoicing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/pricing"
	"github.com/billing/engine/internal/domain/shared"
	"github.com/billing/engine/internal/domain/shared/valueobject"
)

// CatalogEntry pairs a pay-in-advance charge with its billable metric
type CatalogEntry struct {
	Charge *pricing.Charge
	Metric *metering.BillableMetric
}

// ChargeCatalog looks up the pay-in-advance charges matching an event's
// metric code. Charge and metric storage is owned by an external
// collaborator.
type ChargeCatalog interface {
	PayInAdvanceCharges(ctx context.Context, organizationID uuid.UUID, code string) ([]CatalogEntry, error)
}

// EventTypeInvoiceRequested is published for invoiceable pay-in-advance
// charges instead of creating a bare fee
const EventTypeInvoiceRequested = "invoicing.pay_in_advance_invoice_requested"

// PayInAdvanceInput carries the freshly ingested event and its billing
// context
type PayInAdvanceInput struct {
	OrganizationID uuid.UUID
	SubscriptionID uuid.UUID
	Event          *metering.Event
	Boundaries     Boundaries
	Currency       valueobject.Currency
}

// PayInAdvanceOutcome reports one charge's computation. Failures are
// per-charge: one failed charge never blocks its siblings.
type PayInAdvanceOutcome struct {
	ChargeID         uuid.UUID
	Fee              *invoicing.Fee
	InvoiceTriggered bool
	Err              error
}

// PayInAdvanceService runs the event-time computation path. It executes on
// the ingestion thread of control, so it stays short and bounded: a charge
// lookup plus one single-event pipeline per matching charge.
type PayInAdvanceService struct {
	catalog   ChargeCatalog
	fees      invoicing.FeeStore
	taxes     invoicing.TaxService
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPayInAdvanceService creates a new PayInAdvanceService. It takes no
// event store on purpose: the event-time path never scans the window.
func NewPayInAdvanceService(
	catalog ChargeCatalog,
	fees invoicing.FeeStore,
	taxes invoicing.TaxService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PayInAdvanceService {
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &PayInAdvanceService{
		catalog:   catalog,
		fees:      fees,
		taxes:     taxes,
		publisher: publisher,
		logger:    logger,
	}
}

// Call computes one outcome per matching pay-in-advance charge. The fee is
// scoped to the trigger event alone, independent of the windowed
// aggregation running elsewhere.
func (s *PayInAdvanceService) Call(ctx context.Context, input PayInAdvanceInput) ([]PayInAdvanceOutcome, error) {
	if input.Event == nil {
		return nil, shared.ValidationFailure("pay-in-advance computation requires a trigger event")
	}

	entries, err := s.catalog.PayInAdvanceCharges(ctx, input.OrganizationID, input.Event.Code)
	if err != nil {
		return nil, err
	}

	outcomes := make([]PayInAdvanceOutcome, 0, len(entries))
	for _, entry := range entries {
		outcome := s.computeCharge(ctx, input, entry)
		if outcome.Err != nil {
			s.logger.Warn("pay-in-advance charge computation failed",
				zap.String("charge_id", entry.Charge.ID.String()),
				zap.String("event_transaction_id", input.Event.TransactionID),
				zap.Error(outcome.Err))
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *PayInAdvanceService) computeCharge(ctx context.Context, input PayInAdvanceInput, entry CatalogEntry) PayInAdvanceOutcome {
	outcome := PayInAdvanceOutcome{ChargeID: entry.Charge.ID}

	// The fee covers the trigger event alone; no store access happens here.
	eventResult, err := metering.TriggerAggregation(entry.Metric, input.Event)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	model, err := pricing.NewChargeModel(entry.Charge.Model, entry.Charge.Properties)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	modelResult, err := model.Apply(eventResult)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	if entry.Charge.Invoiceable {
		// Invoice assembly is external; hand the computation over.
		if err := s.publisher.Publish(ctx, newInvoiceRequested(input, entry)); err != nil {
			outcome.Err = err
			return outcome
		}
		outcome.InvoiceTriggered = true
		return outcome
	}

	fee, err := s.buildEventFee(input, entry, modelResult)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if err := s.taxes.ApplyTaxes(ctx, fee); err != nil {
		outcome.Err = shared.TaxServiceFailure(err)
		return outcome
	}
	if err := fee.Validate(); err != nil {
		outcome.Err = err
		return outcome
	}
	if err := s.fees.CommitFees(ctx, []*invoicing.Fee{fee}); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Fee = fee
	return outcome
}

func (s *PayInAdvanceService) buildEventFee(input PayInAdvanceInput, entry CatalogEntry, modelResult *pricing.Result) (*invoicing.Fee, error) {
	money, err := valueobject.NewMoney(modelResult.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	cents, err := money.Cents()
	if err != nil {
		return nil, err
	}

	eventID := input.Event.ID
	return &invoicing.Fee{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: input.OrganizationID,
		SubscriptionID: input.SubscriptionID,
		ChargeID:       entry.Charge.ID,
		FeeType:        invoicing.FeeTypeCharge,
		AmountCents:    cents,
		Currency:       input.Currency,
		Units:          modelResult.Units,
		EventsCount:    1,
		PaymentStatus:  invoicing.PaymentStatusPending,
		PayInAdvance:   true,
		EventID:        &eventID,
		PeriodFrom:     input.Boundaries.From,
		PeriodTo:       input.Boundaries.To,
	}, nil
}

// invoiceRequested names the usage event field UsageEventID so it does not
// shadow the promoted EventID accessor of BaseDomainEvent.
type invoiceRequested struct {
	shared.BaseDomainEvent
	ChargeID      uuid.UUID `json:"charge_id"`
	UsageEventID  uuid.UUID `json:"event_id"`
	TransactionID string    `json:"transaction_id"`
}

func newInvoiceRequested(input PayInAdvanceInput, entry CatalogEntry) *invoiceRequested {
	return &invoiceRequested{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRequested, "Charge", entry.Charge.ID, input.OrganizationID),
		ChargeID:        entry.Charge.ID,
		UsageEventID:    input.Event.ID,
		TransactionID:   input.Event.TransactionID,
	}
}

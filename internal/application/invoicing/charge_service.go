package invoicing

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/pricing"
	"github.com/billing/engine/internal/domain/shared"
	"github.com/billing/engine/internal/domain/shared/valueobject"
)

// Boundaries is the billing-period window supplied by the caller. The
// engine never derives it.
type Boundaries struct {
	// From and To bound the aggregation window [From, To)
	From time.Time
	To   time.Time

	// PeriodDays and BilledDays prorate the minimum commitment when the
	// window covers only part of the billing period. Zero values mean no
	// proration.
	PeriodDays int
	BilledDays int
}

// CommitmentRatio returns the fraction of the period covered by the window
func (b Boundaries) CommitmentRatio() decimal.Decimal {
	if b.PeriodDays <= 0 || b.BilledDays <= 0 || b.BilledDays >= b.PeriodDays {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(b.BilledDays)).Div(decimal.NewFromInt(int64(b.PeriodDays)))
}

// ChargeInput identifies one (invoice, subscription, charge) computation
type ChargeInput struct {
	OrganizationID uuid.UUID
	InvoiceID      uuid.UUID
	SubscriptionID uuid.UUID
	Charge         *pricing.Charge
	Metric         *metering.BillableMetric
	Boundaries     Boundaries
	Currency       valueobject.Currency
}

// ChargeResult carries the fee set produced for one tuple
type ChargeResult struct {
	Fees []*invoicing.Fee

	// AlreadyBilled is true when the idempotency guard returned
	// previously committed fees without recomputing
	AlreadyBilled bool
}

// TotalAmountCents sums the fee amounts excluding taxes
func (r *ChargeResult) TotalAmountCents() int64 {
	var total int64
	for _, fee := range r.Fees {
		total += fee.AmountCents
	}
	return total
}

// ChargeServiceConfig tunes the fee assembler
type ChargeServiceConfig struct {
	// GroupConcurrency bounds the parallel group fan-out within one tuple
	GroupConcurrency int
}

// DefaultChargeServiceConfig returns default configuration
func DefaultChargeServiceConfig() ChargeServiceConfig {
	return ChargeServiceConfig{GroupConcurrency: 4}
}

// ChargeService assembles the fee set for one (invoice, subscription,
// charge) tuple: aggregation, charge-model application, rounding to minor
// currency units, tax application, true-up and atomic commit.
type ChargeService struct {
	events    metering.EventStore
	recurring metering.RecurringItemStore
	fees      invoicing.FeeStore
	taxes     invoicing.TaxService
	publisher shared.EventPublisher
	logger    *zap.Logger
	config    ChargeServiceConfig
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	events metering.EventStore,
	recurring metering.RecurringItemStore,
	fees invoicing.FeeStore,
	taxes invoicing.TaxService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	config ChargeServiceConfig,
) *ChargeService {
	if config.GroupConcurrency <= 0 {
		config.GroupConcurrency = DefaultChargeServiceConfig().GroupConcurrency
	}
	if publisher == nil {
		publisher = shared.NoopPublisher{}
	}
	return &ChargeService{
		events:    events,
		recurring: recurring,
		fees:      fees,
		taxes:     taxes,
		publisher: publisher,
		logger:    logger,
		config:    config,
	}
}

// Call produces and commits the fee set for the tuple. Re-invocation for an
// already billed tuple returns the committed fees unchanged; concurrent
// invocations never both commit, the loser observes the winner's fees.
func (s *ChargeService) Call(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	tuple := invoicing.FeeTuple{
		InvoiceID:      input.InvoiceID,
		ChargeID:       input.Charge.ID,
		SubscriptionID: input.SubscriptionID,
	}
	existing, err := s.fees.ExistingFees(ctx, tuple)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &ChargeResult{Fees: existing, AlreadyBilled: true}, nil
	}

	fees, err := s.computeFees(ctx, input, true)
	if err != nil {
		return nil, err
	}

	if trueUp, err := s.trueUpFee(ctx, input, fees); err != nil {
		return nil, err
	} else if trueUp != nil {
		fees = append(fees, trueUp)
	}

	for _, fee := range fees {
		if err := fee.Validate(); err != nil {
			return nil, err
		}
	}

	if err := s.fees.CommitFees(ctx, fees); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent call won the commit; return its fees.
			winner, readErr := s.fees.ExistingFees(ctx, tuple)
			if readErr != nil {
				return nil, readErr
			}
			return &ChargeResult{Fees: winner, AlreadyBilled: true}, nil
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, invoicing.NewFeesCommitted(input.OrganizationID, tuple, fees)); err != nil {
		// The commit already succeeded; publication problems must not
		// fail the tuple.
		s.logger.Warn("failed to publish fees committed event",
			zap.String("invoice_id", input.InvoiceID.String()),
			zap.Error(err))
	}

	s.logger.Info("fees committed",
		zap.String("invoice_id", input.InvoiceID.String()),
		zap.String("charge_id", input.Charge.ID.String()),
		zap.String("subscription_id", input.SubscriptionID.String()),
		zap.Int("fees", len(fees)))

	return &ChargeResult{Fees: fees}, nil
}

// CurrentUsage computes the fee set without the idempotency guard, tax
// application, true-up or commit. Used to preview in-period usage.
func (s *ChargeService) CurrentUsage(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	fees, err := s.computeFees(ctx, input, false)
	if err != nil {
		return nil, err
	}
	return &ChargeResult{Fees: fees}, nil
}

func (s *ChargeService) validateInput(input ChargeInput) error {
	if input.Charge == nil || input.Metric == nil {
		return shared.ValidationFailure("charge computation requires a charge and a billable metric")
	}
	if input.Charge.BillableMetricID != input.Metric.ID {
		return shared.ValidationFailure("charge %s is not attached to metric %s", input.Charge.ID, input.Metric.Code)
	}
	if !input.Currency.IsValid() {
		return shared.CurrencyFailure(string(input.Currency))
	}
	if err := input.Metric.Validate(); err != nil {
		return err
	}
	return input.Charge.Validate()
}

// computeFees runs the aggregation and charge-model pipeline, once for an
// ungrouped charge or once per configured group. Group computations run
// concurrently and are merged sorted by group id so the result order is
// deterministic before true-up is evaluated.
func (s *ChargeService) computeFees(ctx context.Context, input ChargeInput, applyTaxes bool) ([]*invoicing.Fee, error) {
	cache := newAggregatorCache(s.events, s.recurring)

	if !input.Charge.HasGroupProperties() {
		fee, err := s.computeOne(ctx, input, input.Charge.Properties, nil, cache, applyTaxes)
		if err != nil {
			return nil, err
		}
		return []*invoicing.Fee{fee}, nil
	}

	fees := make([]*invoicing.Fee, len(input.Charge.GroupProperties))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.GroupConcurrency)
	for i, groupProps := range input.Charge.GroupProperties {
		i, groupProps := i, groupProps
		group, ok := input.Metric.GroupByID(groupProps.GroupID)
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound,
				"group "+groupProps.GroupID.String()+" is not configured on metric "+input.Metric.Code)
		}
		g.Go(func() error {
			fee, err := s.computeOne(gctx, input, groupProps.Values, group, cache, applyTaxes)
			if err != nil {
				return err
			}
			fees[i] = fee
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(fees, func(i, j int) bool {
		return fees[i].GroupID.String() < fees[j].GroupID.String()
	})
	return fees, nil
}

// computeOne aggregates usage for one billing subject, applies the charge
// model and converts the decimal amount to exact minor currency units.
// Each subject rounds independently.
func (s *ChargeService) computeOne(
	ctx context.Context,
	input ChargeInput,
	props pricing.Properties,
	group *metering.Group,
	cache *aggregatorCache,
	applyTaxes bool,
) (*invoicing.Fee, error) {
	aggregator, err := cache.aggregatorFor(input.Metric, input.SubscriptionID, group, nil)
	if err != nil {
		return nil, err
	}

	window := metering.Window{From: input.Boundaries.From, To: input.Boundaries.To}
	aggResult, err := aggregator.Aggregate(ctx, window, metering.Options{
		FreeUnitsPerEvents:           props.FreeUnitsPerEvents,
		FreeUnitsPerTotalAggregation: props.FreeUnitsPerTotalAggregation,
	})
	if err != nil {
		return nil, err
	}

	model, err := pricing.NewChargeModel(input.Charge.Model, props)
	if err != nil {
		return nil, err
	}
	modelResult, err := model.Apply(aggResult)
	if err != nil {
		return nil, err
	}

	fee, err := s.buildFee(input, group, modelResult)
	if err != nil {
		return nil, err
	}
	if applyTaxes {
		if err := s.taxes.ApplyTaxes(ctx, fee); err != nil {
			return nil, shared.TaxServiceFailure(err)
		}
	}
	return fee, nil
}

func (s *ChargeService) buildFee(input ChargeInput, group *metering.Group, modelResult *pricing.Result) (*invoicing.Fee, error) {
	money, err := valueobject.NewMoney(modelResult.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	cents, err := money.Cents()
	if err != nil {
		return nil, err
	}

	var groupID *uuid.UUID
	if group != nil {
		id := group.ID
		groupID = &id
	}

	return &invoicing.Fee{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: input.OrganizationID,
		InvoiceID:      input.InvoiceID,
		SubscriptionID: input.SubscriptionID,
		ChargeID:       input.Charge.ID,
		GroupID:        groupID,
		FeeType:        invoicing.FeeTypeCharge,
		AmountCents:    cents,
		Currency:       input.Currency,
		Units:          modelResult.Units,
		EventsCount:    modelResult.Count,
		PaymentStatus:  invoicing.PaymentStatusPending,
		PeriodFrom:     input.Boundaries.From,
		PeriodTo:       input.Boundaries.To,
	}, nil
}

// trueUpFee creates the shortfall fee when the charge declares a minimum
// commitment and the computed fees fall short of it. An exactly met or
// exceeded commitment creates nothing.
func (s *ChargeService) trueUpFee(ctx context.Context, input ChargeInput, fees []*invoicing.Fee) (*invoicing.Fee, error) {
	if input.Charge.MinAmountCents <= 0 {
		return nil, nil
	}

	commitment := decimal.NewFromInt(input.Charge.MinAmountCents).
		Mul(input.Boundaries.CommitmentRatio()).
		RoundBank(0).IntPart()

	var total int64
	for _, fee := range fees {
		total += fee.AmountCents
	}
	shortfall := commitment - total
	if shortfall <= 0 {
		return nil, nil
	}

	fee := &invoicing.Fee{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: input.OrganizationID,
		InvoiceID:      input.InvoiceID,
		SubscriptionID: input.SubscriptionID,
		ChargeID:       input.Charge.ID,
		FeeType:        invoicing.FeeTypeTrueUp,
		AmountCents:    shortfall,
		Currency:       input.Currency,
		Units:          decimal.NewFromInt(1),
		PaymentStatus:  invoicing.PaymentStatusPending,
		PeriodFrom:     input.Boundaries.From,
		PeriodTo:       input.Boundaries.To,
	}
	if err := s.taxes.ApplyTaxes(ctx, fee); err != nil {
		return nil, shared.TaxServiceFailure(err)
	}
	return fee, nil
}

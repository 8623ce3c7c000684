package persistence

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/metering"
	"github.com/billing/engine/internal/domain/shared"
	"github.com/billing/engine/internal/domain/shared/valueobject"
)

// EventModel is the GORM model for metered usage events
type EventModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_events_transaction"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;index;not null"`
	Code           string    `gorm:"type:varchar(255);index;not null"`
	TransactionID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_events_transaction"`
	Timestamp      time.Time `gorm:"index;not null"`
	Properties     []byte    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (EventModel) TableName() string {
	return "billing_events"
}

// ToEntity converts the model to a domain entity
func (m *EventModel) ToEntity() *metering.Event {
	properties := make(map[string]any)
	if len(m.Properties) > 0 {
		_ = json.Unmarshal(m.Properties, &properties)
	}
	return &metering.Event{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		SubscriptionID: m.SubscriptionID,
		Code:           m.Code,
		TransactionID:  m.TransactionID,
		Timestamp:      m.Timestamp,
		Properties:     properties,
	}
}

// EventModelFromEntity creates a model from a domain entity
func EventModelFromEntity(e *metering.Event) *EventModel {
	propertyBytes, err := json.Marshal(e.Properties)
	if err != nil || e.Properties == nil {
		propertyBytes = []byte("{}")
	}
	return &EventModel{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		SubscriptionID: e.SubscriptionID,
		Code:           e.Code,
		TransactionID:  e.TransactionID,
		Timestamp:      e.Timestamp,
		Properties:     propertyBytes,
	}
}

// FeeModel is the GORM model for fees. The composite unique index over
// (invoice, charge, subscription, group, fee type) is the storage-level
// guard behind the at-most-once fee creation invariant: a concurrent
// commit for the same tuple loses with a duplicate-key error. Rows with a
// NULL invoice (pay-in-advance fees) never collide on it.
type FeeModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null"`
	InvoiceID      *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_fees_tuple"`
	SubscriptionID uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_fees_tuple"`
	ChargeID       uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_fees_tuple"`
	GroupKey       string     `gorm:"type:varchar(64);not null;default:'';uniqueIndex:idx_fees_tuple"`
	FeeType        string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_fees_tuple"`
	AmountCents    int64      `gorm:"not null"`
	Currency       string     `gorm:"type:varchar(3);not null"`
	Units          string     `gorm:"type:varchar(40);not null;default:'0'"`
	EventsCount    int        `gorm:"not null;default:0"`
	TaxAmountCents int64      `gorm:"not null;default:0"`
	TaxRate        string     `gorm:"type:varchar(40);not null;default:'0'"`
	PaymentStatus  string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PayInAdvance   bool       `gorm:"not null;default:false"`
	EventID        *uuid.UUID `gorm:"type:uuid"`
	PeriodFrom     time.Time
	PeriodTo       time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (FeeModel) TableName() string {
	return "fees"
}

// ToEntity converts the model to a domain entity
func (m *FeeModel) ToEntity() *invoicing.Fee {
	units, err := decimal.NewFromString(m.Units)
	if err != nil {
		units = decimal.Zero
	}
	taxRate, err := decimal.NewFromString(m.TaxRate)
	if err != nil {
		taxRate = decimal.Zero
	}

	var invoiceID uuid.UUID
	if m.InvoiceID != nil {
		invoiceID = *m.InvoiceID
	}
	var groupID *uuid.UUID
	if m.GroupKey != "" {
		if id, err := uuid.Parse(m.GroupKey); err == nil {
			groupID = &id
		}
	}

	return &invoicing.Fee{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		OrganizationID: m.OrganizationID,
		InvoiceID:      invoiceID,
		SubscriptionID: m.SubscriptionID,
		ChargeID:       m.ChargeID,
		GroupID:        groupID,
		FeeType:        invoicing.FeeType(m.FeeType),
		AmountCents:    m.AmountCents,
		Currency:       valueobject.Currency(m.Currency),
		Units:          units,
		EventsCount:    m.EventsCount,
		TaxAmountCents: m.TaxAmountCents,
		TaxRate:        taxRate,
		PaymentStatus:  invoicing.PaymentStatus(m.PaymentStatus),
		PayInAdvance:   m.PayInAdvance,
		EventID:        m.EventID,
		PeriodFrom:     m.PeriodFrom,
		PeriodTo:       m.PeriodTo,
	}
}

// FeeModelFromEntity creates a model from a domain entity
func FeeModelFromEntity(f *invoicing.Fee) *FeeModel {
	var invoiceID *uuid.UUID
	if f.InvoiceID != uuid.Nil {
		id := f.InvoiceID
		invoiceID = &id
	}
	groupKey := ""
	if f.GroupID != nil {
		groupKey = f.GroupID.String()
	}

	return &FeeModel{
		ID:             f.ID,
		OrganizationID: f.OrganizationID,
		InvoiceID:      invoiceID,
		SubscriptionID: f.SubscriptionID,
		ChargeID:       f.ChargeID,
		GroupKey:       groupKey,
		FeeType:        string(f.FeeType),
		AmountCents:    f.AmountCents,
		Currency:       string(f.Currency),
		Units:          f.Units.String(),
		EventsCount:    f.EventsCount,
		TaxAmountCents: f.TaxAmountCents,
		TaxRate:        f.TaxRate.String(),
		PaymentStatus:  string(f.PaymentStatus),
		PayInAdvance:   f.PayInAdvance,
		EventID:        f.EventID,
		PeriodFrom:     f.PeriodFrom,
		PeriodTo:       f.PeriodTo,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// RecurringItemModel tracks recurring-count items across billing periods
type RecurringItemModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID  `gorm:"type:uuid;index:idx_recurring_subject;not null"`
	MetricID       uuid.UUID  `gorm:"type:uuid;index:idx_recurring_subject;not null"`
	ItemID         string     `gorm:"type:varchar(255);not null"`
	AddedAt        time.Time  `gorm:"not null"`
	RemovedAt      *time.Time `gorm:""`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (RecurringItemModel) TableName() string {
	return "recurring_billed_items"
}

// AutoMigrate creates or updates the engine's tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&EventModel{},
		&FeeModel{},
		&RecurringItemModel{},
	)
}

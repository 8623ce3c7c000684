package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/shared"
)

func TestSerializerRoundTrip(t *testing.T) {
	serializer := NewSerializer()

	tuple := invoicing.FeeTuple{
		InvoiceID:      uuid.New(),
		ChargeID:       uuid.New(),
		SubscriptionID: uuid.New(),
	}
	fee := &invoicing.Fee{BaseEntity: shared.NewBaseEntity()}
	original := invoicing.NewFeesCommitted(uuid.New(), tuple, []*invoicing.Fee{fee})

	payload, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(invoicing.EventTypeFeesCommitted, payload)
	require.NoError(t, err)

	committed, ok := decoded.(*invoicing.FeesCommitted)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), committed.EventID())
	assert.Equal(t, original.OrganizationID(), committed.OrganizationID())
	assert.Equal(t, tuple, committed.Tuple)
	assert.Equal(t, []uuid.UUID{fee.ID}, committed.FeeIDs)
}

func TestSerializerUnknownType(t *testing.T) {
	serializer := NewSerializer()

	_, err := serializer.Deserialize("billing.unknown", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing.unknown")
}

func TestSerializerMalformedPayload(t *testing.T) {
	serializer := NewSerializer()

	_, err := serializer.Deserialize(invoicing.EventTypeFeesCommitted, []byte("{not json"))
	assert.Error(t, err)
}

func TestSerializerIsRegistered(t *testing.T) {
	serializer := NewSerializer()

	assert.True(t, serializer.IsRegistered(invoicing.EventTypeFeesCommitted))
	assert.False(t, serializer.IsRegistered("billing.unknown"))
}

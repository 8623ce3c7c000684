package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/billing/engine/internal/domain/invoicing"
	"github.com/billing/engine/internal/domain/shared"
)

// Serializer converts domain events to and from their stored JSON form. The
// registry maps an event type string back to the concrete Go type so the
// outbox processor can rebuild the event it dispatches.
type Serializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewSerializer creates a serializer with the engine's own events
// pre-registered
func NewSerializer() *Serializer {
	s := &Serializer{registry: make(map[string]reflect.Type)}
	s.Register(invoicing.EventTypeFeesCommitted, &invoicing.FeesCommitted{})
	return s
}

// Register maps an event type string to a concrete event type
func (s *Serializer) Register(eventType string, prototype shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Serialize encodes a domain event as JSON
func (s *Serializer) Serialize(domainEvent shared.DomainEvent) ([]byte, error) {
	return json.Marshal(domainEvent)
}

// Deserialize rebuilds the registered concrete event from its JSON form
func (s *Serializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s event: %w", eventType, err)
	}

	domainEvent, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("type registered for %s does not implement DomainEvent", eventType)
	}
	return domainEvent, nil
}

// IsRegistered reports whether an event type can be deserialized
func (s *Serializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

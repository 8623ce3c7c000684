package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// OrganizationIDKey is the context key for the billing organization
	OrganizationIDKey contextKey = "organization_id"
	// SubscriptionIDKey is the context key for the billed subscription
	SubscriptionIDKey contextKey = "subscription_id"
	// InvoiceIDKey is the context key for the invoice being assembled
	InvoiceIDKey contextKey = "invoice_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if
// not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithOrganizationID adds the organization to context and returns an
// enriched logger
func WithOrganizationID(ctx context.Context, logger *zap.Logger, organizationID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, OrganizationIDKey, organizationID)
	enriched := logger.With(zap.String("organization_id", organizationID))
	return WithContext(ctx, enriched), enriched
}

// WithSubscriptionID adds the subscription to context and returns an
// enriched logger
func WithSubscriptionID(ctx context.Context, logger *zap.Logger, subscriptionID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, SubscriptionIDKey, subscriptionID)
	enriched := logger.With(zap.String("subscription_id", subscriptionID))
	return WithContext(ctx, enriched), enriched
}

// WithInvoiceID adds the invoice to context and returns an enriched logger
func WithInvoiceID(ctx context.Context, logger *zap.Logger, invoiceID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, InvoiceIDKey, invoiceID)
	enriched := logger.With(zap.String("invoice_id", invoiceID))
	return WithContext(ctx, enriched), enriched
}

// GetOrganizationID retrieves the organization from context
func GetOrganizationID(ctx context.Context) string {
	if id, ok := ctx.Value(OrganizationIDKey).(string); ok {
		return id
	}
	return ""
}

// GetSubscriptionID retrieves the subscription from context
func GetSubscriptionID(ctx context.Context) string {
	if id, ok := ctx.Value(SubscriptionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetInvoiceID retrieves the invoice from context
func GetInvoiceID(ctx context.Context) string {
	if id, ok := ctx.Value(InvoiceIDKey).(string); ok {
		return id
	}
	return ""
}

// Package tracer lets services emit spans without importing OpenTelemetry.
// OTel backs production; Noop is the default.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it to child
	// operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanKYCUpdateStatus,
	//       tracer.String(tracer.AttrProfileID, profileID.String()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the KYC service.
const (
	SpanKYCCreate       = "kyc.create_profile"
	SpanKYCGet          = "kyc.get_profile"
	SpanKYCList         = "kyc.list_profiles"
	SpanKYCUpdateStatus = "kyc.update_status"
	SpanKYCDelete       = "kyc.delete_profile"
	SpanKYCAuditTrail   = "kyc.audit_trail"
)

// Attribute keys.
const (
	AttrProfileID   = "kyc.profile_id"
	AttrCustomerID  = "kyc.customer_id"
	AttrStatus      = "kyc.status"
	AttrFromStatus  = "kyc.from_status"
	AttrPage        = "page"
	AttrLimit       = "limit"
	AttrResultCount = "result.count"
)

// Event names.
const (
	EventOutboxAppended = "outbox.appended"
)

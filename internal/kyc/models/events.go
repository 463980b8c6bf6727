package models

import "time"

// Outbox aggregate and event types published for KYC profiles.
const (
	AggregateProfile = "kyc_profile"

	EventProfileCreated = "kyc_profile_created"
	EventStatusChanged  = "kyc_status_changed"
	EventProfileDeleted = "kyc_profile_deleted"
)

// Event is the JSON payload written to the outbox for every profile mutation.
type Event struct {
	Type           string    `json:"type"`
	ProfileID      string    `json:"profile_id"`
	CustomerID     string    `json:"customer_id"`
	PreviousStatus *Status   `json:"previous_status,omitempty"`
	NewStatus      Status    `json:"new_status,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

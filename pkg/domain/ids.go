// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "paam/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing ProfileID where CheckID is expected.
type (
	ProfileID      uuid.UUID
	DocumentID     uuid.UUID
	CheckID        uuid.UUID
	AuditEntryID   uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	VersionID      uuid.UUID
	DownloadID     uuid.UUID
	ProjectID      uuid.UUID
	BuildID        uuid.UUID
	DeploymentID   uuid.UUID
	APIKeyID       uuid.UUID
)

// CustomerID is the organization-assigned customer reference (e.g. "CUST-001").
type CustomerID string

// MaxCustomerIDLength bounds customer references accepted at trust boundaries.
const MaxCustomerIDLength = 64

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseProfileID(s string) (ProfileID, error) {
	id, err := parseUUID(s, "profile ID")
	return ProfileID(id), err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseOrganizationID(s string) (OrganizationID, error) {
	id, err := parseUUID(s, "organization ID")
	return OrganizationID(id), err
}

func ParseVersionID(s string) (VersionID, error) {
	id, err := parseUUID(s, "version ID")
	return VersionID(id), err
}

func ParseProjectID(s string) (ProjectID, error) {
	id, err := parseUUID(s, "project ID")
	return ProjectID(id), err
}

func ParseBuildID(s string) (BuildID, error) {
	id, err := parseUUID(s, "build ID")
	return BuildID(id), err
}

func ParseAPIKeyID(s string) (APIKeyID, error) {
	id, err := parseUUID(s, "API key ID")
	return APIKeyID(id), err
}

func ParseCustomerID(s string) (CustomerID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "customer ID cannot be empty")
	}
	if len(s) > MaxCustomerIDLength {
		return "", dErrors.New(dErrors.CodeValidation, "customer ID is too long")
	}
	return CustomerID(s), nil
}

// String methods - for logging and debugging.

func (id ProfileID) String() string      { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id CheckID) String() string        { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id OrganizationID) String() string { return uuid.UUID(id).String() }
func (id VersionID) String() string      { return uuid.UUID(id).String() }
func (id DownloadID) String() string     { return uuid.UUID(id).String() }
func (id ProjectID) String() string      { return uuid.UUID(id).String() }
func (id BuildID) String() string        { return uuid.UUID(id).String() }
func (id DeploymentID) String() string   { return uuid.UUID(id).String() }
func (id APIKeyID) String() string       { return uuid.UUID(id).String() }
func (id CustomerID) String() string     { return string(id) }

// IsNil checks - used for service-layer validation.

func (id ProfileID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id OrganizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VersionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id BuildID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CustomerID) IsNil() bool     { return id == "" }

// parseUUID is the shared validation logic. Nil UUIDs parse successfully so
// that store lookups can answer with a proper not-found.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return id, nil
}

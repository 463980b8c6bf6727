package models

import (
	"net/mail"
	"strings"
	"time"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

// RiskLevel is the customer's AML risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// ParseRiskLevel accepts any casing and rejects unknown levels.
func ParseRiskLevel(raw string) (RiskLevel, error) {
	r := RiskLevel(strings.ToUpper(strings.TrimSpace(raw)))
	if r == "" {
		return "", dErrors.New(dErrors.CodeValidation, "riskLevel is required")
	}
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "riskLevel must be one of LOW, MEDIUM, HIGH")
	}
	return r, nil
}

// Status is the lifecycle state of a customer record.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

// Customer is an end customer of an organization. KYC profiles reference it
// by ID.
type Customer struct {
	ID                 id.CustomerID
	OrganizationID     *id.OrganizationID
	Email              string
	FirstName          string
	LastName           string
	DateOfBirth        *time.Time
	Nationality        string
	CountryOfResidence string
	RiskLevel          RiskLevel
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CreateInput carries the fields accepted when registering a customer.
// Empty RiskLevel and Status default to LOW and ACTIVE.
type CreateInput struct {
	ID                 id.CustomerID
	OrganizationID     *id.OrganizationID
	Email              string
	FirstName          string
	LastName           string
	DateOfBirth        *time.Time
	Nationality        string
	CountryOfResidence string
	RiskLevel          RiskLevel
	Status             Status
}

// NewCustomer validates in and builds a customer stamped with now.
func NewCustomer(in CreateInput, now time.Time) (*Customer, error) {
	if in.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "id is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "email must be a valid email")
	}
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "firstName and lastName are required")
	}
	if in.DateOfBirth != nil && in.DateOfBirth.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "dateOfBirth must be in the past")
	}

	risk := in.RiskLevel
	if risk == "" {
		risk = RiskLow
	}
	if !risk.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "riskLevel must be one of LOW, MEDIUM, HIGH")
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be one of ACTIVE, INACTIVE, SUSPENDED")
	}

	return &Customer{
		ID:                 in.ID,
		OrganizationID:     in.OrganizationID,
		Email:              email,
		FirstName:          first,
		LastName:           last,
		DateOfBirth:        in.DateOfBirth,
		Nationality:        strings.ToUpper(strings.TrimSpace(in.Nationality)),
		CountryOfResidence: strings.ToUpper(strings.TrimSpace(in.CountryOfResidence)),
		RiskLevel:          risk,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Filter narrows List. A nil RiskLevel matches every customer.
type Filter struct {
	RiskLevel *RiskLevel
}

package handler

import (
	"strings"
	"time"

	"paam/internal/customer/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/validation"
)

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	ID                 string `json:"id" validate:"required,notblank,max=64"`
	OrganizationID     string `json:"organizationId" validate:"omitempty,uuid"`
	Email              string `json:"email" validate:"required,email,max=254"`
	FirstName          string `json:"firstName" validate:"required,notblank,max=100"`
	LastName           string `json:"lastName" validate:"required,notblank,max=100"`
	DateOfBirth        string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Nationality        string `json:"nationality" validate:"omitempty,iso3166_1_alpha2"`
	CountryOfResidence string `json:"countryOfResidence" validate:"omitempty,iso3166_1_alpha2"`
	RiskLevel          string `json:"riskLevel" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Status             string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
}

func (r *CreateCustomerRequest) Sanitize() {
	if r == nil {
		return
	}
	r.ID = strings.TrimSpace(r.ID)
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
}

func (r *CreateCustomerRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(r.Email)
	r.Nationality = strings.ToUpper(strings.TrimSpace(r.Nationality))
	r.CountryOfResidence = strings.ToUpper(strings.TrimSpace(r.CountryOfResidence))
	r.RiskLevel = strings.ToUpper(strings.TrimSpace(r.RiskLevel))
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

func (r *CreateCustomerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToInput converts a validated request into the service input.
func (r *CreateCustomerRequest) ToInput() (models.CreateInput, error) {
	customerID, err := id.ParseCustomerID(r.ID)
	if err != nil {
		return models.CreateInput{}, err
	}
	in := models.CreateInput{
		ID:                 customerID,
		Email:              r.Email,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Nationality:        r.Nationality,
		CountryOfResidence: r.CountryOfResidence,
		RiskLevel:          models.RiskLevel(r.RiskLevel),
		Status:             models.Status(r.Status),
	}
	if r.OrganizationID != "" {
		orgID, err := id.ParseOrganizationID(r.OrganizationID)
		if err != nil {
			return models.CreateInput{}, err
		}
		in.OrganizationID = &orgID
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, r.DateOfBirth)
		if err != nil {
			return models.CreateInput{}, dErrors.New(dErrors.CodeValidation, "dateOfBirth must be YYYY-MM-DD")
		}
		in.DateOfBirth = &dob
	}
	return in, nil
}

// UpdateRiskLevelRequest is the body of PATCH /customers/{id}/risk-level.
type UpdateRiskLevelRequest struct {
	RiskLevel string `json:"riskLevel" validate:"required,oneof=LOW MEDIUM HIGH"`
}

func (r *UpdateRiskLevelRequest) Normalize() {
	if r == nil {
		return
	}
	r.RiskLevel = strings.ToUpper(strings.TrimSpace(r.RiskLevel))
}

func (r *UpdateRiskLevelRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

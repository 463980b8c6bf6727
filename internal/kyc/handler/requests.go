package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"paam/internal/kyc/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/validation"
)

// CreateProfileRequest is the body of POST /kyc. userId, ipAddress and
// userAgent are optional; the session and connection fill them in.
type CreateProfileRequest struct {
	CustomerID  string            `json:"customerId" validate:"required,notblank,max=64"`
	ProfileType string            `json:"profileType" validate:"required,oneof=INDIVIDUAL BUSINESS"`
	Documents   []DocumentRequest `json:"documents" validate:"required,min=1,max=20,dive"`
	Checks      []CheckRequest    `json:"checks" validate:"required,min=1,max=50,dive"`
	UserID      string            `json:"userId" validate:"max=128"`
	IPAddress   string            `json:"ipAddress" validate:"omitempty,ip"`
	UserAgent   string            `json:"userAgent" validate:"max=512"`
}

type DocumentRequest struct {
	Type    string `json:"type" validate:"required,oneof=PASSPORT ID_CARD DRIVERS_LICENSE RESIDENCE_PERMIT UTILITY_BILL BANK_STATEMENT BUSINESS_REGISTRATION SELFIE"`
	Status  string `json:"status" validate:"omitempty,oneof=PENDING PASSED FAILED"`
	FileURL string `json:"fileUrl" validate:"omitempty,url,max=2048"`
}

type CheckRequest struct {
	Type      string           `json:"type" validate:"required,notblank,max=64"`
	Status    string           `json:"status" validate:"omitempty,oneof=PENDING PASSED FAILED"`
	RiskScore *decimal.Decimal `json:"riskScore"`
}

func (r *CreateProfileRequest) Sanitize() {
	if r == nil {
		return
	}
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.IPAddress = strings.TrimSpace(r.IPAddress)
	r.UserAgent = strings.TrimSpace(r.UserAgent)
	for i := range r.Checks {
		r.Checks[i].Type = strings.TrimSpace(r.Checks[i].Type)
	}
	for i := range r.Documents {
		r.Documents[i].FileURL = strings.TrimSpace(r.Documents[i].FileURL)
	}
}

// Normalize upper-cases enumerations so "passed" and "PASSED" are equivalent.
func (r *CreateProfileRequest) Normalize() {
	if r == nil {
		return
	}
	r.ProfileType = upper(r.ProfileType)
	for i := range r.Documents {
		r.Documents[i].Type = upper(r.Documents[i].Type)
		r.Documents[i].Status = upper(r.Documents[i].Status)
	}
	for i := range r.Checks {
		r.Checks[i].Status = upper(r.Checks[i].Status)
	}
}

func (r *CreateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// ToInput converts a validated request into the service input. The final
// range and enum checks happen in the service.
func (r *CreateProfileRequest) ToInput() (models.CreateProfileInput, error) {
	customerID, err := id.ParseCustomerID(r.CustomerID)
	if err != nil {
		return models.CreateProfileInput{}, err
	}
	in := models.CreateProfileInput{
		CustomerID:  customerID,
		ProfileType: models.ProfileType(r.ProfileType),
		Documents:   make([]models.DocumentInput, 0, len(r.Documents)),
		Checks:      make([]models.CheckInput, 0, len(r.Checks)),
		Actor: models.Actor{
			UserID:    r.UserID,
			IPAddress: r.IPAddress,
			UserAgent: r.UserAgent,
		},
	}
	for _, d := range r.Documents {
		in.Documents = append(in.Documents, models.DocumentInput{
			Type:    models.DocumentType(d.Type),
			Status:  models.CheckStatus(d.Status),
			FileURL: d.FileURL,
		})
	}
	for _, c := range r.Checks {
		in.Checks = append(in.Checks, models.CheckInput{
			Type:      c.Type,
			Status:    models.CheckStatus(c.Status),
			RiskScore: c.RiskScore,
		})
	}
	return in, nil
}

// UpdateStatusRequest is the body of PATCH /kyc/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING UNDER_REVIEW APPROVED REJECTED REVOKED"`
	Reason string `json:"reason" validate:"max=1000"`
	UserID string `json:"userId" validate:"max=128"`
}

func (r *UpdateStatusRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Reason = strings.TrimSpace(r.Reason)
	r.UserID = strings.TrimSpace(r.UserID)
}

func (r *UpdateStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.Status = upper(r.Status)
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

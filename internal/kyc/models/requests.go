package models

import (
	"strings"

	"github.com/shopspring/decimal"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

const (
	MaxDocumentsPerProfile = 20
	MaxChecksPerProfile    = 50
	MaxCheckTypeLength     = 64
	MaxReasonLength        = 1000
)

// Actor identifies who performed an operation and from where.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// DocumentInput is a document supplied at profile creation.
type DocumentInput struct {
	Type    DocumentType
	Status  CheckStatus
	FileURL string
}

// CheckInput is a check result supplied at profile creation. A nil RiskScore
// is stored as zero.
type CheckInput struct {
	Type      string
	Status    CheckStatus
	RiskScore *decimal.Decimal
}

// CreateProfileInput carries everything needed to open a profile.
type CreateProfileInput struct {
	CustomerID  id.CustomerID
	ProfileType ProfileType
	Documents   []DocumentInput
	Checks      []CheckInput
	Actor       Actor
}

// RiskScorePlaces is the precision the risk_score column stores.
const RiskScorePlaces = 4

var (
	minRiskScore = decimal.Zero
	maxRiskScore = decimal.NewFromInt(1)
)

// Validate enforces required fields and enumerations. Missing document or
// check statuses default to PENDING.
func (in *CreateProfileInput) Validate() error {
	if in.CustomerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "customerId is required")
	}
	if in.ProfileType == "" {
		return dErrors.New(dErrors.CodeValidation, "profileType is required")
	}
	if !in.ProfileType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid profileType: %s", in.ProfileType)
	}
	if len(in.Documents) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documents must not be empty")
	}
	if len(in.Documents) > MaxDocumentsPerProfile {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d documents are allowed", MaxDocumentsPerProfile)
	}
	if len(in.Checks) == 0 {
		return dErrors.New(dErrors.CodeValidation, "checks must not be empty")
	}
	if len(in.Checks) > MaxChecksPerProfile {
		return dErrors.Newf(dErrors.CodeValidation, "at most %d checks are allowed", MaxChecksPerProfile)
	}

	for i := range in.Documents {
		doc := &in.Documents[i]
		if !doc.Type.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "documents[%d].type is invalid: %q", i, doc.Type)
		}
		if doc.Status == "" {
			doc.Status = CheckPending
		}
		if !doc.Status.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "documents[%d].status is invalid: %q", i, doc.Status)
		}
	}

	for i := range in.Checks {
		c := &in.Checks[i]
		c.Type = strings.TrimSpace(c.Type)
		if c.Type == "" {
			return dErrors.Newf(dErrors.CodeValidation, "checks[%d].type is required", i)
		}
		if len(c.Type) > MaxCheckTypeLength {
			return dErrors.Newf(dErrors.CodeValidation, "checks[%d].type is too long", i)
		}
		if c.Status == "" {
			c.Status = CheckPending
		}
		if !c.Status.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "checks[%d].status is invalid: %q", i, c.Status)
		}
		if c.RiskScore != nil && (c.RiskScore.LessThan(minRiskScore) || c.RiskScore.GreaterThan(maxRiskScore)) {
			return dErrors.Newf(dErrors.CodeValidation, "checks[%d].riskScore must be between 0 and 1", i)
		}
		if c.RiskScore != nil && !c.RiskScore.Equal(c.RiskScore.Truncate(RiskScorePlaces)) {
			return dErrors.Newf(dErrors.CodeValidation, "checks[%d].riskScore allows at most %d decimal places", i, RiskScorePlaces)
		}
	}
	return nil
}

// CheckStatuses returns the supplied check outcomes in order.
func (in *CreateProfileInput) CheckStatuses() []CheckStatus {
	out := make([]CheckStatus, len(in.Checks))
	for i, c := range in.Checks {
		out[i] = c.Status
	}
	return out
}

// UpdateStatusInput requests a status transition.
type UpdateStatusInput struct {
	ProfileID id.ProfileID
	Status    Status
	Reason    string
	Actor     Actor
}

func (in *UpdateStatusInput) Validate() error {
	if in.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if !in.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid status: %s", in.Status)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if len(in.Reason) > MaxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}
	return nil
}

package models

import (
	"strings"

	dErrors "paam/pkg/domain-errors"
)

// Status is the verification status of a KYC profile.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusRevoked     Status = "REVOKED"
)

// Statuses lists every profile status in lifecycle order.
var Statuses = []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusRevoked}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusRevoked:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts a status in any letter case.
func ParseStatus(raw string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if st == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status: "+raw)
	}
	return st, nil
}

// CheckStatus is the outcome of a single document or check.
type CheckStatus string

const (
	CheckPending CheckStatus = "PENDING"
	CheckPassed  CheckStatus = "PASSED"
	CheckFailed  CheckStatus = "FAILED"
)

func (s CheckStatus) IsValid() bool {
	return s == CheckPending || s == CheckPassed || s == CheckFailed
}

// ProfileType distinguishes personal from corporate verification.
type ProfileType string

const (
	ProfileIndividual ProfileType = "INDIVIDUAL"
	ProfileBusiness   ProfileType = "BUSINESS"
)

func (t ProfileType) IsValid() bool {
	return t == ProfileIndividual || t == ProfileBusiness
}

// DocumentType is the kind of evidence submitted.
type DocumentType string

const (
	DocumentPassport             DocumentType = "PASSPORT"
	DocumentIDCard               DocumentType = "ID_CARD"
	DocumentDriversLicense       DocumentType = "DRIVERS_LICENSE"
	DocumentResidencePermit      DocumentType = "RESIDENCE_PERMIT"
	DocumentUtilityBill          DocumentType = "UTILITY_BILL"
	DocumentBankStatement        DocumentType = "BANK_STATEMENT"
	DocumentBusinessRegistration DocumentType = "BUSINESS_REGISTRATION"
	DocumentSelfie               DocumentType = "SELFIE"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentPassport, DocumentIDCard, DocumentDriversLicense, DocumentResidencePermit,
		DocumentUtilityBill, DocumentBankStatement, DocumentBusinessRegistration, DocumentSelfie:
		return true
	}
	return false
}

// DeriveInitialStatus computes a new profile's status from its checks:
// any FAILED check rejects, all PASSED approves, anything else stays PENDING.
// An empty slice is PENDING.
func DeriveInitialStatus(checks []CheckStatus) Status {
	if len(checks) == 0 {
		return StatusPending
	}
	allPassed := true
	for _, c := range checks {
		if c == CheckFailed {
			return StatusRejected
		}
		if c != CheckPassed {
			allPassed = false
		}
	}
	if allPassed {
		return StatusApproved
	}
	return StatusPending
}

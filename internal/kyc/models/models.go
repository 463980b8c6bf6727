package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "paam/pkg/domain"
)

// Profile is a KYC verification case for one customer. It owns its documents,
// checks and audit trail; all of them are removed with the profile.
type Profile struct {
	ID          id.ProfileID
	CustomerID  id.CustomerID
	Customer    *CustomerSummary
	ProfileType ProfileType
	Status      Status
	Documents   []*Document
	Checks      []*Check
	AuditTrail  []*AuditEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CustomerSummary is the slice of the customer record shown alongside a profile.
type CustomerSummary struct {
	ID        id.CustomerID
	Email     string
	FirstName string
	LastName  string
	RiskLevel string
	Status    string
}

// Document is a piece of evidence submitted for a profile.
type Document struct {
	ID        id.DocumentID
	ProfileID id.ProfileID
	Type      DocumentType
	Status    CheckStatus
	FileURL   string
	CreatedAt time.Time
	// Seq orders rows created in the same instant.
	Seq int64
}

// Check is one verification step reported by an external provider.
type Check struct {
	ID        id.CheckID
	ProfileID id.ProfileID
	Type      string
	Status    CheckStatus
	RiskScore decimal.Decimal
	CreatedAt time.Time
	Seq       int64
}

// AuditEntry records one status change. PreviousStatus is nil for the entry
// written when the profile is created.
type AuditEntry struct {
	ID             id.AuditEntryID
	ProfileID      id.ProfileID
	PreviousStatus *Status
	NewStatus      Status
	Reason         string
	ActorID        string
	IPAddress      string
	UserAgent      string
	Device         string
	CreatedAt      time.Time
	Seq            int64
}

// Filter narrows listProfiles. Nil fields do not constrain; set fields are ANDed.
type Filter struct {
	Status     *Status
	CustomerID *id.CustomerID
}

// WithoutStatus drops the status constraint; used for per-status counts.
func (f Filter) WithoutStatus() Filter {
	return Filter{CustomerID: f.CustomerID}
}

// MaxPageLimit caps the page size of listProfiles.
const MaxPageLimit = 100

// Page is offset pagination starting at page 1.
type Page struct {
	Page  int
	Limit int
}

// Offset is the number of profiles skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ListResult is one page of profiles plus totals over the whole filtered set.
type ListResult struct {
	Profiles []*Profile
	Total    int
	Pages    int
	// StatusCounts ignores the status filter and pagination so the admin
	// dashboard can show every bucket for the selected customer scope.
	StatusCounts map[Status]int
}

// PageCount is ceil(total/limit), zero when there are no matches.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"paam/internal/kyc/models"
)

// ProfileResponse is the profile body returned by the /kyc endpoints.
type ProfileResponse struct {
	ID          string                   `json:"id"`
	CustomerID  string                   `json:"customerId"`
	Customer    *CustomerSummaryResponse `json:"customer,omitempty"`
	ProfileType string                   `json:"profileType"`
	Status      string                   `json:"status"`
	Documents   []DocumentResponse       `json:"documents"`
	Checks      []CheckResponse          `json:"checks"`
	AuditTrail  []AuditEntryResponse     `json:"auditTrail,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

type CustomerSummaryResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	RiskLevel string `json:"riskLevel"`
	Status    string `json:"status"`
}

type DocumentResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	FileURL   string    `json:"fileUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckResponse carries the risk score as a decimal string ("0.35") so no
// precision is lost in transit.
type CheckResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	RiskScore decimal.Decimal `json:"riskScore"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AuditEntryResponse has a null previousStatus for the creation entry.
type AuditEntryResponse struct {
	ID             string    `json:"id"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         string    `json:"reason,omitempty"`
	UserID         string    `json:"userId,omitempty"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	Device         string    `json:"device,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:          p.ID.String(),
		CustomerID:  p.CustomerID.String(),
		ProfileType: string(p.ProfileType),
		Status:      p.Status.String(),
		Documents:   make([]DocumentResponse, 0, len(p.Documents)),
		Checks:      make([]CheckResponse, 0, len(p.Checks)),
		AuditTrail:  toAuditResponses(p.AuditTrail),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if c := p.Customer; c != nil {
		resp.Customer = &CustomerSummaryResponse{
			ID:        c.ID.String(),
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			RiskLevel: c.RiskLevel,
			Status:    c.Status,
		}
	}
	for _, d := range p.Documents {
		resp.Documents = append(resp.Documents, DocumentResponse{
			ID:        d.ID.String(),
			Type:      string(d.Type),
			Status:    string(d.Status),
			FileURL:   d.FileURL,
			CreatedAt: d.CreatedAt,
		})
	}
	for _, c := range p.Checks {
		resp.Checks = append(resp.Checks, CheckResponse{
			ID:        c.ID.String(),
			Type:      c.Type,
			Status:    string(c.Status),
			RiskScore: c.RiskScore,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}

func toAuditResponses(entries []*models.AuditEntry) []AuditEntryResponse {
	if len(entries) == 0 {
		return nil
	}
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		var previous *string
		if e.PreviousStatus != nil {
			s := e.PreviousStatus.String()
			previous = &s
		}
		out = append(out, AuditEntryResponse{
			ID:             e.ID.String(),
			PreviousStatus: previous,
			NewStatus:      e.NewStatus.String(),
			Reason:         e.Reason,
			UserID:         e.ActorID,
			IPAddress:      e.IPAddress,
			UserAgent:      e.UserAgent,
			Device:         e.Device,
			CreatedAt:      e.CreatedAt,
		})
	}
	return out
}

// toStatsResponse keys counts by status name. Statuses with no profiles
// are omitted.
func toStatsResponse(counts map[models.Status]int) map[string]int {
	out := make(map[string]int, len(counts))
	for st, n := range counts {
		out[st.String()] = n
	}
	return out
}

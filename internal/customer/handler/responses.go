package handler

import (
	"time"

	"paam/internal/customer/models"
)

type CustomerResponse struct {
	ID                 string    `json:"id"`
	OrganizationID     string    `json:"organizationId,omitempty"`
	Email              string    `json:"email"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	DateOfBirth        string    `json:"dateOfBirth,omitempty"`
	Nationality        string    `json:"nationality,omitempty"`
	CountryOfResidence string    `json:"countryOfResidence,omitempty"`
	RiskLevel          string    `json:"riskLevel"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toCustomerResponse(c *models.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:                 c.ID.String(),
		Email:              c.Email,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Nationality:        c.Nationality,
		CountryOfResidence: c.CountryOfResidence,
		RiskLevel:          string(c.RiskLevel),
		Status:             string(c.Status),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.OrganizationID != nil {
		resp.OrganizationID = c.OrganizationID.String()
	}
	if c.DateOfBirth != nil {
		resp.DateOfBirth = c.DateOfBirth.Format(time.DateOnly)
	}
	return resp
}

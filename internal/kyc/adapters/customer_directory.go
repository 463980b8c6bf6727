package adapters

import (
	"context"

	customermodels "paam/internal/customer/models"
	"paam/internal/kyc/models"
	id "paam/pkg/domain"
)

// customerLookup is the slice of the customer service KYC depends on.
// Defined locally so the KYC service never imports customer packages.
type customerLookup interface {
	Lookup(ctx context.Context, ids []id.CustomerID) ([]*customermodels.Customer, error)
}

// CustomerDirectory adapts the customer service to service.CustomerDirectory.
type CustomerDirectory struct {
	customers customerLookup
}

func NewCustomerDirectory(customers customerLookup) *CustomerDirectory {
	return &CustomerDirectory{customers: customers}
}

// Summaries resolves ids in one lookup. Unknown ids are absent from the map.
func (d *CustomerDirectory) Summaries(ctx context.Context, ids []id.CustomerID) (map[id.CustomerID]models.CustomerSummary, error) {
	found, err := d.customers.Lookup(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[id.CustomerID]models.CustomerSummary, len(found))
	for _, c := range found {
		out[c.ID] = models.CustomerSummary{
			ID:        c.ID,
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			RiskLevel: string(c.RiskLevel),
			Status:    string(c.Status),
		}
	}
	return out, nil
}

func dedupe(ids []id.CustomerID) []id.CustomerID {
	seen := make(map[id.CustomerID]struct{}, len(ids))
	out := make([]id.CustomerID, 0, len(ids))
	for _, customerID := range ids {
		if _, ok := seen[customerID]; ok {
			continue
		}
		seen[customerID] = struct{}{}
		out = append(out, customerID)
	}
	return out
}

package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customermodels "paam/internal/customer/models"
	customerservice "paam/internal/customer/service"
	customerstore "paam/internal/customer/store"
	id "paam/pkg/domain"
)

type countingLookup struct {
	calls [][]id.CustomerID
	inner customerLookup
}

func (c *countingLookup) Lookup(ctx context.Context, ids []id.CustomerID) ([]*customermodels.Customer, error) {
	c.calls = append(c.calls, ids)
	return c.inner.Lookup(ctx, ids)
}

func TestCustomerDirectorySummaries(t *testing.T) {
	ctx := context.Background()
	svc := customerservice.New(customerstore.NewInMemory())
	_, err := svc.Create(ctx, customermodels.CreateInput{
		ID: "CUST-001", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
		RiskLevel: customermodels.RiskHigh,
	})
	require.NoError(t, err)

	lookup := &countingLookup{inner: svc}
	dir := NewCustomerDirectory(lookup)

	got, err := dir.Summaries(ctx, []id.CustomerID{"CUST-001", "CUST-404", "CUST-001"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ada@example.com", got["CUST-001"].Email)
	assert.Equal(t, "HIGH", got["CUST-001"].RiskLevel)
	assert.Equal(t, "ACTIVE", got["CUST-001"].Status)

	require.Len(t, lookup.calls, 1)
	assert.Equal(t, []id.CustomerID{"CUST-001", "CUST-404"}, lookup.calls[0])
}

package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paam/internal/kyc/handler"
	"paam/internal/kyc/models"
	"paam/internal/kyc/service"
	"paam/internal/kyc/store"
	id "paam/pkg/domain"
	outboxstore "paam/pkg/platform/outbox/store"
)

type directory map[id.CustomerID]models.CustomerSummary

func (d directory) Summaries(_ context.Context, ids []id.CustomerID) (map[id.CustomerID]models.CustomerSummary, error) {
	out := make(map[id.CustomerID]models.CustomerSummary, len(ids))
	for _, customerID := range ids {
		if summary, ok := d[customerID]; ok {
			out[customerID] = summary
		}
	}
	return out, nil
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Stats   map[string]int  `json:"stats"`
}

func call(t *testing.T, router http.Handler, method, path, body string) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestProfileLifecycleOverHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewInMemory()
	events := outboxstore.NewInMemory()
	svc := service.New(st, st, directory{
		"CUST-001": {ID: "CUST-001", Email: "ada@example.com", RiskLevel: "LOW", Status: "ACTIVE"},
	}, service.WithOutbox(events), service.WithLogger(logger))

	router := chi.NewRouter()
	handler.New(svc, logger).Register(router)

	code, resp := call(t, router, http.MethodPost, "/kyc", `{
		"customerId": "CUST-001",
		"profileType": "INDIVIDUAL",
		"documents": [{"type": "PASSPORT", "status": "PASSED"}],
		"checks": [{"type": "sanctions_screening", "status": "PASSED", "riskScore": "0.10"}]
	}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var created handler.ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "APPROVED", created.Status)
	require.NotNil(t, created.Customer)
	assert.Equal(t, "ada@example.com", created.Customer.Email)
	require.Len(t, created.AuditTrail, 1)
	assert.Nil(t, created.AuditTrail[0].PreviousStatus)

	code, resp = call(t, router, http.MethodPost, "/kyc", `{
		"customerId": "CUST-404",
		"profileType": "INDIVIDUAL",
		"documents": [{"type": "PASSPORT"}],
		"checks": [{"type": "sanctions_screening"}]
	}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = call(t, router, http.MethodPatch, "/kyc/"+created.ID, `{"status":"REVOKED","reason":"document expired"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var updated handler.ProfileResponse
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "REVOKED", updated.Status)

	code, resp = call(t, router, http.MethodGet, "/kyc/"+created.ID+"/audit", "")
	require.Equal(t, http.StatusOK, code)
	var trail []handler.AuditEntryResponse
	require.NoError(t, json.Unmarshal(resp.Data, &trail))
	require.Len(t, trail, 2)
	require.NotNil(t, trail[1].PreviousStatus)
	assert.Equal(t, "APPROVED", *trail[1].PreviousStatus)
	assert.Equal(t, "REVOKED", trail[1].NewStatus)
	assert.Equal(t, "document expired", trail[1].Reason)

	code, resp = call(t, router, http.MethodGet, "/kyc?customerId=CUST-001", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"REVOKED": 1}, resp.Stats)

	code, resp = call(t, router, http.MethodDelete, "/kyc/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "KYC profile deleted", resp.Message)

	code, _ = call(t, router, http.MethodGet, "/kyc/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)

	var types []string
	for _, e := range events.Entries() {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []string{models.EventProfileCreated, models.EventStatusChanged, models.EventProfileDeleted}, types)
}

package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "paam/pkg/domain-errors"
)

func TestDeriveInitialStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks []CheckStatus
		want   Status
	}{
		{"all passed approves", []CheckStatus{CheckPassed, CheckPassed}, StatusApproved},
		{"single passed approves", []CheckStatus{CheckPassed}, StatusApproved},
		{"any failed rejects", []CheckStatus{CheckPassed, CheckFailed, CheckPending}, StatusRejected},
		{"failed wins over pending order", []CheckStatus{CheckPending, CheckFailed}, StatusRejected},
		{"mixed passed and pending stays pending", []CheckStatus{CheckPassed, CheckPending}, StatusPending},
		{"all pending stays pending", []CheckStatus{CheckPending}, StatusPending},
		{"no checks stays pending", nil, StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveInitialStatus(tt.checks))
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" under_review ")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, st)

	_, err = ParseStatus("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ParseStatus("ARCHIVED")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPermissiveTransitionsAllowEveryPair(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.NoError(t, PermissiveTransitions(from, to), "%s -> %s", from, to)
		}
	}
	assert.Error(t, PermissiveTransitions(StatusPending, Status("ARCHIVED")))
}

func TestReviewGraphTransitions(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusUnderReview},
		{StatusUnderReview, StatusApproved},
		{StatusApproved, StatusRevoked},
		{StatusRejected, StatusUnderReview},
		{StatusRevoked, StatusUnderReview},
	}
	for _, pair := range allowed {
		assert.NoError(t, ReviewGraphTransitions(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	refused := [][2]Status{
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusApproved},
		{StatusRevoked, StatusApproved},
		{StatusPending, StatusRevoked},
		{StatusPending, StatusPending},
	}
	for _, pair := range refused {
		err := ReviewGraphTransitions(pair[0], pair[1])
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "%s -> %s", pair[0], pair[1])
	}
}

func TestPolicyByName(t *testing.T) {
	assert.NoError(t, PolicyByName("permissive")(StatusApproved, StatusRejected))
	assert.Error(t, PolicyByName("review_graph")(StatusApproved, StatusRejected))
	assert.NoError(t, PolicyByName("")(StatusApproved, StatusRejected))
}

func validInput() CreateProfileInput {
	return CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: ProfileIndividual,
		Documents:   []DocumentInput{{Type: DocumentPassport}},
		Checks:      []CheckInput{{Type: "sanctions_screening", Status: CheckPassed}},
	}
}

func TestCreateProfileInputValidate(t *testing.T) {
	t.Run("valid input defaults statuses", func(t *testing.T) {
		in := validInput()
		in.Checks = append(in.Checks, CheckInput{Type: " pep_screening "})
		require.NoError(t, in.Validate())
		assert.Equal(t, CheckPending, in.Documents[0].Status)
		assert.Equal(t, CheckPending, in.Checks[1].Status)
		assert.Equal(t, "pep_screening", in.Checks[1].Type)
	})

	high := decimal.RequireFromString("1.01")
	negative := decimal.RequireFromString("-0.1")
	edge := decimal.RequireFromString("1")
	tooPrecise := decimal.RequireFromString("0.12345")
	paddedFourPlaces := decimal.RequireFromString("0.12340")

	tests := []struct {
		name   string
		mutate func(*CreateProfileInput)
		ok     bool
	}{
		{"missing customer", func(in *CreateProfileInput) { in.CustomerID = "" }, false},
		{"missing profile type", func(in *CreateProfileInput) { in.ProfileType = "" }, false},
		{"unknown profile type", func(in *CreateProfileInput) { in.ProfileType = "TRUST" }, false},
		{"empty documents", func(in *CreateProfileInput) { in.Documents = nil }, false},
		{"empty checks", func(in *CreateProfileInput) { in.Checks = []CheckInput{} }, false},
		{"unknown document type", func(in *CreateProfileInput) { in.Documents[0].Type = "LIBRARY_CARD" }, false},
		{"unknown document status", func(in *CreateProfileInput) { in.Documents[0].Status = "MAYBE" }, false},
		{"blank check type", func(in *CreateProfileInput) { in.Checks[0].Type = "  " }, false},
		{"unknown check status", func(in *CreateProfileInput) { in.Checks[0].Status = "SKIPPED" }, false},
		{"risk score above one", func(in *CreateProfileInput) { in.Checks[0].RiskScore = &high }, false},
		{"negative risk score", func(in *CreateProfileInput) { in.Checks[0].RiskScore = &negative }, false},
		{"risk score of exactly one", func(in *CreateProfileInput) { in.Checks[0].RiskScore = &edge }, true},
		{"risk score beyond four places", func(in *CreateProfileInput) { in.Checks[0].RiskScore = &tooPrecise }, false},
		{"risk score with trailing zero", func(in *CreateProfileInput) { in.Checks[0].RiskScore = &paddedFourPlaces }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

func TestUpdateStatusInputValidate(t *testing.T) {
	in := UpdateStatusInput{Status: StatusUnderReview, Reason: "  manual review requested "}
	require.NoError(t, in.Validate())
	assert.Equal(t, "manual review requested", in.Reason)

	missing := UpdateStatusInput{}
	assert.True(t, dErrors.HasCode(missing.Validate(), dErrors.CodeValidation))

	bogus := UpdateStatusInput{Status: "DONE"}
	assert.True(t, dErrors.HasCode(bogus.Validate(), dErrors.CodeValidation))
}

func TestPageHelpers(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))
}

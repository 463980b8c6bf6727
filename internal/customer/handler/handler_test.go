package handler

import (
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
	"github.com/stretchr/testify/suite"

	"paam/internal/customer/service"
	"paam/internal/customer/store"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *struct {
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(service.New(store.NewInMemory(), service.WithLogger(logger)), logger).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) (int, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

const adaBody = `{
	"id": "CUST-001",
	"email": "Ada@Example.com",
	"firstName": "Ada",
	"lastName": "Lovelace",
	"dateOfBirth": "1815-12-10",
	"nationality": "gb",
	"riskLevel": "medium"
}`

func (s *HandlerSuite) TestCreateAndGet() {
	code, env := s.do(http.MethodPost, "/customers", adaBody)
	require.Equal(s.T(), http.StatusCreated, code, env.Error)

	var created CustomerResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &created))
	assert.Equal(s.T(), "ada@example.com", created.Email)
	assert.Equal(s.T(), "1815-12-10", created.DateOfBirth)
	assert.Equal(s.T(), "GB", created.Nationality)
	assert.Equal(s.T(), "MEDIUM", created.RiskLevel)
	assert.Equal(s.T(), "ACTIVE", created.Status)

	code, env = s.do(http.MethodGet, "/customers/CUST-001", "")
	assert.Equal(s.T(), http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/customers/CUST-404", "")
	assert.Equal(s.T(), http.StatusNotFound, code)
	assert.Equal(s.T(), "customer CUST-404 not found", env.Error)
}

func (s *HandlerSuite) TestCreateDuplicateIsConflict() {
	code, _ := s.do(http.MethodPost, "/customers", adaBody)
	require.Equal(s.T(), http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/customers", adaBody)
	assert.Equal(s.T(), http.StatusConflict, code)
	assert.False(s.T(), env.Success)
}

func (s *HandlerSuite) TestCreateValidation() {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad email", `{"id":"C1","email":"nope","firstName":"A","lastName":"B"}`, "email must be a valid email"},
		{"bad country", `{"id":"C1","email":"a@b.co","firstName":"A","lastName":"B","nationality":"XX"}`, "nationality must be a two-letter country code"},
		{"bad date", `{"id":"C1","email":"a@b.co","firstName":"A","lastName":"B","dateOfBirth":"10/12/1815"}`, "dateOfBirth must match the format 2006-01-02"},
		{"bad risk level", `{"id":"C1","email":"a@b.co","firstName":"A","lastName":"B","riskLevel":"SEVERE"}`, "riskLevel must be one of"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			code, env := s.do(http.MethodPost, "/customers", tt.body)
			assert.Equal(s.T(), http.StatusBadRequest, code)
			assert.Contains(s.T(), env.Error, tt.want)
		})
	}
}

func (s *HandlerSuite) TestListAndRiskFilter() {
	s.do(http.MethodPost, "/customers", adaBody)
	s.do(http.MethodPost, "/customers", `{"id":"CUST-002","email":"alan@example.com","firstName":"Alan","lastName":"Turing"}`)

	code, env := s.do(http.MethodGet, "/customers?riskLevel=medium", "")
	require.Equal(s.T(), http.StatusOK, code)
	require.NotNil(s.T(), env.Pagination)
	assert.Equal(s.T(), 1, env.Pagination.Total)

	code, _ = s.do(http.MethodGet, "/customers?riskLevel=SEVERE", "")
	assert.Equal(s.T(), http.StatusBadRequest, code)
}

func (s *HandlerSuite) TestUpdateRiskLevel() {
	s.do(http.MethodPost, "/customers", adaBody)

	code, env := s.do(http.MethodPatch, "/customers/CUST-001/risk-level", `{"riskLevel":"high"}`)
	require.Equal(s.T(), http.StatusOK, code, env.Error)
	var updated CustomerResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &updated))
	assert.Equal(s.T(), "HIGH", updated.RiskLevel)

	code, _ = s.do(http.MethodPatch, "/customers/CUST-404/risk-level", `{"riskLevel":"LOW"}`)
	assert.Equal(s.T(), http.StatusNotFound, code)
}

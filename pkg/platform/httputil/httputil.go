package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/requestcontext"
)

// Envelope is the uniform response body of every JSON endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Stats      any         `json:"stats,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total items split by limit.
// Zero items yield zero pages.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding error cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteData writes a successful envelope carrying data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteList writes a successful list envelope with pagination and optional stats.
func WriteList(w http.ResponseWriter, data any, pagination *Pagination, stats any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination, Stats: stats})
}

// WriteMessage writes a successful envelope carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: true, Message: message})
}

// WriteError maps err onto a status and envelope. Messages of 5xx errors
// and errors outside the domain taxonomy are replaced with a generic text.
func WriteError(w http.ResponseWriter, err error) {
	code, msg := dErrors.CodeInternal, ""
	if de, ok := dErrors.As(err); ok {
		code, msg = de.Code, de.Message
	}
	status := DomainCodeToHTTPStatus(code)
	if msg == "" || status >= http.StatusInternalServerError {
		msg = PublicMessage(code)
	}
	WriteJSON(w, status, Envelope{Error: msg})
}

type codeMapping struct {
	status int
	public string
}

var (
	invalidRequest = codeMapping{http.StatusBadRequest, "invalid request"}
	internalError  = codeMapping{http.StatusInternalServerError, "internal server error"}

	codeMappings = map[dErrors.Code]codeMapping{
		dErrors.CodeNotFound:           {http.StatusNotFound, "resource not found"},
		dErrors.CodeBadRequest:         invalidRequest,
		dErrors.CodeValidation:         invalidRequest,
		dErrors.CodeInvariantViolation: invalidRequest,
		dErrors.CodeConflict:           {http.StatusConflict, "resource already exists"},
		dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "authentication required"},
		dErrors.CodeForbidden:          {http.StatusForbidden, "insufficient permissions"},
		dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "request timed out"},
	}
)

func mappingFor(code dErrors.Code) codeMapping {
	if m, ok := codeMappings[code]; ok {
		return m
	}
	return internalError
}

// DomainCodeToHTTPStatus returns the HTTP status for code; unknown codes are 500.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	return mappingFor(code).status
}

// PublicMessage is the client-facing text used when the domain message is
// empty or must stay internal.
func PublicMessage(code dErrors.Code) string {
	return mappingFor(code).public
}

// LogIfServerError logs err when it maps to a 5xx response.
func LogIfServerError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if DomainCodeToHTTPStatus(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		return
	}
	logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// RequireUserID extracts the authenticated user ID from context.
func RequireUserID(ctx context.Context, logger *slog.Logger) (id.UserID, error) {
	uid := requestcontext.UserID(ctx)
	if !uid.IsNil() {
		return uid, nil
	}
	if logger != nil {
		logger.ErrorContext(ctx, "no user in context behind session middleware",
			"request_id", requestcontext.RequestID(ctx))
	}
	return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paam/internal/account/models"
	"paam/internal/account/service"
	id "paam/pkg/domain"
	"paam/pkg/platform/httputil"
)

// Service defines the account operations exposed over HTTP.
type Service interface {
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) (*service.UserPage, error)
	ListAPIKeys(ctx context.Context, page, limit int) (*service.KeyPage, error)
	IssueAPIKey(ctx context.Context, userID id.UserID, name string) (*models.IssuedKey, error)
	RevokeAPIKey(ctx context.Context, userID id.UserID, keyID id.APIKeyID) (*models.APIKey, error)
}

// Handler serves users and API keys.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the admin listings. Callers put them behind the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.HandleListUsers)
	r.Post("/users", h.HandleCreateUser)
	r.Get("/api-keys", h.HandleListAPIKeys)
}

// Register mounts the signed-in user's key management routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api-keys", h.HandleIssueAPIKey)
	r.Delete("/api-keys/{id}", h.HandleRevokeAPIKey)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ListUsers(ctx, params.Page, params.Limit)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list users", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]UserResponse, 0, len(result.Users))
	for _, u := range result.Users {
		data = append(data, toUserResponse(u))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		nil,
	)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.Decode[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.CreateUser(ctx, in)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) HandleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ListAPIKeys(ctx, params.Page, params.Limit)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list api keys", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]APIKeyResponse, 0, len(result.Keys))
	for _, k := range result.Keys {
		data = append(data, toAPIKeyResponse(k))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		nil,
	)
}

func (h *Handler) HandleIssueAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[CreateAPIKeyRequest](w, r, h.logger)
	if !ok {
		return
	}
	issued, err := h.service.IssueAPIKey(ctx, userID, req.Name)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to issue api key", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, IssuedKeyResponse{
		APIKeyResponse: toAPIKeyResponse(&issued.APIKey),
		Key:            issued.Plaintext,
	})
}

func (h *Handler) HandleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	keyID, err := id.ParseAPIKeyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	k, err := h.service.RevokeAPIKey(ctx, userID, keyID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to revoke api key", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toAPIKeyResponse(k))
}

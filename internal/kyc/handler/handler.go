package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paam/internal/kyc/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/httputil"
)

// Service defines the KYC operations exposed over HTTP.
type Service interface {
	CreateProfile(ctx context.Context, in models.CreateProfileInput) (*models.Profile, error)
	GetProfile(ctx context.Context, profileID id.ProfileID) (*models.Profile, error)
	ListProfiles(ctx context.Context, filter models.Filter, page models.Page) (*models.ListResult, error)
	UpdateStatus(ctx context.Context, in models.UpdateStatusInput) (*models.Profile, error)
	DeleteProfile(ctx context.Context, profileID id.ProfileID, actor models.Actor) error
	GetAuditTrail(ctx context.Context, profileID id.ProfileID) ([]*models.AuditEntry, error)
}

// Handler serves the KYC review endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the KYC routes. Callers put it behind the admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Route("/kyc", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdateStatus)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/audit", h.HandleAuditTrail)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var filter models.Filter
	if raw := httputil.OptionalQuery(r, "status"); raw != nil {
		status, err := models.ParseStatus(*raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = &status
	}
	if raw := httputil.OptionalQuery(r, "customerId"); raw != nil {
		customerID, err := id.ParseCustomerID(*raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.CustomerID = &customerID
	}

	result, err := h.service.ListProfiles(ctx, filter, models.Page{Page: params.Page, Limit: params.Limit})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list kyc profiles", err)
		httputil.WriteError(w, err)
		return
	}

	data := make([]ProfileResponse, 0, len(result.Profiles))
	for _, p := range result.Profiles {
		data = append(data, toProfileResponse(p))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		toStatsResponse(result.StatusCounts),
	)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateProfileRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.CreateProfile(ctx, in)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create kyc profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toProfileResponse(profile))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	profile, err := h.service.GetProfile(ctx, profileID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to get kyc profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[UpdateStatusRequest](w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.service.UpdateStatus(ctx, models.UpdateStatusInput{
		ProfileID: profileID,
		Status:    models.Status(req.Status),
		Reason:    req.Reason,
		Actor:     models.Actor{UserID: req.UserID},
	})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to update kyc status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteProfile(ctx, profileID, models.Actor{}); err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to delete kyc profile", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "KYC profile deleted")
}

func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.GetAuditTrail(ctx, profileID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to load kyc audit trail", err)
		httputil.WriteError(w, err)
		return
	}
	data := toAuditResponses(entries)
	if data == nil {
		data = []AuditEntryResponse{}
	}
	httputil.WriteData(w, http.StatusOK, data)
}

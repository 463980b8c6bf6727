package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paam/internal/customer/models"
	"paam/internal/customer/service"
	id "paam/pkg/domain"
	"paam/pkg/platform/httputil"
)

// Service defines the customer operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, in models.CreateInput) (*models.Customer, error)
	Get(ctx context.Context, customerID id.CustomerID) (*models.Customer, error)
	List(ctx context.Context, filter models.Filter, page, limit int) (*service.ListResult, error)
	UpdateRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel) (*models.Customer, error)
}

// Handler serves the customer registry endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the customer routes. Callers put it behind the admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}/risk-level", h.HandleUpdateRiskLevel)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateCustomerRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.service.Create(ctx, in)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create customer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toCustomerResponse(c))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Get(ctx, customerID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to get customer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var filter models.Filter
	if raw := httputil.OptionalQuery(r, "riskLevel"); raw != nil {
		level, err := models.ParseRiskLevel(*raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.RiskLevel = &level
	}

	result, err := h.service.List(ctx, filter, params.Page, params.Limit)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list customers", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]CustomerResponse, 0, len(result.Customers))
	for _, c := range result.Customers {
		data = append(data, toCustomerResponse(c))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		nil,
	)
}

func (h *Handler) HandleUpdateRiskLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := id.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[UpdateRiskLevelRequest](w, r, h.logger)
	if !ok {
		return
	}

	c, err := h.service.UpdateRiskLevel(ctx, customerID, models.RiskLevel(req.RiskLevel))
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to update customer risk level", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toCustomerResponse(c))
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paam/internal/sdk/models"
	"paam/internal/sdk/service"
	id "paam/pkg/domain"
	"paam/pkg/platform/httputil"
	"paam/pkg/requestcontext"
)

// Service defines the SDK distribution operations exposed over HTTP.
type Service interface {
	PublishVersion(ctx context.Context, in models.PublishInput) (*models.Version, error)
	ListPublished(ctx context.Context, platform *models.Platform) ([]*models.Version, error)
	RecordDownload(ctx context.Context, versionID id.VersionID, in service.DownloadInput) (*models.Download, error)
	ListDownloads(ctx context.Context, rng models.DateRange, page, limit int) (*service.DownloadPage, error)
	Analytics(ctx context.Context, rng models.DateRange) (*models.Analytics, error)
}

// Handler serves SDK versions, downloads and download analytics.
type Handler struct {
	service Service
	logger  *slog.Logger
	// window is the default analytics range when from/to are omitted.
	window time.Duration
}

func New(service Service, logger *slog.Logger, window time.Duration) *Handler {
	return &Handler{service: service, logger: logger, window: window}
}

// RegisterPublic mounts the unauthenticated, CORS-enabled routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/sdk/versions", h.HandleListVersions)
	r.Post("/sdk/versions/{id}/downloads", h.HandleRecordDownload)
}

// RegisterAdmin mounts the admin routes. Callers put them behind the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/sdk/versions", h.HandlePublishVersion)
	r.Get("/downloads", h.HandleListDownloads)
	r.Get("/analytics", h.HandleAnalytics)
}

func (h *Handler) HandleListVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var platform *models.Platform
	if raw := httputil.OptionalQuery(r, "platform"); raw != nil {
		p, err := models.ParsePlatform(*raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		platform = &p
	}

	versions, err := h.service.ListPublished(ctx, platform)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list sdk versions", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		data = append(data, toVersionResponse(v))
	}
	httputil.WriteData(w, http.StatusOK, data)
}

func (h *Handler) HandleRecordDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	versionID, err := id.ParseVersionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	in := service.DownloadInput{
		IPAddress: requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		in.UserID = &userID
	}

	d, err := h.service.RecordDownload(ctx, versionID, in)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to record sdk download", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toDownloadResponse(d, "", ""))
}

func (h *Handler) HandlePublishVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[PublishVersionRequest](w, r, h.logger)
	if !ok {
		return
	}
	v, err := h.service.PublishVersion(ctx, models.PublishInput{
		Version:      req.Version,
		Platform:     models.Platform(req.Platform),
		FileURL:      req.FileURL,
		Checksum:     req.Checksum,
		ReleaseNotes: req.ReleaseNotes,
	})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to publish sdk version", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toVersionResponse(v))
}

func (h *Handler) HandleListDownloads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rng, err := h.dateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ListDownloads(ctx, rng, params.Page, params.Limit)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list downloads", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]DownloadResponse, 0, len(result.Downloads))
	for _, d := range result.Downloads {
		data = append(data, toDownloadResponse(&d.Download, d.Version, d.Platform))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		nil,
	)
}

func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rng, err := h.dateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.service.Analytics(ctx, rng)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to compute download analytics", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, a)
}

func (h *Handler) dateRange(r *http.Request) (models.DateRange, error) {
	rng, err := httputil.ParseDateRange(r, requestcontext.Now(r.Context()), h.window)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.DateRange{From: rng.From, To: rng.To}, nil
}

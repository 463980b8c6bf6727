package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"paam/internal/project/models"
	"paam/internal/project/service"
	id "paam/pkg/domain"
	"paam/pkg/platform/httputil"
)

// Service defines the project operations exposed over HTTP.
type Service interface {
	CreateProject(ctx context.Context, owner id.UserID, in models.ProjectInput) (*models.Project, error)
	ListProjects(ctx context.Context, owner id.UserID, page, limit int) (*service.ProjectPage, error)
	GetProject(ctx context.Context, owner id.UserID, projectID id.ProjectID) (*models.Project, error)
	UpdateProject(ctx context.Context, owner id.UserID, projectID id.ProjectID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, owner id.UserID, projectID id.ProjectID) error
	CreateBuild(ctx context.Context, owner id.UserID, projectID id.ProjectID, versionID *id.VersionID) (*models.Build, error)
	ListBuilds(ctx context.Context, owner id.UserID, projectID id.ProjectID) ([]*models.Build, error)
	UpdateBuildStatus(ctx context.Context, owner id.UserID, buildID id.BuildID, status models.BuildStatus) (*models.Build, error)
	CreateDeployment(ctx context.Context, owner id.UserID, buildID id.BuildID, in service.DeploymentInput) (*models.Deployment, error)
	ListDeployments(ctx context.Context, owner id.UserID, buildID id.BuildID) ([]*models.Deployment, error)
}

// Handler serves a signed-in user's projects, builds and deployments.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the project routes. Callers put them behind RequireSession.
func (h *Handler) Register(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.HandleListProjects)
		r.Post("/", h.HandleCreateProject)
		r.Get("/{id}", h.HandleGetProject)
		r.Patch("/{id}", h.HandleUpdateProject)
		r.Delete("/{id}", h.HandleDeleteProject)
		r.Get("/{id}/builds", h.HandleListBuilds)
		r.Post("/{id}/builds", h.HandleCreateBuild)
	})
	r.Route("/builds/{id}", func(r chi.Router) {
		r.Patch("/status", h.HandleUpdateBuildStatus)
		r.Get("/deployments", h.HandleListDeployments)
		r.Post("/deployments", h.HandleCreateDeployment)
	})
}

func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[CreateProjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.service.CreateProject(ctx, owner, models.ProjectInput{Name: req.Name, Description: req.Description})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create project", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toProjectResponse(p))
}

func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := httputil.RequireUserID(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	params, err := httputil.ParsePage(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.service.ListProjects(ctx, owner, params.Page, params.Limit)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list projects", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]ProjectResponse, 0, len(result.Projects))
	for _, p := range result.Projects {
		data = append(data, toProjectResponse(p))
	}
	httputil.WriteList(w, data,
		&httputil.Pagination{Page: params.Page, Limit: params.Limit, Total: result.Total, Pages: result.Pages},
		nil,
	)
}

func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, projectID, ok := h.ownerAndProject(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProject(ctx, owner, projectID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to get project", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toProjectResponse(p))
}

func (h *Handler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, projectID, ok := h.ownerAndProject(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[UpdateProjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.service.UpdateProject(ctx, owner, projectID, models.ProjectPatch{Name: req.Name, Description: req.Description})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to update project", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toProjectResponse(p))
}

func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, projectID, ok := h.ownerAndProject(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProject(ctx, owner, projectID); err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to delete project", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "project deleted")
}

func (h *Handler) HandleCreateBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, projectID, ok := h.ownerAndProject(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[CreateBuildRequest](w, r, h.logger)
	if !ok {
		return
	}
	var versionID *id.VersionID
	if req.VersionID != "" {
		v, err := id.ParseVersionID(req.VersionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		versionID = &v
	}
	b, err := h.service.CreateBuild(ctx, owner, projectID, versionID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create build", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toBuildResponse(b))
}

func (h *Handler) HandleListBuilds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, projectID, ok := h.ownerAndProject(w, r)
	if !ok {
		return
	}
	builds, err := h.service.ListBuilds(ctx, owner, projectID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list builds", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]BuildResponse, 0, len(builds))
	for _, b := range builds {
		data = append(data, toBuildResponse(b))
	}
	httputil.WriteData(w, http.StatusOK, data)
}

func (h *Handler) HandleUpdateBuildStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, buildID, ok := h.ownerAndBuild(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[UpdateBuildStatusRequest](w, r, h.logger)
	if !ok {
		return
	}
	b, err := h.service.UpdateBuildStatus(ctx, owner, buildID, models.BuildStatus(req.Status))
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to update build status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, toBuildResponse(b))
}

func (h *Handler) HandleCreateDeployment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, buildID, ok := h.ownerAndBuild(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[CreateDeploymentRequest](w, r, h.logger)
	if !ok {
		return
	}
	d, err := h.service.CreateDeployment(ctx, owner, buildID, service.DeploymentInput{
		Environment: models.Environment(req.Environment),
		URL:         req.URL,
	})
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to create deployment", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, toDeploymentResponse(d))
}

func (h *Handler) HandleListDeployments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, buildID, ok := h.ownerAndBuild(w, r)
	if !ok {
		return
	}
	deployments, err := h.service.ListDeployments(ctx, owner, buildID)
	if err != nil {
		httputil.LogIfServerError(ctx, h.logger, "failed to list deployments", err)
		httputil.WriteError(w, err)
		return
	}
	data := make([]DeploymentResponse, 0, len(deployments))
	for _, d := range deployments {
		data = append(data, toDeploymentResponse(d))
	}
	httputil.WriteData(w, http.StatusOK, data)
}

func (h *Handler) ownerAndProject(w http.ResponseWriter, r *http.Request) (id.UserID, id.ProjectID, bool) {
	owner, err := httputil.RequireUserID(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.ProjectID{}, false
	}
	projectID, err := id.ParseProjectID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.ProjectID{}, false
	}
	return owner, projectID, true
}

func (h *Handler) ownerAndBuild(w http.ResponseWriter, r *http.Request) (id.UserID, id.BuildID, bool) {
	owner, err := httputil.RequireUserID(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.BuildID{}, false
	}
	buildID, err := id.ParseBuildID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, id.BuildID{}, false
	}
	return owner, buildID, true
}

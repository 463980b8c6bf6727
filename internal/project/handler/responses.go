package handler

import (
	"time"

	"paam/internal/project/models"
)

type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BuildResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	VersionID string    `json:"versionId,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeploymentResponse struct {
	ID          string    `json:"id"`
	BuildID     string    `json:"buildId"`
	Environment string    `json:"environment"`
	URL         string    `json:"url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toBuildResponse(b *models.Build) BuildResponse {
	resp := BuildResponse{
		ID:        b.ID.String(),
		ProjectID: b.ProjectID.String(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
	if b.VersionID != nil {
		resp.VersionID = b.VersionID.String()
	}
	return resp
}

func toDeploymentResponse(d *models.Deployment) DeploymentResponse {
	return DeploymentResponse{
		ID:          d.ID.String(),
		BuildID:     d.BuildID.String(),
		Environment: string(d.Environment),
		URL:         d.URL,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}

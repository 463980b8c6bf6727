package handler

import (
	"strings"

	dErrors "paam/pkg/domain-errors"
	"paam/pkg/validation"
)

// CreateProjectRequest is the body of POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (r *CreateProjectRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *CreateProjectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// UpdateProjectRequest is the body of PATCH /projects/{id}. Omitted fields
// keep their current value.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (r *UpdateProjectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == nil && r.Description == nil {
		return dErrors.New(dErrors.CodeValidation, "name or description is required")
	}
	return validation.Validate(r)
}

// CreateBuildRequest is the body of POST /projects/{id}/builds.
type CreateBuildRequest struct {
	VersionID string `json:"versionId" validate:"omitempty,uuid"`
}

func (r *CreateBuildRequest) Sanitize() {
	if r == nil {
		return
	}
	r.VersionID = strings.TrimSpace(r.VersionID)
}

func (r *CreateBuildRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// UpdateBuildStatusRequest is the body of PATCH /builds/{id}/status.
type UpdateBuildStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=QUEUED RUNNING SUCCEEDED FAILED"`
}

func (r *UpdateBuildStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

func (r *UpdateBuildStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// CreateDeploymentRequest is the body of POST /builds/{id}/deployments.
type CreateDeploymentRequest struct {
	Environment string `json:"environment" validate:"required,oneof=PREVIEW PRODUCTION"`
	URL         string `json:"url" validate:"omitempty,url,max=2048"`
}

func (r *CreateDeploymentRequest) Sanitize() {
	if r == nil {
		return
	}
	r.URL = strings.TrimSpace(r.URL)
}

func (r *CreateDeploymentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Environment = strings.ToUpper(strings.TrimSpace(r.Environment))
}

func (r *CreateDeploymentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

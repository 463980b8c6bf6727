package models

import (
	"strings"
	"time"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// Project groups the builds a user produces against PAAM SDK versions.
type Project struct {
	ID          id.ProjectID
	OwnerID     id.UserID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BuildStatus string

const (
	BuildQueued    BuildStatus = "QUEUED"
	BuildRunning   BuildStatus = "RUNNING"
	BuildSucceeded BuildStatus = "SUCCEEDED"
	BuildFailed    BuildStatus = "FAILED"
)

// ParseBuildStatus accepts any letter case.
func ParseBuildStatus(raw string) (BuildStatus, error) {
	s := BuildStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case BuildQueued, BuildRunning, BuildSucceeded, BuildFailed:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "status must be one of QUEUED, RUNNING, SUCCEEDED, FAILED")
}

// IsTerminal reports whether no further status change is allowed.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildSucceeded || s == BuildFailed
}

// CanTransitionTo walks QUEUED -> RUNNING -> SUCCEEDED|FAILED. A queued
// build may also fail before it starts.
func (s BuildStatus) CanTransitionTo(next BuildStatus) bool {
	switch s {
	case BuildQueued:
		return next == BuildRunning || next == BuildFailed
	case BuildRunning:
		return next == BuildSucceeded || next == BuildFailed
	default:
		return false
	}
}

// Build is one compilation of a project, optionally pinned to an SDK version.
type Build struct {
	ID        id.BuildID
	ProjectID id.ProjectID
	VersionID *id.VersionID
	Status    BuildStatus
	CreatedAt time.Time
}

type Environment string

const (
	EnvironmentPreview    Environment = "PREVIEW"
	EnvironmentProduction Environment = "PRODUCTION"
)

func ParseEnvironment(raw string) (Environment, error) {
	e := Environment(strings.ToUpper(strings.TrimSpace(raw)))
	switch e {
	case EnvironmentPreview, EnvironmentProduction:
		return e, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "environment must be one of PREVIEW, PRODUCTION")
}

type DeploymentStatus string

const (
	DeploymentPending DeploymentStatus = "PENDING"
	DeploymentLive    DeploymentStatus = "LIVE"
	DeploymentFailed  DeploymentStatus = "FAILED"
)

// Deployment releases a succeeded build to an environment.
type Deployment struct {
	ID          id.DeploymentID
	BuildID     id.BuildID
	Environment Environment
	URL         string
	Status      DeploymentStatus
	CreatedAt   time.Time
}

// ProjectInput carries the writable project fields.
type ProjectInput struct {
	Name        string
	Description string
}

// ProjectPatch holds a partial update. Nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// NewProject validates in and returns a project owned by owner.
func NewProject(projectID id.ProjectID, owner id.UserID, in ProjectInput, now time.Time) (*Project, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	p := &Project{
		ID:        projectID,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Apply(ProjectPatch{Name: &in.Name, Description: &in.Description}, now); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	return p, nil
}

// Apply validates and applies patch, bumping UpdatedAt.
func (p *Project) Apply(patch ProjectPatch, now time.Time) error {
	name := p.Name
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
	}
	description := p.Description
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
	}
	if name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	if len(description) > MaxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 1000 characters")
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = now
	return nil
}

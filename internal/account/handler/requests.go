package handler

import (
	"strings"

	"paam/internal/account/models"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/validation"
)

// CreateUserRequest is the body of POST /admin/users.
type CreateUserRequest struct {
	OrganizationID string `json:"organizationId" validate:"omitempty,uuid"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Name           string `json:"name" validate:"required,notblank,max=100"`
	Role           string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER"`
}

func (r *CreateUserRequest) Sanitize() {
	if r == nil {
		return
	}
	r.OrganizationID = strings.TrimSpace(r.OrganizationID)
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateUserRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strings.ToLower(r.Email)
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

func (r *CreateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CreateUserRequest) ToInput() (models.UserInput, error) {
	in := models.UserInput{Email: r.Email, Name: r.Name, Role: models.Role(r.Role)}
	if r.OrganizationID != "" {
		orgID, err := id.ParseOrganizationID(r.OrganizationID)
		if err != nil {
			return models.UserInput{}, err
		}
		in.OrganizationID = &orgID
	}
	return in, nil
}

// CreateAPIKeyRequest is the body of POST /api-keys.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

func (r *CreateAPIKeyRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateAPIKeyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

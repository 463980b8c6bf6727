package handler

import (
	"time"

	"paam/internal/account/models"
)

type UserResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId,omitempty"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// APIKeyResponse describes a key without its hash.
type APIKeyResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

// IssuedKeyResponse is returned once, when the key is created.
type IssuedKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

func toUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
	if u.OrganizationID != nil {
		resp.OrganizationID = u.OrganizationID.String()
	}
	return resp
}

func toAPIKeyResponse(k *models.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID.String(),
		UserID:     k.UserID.String(),
		Name:       k.Name,
		Prefix:     k.Prefix,
		CreatedAt:  k.CreatedAt,
		LastUsedAt: k.LastUsedAt,
		RevokedAt:  k.RevokedAt,
	}
}

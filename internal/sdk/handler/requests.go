package handler

import (
	"strings"

	dErrors "paam/pkg/domain-errors"
	"paam/pkg/validation"
)

// PublishVersionRequest is the body of POST /sdk/versions.
type PublishVersionRequest struct {
	Version      string `json:"version" validate:"required,notblank,max=64"`
	Platform     string `json:"platform" validate:"required,oneof=ANDROID IOS FLUTTER REACT_NATIVE"`
	FileURL      string `json:"fileUrl" validate:"required,url,max=2048"`
	Checksum     string `json:"checksum" validate:"omitempty,hexadecimal,max=128"`
	ReleaseNotes string `json:"releaseNotes" validate:"max=10000"`
}

func (r *PublishVersionRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Version = strings.TrimSpace(r.Version)
	r.FileURL = strings.TrimSpace(r.FileURL)
	r.Checksum = strings.ToLower(strings.TrimSpace(r.Checksum))
	r.ReleaseNotes = strings.TrimSpace(r.ReleaseNotes)
}

func (r *PublishVersionRequest) Normalize() {
	if r == nil {
		return
	}
	r.Platform = strings.ToUpper(strings.TrimSpace(r.Platform))
}

func (r *PublishVersionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

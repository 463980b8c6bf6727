package handler

import (
	"time"

	"paam/internal/sdk/models"
	"paam/pkg/platform/device"
)

type VersionResponse struct {
	ID           string    `json:"id"`
	Version      string    `json:"version"`
	Platform     string    `json:"platform"`
	FileURL      string    `json:"fileUrl"`
	Checksum     string    `json:"checksum,omitempty"`
	ReleaseNotes string    `json:"releaseNotes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type DownloadResponse struct {
	ID        string    `json:"id"`
	VersionID string    `json:"versionId"`
	Version   string    `json:"version,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"createdAt"`
}

func toVersionResponse(v *models.Version) VersionResponse {
	return VersionResponse{
		ID:           v.ID.String(),
		Version:      v.Version,
		Platform:     string(v.Platform),
		FileURL:      v.FileURL,
		Checksum:     v.Checksum,
		ReleaseNotes: v.ReleaseNotes,
		CreatedAt:    v.CreatedAt,
	}
}

func toDownloadResponse(d *models.Download, version string, platform models.Platform) DownloadResponse {
	resp := DownloadResponse{
		ID:        d.ID.String(),
		VersionID: d.VersionID.String(),
		Version:   version,
		Platform:  string(platform),
		IPAddress: d.IPAddress,
		UserAgent: d.UserAgent,
		Device:    device.Label(d.UserAgent),
		CreatedAt: d.CreatedAt,
	}
	if d.UserID != nil {
		resp.UserID = d.UserID.String()
	}
	return resp
}

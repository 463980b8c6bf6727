package models

import (
	"strings"
	"time"

	"golang.org/x/mod/semver"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

// Platform is the mobile toolchain an SDK build targets.
type Platform string

const (
	PlatformAndroid     Platform = "ANDROID"
	PlatformIOS         Platform = "IOS"
	PlatformFlutter     Platform = "FLUTTER"
	PlatformReactNative Platform = "REACT_NATIVE"
)

func (p Platform) IsValid() bool {
	switch p {
	case PlatformAndroid, PlatformIOS, PlatformFlutter, PlatformReactNative:
		return true
	}
	return false
}

// ParsePlatform accepts any casing and rejects unknown platforms.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "platform must be one of ANDROID, IOS, FLUTTER, REACT_NATIVE")
	}
	return p, nil
}

// Version is a released SDK artifact for one platform.
type Version struct {
	ID           id.VersionID
	Version      string
	Platform     Platform
	FileURL      string
	Checksum     string
	ReleaseNotes string
	Published    bool
	CreatedAt    time.Time
}

// PublishInput carries the fields accepted when releasing a version.
type PublishInput struct {
	Version      string
	Platform     Platform
	FileURL      string
	Checksum     string
	ReleaseNotes string
}

// NormalizeVersion trims a leading "v" and checks the rest is semver.
func NormalizeVersion(raw string) (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if v == "" {
		return "", dErrors.New(dErrors.CodeValidation, "version is required")
	}
	if !semver.IsValid("v" + v) {
		return "", dErrors.New(dErrors.CodeValidation, "version must be semantic (e.g. 1.4.2)")
	}
	return v, nil
}

// CompareVersions orders semantic versions; equal strings compare as 0.
func CompareVersions(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// Download is one recorded fetch of an SDK version.
type Download struct {
	ID        id.DownloadID
	VersionID id.VersionID
	UserID    *id.UserID
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// DownloadView is a download joined with its version for listings.
type DownloadView struct {
	Download
	Version  string
	Platform Platform
}

// DateRange is the half-open window [From, To).
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// VersionCount is the number of downloads of one version.
type VersionCount struct {
	Version  string   `json:"version"`
	Platform Platform `json:"platform"`
	Count    int      `json:"count"`
}

// DayCount is the number of downloads on one UTC day (YYYY-MM-DD).
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Analytics summarizes downloads in a window. It is cached as JSON.
type Analytics struct {
	From           time.Time      `json:"from"`
	To             time.Time      `json:"to"`
	TotalDownloads int            `json:"totalDownloads"`
	UniqueUsers    int            `json:"uniqueUsers"`
	ByVersion      []VersionCount `json:"byVersion"`
	ByDay          []DayCount     `json:"byDay"`
}

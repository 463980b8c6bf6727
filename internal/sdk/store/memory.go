package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"paam/internal/sdk/models"
	id "paam/pkg/domain"
	"paam/pkg/platform/sentinel"
)

// Error Contract:
// - FindVersion returns sentinel.ErrNotFound for unknown versions
// - CreateVersion returns sentinel.ErrConflict for a duplicate version+platform
// - RecordDownload returns sentinel.ErrNotFound when the version does not exist

// VersionFilter narrows ListVersions.
type VersionFilter struct {
	Platform      *models.Platform
	PublishedOnly bool
}

// InMemory keeps versions and downloads in process memory.
type InMemory struct {
	mu        sync.RWMutex
	versions  map[id.VersionID]*models.Version
	downloads []*models.Download
}

func NewInMemory() *InMemory {
	return &InMemory{versions: make(map[id.VersionID]*models.Version)}
}

func (s *InMemory) CreateVersion(_ context.Context, v *models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.versions {
		if existing.Version == v.Version && existing.Platform == v.Platform {
			return fmt.Errorf("sdk %s %s: %w", v.Platform, v.Version, sentinel.ErrConflict)
		}
	}
	stored := *v
	s.versions[v.ID] = &stored
	return nil
}

func (s *InMemory) FindVersion(_ context.Context, versionID id.VersionID) (*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[versionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *v
	return &out, nil
}

// ListVersions returns versions newest first.
func (s *InMemory) ListVersions(_ context.Context, filter VersionFilter) ([]*models.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Version, 0, len(s.versions))
	for _, v := range s.versions {
		if filter.PublishedOnly && !v.Published {
			continue
		}
		if filter.Platform != nil && v.Platform != *filter.Platform {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *models.Version) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return models.CompareVersions(b.Version, a.Version)
	})
	return out, nil
}

func (s *InMemory) RecordDownload(_ context.Context, d *models.Download) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.versions[d.VersionID]; !ok {
		return fmt.Errorf("sdk version %s: %w", d.VersionID, sentinel.ErrNotFound)
	}
	stored := *d
	s.downloads = append(s.downloads, &stored)
	return nil
}

// ListDownloads returns downloads in rng newest first.
func (s *InMemory) ListDownloads(_ context.Context, rng models.DateRange, limit, offset int) ([]*models.DownloadView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.inRange(rng)
	slices.Reverse(matched)
	slices.SortStableFunc(matched, func(a, b *models.Download) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if offset >= len(matched) {
		return []*models.DownloadView{}, nil
	}
	end := min(offset+limit, len(matched))
	out := make([]*models.DownloadView, 0, end-offset)
	for _, d := range matched[offset:end] {
		view := &models.DownloadView{Download: *d}
		if v, ok := s.versions[d.VersionID]; ok {
			view.Version = v.Version
			view.Platform = v.Platform
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *InMemory) CountDownloads(_ context.Context, rng models.DateRange) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inRange(rng)), nil
}

// CountUniqueDownloaders counts distinct users; anonymous downloads count
// once per IP address.
func (s *InMemory) CountUniqueDownloaders(_ context.Context, rng models.DateRange) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, d := range s.inRange(rng) {
		seen[downloaderKey(d)] = struct{}{}
	}
	return len(seen), nil
}

// DownloadsByVersion returns counts per version, most downloaded first.
func (s *InMemory) DownloadsByVersion(_ context.Context, rng models.DateRange) ([]models.VersionCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[id.VersionID]int)
	for _, d := range s.inRange(rng) {
		counts[d.VersionID]++
	}
	out := make([]models.VersionCount, 0, len(counts))
	for versionID, n := range counts {
		v := s.versions[versionID]
		out = append(out, models.VersionCount{Version: v.Version, Platform: v.Platform, Count: n})
	}
	slices.SortFunc(out, func(a, b models.VersionCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Version, b.Version); c != 0 {
			return c
		}
		return cmp.Compare(a.Platform, b.Platform)
	})
	return out, nil
}

// DownloadsByDay returns counts per UTC day, oldest first.
func (s *InMemory) DownloadsByDay(_ context.Context, rng models.DateRange) ([]models.DayCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, d := range s.inRange(rng) {
		counts[d.CreatedAt.UTC().Format("2006-01-02")]++
	}
	out := make([]models.DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, models.DayCount{Date: day, Count: n})
	}
	slices.SortFunc(out, func(a, b models.DayCount) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out, nil
}

func (s *InMemory) inRange(rng models.DateRange) []*models.Download {
	out := make([]*models.Download, 0, len(s.downloads))
	for _, d := range s.downloads {
		if rng.Contains(d.CreatedAt) {
			out = append(out, d)
		}
	}
	return out
}

func downloaderKey(d *models.Download) string {
	if d.UserID != nil {
		return "user:" + d.UserID.String()
	}
	return "ip:" + d.IPAddress
}

package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"paam/internal/sdk/cache"
	"paam/internal/sdk/models"
	"paam/internal/sdk/service"
	"paam/internal/sdk/store"
	id "paam/pkg/domain"
	"paam/pkg/requestcontext"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	now    time.Time
	userID id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.userID = id.UserID{}

	h := New(service.New(store.NewInMemory(), service.WithLogger(logger)), logger, 30*24*time.Hour)
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), s.now)
			ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "okhttp/4.12")
			if !s.userID.IsNil() {
				ctx = requestcontext.WithUserID(ctx, s.userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	h.RegisterPublic(s.router)
	s.router.Route("/admin", h.RegisterAdmin)
}

func (s *HandlerSuite) do(method, path, body string) (int, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *HandlerSuite) publish(version, platform string) VersionResponse {
	code, env := s.do(http.MethodPost, "/admin/sdk/versions",
		`{"version":"`+version+`","platform":"`+platform+`","fileUrl":"https://cdn.example.com/sdk.zip","checksum":"ABCDEF01"}`)
	require.Equal(s.T(), http.StatusCreated, code, env.Error)
	var v VersionResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &v))
	return v
}

func (s *HandlerSuite) TestPublishVersion() {
	v := s.publish("v1.2.0", "android")

	assert.Equal(s.T(), "1.2.0", v.Version)
	assert.Equal(s.T(), "ANDROID", v.Platform)
	assert.Equal(s.T(), "abcdef01", v.Checksum)
	assert.Equal(s.T(), s.now, v.CreatedAt)

	code, env := s.do(http.MethodPost, "/admin/sdk/versions",
		`{"version":"1.2.0","platform":"ANDROID","fileUrl":"https://cdn.example.com/other.zip"}`)
	assert.Equal(s.T(), http.StatusConflict, code)
	assert.False(s.T(), env.Success)
}

func (s *HandlerSuite) TestPublishVersionValidation() {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"version":`, ""},
		{"missing version", `{"platform":"IOS","fileUrl":"https://cdn.example.com/a.zip"}`, "version is required"},
		{"unknown platform", `{"version":"1.0.0","platform":"WINDOWS","fileUrl":"https://cdn.example.com/a.zip"}`, "platform must be one of"},
		{"bad url", `{"version":"1.0.0","platform":"IOS","fileUrl":"not a url"}`, "fileUrl must be a valid url"},
		{"not semver", `{"version":"latest","platform":"IOS","fileUrl":"https://cdn.example.com/a.zip"}`, ""},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			code, env := s.do(http.MethodPost, "/admin/sdk/versions", tc.body)
			assert.Equal(s.T(), http.StatusBadRequest, code)
			assert.False(s.T(), env.Success)
			if tc.want != "" {
				assert.Contains(s.T(), env.Error, tc.want)
			}
		})
	}
}

func (s *HandlerSuite) TestListVersionsFiltersByPlatform() {
	s.publish("1.0.0", "IOS")
	s.publish("1.0.0", "ANDROID")

	code, env := s.do(http.MethodGet, "/sdk/versions?platform=ios", "")
	require.Equal(s.T(), http.StatusOK, code)
	var versions []VersionResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &versions))
	require.Len(s.T(), versions, 1)
	assert.Equal(s.T(), "IOS", versions[0].Platform)

	code, _ = s.do(http.MethodGet, "/sdk/versions?platform=symbian", "")
	assert.Equal(s.T(), http.StatusBadRequest, code)
}

func (s *HandlerSuite) TestRecordDownload() {
	v := s.publish("2.0.0", "FLUTTER")
	s.userID = id.UserID(uuid.New())

	code, env := s.do(http.MethodPost, "/sdk/versions/"+v.ID+"/downloads", "")
	require.Equal(s.T(), http.StatusCreated, code, env.Error)
	var d DownloadResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &d))
	assert.Equal(s.T(), v.ID, d.VersionID)
	assert.Equal(s.T(), s.userID.String(), d.UserID)
	assert.Equal(s.T(), "203.0.113.7", d.IPAddress)
	assert.Equal(s.T(), "okhttp/4.12", d.UserAgent)
	assert.NotEmpty(s.T(), d.Device)
}

func (s *HandlerSuite) TestRecordDownloadUnknownVersion() {
	code, _ := s.do(http.MethodPost, "/sdk/versions/"+uuid.NewString()+"/downloads", "")
	assert.Equal(s.T(), http.StatusNotFound, code)

	code, env := s.do(http.MethodPost, "/sdk/versions/not-a-uuid/downloads", "")
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.False(s.T(), env.Success)
}

func (s *HandlerSuite) TestListDownloadsAndAnalytics() {
	v := s.publish("3.1.0", "REACT_NATIVE")
	for range 3 {
		code, _ := s.do(http.MethodPost, "/sdk/versions/"+v.ID+"/downloads", "")
		require.Equal(s.T(), http.StatusCreated, code)
	}

	code, env := s.do(http.MethodGet, "/admin/downloads?from=2026-03-01&to=2026-03-10&limit=2", "")
	require.Equal(s.T(), http.StatusOK, code, env.Error)
	var downloads []DownloadResponse
	require.NoError(s.T(), json.Unmarshal(env.Data, &downloads))
	assert.Len(s.T(), downloads, 2)
	assert.Equal(s.T(), "3.1.0", downloads[0].Version)
	require.NotNil(s.T(), env.Pagination)
	assert.Equal(s.T(), 3, env.Pagination.Total)
	assert.Equal(s.T(), 2, env.Pagination.Pages)

	code, env = s.do(http.MethodGet, "/admin/analytics?from=2026-03-01&to=2026-03-10", "")
	require.Equal(s.T(), http.StatusOK, code, env.Error)
	var a models.Analytics
	require.NoError(s.T(), json.Unmarshal(env.Data, &a))
	assert.Equal(s.T(), 3, a.TotalDownloads)
	assert.Equal(s.T(), 1, a.UniqueUsers)
	require.Len(s.T(), a.ByDay, 1)
	assert.Equal(s.T(), "2026-03-10", a.ByDay[0].Date)
}

func (s *HandlerSuite) TestAnalyticsRejectsInvertedRange() {
	code, env := s.do(http.MethodGet, "/admin/analytics?from=2026-03-10&to=2026-03-01", "")
	assert.Equal(s.T(), http.StatusBadRequest, code)
	assert.Equal(s.T(), "from must not be after to", env.Error)
}

type countingCache struct {
	entries map[string]*models.Analytics
	gets    int
	hits    int
	sets    int
}

func (c *countingCache) Get(_ context.Context, rng models.DateRange) (*models.Analytics, error) {
	c.gets++
	if a, ok := c.entries[cache.Key(rng)]; ok {
		c.hits++
		return a, nil
	}
	return nil, cache.ErrMiss
}

func (c *countingCache) Set(_ context.Context, rng models.DateRange, a *models.Analytics) error {
	c.sets++
	c.entries[cache.Key(rng)] = a
	return nil
}

func TestDefaultAnalyticsWindowReusesCache(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	c := &countingCache{entries: map[string]*models.Analytics{}}
	h := New(service.New(store.NewInMemory(), service.WithCache(c), service.WithLogger(logger)), logger, 30*24*time.Hour)
	r := chi.NewRouter()
	r.Route("/admin", h.RegisterAdmin)

	base := time.Date(2026, 3, 10, 12, 0, 10, 0, time.UTC)
	for _, at := range []time.Time{base, base.Add(time.Second)} {
		req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
		req = req.WithContext(requestcontext.WithTime(req.Context(), at))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	assert.Equal(t, 2, c.gets)
	assert.Equal(t, 1, c.hits, "second request one second later is served from cache")
	assert.Equal(t, 1, c.sets)
	assert.Len(t, c.entries, 1)
}

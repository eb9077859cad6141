package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/handler"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/storage/storagetest"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/assets"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/ratelimit"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/web"
	"github.com/Mo-Ibra/next-fullstack-jobs/shared/logger"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret-password"
	cookieName    = "jobboard_session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	store  *storagetest.Store
	auth   *auth.Authenticator
}

func newTestServer(t *testing.T, limiter *ratelimit.KeyLimiter) *testServer {
	t.Helper()
	log := logger.NewNop().Logger

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator(auth.Config{
		AdminEmail:        adminEmail,
		AdminPasswordHash: string(hash),
		SessionTTL:        time.Hour,
	}, auth.NewMemoryStore(), log)
	require.NoError(t, err)

	fileStore, err := assets.NewFileStore(t.TempDir())
	require.NoError(t, err)

	blogDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(blogDir, "hiring-in-2024.md"),
		[]byte("---\ntitle: Hiring in 2024\ndate: 2024-02-01\n---\n\nWhat changed.\n"), 0o644))

	tmpl, err := web.Templates()
	require.NoError(t, err)

	if limiter == nil {
		limiter = ratelimit.New(6000, 100)
	}

	store := storagetest.New()
	deps := &handler.Dependencies{
		Logger:      log,
		PublicStore: store,
		AdminStore:  store,
		Auth:        authn,
		Session:     handler.SessionConfig{CookieName: cookieName, TTL: time.Hour},
		Uploader:    assets.NewUploader(fileStore, 2<<20, ""),
		Blog:        blog.NewReader(blogDir, log),
		Events:      events.NewEmitter(nil, log),
		ServiceName: "job-board-api",
	}

	return &testServer{
		engine: SetupRouter(deps, Options{
			CORSOrigins: []string{"https://jobs.example.com"},
			Limiter:     limiter,
			Templates:   tmpl,
		}),
		store: store,
		auth:  authn,
	}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	session, err := s.auth.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return session.Token
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) form(t *testing.T, path string, values url.Values, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// multipartForm posts the fields in browser order with the logo file after title and company
func (s *testServer) multipartForm(t *testing.T, path string, values url.Values, logo []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"title", "company"} {
		require.NoError(t, mw.WriteField(name, values.Get(name)))
	}
	fw, err := mw.CreateFormFile("company_logo_file", "logo.png")
	require.NoError(t, err)
	_, err = fw.Write(logo)
	require.NoError(t, err)
	for name, vs := range values {
		if name == "title" || name == "company" {
			continue
		}
		for _, v := range vs {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func pngOf(size int) []byte {
	data := make([]byte, size)
	copy(data, "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	return data
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(title, status string) model.Job {
	remote := domain.WorkLocationRemote
	return s.store.Put(model.Job{
		Title:            title,
		Company:          "Acme",
		Location:         "Remote",
		Description:      "Build things",
		JobType:          "Full-time",
		SalaryCurrency:   "USD",
		WorkLocationType: &remote,
		Status:           status,
	})
}

func publicJobForm() url.Values {
	return url.Values{
		"title":              {"Frontend Engineer"},
		"company":            {"Globex"},
		"location":           {"Lisbon"},
		"description":        {"React and Go"},
		"job_type":           {"Contract"},
		"work_location_type": {"hybrid"},
		"application_link":   {"https://globex.test/jobs"},
		"status":             {"approved"},
		"language":           {"Portuguese", ""},
		"level":              {"Native", "Basic"},
	}
}

func TestRouter_AdminRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, nil)
	job := srv.seed("Original", domain.JobStatusPending)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/admin/jobs", nil},
		{http.MethodPost, "/api/admin/jobs", map[string]string{"title": "x"}},
		{http.MethodPut, "/api/admin/jobs/" + job.ID, map[string]string{"title": "Hijacked"}},
		{http.MethodPatch, "/api/admin/jobs/" + job.ID + "/status", map[string]string{"status": "approved"}},
		{http.MethodDelete, "/api/admin/jobs/" + job.ID, nil},
		{http.MethodPost, "/api/admin/upload-logo", nil},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := srv.do(t, rt.method, rt.path, rt.body, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

			w = srv.do(t, rt.method, rt.path, rt.body, "forged-token")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	stored, ok := srv.store.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, "Original", stored.Title)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
	assert.Equal(t, 0, srv.store.Writes)
}

func TestRouter_AdminWithBearerToken(t *testing.T) {
	srv := newTestServer(t, nil)
	job := srv.seed("Original", domain.JobStatusPending)
	token := srv.token(t)

	w := srv.do(t, http.MethodPut, "/api/admin/jobs/"+job.ID, map[string]string{"title": "Edited"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPatch, "/api/admin/jobs/"+job.ID+"/status", map[string]string{"status": "approved"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := srv.store.Job(job.ID)
	assert.Equal(t, "Edited", stored.Title)
	assert.Equal(t, domain.JobStatusApproved, stored.Status)

	w = srv.do(t, http.MethodPost, "/api/admin/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/admin/jobs", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token is dead after logout")
}

func TestRouter_LoginThroughAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": adminEmail, "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = srv.do(t, http.MethodGet, "/api/admin/jobs", nil, resp.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PublicWritesAreRateLimited(t *testing.T) {
	srv := newTestServer(t, ratelimit.New(1, 2))

	body := map[string]string{
		"title": "A", "company": "B", "location": "C", "description": "D", "job_type": "Full-time",
		"work_location_type": "remote", "application_link": "https://x.test",
	}

	for i := 0; i < 2; i++ {
		w := srv.do(t, http.MethodPost, "/api/public-jobs", body, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := srv.do(t, http.MethodPost, "/api/public-jobs", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.Equal(t, 2, srv.store.Len())

	w = srv.do(t, http.MethodGet, "/api/jobs", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "reads are not limited")
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/public-jobs", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://jobs.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.get(t, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = srv.get(t, "/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Not found</h1>")
}

func TestRouter_HomePage(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seed("Staff Engineer", domain.JobStatusApproved)
	srv.seed("Hidden Pending", domain.JobStatusPending)

	w := srv.get(t, "/", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Staff Engineer")
	assert.NotContains(t, body, "Hidden Pending")
	assert.Contains(t, body, "1 remote")
	assert.Contains(t, body, "Latest Articles")
	assert.Contains(t, body, "Hiring in 2024")

	w = srv.get(t, "/?type=hybrid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No jobs found.")
}

func TestRouter_JobDetailPage(t *testing.T) {
	srv := newTestServer(t, nil)
	job := srv.seed("Platform Engineer", domain.JobStatusApproved)

	w := srv.get(t, "/jobs/"+job.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>Platform Engineer</h1>")

	w = srv.get(t, "/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SubmitJobPage(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.get(t, "/submit-job", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="application_link"`)

	w = srv.form(t, "/submit-job", publicJobForm(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "waiting for review")

	jobs, err := srv.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStatusPending, jobs[0].Status, "form status is ignored")
	assert.Equal(t, model.Languages{{Language: "Portuguese", Level: "Native"}}, jobs[0].RequiredLanguages)
	assert.False(t, jobs[0].VisaSponsorship)
}

func TestRouter_SubmitJobPage_MissingField(t *testing.T) {
	srv := newTestServer(t, nil)

	values := publicJobForm()
	values.Del("application_link")

	w := srv.form(t, "/submit-job", values, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing required fields")
	assert.Contains(t, w.Body.String(), `value="Frontend Engineer"`, "input is echoed back")
	assert.Equal(t, 0, srv.store.Len())
}

func TestRouter_SubmitJobPage_Logo(t *testing.T) {
	tests := []struct {
		name       string
		logo       []byte
		wantStatus int
		wantBody   []string
		wantJobs   int
	}{
		{
			name:       "logo within the limit",
			logo:       pngOf(4 << 10),
			wantStatus: http.StatusOK,
			wantBody:   []string{"waiting for review"},
			wantJobs:   1,
		},
		{
			name:       "oversized logo keeps the form",
			logo:       pngOf(4 << 20),
			wantStatus: http.StatusBadRequest,
			wantBody: []string{
				"File too large (max 2MB)",
				`value="Frontend Engineer"`,
				`value="https://globex.test/jobs"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			w := srv.multipartForm(t, "/submit-job", publicJobForm(), tt.logo, "")

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			for _, want := range tt.wantBody {
				assert.Contains(t, w.Body.String(), want)
			}
			require.Equal(t, tt.wantJobs, srv.store.Len())
			if tt.wantJobs > 0 {
				jobs, err := srv.store.ListAll(context.Background())
				require.NoError(t, err)
				require.NotNil(t, jobs[0].CompanyLogo)
				assert.Contains(t, *jobs[0].CompanyLogo, "/logo/")
			}
		})
	}
}

func TestRouter_AdminPages(t *testing.T) {
	srv := newTestServer(t, nil)
	job := srv.seed("Needs Review", domain.JobStatusPending)

	w := srv.get(t, "/admin", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = srv.form(t, "/admin/login", url.Values{"email": {adminEmail}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = srv.form(t, "/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)

	w = srv.get(t, "/admin", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Needs Review")

	w = srv.form(t, "/admin/jobs/"+job.ID+"/status", url.Values{"status": {"archived"}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.form(t, "/admin/jobs/"+job.ID+"/status", url.Values{"status": {"approved"}}, token)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin?notice=status", w.Header().Get("Location"))

	stored, _ := srv.store.Job(job.ID)
	assert.Equal(t, domain.JobStatusApproved, stored.Status)

	w = srv.get(t, "/admin/jobs/"+job.ID+"/edit", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Needs Review"`)

	w = srv.form(t, "/admin/jobs/"+job.ID+"/delete", nil, token)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 0, srv.store.Len())

	w = srv.form(t, "/admin/jobs/"+job.ID+"/delete", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AdminCreatePage(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t)

	values := publicJobForm()
	values.Del("status")

	w := srv.form(t, "/admin/jobs/new", values, token)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	jobs, err := srv.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobStatusApproved, jobs[0].Status)
}

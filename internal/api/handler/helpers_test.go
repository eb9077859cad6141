package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/storage/storagetest"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/assets"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
	"github.com/Mo-Ibra/next-fullstack-jobs/shared/logger"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "s3cret-password"
	testCookie   = "jobboard_session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingPublisher keeps every published routing key
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type testEnv struct {
	deps      *Dependencies
	store     *storagetest.Store
	published *recordingPublisher
	blogDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewNop().Logger

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator(auth.Config{
		AdminEmail:        testEmail,
		AdminPasswordHash: string(hash),
		SessionTTL:        time.Hour,
	}, auth.NewMemoryStore(), log)
	require.NoError(t, err)

	fileStore, err := assets.NewFileStore(t.TempDir())
	require.NoError(t, err)

	blogDir := t.TempDir()
	store := storagetest.New()
	pub := &recordingPublisher{}

	return &testEnv{
		deps: &Dependencies{
			Logger:      log,
			PublicStore: store,
			AdminStore:  store,
			Auth:        authn,
			Session:     SessionConfig{CookieName: testCookie, TTL: time.Hour},
			Uploader:    assets.NewUploader(fileStore, 1024, "http://jobs.test"),
			Blog:        blog.NewReader(blogDir, log),
			Events:      events.NewEmitter(pub, log),
			ServiceName: "job-board-api",
		},
		store:     store,
		published: pub,
		blogDir:   blogDir,
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func validPublicJob() map[string]any {
	return map[string]any{
		"title":              "Backend Engineer",
		"company":            "Acme",
		"location":           "Berlin",
		"description":        "Build APIs",
		"job_type":           "Full-time",
		"work_location_type": "remote",
		"application_link":   "https://acme.test/apply",
	}
}

package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/assets"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
)

// JobStore is one handle onto the jobs table. Each method is a single round trip.
type JobStore interface {
	ListApproved(ctx context.Context) ([]model.Job, error)
	ListAll(ctx context.Context) ([]model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	Create(ctx context.Context, w *model.JobWrite) (*model.Job, error)
	Update(ctx context.Context, id string, patch model.JobPatch) (*model.Job, error)
	Delete(ctx context.Context, id string) error
}

// Keys set on the gin context by the session middleware
const (
	SessionContextKey = "session"
	AdminContextKey   = "admin"
)

// Check is one readiness probe
type Check func(ctx context.Context) error

// SessionConfig controls the admin session cookie
type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Dependencies holds all dependencies needed by handlers.
// PublicStore serves unauthenticated routes and AdminStore the session-guarded ones.
type Dependencies struct {
	Logger      *slog.Logger
	PublicStore JobStore
	AdminStore  JobStore
	Auth        *auth.Authenticator
	Session     SessionConfig
	Uploader    *assets.Uploader
	Blog        *blog.Reader
	Events      *events.Emitter
	Checks      map[string]Check
	ServiceName string
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger *slog.Logger
	public JobStore
	admin  JobStore
	events *events.Emitter
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		public: deps.PublicStore,
		admin:  deps.AdminStore,
		events: deps.Events,
	}
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	logger  *slog.Logger
	auth    *auth.Authenticator
	session SessionConfig
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{
		logger:  deps.Logger,
		auth:    deps.Auth,
		session: deps.Session,
	}
}

// UploadHandler handles logo uploads and serves stored logos
type UploadHandler struct {
	logger   *slog.Logger
	uploader *assets.Uploader
}

// NewUploadHandler creates a new UploadHandler instance
func NewUploadHandler(deps *Dependencies) *UploadHandler {
	return &UploadHandler{
		logger:   deps.Logger,
		uploader: deps.Uploader,
	}
}

// BlogHandler serves blog posts as JSON
type BlogHandler struct {
	logger *slog.Logger
	blog   *blog.Reader
}

// NewBlogHandler creates a new BlogHandler instance
func NewBlogHandler(deps *Dependencies) *BlogHandler {
	return &BlogHandler{
		logger: deps.Logger,
		blog:   deps.Blog,
	}
}

// HealthHandler answers liveness and readiness probes
type HealthHandler struct {
	service string
	checks  map[string]Check
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		service: deps.ServiceName,
		checks:  deps.Checks,
	}
}

// PageHandler renders the server-side HTML pages
type PageHandler struct {
	logger  *slog.Logger
	jobs    *JobHandler
	authn   *AuthHandler
	uploads *UploadHandler
	blog    *blog.Reader
}

// NewPageHandler creates a new PageHandler instance
func NewPageHandler(deps *Dependencies) *PageHandler {
	return &PageHandler{
		logger:  deps.Logger,
		jobs:    NewJobHandler(deps),
		authn:   NewAuthHandler(deps),
		uploads: NewUploadHandler(deps),
		blog:    deps.Blog,
	}
}

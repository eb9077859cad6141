package router

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/handler"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/ratelimit"
)

// Options holds router-level settings that are not handler dependencies
type Options struct {
	CORSOrigins []string
	Limiter     *ratelimit.KeyLimiter
	// Templates enables the HTML pages. Without them only the JSON API is mounted.
	Templates *template.Template
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.CORSOrigins))

	health := handler.NewHealthHandler(deps)
	r.GET("/health", health.Live)
	r.GET("/health/ready", health.Ready)

	uploads := handler.NewUploadHandler(deps)
	r.GET("/logo/:key", uploads.ServeLogo)

	limited := RateLimitMiddleware(opts.Limiter, deps.Logger)
	cookie := deps.Session.CookieName

	jobs := handler.NewJobHandler(deps)
	authn := handler.NewAuthHandler(deps)
	posts := handler.NewBlogHandler(deps)

	api := r.Group("/api")
	{
		api.GET("/jobs", jobs.ListApproved)
		api.GET("/jobs/:id", jobs.GetJob)
		api.POST("/public-jobs", limited, jobs.CreatePublicJob)
		api.POST("/upload-public-logo", limited, uploads.UploadLogo)

		api.GET("/blog", posts.ListPosts)
		api.GET("/blog/:slug", posts.GetPost)

		api.POST("/admin/login", limited, authn.Login)
		api.POST("/admin/logout", authn.Logout)

		admin := api.Group("/admin", RequireSession(deps.Auth, cookie, deps.Logger, unauthorizedJSON))
		{
			admin.GET("/jobs", jobs.ListAll)
			admin.POST("/jobs", jobs.CreateJob)
			admin.PUT("/jobs/:id", jobs.UpdateJob)
			admin.PATCH("/jobs/:id/status", jobs.UpdateStatus)
			admin.DELETE("/jobs/:id", jobs.DeleteJob)
			admin.POST("/upload-logo", uploads.UploadLogo)
		}
	}

	if opts.Templates == nil {
		r.NoRoute(notFoundJSON)
		return r
	}

	r.SetHTMLTemplate(opts.Templates)
	pages := handler.NewPageHandler(deps)

	r.GET("/", pages.Home)
	r.GET("/jobs/:id", pages.JobDetail)
	r.GET("/submit-job", pages.SubmitForm)
	r.POST("/submit-job", limited, pages.Submit)
	r.GET("/blog", pages.BlogList)
	r.GET("/blog/:slug", pages.BlogPost)

	r.GET("/admin/login", pages.LoginPage)
	r.POST("/admin/login", limited, pages.Login)
	r.POST("/admin/logout", pages.Logout)

	adminPages := r.Group("/admin", RequireSession(deps.Auth, cookie, deps.Logger, redirectToLogin))
	{
		adminPages.GET("", pages.Dashboard)
		adminPages.GET("/jobs/new", pages.NewJobPage)
		adminPages.POST("/jobs/new", pages.CreateJob)
		adminPages.GET("/jobs/:id/edit", pages.EditJobPage)
		adminPages.POST("/jobs/:id/edit", pages.UpdateJob)
		adminPages.POST("/jobs/:id/status", pages.ChangeStatus)
		adminPages.POST("/jobs/:id/delete", pages.DeleteJob)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFoundJSON(c)
			return
		}
		pages.NotFound(c)
	})

	return r
}

func notFoundJSON(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
}

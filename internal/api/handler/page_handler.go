package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/auth"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/blog"
)

const latestPostsOnHome = 3

// page is the data every template receives
type page struct {
	Title   string
	Admin   bool
	Error   string
	Message string

	Jobs          []model.Job
	Filtered      []model.Job
	Filter        string
	WorkLocations []string
	RemoteCount   int
	CompanyCount  int
	Job           *model.Job

	Posts []blog.PostMeta
	Post  *blog.Post

	Form      jobForm
	Action    string
	Submitted bool
	Email     string
}

var notices = map[string]string{
	"created": "Job created",
	"updated": "Job updated",
	"status":  "Status updated",
	"deleted": "Job deleted",
}

// Home handles GET /
// Jobs and the latest posts are loaded concurrently.
func (h *PageHandler) Home(c *gin.Context) {
	var (
		jobs  []model.Job
		posts []blog.PostMeta
	)

	// a blog failure must not cancel the job query, so no shared context
	var g errgroup.Group
	g.Go(func() error {
		jobs = h.jobs.listApproved(c.Request.Context())
		return nil
	})
	g.Go(func() error {
		var err error
		posts, err = h.blog.Latest(latestPostsOnHome)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("Failed to load latest posts", slog.String("error", err.Error()))
	}

	filter := c.Query("type")
	if !domain.IsValidWorkLocation(filter) {
		filter = ""
	}

	h.render(c, http.StatusOK, "home.html", page{
		Jobs:          jobs,
		Filtered:      filterByLocation(jobs, filter),
		Filter:        filter,
		WorkLocations: domain.WorkLocations,
		RemoteCount:   countRemote(jobs),
		CompanyCount:  countCompanies(jobs),
		Posts:         posts,
	})
}

// JobDetail handles GET /jobs/:id
func (h *PageHandler) JobDetail(c *gin.Context) {
	job, err := h.jobs.public.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "Failed to load job")
		return
	}

	h.render(c, http.StatusOK, "job.html", page{Title: job.Title, Job: job})
}

// SubmitForm handles GET /submit-job
func (h *PageHandler) SubmitForm(c *gin.Context) {
	h.render(c, http.StatusOK, "submit.html", page{Title: "Post a job", Form: newJobForm()})
}

// Submit handles POST /submit-job
// The form goes through the same public create path as the JSON route.
func (h *PageHandler) Submit(c *gin.Context) {
	logo, err := h.readJobPost(c)
	in, form := readJobForm(c)

	if err == nil {
		err = h.attachLogo(c.Request.Context(), logo, &in, &form)
	}
	if err == nil {
		_, err = h.jobs.createPublic(c.Request.Context(), in)
	}
	if err != nil {
		status, msg := h.formError(c, err, "Failed to submit job")
		h.render(c, status, "submit.html", page{Title: "Post a job", Error: msg, Form: form})
		return
	}

	h.render(c, http.StatusOK, "submit.html", page{Title: "Post a job", Submitted: true})
}

// BlogList handles GET /blog
func (h *PageHandler) BlogList(c *gin.Context) {
	posts, err := h.blog.List()
	if err != nil {
		h.renderError(c, err, "Failed to load posts")
		return
	}

	h.render(c, http.StatusOK, "blog_list.html", page{Title: "Blog", Posts: posts})
}

// BlogPost handles GET /blog/:slug
func (h *PageHandler) BlogPost(c *gin.Context) {
	post, err := h.blog.Get(c.Param("slug"))
	if errors.Is(err, blog.ErrPostNotFound) {
		h.render(c, http.StatusNotFound, "error.html", page{Title: "Not found"})
		return
	}
	if err != nil {
		h.renderError(c, err, "Failed to load post")
		return
	}

	h.render(c, http.StatusOK, "blog_post.html", page{Title: post.Title, Post: post})
}

// NotFound renders the 404 page for unknown paths
func (h *PageHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.html", page{Title: "Not found"})
}

// LoginPage handles GET /admin/login
func (h *PageHandler) LoginPage(c *gin.Context) {
	if h.authn.authenticated(c.Request.Context(), c.Request) {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	h.render(c, http.StatusOK, "admin_login.html", page{Title: "Sign in"})
}

// Login handles POST /admin/login
func (h *PageHandler) Login(c *gin.Context) {
	email := c.PostForm("email")

	_, err := h.authn.startSession(c, email, c.PostForm("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.render(c, http.StatusUnauthorized, "admin_login.html", page{Title: "Sign in", Error: msgInvalidCredentials, Email: email})
		return
	}
	if err != nil {
		h.renderError(c, err, "Failed to log in")
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin")
}

// Logout handles POST /admin/logout
func (h *PageHandler) Logout(c *gin.Context) {
	h.authn.endSession(c)
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// Dashboard handles GET /admin
func (h *PageHandler) Dashboard(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_dashboard.html", page{
		Title:   "Dashboard",
		Admin:   true,
		Jobs:    h.jobs.listAll(c.Request.Context()),
		Message: notices[c.Query("notice")],
	})
}

// NewJobPage handles GET /admin/jobs/new
func (h *PageHandler) NewJobPage(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_job_form.html", page{
		Title:  "New job",
		Admin:  true,
		Form:   newJobForm(),
		Action: "/admin/jobs/new",
	})
}

// CreateJob handles POST /admin/jobs/new
func (h *PageHandler) CreateJob(c *gin.Context) {
	logo, err := h.readJobPost(c)
	in, form := readJobForm(c)

	if err == nil {
		err = h.attachLogo(c.Request.Context(), logo, &in, &form)
	}
	if err == nil {
		_, err = h.jobs.createAdmin(c.Request.Context(), in)
	}
	if err != nil {
		status, msg := h.formError(c, err, "Failed to create job")
		h.render(c, status, "admin_job_form.html", page{
			Title:  "New job",
			Admin:  true,
			Error:  msg,
			Form:   form,
			Action: "/admin/jobs/new",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin?notice=created")
}

// EditJobPage handles GET /admin/jobs/:id/edit
func (h *PageHandler) EditJobPage(c *gin.Context) {
	job, err := h.jobs.admin.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err, "Failed to load job")
		return
	}

	h.render(c, http.StatusOK, "admin_job_form.html", page{
		Title:  "Edit job",
		Admin:  true,
		Form:   jobFormFrom(job),
		Action: "/admin/jobs/" + job.ID + "/edit",
	})
}

// UpdateJob handles POST /admin/jobs/:id/edit
func (h *PageHandler) UpdateJob(c *gin.Context) {
	id := c.Param("id")
	logo, err := h.readJobPost(c)
	in, form := readJobForm(c)

	if err == nil {
		err = h.attachLogo(c.Request.Context(), logo, &in, &form)
	}
	if err == nil {
		_, err = h.jobs.update(c.Request.Context(), id, in)
	}
	if errors.Is(err, domain.ErrJobNotFound) {
		h.renderError(c, err, "Failed to update job")
		return
	}
	if err != nil {
		status, msg := h.formError(c, err, "Failed to update job")
		h.render(c, status, "admin_job_form.html", page{
			Title:  "Edit job",
			Admin:  true,
			Error:  msg,
			Form:   form,
			Action: "/admin/jobs/" + id + "/edit",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin?notice=updated")
}

// ChangeStatus handles POST /admin/jobs/:id/status
func (h *PageHandler) ChangeStatus(c *gin.Context) {
	if _, err := h.jobs.changeStatus(c.Request.Context(), c.Param("id"), c.PostForm("status")); err != nil {
		h.renderError(c, err, "Failed to update job status")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?notice=status")
}

// DeleteJob handles POST /admin/jobs/:id/delete
func (h *PageHandler) DeleteJob(c *gin.Context) {
	if err := h.jobs.delete(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err, "Failed to delete job")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?notice=deleted")
}

func (h *PageHandler) render(c *gin.Context, status int, name string, p page) {
	c.HTML(status, name, p)
}

// renderError shows the error page with the status the JSON routes would use
func (h *PageHandler) renderError(c *gin.Context, err error, fallback string) {
	status, msg := h.formError(c, err, fallback)

	title := msg
	if status == http.StatusNotFound {
		title = "Not found"
	}
	h.render(c, status, "error.html", page{Title: title, Admin: c.GetBool(AdminContextKey)})
}

func (h *PageHandler) formError(c *gin.Context, err error, fallback string) (int, string) {
	status, msg := statusFor(err, fallback)
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error(fallback,
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	case domain.IsInvalidInput(err):
		h.logger.Debug("Form rejected",
			slog.String("path", c.Request.URL.Path),
			slog.String("reason", msg),
		)
	}
	return status, msg
}

func filterByLocation(jobs []model.Job, location string) []model.Job {
	if location == "" {
		return jobs
	}
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.WorkLocation() == location {
			out = append(out, j)
		}
	}
	return out
}

func countRemote(jobs []model.Job) int {
	n := 0
	for _, j := range jobs {
		if j.IsRemote() {
			n++
		}
	}
	return n
}

func countCompanies(jobs []model.Job) int {
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		seen[j.Company] = struct{}{}
	}
	return len(seen)
}

package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/dto"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

const (
	logoFileField = "company_logo_file"

	// maxFormFields caps the text fields of a job form post
	maxFormFields = 1 << 20
	// maxFormPost caps the whole post, matching gin's default multipart memory
	maxFormPost = 32 << 20
)

// jobForm is the state of the job form, echoed back when a submission fails
type jobForm struct {
	Title            string
	Company          string
	CompanyLogo      string
	Location         string
	Description      string
	Salary           string
	SalaryMin        string
	SalaryMax        string
	SalaryCurrency   string
	VisaSponsorship  bool
	Languages        []dto.LanguageDTO
	JobType          string
	WorkLocationType string
	ApplicationLink  string
	Status           string

	JobTypes      []string
	WorkLocations []string
	Levels        []string
	Statuses      []string
	Currencies    []string
}

func newJobForm() jobForm {
	f := jobForm{
		SalaryCurrency: domain.DefaultSalaryCurrency,
		JobType:        domain.JobTypes[0],
		Status:         domain.JobStatusApproved,
	}
	return f.withChoices()
}

func jobFormFrom(job *model.Job) jobForm {
	f := jobForm{
		Title:            job.Title,
		Company:          job.Company,
		CompanyLogo:      job.LogoURL(),
		Location:         job.Location,
		Description:      job.Description,
		SalaryMin:        dto.FormatInt(job.SalaryMin),
		SalaryMax:        dto.FormatInt(job.SalaryMax),
		SalaryCurrency:   job.SalaryCurrency,
		VisaSponsorship:  job.VisaSponsorship,
		JobType:          job.JobType,
		WorkLocationType: job.WorkLocation(),
		ApplicationLink:  job.ApplyURL(),
		Status:           job.Status,
	}
	if job.Salary != nil {
		f.Salary = *job.Salary
	}
	for _, l := range job.RequiredLanguages {
		f.Languages = append(f.Languages, dto.LanguageDTO{Language: l.Language, Level: l.Level})
	}
	return f.withChoices()
}

// withChoices fills the select options and leaves one empty language row to type into
func (f jobForm) withChoices() jobForm {
	f.JobTypes = domain.JobTypes
	f.WorkLocations = domain.WorkLocations
	f.Levels = domain.LanguageLevels
	f.Statuses = domain.Statuses
	f.Currencies = domain.Currencies
	f.Languages = append(f.Languages, dto.LanguageDTO{Level: domain.LanguageLevelIntermediate})
	return f
}

// readJobForm collects a posted job form. The checkbox and the language rows are always
// treated as sent, because a browser omits an unchecked box and empty rows.
func readJobForm(c *gin.Context) (domain.JobInput, jobForm) {
	field := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			return &v
		}
		return nil
	}

	in := domain.JobInput{
		Title:            field("title"),
		Company:          field("company"),
		CompanyLogo:      field("company_logo"),
		Location:         field("location"),
		Description:      field("description"),
		Salary:           field("salary"),
		SalaryMin:        field("salary_min"),
		SalaryMax:        field("salary_max"),
		SalaryCurrency:   field("salary_currency"),
		JobType:          field("job_type"),
		WorkLocationType: field("work_location_type"),
		ApplicationLink:  field("application_link"),
		Status:           field("status"),
	}

	visa := c.PostForm("visa_sponsorship")
	in.VisaSponsorship = &visa

	languages := c.PostFormArray("language")
	levels := c.PostFormArray("level")
	langs := make([]domain.LanguageInput, 0, len(languages))
	for i, lang := range languages {
		l := domain.LanguageInput{Language: lang}
		if i < len(levels) {
			l.Level = levels[i]
		}
		langs = append(langs, l)
	}
	in.RequiredLanguages = &langs

	form := jobForm{
		Title:            c.PostForm("title"),
		Company:          c.PostForm("company"),
		CompanyLogo:      c.PostForm("company_logo"),
		Location:         c.PostForm("location"),
		Description:      c.PostForm("description"),
		Salary:           c.PostForm("salary"),
		SalaryMin:        c.PostForm("salary_min"),
		SalaryMax:        c.PostForm("salary_max"),
		SalaryCurrency:   strings.ToUpper(c.PostForm("salary_currency")),
		VisaSponsorship:  domain.Checked(in.VisaSponsorship),
		JobType:          c.PostForm("job_type"),
		WorkLocationType: c.PostForm("work_location_type"),
		ApplicationLink:  c.PostForm("application_link"),
		Status:           c.PostForm("status"),
	}
	for _, l := range domain.NormalizeLanguages(langs) {
		form.Languages = append(form.Languages, dto.LanguageDTO{Language: l.Language, Level: l.Level})
	}

	return in, form.withChoices()
}

// readJobPost parses a job form post into the request's PostForm. Only the logo part
// is held to the upload limit: an oversized file is read and dropped so the fields
// after it still reach the form, and the size error comes back with them.
func (h *PageHandler) readJobPost(c *gin.Context) ([]byte, error) {
	req := c.Request
	req.Body = http.MaxBytesReader(c.Writer, req.Body, maxFormPost)

	mr, err := req.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		// MultipartReader marks the request even when it refuses it
		req.MultipartForm = nil
		if err := req.ParseForm(); err != nil {
			return nil, h.bodyError(err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, domain.InvalidInput(domain.MsgInvalidBody)
	}

	values := url.Values{}
	defer func() {
		req.PostForm = values
		req.MultipartForm = &multipart.Form{Value: values}
	}()

	maxLogo := h.uploads.uploader.MaxBytes()
	var (
		logo       []byte
		tooLarge   bool
		fieldBytes int64
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, h.bodyError(err)
		}

		name := part.FormName()
		switch {
		case name == logoFileField:
			data, err := io.ReadAll(io.LimitReader(part, maxLogo+1))
			if err != nil {
				return nil, h.bodyError(err)
			}
			if int64(len(data)) <= maxLogo {
				if len(data) > 0 {
					logo = data
				}
				continue
			}
			tooLarge = true
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, h.bodyError(err)
			}
		case name == "" || part.FileName() != "":
			if _, err := io.Copy(io.Discard, part); err != nil {
				return nil, h.bodyError(err)
			}
		default:
			data, err := io.ReadAll(io.LimitReader(part, maxFormFields-fieldBytes+1))
			if err != nil {
				return nil, h.bodyError(err)
			}
			fieldBytes += int64(len(data))
			if fieldBytes > maxFormFields {
				return nil, domain.InvalidInput(domain.MsgInvalidBody)
			}
			values.Add(name, string(data))
		}
	}

	if tooLarge {
		return nil, domain.InvalidInput(h.uploads.tooLargeMessage())
	}
	return logo, nil
}

// bodyError maps a failed body read, where running past the body cap means the logo was too big
func (h *PageHandler) bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.InvalidInput(h.uploads.tooLargeMessage())
	}
	return domain.InvalidInput(domain.MsgInvalidBody)
}

// attachLogo uploads the posted logo, if any, and points the job at it.
// The job must not be written when the upload fails.
func (h *PageHandler) attachLogo(ctx context.Context, logo []byte, in *domain.JobInput, form *jobForm) error {
	if len(logo) == 0 {
		return nil
	}

	logoURL, err := h.uploads.store(ctx, bytes.NewReader(logo), int64(len(logo)))
	if err != nil {
		return err
	}

	in.CompanyLogo = &logoURL
	form.CompanyLogo = logoURL
	return nil
}

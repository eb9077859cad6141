package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
)

// FormValue accepts a JSON string, number, bool or null and keeps it as form text.
// Set is false when the key was absent from the body.
type FormValue struct {
	Set   bool
	Value string
}

func (v *FormValue) UnmarshalJSON(data []byte) error {
	v.Set = true
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		v.Value = ""
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v.Value = str
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		v.Value = string(data)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("expected string, number, bool or null: %w", err)
		}
		v.Value = num.String()
	}
	return nil
}

// Ptr converts to the nil-means-absent form used by the domain layer
func (v FormValue) Ptr() *string {
	if !v.Set {
		return nil
	}
	s := v.Value
	return &s
}

// LanguageDTO is one required_languages entry
type LanguageDTO struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

// JobRequest is the JSON body of every job create and update route.
// id and created_at are not accepted.
type JobRequest struct {
	Title             FormValue      `json:"title"`
	Company           FormValue      `json:"company"`
	CompanyLogo       FormValue      `json:"company_logo"`
	Location          FormValue      `json:"location"`
	Description       FormValue      `json:"description"`
	Salary            FormValue      `json:"salary"`
	SalaryMin         FormValue      `json:"salary_min"`
	SalaryMax         FormValue      `json:"salary_max"`
	SalaryCurrency    FormValue      `json:"salary_currency"`
	VisaSponsorship   FormValue      `json:"visa_sponsorship"`
	RequiredLanguages *[]LanguageDTO `json:"required_languages"`
	JobType           FormValue      `json:"job_type"`
	WorkLocationType  FormValue      `json:"work_location_type"`
	ApplicationLink   FormValue      `json:"application_link"`
	Status            FormValue      `json:"status"`
}

// ToInput converts the request body into domain input
func (r JobRequest) ToInput() domain.JobInput {
	in := domain.JobInput{
		Title:            r.Title.Ptr(),
		Company:          r.Company.Ptr(),
		CompanyLogo:      r.CompanyLogo.Ptr(),
		Location:         r.Location.Ptr(),
		Description:      r.Description.Ptr(),
		Salary:           r.Salary.Ptr(),
		SalaryMin:        r.SalaryMin.Ptr(),
		SalaryMax:        r.SalaryMax.Ptr(),
		SalaryCurrency:   r.SalaryCurrency.Ptr(),
		VisaSponsorship:  r.VisaSponsorship.Ptr(),
		JobType:          r.JobType.Ptr(),
		WorkLocationType: r.WorkLocationType.Ptr(),
		ApplicationLink:  r.ApplicationLink.Ptr(),
		Status:           r.Status.Ptr(),
	}

	if r.RequiredLanguages != nil {
		langs := make([]domain.LanguageInput, 0, len(*r.RequiredLanguages))
		for _, l := range *r.RequiredLanguages {
			langs = append(langs, domain.LanguageInput{Language: l.Language, Level: l.Level})
		}
		in.RequiredLanguages = &langs
	}

	return in
}

// UpdateStatusRequest is the body of the status change route
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// LoginRequest is the admin login body
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse returns the session token for API clients that do not keep cookies
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// UploadResponse is returned by both logo upload routes
type UploadResponse struct {
	URL string `json:"url"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body of every route
type ErrorResponse struct {
	Error string `json:"error"`
}

// FormatInt is used by templates that echo numeric form values back
func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

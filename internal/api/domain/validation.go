package domain

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LanguageInput is one language row as submitted
type LanguageInput struct {
	Language string
	Level    string
}

// JobInput is a job submission as received from a JSON body or an HTML form.
// A nil field was not sent at all; a pointer to "" was sent empty.
type JobInput struct {
	Title             *string
	Company           *string
	CompanyLogo       *string
	Location          *string
	Description       *string
	Salary            *string
	SalaryMin         *string
	SalaryMax         *string
	SalaryCurrency    *string
	VisaSponsorship   *string
	RequiredLanguages *[]LanguageInput
	JobType           *string
	WorkLocationType  *string
	ApplicationLink   *string
	Status            *string
}

// NormalizePublic applies the public submission contract. The result is always pending,
// whatever status the caller sent.
func NormalizePublic(in JobInput) (*model.JobWrite, error) {
	if blank(in.WorkLocationType) || blank(in.ApplicationLink) {
		return nil, InvalidInput(MsgMissingRequiredFields)
	}

	w, err := normalizeWrite(in)
	if err != nil {
		return nil, err
	}
	w.Status = JobStatusPending

	if err := validateWrite(w); err != nil {
		return nil, err
	}
	return w, nil
}

// NormalizeAdminCreate applies the admin contract. Status defaults to approved.
func NormalizeAdminCreate(in JobInput) (*model.JobWrite, error) {
	w, err := normalizeWrite(in)
	if err != nil {
		return nil, err
	}

	w.Status = JobStatusApproved
	if in.Status != nil && *in.Status != "" {
		w.Status = *in.Status
	}

	if err := validateWrite(w); err != nil {
		return nil, err
	}
	return w, nil
}

// NormalizeUpdate turns the supplied fields into a patch. Fields that were not sent are left out,
// so the stored values survive the merge.
func NormalizeUpdate(in JobInput) (model.JobPatch, error) {
	patch := model.JobPatch{}

	required := []struct {
		column string
		v      *string
	}{
		{"title", in.Title},
		{"company", in.Company},
		{"location", in.Location},
		{"description", in.Description},
		{"job_type", in.JobType},
	}
	for _, f := range required {
		if f.v == nil {
			continue
		}
		s := strings.TrimSpace(*f.v)
		if s == "" {
			return nil, InvalidInput(MsgMissingRequiredFields)
		}
		patch[f.column] = s
	}

	optional := []struct {
		column string
		v      *string
	}{
		{"company_logo", in.CompanyLogo},
		{"salary", in.Salary},
		{"application_link", in.ApplicationLink},
	}
	for _, f := range optional {
		if f.v != nil {
			patch[f.column] = nullable(f.v)
		}
	}

	if in.SalaryCurrency != nil {
		patch["salary_currency"] = currency(in.SalaryCurrency)
	}

	if in.SalaryMin != nil {
		v, err := parseSalary(in.SalaryMin)
		if err != nil {
			return nil, err
		}
		patch["salary_min"] = v
	}

	if in.SalaryMax != nil {
		v, err := parseSalary(in.SalaryMax)
		if err != nil {
			return nil, err
		}
		patch["salary_max"] = v
	}

	if lo, hi := patch["salary_min"], patch["salary_max"]; lo != nil && hi != nil {
		if err := checkRange(lo.(*int), hi.(*int)); err != nil {
			return nil, err
		}
	}

	if in.VisaSponsorship != nil {
		patch["visa_sponsorship"] = Checked(in.VisaSponsorship)
	}

	if in.RequiredLanguages != nil {
		langs := NormalizeLanguages(*in.RequiredLanguages)
		for _, l := range langs {
			if err := validate.Struct(l); err != nil {
				return nil, translate(err)
			}
		}
		patch["required_languages"] = langs
	}

	if in.WorkLocationType != nil {
		loc := nullable(in.WorkLocationType)
		if loc != nil && !IsValidWorkLocation(*loc) {
			return nil, InvalidInput(MsgInvalidWorkLocation)
		}
		patch["work_location_type"] = loc
	}

	if in.Status != nil {
		status, err := NormalizeStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		patch["status"] = status
	}

	return patch, nil
}

// NormalizeStatus validates a status change request. The value must match exactly.
func NormalizeStatus(status string) (string, error) {
	if !IsValidStatus(status) {
		return "", InvalidInput(MsgInvalidStatus)
	}
	return status, nil
}

// CheckPatchedRange checks the salary range the stored job would have once patch is applied,
// so a bound sent alone is still compared with the stored one.
func CheckPatchedRange(job *model.Job, patch model.JobPatch) error {
	lo, hi := job.SalaryMin, job.SalaryMax
	if v, ok := patch["salary_min"]; ok {
		lo, _ = v.(*int)
	}
	if v, ok := patch["salary_max"]; ok {
		hi, _ = v.(*int)
	}
	return checkRange(lo, hi)
}

// NormalizeLanguages drops rows with a blank language and defaults a blank level to Intermediate.
// Order is preserved.
func NormalizeLanguages(in []LanguageInput) model.Languages {
	out := model.Languages{}
	for _, l := range in {
		lang := strings.TrimSpace(l.Language)
		if lang == "" {
			continue
		}
		level := strings.TrimSpace(l.Level)
		if level == "" {
			level = LanguageLevelIntermediate
		}
		out = append(out, model.LanguageRequirement{Language: lang, Level: level})
	}
	return out
}

// Checked reports whether a checkbox-style value is set
func Checked(v *string) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func normalizeWrite(in JobInput) (*model.JobWrite, error) {
	lo, err := parseSalary(in.SalaryMin)
	if err != nil {
		return nil, err
	}
	hi, err := parseSalary(in.SalaryMax)
	if err != nil {
		return nil, err
	}
	if err := checkRange(lo, hi); err != nil {
		return nil, err
	}

	langs := model.Languages{}
	if in.RequiredLanguages != nil {
		langs = NormalizeLanguages(*in.RequiredLanguages)
	}

	return &model.JobWrite{
		Title:             value(in.Title),
		Company:           value(in.Company),
		CompanyLogo:       nullable(in.CompanyLogo),
		Location:          value(in.Location),
		Description:       value(in.Description),
		Salary:            nullable(in.Salary),
		SalaryMin:         lo,
		SalaryMax:         hi,
		SalaryCurrency:    currency(in.SalaryCurrency),
		VisaSponsorship:   Checked(in.VisaSponsorship),
		RequiredLanguages: langs,
		JobType:           value(in.JobType),
		WorkLocationType:  nullable(in.WorkLocationType),
		ApplicationLink:   nullable(in.ApplicationLink),
	}, nil
}

func validateWrite(w *model.JobWrite) error {
	if err := validate.Struct(w); err != nil {
		return translate(err)
	}
	return nil
}

// translate maps validator failures onto client messages. Missing fields win over bad values.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return New(ErrTypeInvalidInput, MsgInvalidBody, err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return InvalidInput(MsgMissingRequiredFields)
		}
	}

	switch verrs[0].StructField() {
	case "Status":
		return InvalidInput(MsgInvalidStatus)
	case "WorkLocationType":
		return InvalidInput(MsgInvalidWorkLocation)
	case "Level":
		return InvalidInput(MsgInvalidLanguageLevel)
	}
	return New(ErrTypeInvalidInput, MsgInvalidBody, err)
}

func parseSalary(v *string) (*int, error) {
	s := value(v)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, InvalidInput(MsgInvalidSalary)
	}
	return &n, nil
}

func checkRange(lo, hi *int) error {
	if lo != nil && hi != nil && *lo > *hi {
		return InvalidInput(MsgInvalidSalary)
	}
	return nil
}

func currency(v *string) string {
	s := strings.ToUpper(value(v))
	if s == "" {
		return DefaultSalaryCurrency
	}
	return s
}

func value(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func nullable(v *string) *string {
	s := value(v)
	if s == "" {
		return nil
	}
	return &s
}

func blank(v *string) bool {
	return value(v) == ""
}

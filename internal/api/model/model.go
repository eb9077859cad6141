package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// LanguageRequirement is one entry of a job's required_languages list
type LanguageRequirement struct {
	Language string `json:"language" validate:"required"`
	Level    string `json:"level" validate:"oneof=Basic Intermediate Advanced Native"`
}

// Languages is stored as a jsonb array
type Languages []LanguageRequirement

// Value implements driver.Valuer. A nil slice is stored as [] so the column never holds null.
func (l Languages) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]LanguageRequirement(l))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal required_languages: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *Languages) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = Languages{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported required_languages type %T", src)
	}

	var out []LanguageRequirement
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to unmarshal required_languages: %w", err)
	}
	if out == nil {
		out = []LanguageRequirement{}
	}
	*l = out
	return nil
}

// MarshalJSON keeps the wire shape an array even for legacy rows
func (l Languages) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]LanguageRequirement(l))
}

// Job is a persisted job posting
type Job struct {
	ID                string    `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Company           string    `db:"company" json:"company"`
	CompanyLogo       *string   `db:"company_logo" json:"company_logo"`
	Location          string    `db:"location" json:"location"`
	Description       string    `db:"description" json:"description"`
	Salary            *string   `db:"salary" json:"salary"`
	SalaryMin         *int      `db:"salary_min" json:"salary_min"`
	SalaryMax         *int      `db:"salary_max" json:"salary_max"`
	SalaryCurrency    string    `db:"salary_currency" json:"salary_currency"`
	VisaSponsorship   bool      `db:"visa_sponsorship" json:"visa_sponsorship"`
	RequiredLanguages Languages `db:"required_languages" json:"required_languages"`
	JobType           string    `db:"job_type" json:"job_type"`
	WorkLocationType  *string   `db:"work_location_type" json:"work_location_type"`
	ApplicationLink   *string   `db:"application_link" json:"application_link"`
	Status            string    `db:"status" json:"status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// JobWrite is the client-controllable part of a Job. id and created_at are assigned by the store.
type JobWrite struct {
	Title             string    `db:"title" json:"title" validate:"required"`
	Company           string    `db:"company" json:"company" validate:"required"`
	CompanyLogo       *string   `db:"company_logo" json:"company_logo"`
	Location          string    `db:"location" json:"location" validate:"required"`
	Description       string    `db:"description" json:"description" validate:"required"`
	Salary            *string   `db:"salary" json:"salary"`
	SalaryMin         *int      `db:"salary_min" json:"salary_min"`
	SalaryMax         *int      `db:"salary_max" json:"salary_max"`
	SalaryCurrency    string    `db:"salary_currency" json:"salary_currency" validate:"required"`
	VisaSponsorship   bool      `db:"visa_sponsorship" json:"visa_sponsorship"`
	RequiredLanguages Languages `db:"required_languages" json:"required_languages" validate:"dive"`
	JobType           string    `db:"job_type" json:"job_type" validate:"required"`
	WorkLocationType  *string   `db:"work_location_type" json:"work_location_type" validate:"omitempty,oneof=remote on-site hybrid"`
	ApplicationLink   *string   `db:"application_link" json:"application_link"`
	Status            string    `db:"status" json:"status" validate:"oneof=pending approved rejected"`
}

// JobPatch holds the columns an update touches, keyed by column name
type JobPatch map[string]any

// Has reports whether the patch sets the column
func (p JobPatch) Has(column string) bool {
	_, ok := p[column]
	return ok
}

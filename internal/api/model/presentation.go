package model

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"CAD": "CA$",
	"AUD": "A$",
}

func formatAmount(currency string, amount int) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "USD"
	}
	digits := amountPrinter.Sprintf("%d", amount)
	if symbol, ok := currencySymbols[code]; ok {
		return symbol + digits
	}
	return code + " " + digits
}

// SalaryDisplay prefers the structured range and falls back to the legacy free text
func (j Job) SalaryDisplay() string {
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > 0 && *j.SalaryMax > 0 {
		return formatAmount(j.SalaryCurrency, *j.SalaryMin) + " - " + formatAmount(j.SalaryCurrency, *j.SalaryMax)
	}
	if j.Salary != nil {
		return *j.Salary
	}
	return ""
}

// LanguagesLabel renders the card badge, e.g. "2 Langs"
func (j Job) LanguagesLabel() string {
	n := len(j.RequiredLanguages)
	switch n {
	case 0:
		return ""
	case 1:
		return "1 Lang"
	default:
		return amountPrinter.Sprintf("%d Langs", n)
	}
}

// WorkLocation returns the work location type or an empty string for legacy rows
func (j Job) WorkLocation() string {
	if j.WorkLocationType == nil {
		return ""
	}
	return *j.WorkLocationType
}

// IsRemote reports whether the job is fully remote
func (j Job) IsRemote() bool {
	return j.WorkLocation() == "remote"
}

// LogoURL returns the uploaded logo or an empty string
func (j Job) LogoURL() string {
	if j.CompanyLogo == nil {
		return ""
	}
	return *j.CompanyLogo
}

// ApplyURL returns the application link or an empty string
func (j Job) ApplyURL() string {
	if j.ApplicationLink == nil {
		return ""
	}
	return *j.ApplicationLink
}

package domain

const (
	JobStatusPending  = "pending"
	JobStatusApproved = "approved"
	JobStatusRejected = "rejected"
)

const (
	WorkLocationRemote = "remote"
	WorkLocationOnSite = "on-site"
	WorkLocationHybrid = "hybrid"
)

const (
	LanguageLevelBasic        = "Basic"
	LanguageLevelIntermediate = "Intermediate"
	LanguageLevelAdvanced     = "Advanced"
	LanguageLevelNative       = "Native"
)

// DefaultSalaryCurrency applies when a submission leaves the currency blank
const DefaultSalaryCurrency = "USD"

// statusRank orders the admin listing: pending first, then approved, then rejected
var statusRank = map[string]int{
	JobStatusPending:  0,
	JobStatusApproved: 1,
	JobStatusRejected: 2,
}

// StatusRank returns the admin sort rank of a status. Unknown values sort last.
func StatusRank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return len(statusRank)
}

// IsValidStatus reports whether status is one of the three lifecycle states
func IsValidStatus(status string) bool {
	_, ok := statusRank[status]
	return ok
}

// IsValidWorkLocation reports whether v is remote, on-site or hybrid
func IsValidWorkLocation(v string) bool {
	switch v {
	case WorkLocationRemote, WorkLocationOnSite, WorkLocationHybrid:
		return true
	}
	return false
}

// Form choices. job_type itself is free text; these are the options the forms offer.
var (
	JobTypes       = []string{"Full-time", "Part-time", "Contract", "Freelance", "Internship"}
	WorkLocations  = []string{WorkLocationRemote, WorkLocationOnSite, WorkLocationHybrid}
	LanguageLevels = []string{LanguageLevelBasic, LanguageLevelIntermediate, LanguageLevelAdvanced, LanguageLevelNative}
	Statuses       = []string{JobStatusPending, JobStatusApproved, JobStatusRejected}
	Currencies     = []string{"USD", "EUR", "GBP", "CAD", "AUD", "EGP"}
)

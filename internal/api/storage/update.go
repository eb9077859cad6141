package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mo-Ibra/next-fullstack-jobs/internal/api/model"
)

// updatableColumns lists the columns a patch may touch. id and created_at are never writable.
var updatableColumns = map[string]bool{
	"title":              true,
	"company":            true,
	"company_logo":       true,
	"location":           true,
	"description":        true,
	"salary":             true,
	"salary_min":         true,
	"salary_max":         true,
	"salary_currency":    true,
	"visa_sponsorship":   true,
	"required_languages": true,
	"job_type":           true,
	"work_location_type": true,
	"application_link":   true,
	"status":             true,
}

// buildSetClause renders "col = $n, ..." in column order so the query text is stable
func buildSetClause(patch model.JobPatch, firstArg int) (string, []any, error) {
	columns := make([]string, 0, len(patch))
	for col := range patch {
		if !updatableColumns[col] {
			return "", nil, fmt.Errorf("column %q is not updatable", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	argIdx := firstArg

	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, patch[col])
		argIdx++
	}

	return strings.Join(parts, ", "), args, nil
}

package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRequest_ToInput(t *testing.T) {
	body := `{
		"title": "Go Developer",
		"salary": null,
		"salary_min": 50000,
		"salary_max": "100000",
		"visa_sponsorship": true,
		"required_languages": [{"language": "English", "level": "Native"}],
		"id": "client-supplied",
		"created_at": "2020-01-01T00:00:00Z"
	}`

	var req JobRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	in := req.ToInput()

	require.NotNil(t, in.Title)
	assert.Equal(t, "Go Developer", *in.Title)

	require.NotNil(t, in.Salary, "explicit null is sent-but-empty")
	assert.Equal(t, "", *in.Salary)

	assert.Equal(t, "50000", *in.SalaryMin)
	assert.Equal(t, "100000", *in.SalaryMax)
	assert.Equal(t, "true", *in.VisaSponsorship)

	require.NotNil(t, in.RequiredLanguages)
	assert.Len(t, *in.RequiredLanguages, 1)
	assert.Equal(t, "English", (*in.RequiredLanguages)[0].Language)

	assert.Nil(t, in.Company, "absent keys stay nil")
	assert.Nil(t, in.Status)
}

func TestFormValue_RejectsObjects(t *testing.T) {
	var req JobRequest
	err := json.Unmarshal([]byte(`{"title": {"nested": true}}`), &req)
	assert.Error(t, err)
}

func TestFormatInt(t *testing.T) {
	n := 42
	assert.Equal(t, "42", FormatInt(&n))
	assert.Equal(t, "", FormatInt(nil))
}

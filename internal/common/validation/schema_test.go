package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRequestSchema(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		valid     bool
		errorPath string
		errorCode string
	}{
		{
			name:  "valid request",
			body:  `{"form":{"job_title":"Engineer","min_years_experience":3},"regions":[{"regionCode":"US","locations":["NY"]}]}`,
			valid: true,
		},
		{
			name:      "missing regions",
			body:      `{"form":{}}`,
			errorCode: "REQUIRED",
		},
		{
			name:      "empty regions",
			body:      `{"form":{},"regions":[]}`,
			errorPath: "regions",
			errorCode: "ARRAY_MIN_ITEMS",
		},
		{
			name:      "negative experience",
			body:      `{"form":{"min_years_experience":-1},"regions":[{"regionCode":"US"}]}`,
			errorPath: "form.min_years_experience",
		},
		{
			name:      "skills must be strings",
			body:      `{"form":{"soft_skills":[1]},"regions":[{"regionCode":"US"}]}`,
			errorPath: "form.soft_skills.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := BatchRequest.ValidateBytes([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			if tt.errorPath != "" {
				assert.True(t, res.HasErrors(tt.errorPath), res.GetErrorMessages())
			}
			if tt.errorCode != "" {
				codes := make([]string, 0, len(res.Errors))
				for _, e := range res.Errors {
					codes = append(codes, e.Code)
				}
				assert.Contains(t, codes, tt.errorCode)
			}
		})
	}
}

func TestRegionCatalogSchema(t *testing.T) {
	valid := map[string]interface{}{
		"version": "1.0",
		"regions": []interface{}{
			map[string]interface{}{"code": "US", "name": "United States", "locations": []interface{}{"NY"}},
		},
	}
	res, err := RegionCatalog.ValidateValue(valid)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	invalid := map[string]interface{}{
		"version": "1.0",
		"regions": []interface{}{
			map[string]interface{}{"code": "usa", "name": ""},
		},
	}
	res, err = RegionCatalog.ValidateValue(invalid)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.GetErrorsForField("regions"))
}

func TestValidateBytes_MalformedJSON(t *testing.T) {
	_, err := BatchRequest.ValidateBytes([]byte(`{"form":`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile("broken", `{"type": 12}`)
	assert.Error(t, err)
}

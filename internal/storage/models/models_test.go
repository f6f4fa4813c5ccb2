package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm/schema"
)

func TestSliceToJSON(t *testing.T) {
	assert.Equal(t, datatypes.JSON(`["Go","Python"]`), SliceToJSON([]string{"Go", "Python"}))
	assert.Equal(t, datatypes.JSON(`[]`), SliceToJSON(nil))
	assert.Equal(t, datatypes.JSON(`[]`), SliceToJSON([]string{}))
}

func parseSchema(t *testing.T, model interface{}) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

// Map-based gorm Updates pass keys through as raw column names, so
// every key the handlers and the pipeline use must resolve to a real
// column. LinkedIn needs an explicit tag: the default naming would
// produce linked_in.
func TestCandidateColumnNames(t *testing.T) {
	s := parseSchema(t, &Candidate{})
	for _, column := range []string{
		"name", "email", "phone", "linkedin", "location", "job_id",
		"parsed_text_key", "extracted_text_md5",
		"score", "technical_score", "experience_score", "soft_skill_score",
		"years_experience", "seniority", "recommendation",
		"analysis_json", "analysis_provider", "status", "analyzed_at",
	} {
		assert.Contains(t, s.FieldsByDBName, column)
	}
	assert.Equal(t, "linkedin", s.LookUpField("LinkedIn").DBName)
}

func TestJobColumnNames(t *testing.T) {
	s := parseSchema(t, &Job{})
	for _, column := range []string{
		"title", "department", "location", "description",
		"requirements", "salary_range", "skills_json", "status",
	} {
		assert.Contains(t, s.FieldsByDBName, column)
	}
}

func TestInterviewColumnNames(t *testing.T) {
	s := parseSchema(t, &Interview{})
	for _, column := range []string{
		"scheduled_at", "duration_min", "interviewer",
		"meeting_link", "notes", "status",
	} {
		assert.Contains(t, s.FieldsByDBName, column)
	}
}

func TestUserColumnNames(t *testing.T) {
	s := parseSchema(t, &User{})
	for _, column := range []string{"is_admin", "last_login_at"} {
		assert.Contains(t, s.FieldsByDBName, column)
	}
}

//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() ResumeContent {
	return ResumeContent{
		PersonalInfo: PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Summary:      "Analyst",
		Experience: []Experience{
			{ID: "exp-1", JobTitle: "Engineer", Company: "Analytical Engines", Description: "Wrote programs"},
		},
		Skills:   []Skill{{Name: "Mathematics"}},
		Projects: []Project{{ID: "p-1", Name: "Notes", Technologies: []string{"paper"}}},
	}
}

func TestTemplate_Valid(t *testing.T) {
	for _, tmpl := range Templates() {
		assert.True(t, tmpl.Valid(), "template %s", tmpl)
	}
	assert.Len(t, Templates(), 5)
	assert.False(t, Template("neon").Valid())
	assert.False(t, Template("").Valid())
	assert.True(t, DefaultTemplate.Valid())
}

func TestResumeContent_CloneIsDeep(t *testing.T) {
	src := sampleContent()
	cp := src.Clone()

	cp.Experience[0].Description = "changed"
	cp.Projects[0].Technologies[0] = "ink"
	cp.Skills = append(cp.Skills, Skill{Name: "Poetry"})

	assert.Equal(t, "Wrote programs", src.Experience[0].Description)
	assert.Equal(t, "paper", src.Projects[0].Technologies[0])
	assert.Len(t, src.Skills, 1)
}

func TestResumeContent_CloneNormalizesNilSections(t *testing.T) {
	cp := ResumeContent{}.Clone()

	data, err := json.Marshal(cp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"experience":[]`)
	assert.Contains(t, string(data), `"languages":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestResumeContent_AssignIDs(t *testing.T) {
	c := ResumeContent{
		Experience: []Experience{{ID: "keep"}, {}},
		Education:  []Education{{}},
		Projects:   []Project{{}},
	}
	c.AssignIDs()

	assert.Equal(t, "keep", c.Experience[0].ID)
	assert.NotEmpty(t, c.Experience[1].ID)
	assert.NotEqual(t, c.Experience[0].ID, c.Experience[1].ID)
	assert.NotEmpty(t, c.Education[0].ID)
	assert.NotEmpty(t, c.Projects[0].ID)
}

func TestResumeContent_FindExperience(t *testing.T) {
	c := sampleContent()
	assert.Equal(t, 0, c.FindExperience("exp-1"))
	assert.Equal(t, -1, c.FindExperience("missing"))
}

func TestUpdateResumeRequest_ApplySections(t *testing.T) {
	c := sampleContent()
	summary := "New summary"
	skills := []Skill{{Name: "Go"}}

	req := UpdateResumeRequest{Summary: &summary, Skills: &skills}
	req.ApplySections(&c)

	assert.Equal(t, "New summary", c.Summary)
	assert.Equal(t, []Skill{{Name: "Go"}}, c.Skills)
	assert.Equal(t, "Ada Lovelace", c.PersonalInfo.FullName, "unset sections are untouched")
	assert.Len(t, c.Experience, 1)
}

func TestUpdateResumeRequest_EmptySliceClearsSection(t *testing.T) {
	c := sampleContent()
	empty := []Experience{}

	req := UpdateResumeRequest{Experience: &empty}
	req.ApplySections(&c)

	assert.Empty(t, c.Experience)
}

func TestUpdateResumeRequest_DecodesAbsentVsEmpty(t *testing.T) {
	var req UpdateResumeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"","skills":[]}`), &req))

	require.NotNil(t, req.Summary)
	require.NotNil(t, req.Skills)
	assert.Nil(t, req.Experience)
	assert.Nil(t, req.Title)
}

func TestAIRequests_Validation(t *testing.T) {
	assert.NoError(t, Validate(EnhanceSummaryRequest{Target: TargetProfile}))
	assert.Error(t, Validate(EnhanceSummaryRequest{Target: TargetResume}), "resume target requires resume_id")
	assert.Error(t, Validate(EnhanceSummaryRequest{Target: "elsewhere"}))

	assert.Error(t, Validate(EnhanceExperienceRequest{Target: TargetProfile}), "experience_id is required")
	assert.NoError(t, Validate(EnhanceExperienceRequest{Target: TargetProfile, ExperienceID: "exp-1"}))

	assert.Error(t, Validate(TailorRequest{JobDescription: "too short"}))
	assert.NoError(t, Validate(TailorRequest{JobDescription: "Senior Go engineer building payment systems"}))

	assert.NoError(t, Validate(FetchJobDescriptionRequest{URL: "https://jobs.example.com/1"}))
	assert.Error(t, Validate(FetchJobDescriptionRequest{URL: "not a url"}))
}

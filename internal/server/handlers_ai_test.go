package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/fetch"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPosting = "Hiring a senior Go engineer to build payment APIs on Postgres."

func (h *harness) seedProfile(t *testing.T, token string) {
	t.Helper()
	w := h.do(t, http.MethodPut, "/api/profile", types.ResumeContent{
		PersonalInfo: types.PersonalInfo{FullName: "Grace Hopper", Email: "grace@example.com"},
		Summary:      "Compiler pioneer.",
		Experience: []types.Experience{
			{ID: "exp-1", JobTitle: "Engineer", Company: "Navy", Description: "Built compilers"},
			{ID: "exp-2", JobTitle: "Researcher", Company: "Harvard", Description: "Programmed the Mark I"},
		},
		Skills: []types.Skill{{Name: "COBOL"}},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestEnhanceSummary_Resume(t *testing.T) {
	h := newHarness(t)
	token, userID := h.register(t, "ai@example.com")
	h.seedProfile(t, token)
	r := h.createResume(t, token, types.CreateResumeRequest{})

	h.llm.reply = `{"summary": "Seasoned compiler engineer."}`
	w := h.do(t, http.MethodPost, "/api/ai/summary", types.EnhanceSummaryRequest{
		Target:         types.TargetResume,
		ResumeID:       r.ID.String(),
		JobDescription: jobPosting,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Seasoned compiler engineer.", decode[types.EnhanceSummaryResponse](t, w).Summary)

	stored, err := h.docs.Get(context.Background(), userID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seasoned compiler engineer.", stored.Content.Summary)
	require.NotEmpty(t, h.llm.prompt)
	assert.Contains(t, h.llm.prompt[0], "payment APIs")
}

func TestEnhanceSummary_Validation(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "ai@example.com")

	w := h.do(t, http.MethodPost, "/api/ai/summary", map[string]string{"target": "resume"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "ResumeID")

	w = h.do(t, http.MethodPost, "/api/ai/summary", map[string]string{"target": "cover-letter"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.llm.prompt)
}

func TestEnhanceExperience_Profile(t *testing.T) {
	h := newHarness(t)
	token, userID := h.register(t, "ai@example.com")
	h.seedProfile(t, token)

	h.llm.reply = `{"description": "Designed the first compiler."}`
	w := h.do(t, http.MethodPost, "/api/ai/experience", types.EnhanceExperienceRequest{
		Target:       types.TargetProfile,
		ExperienceID: "exp-1",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Designed the first compiler.", decode[types.EnhanceExperienceResponse](t, w).Experience.Description)

	profile, err := h.docs.Profile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Designed the first compiler.", profile.Content.Experience[0].Description)
	assert.Equal(t, "Programmed the Mark I", profile.Content.Experience[1].Description)

	w = h.do(t, http.MethodPost, "/api/ai/experience", types.EnhanceExperienceRequest{
		Target:       types.TargetProfile,
		ExperienceID: "missing",
	}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnhanceAllExperience(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "ai@example.com")
	h.seedProfile(t, token)
	r := h.createResume(t, token, types.CreateResumeRequest{})

	h.llm.reply = `{"description": "Sharper bullet."}`
	w := h.do(t, http.MethodPost, "/api/ai/resumes/"+r.ID.String()+"/experience", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[types.Resume](t, w)
	require.Len(t, updated.Content.Experience, 2)
	for _, e := range updated.Content.Experience {
		assert.Equal(t, "Sharper bullet.", e.Description)
	}
	assert.Len(t, h.llm.prompt, 2)

	w = h.do(t, http.MethodPost, "/api/ai/resumes/"+r.ID.String()+"/experience",
		types.EnhanceAllRequest{JobDescription: jobPosting}, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTailor(t *testing.T) {
	h := newHarness(t)
	token, userID := h.register(t, "ai@example.com")
	h.seedProfile(t, token)

	h.llm.reply = `{
  "personal_info": {"full_name": "Someone Else"},
  "summary": "Go engineer for payments.",
  "experience": [{"job_title": "Engineer", "company": "Navy", "description": "Built payment compilers"}],
  "skills": [{"name": "Go"}]
}`
	w := h.do(t, http.MethodPost, "/api/ai/tailor", types.TailorRequest{
		JobDescription: jobPosting,
		Template:       types.TemplateMinimal,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	r := decode[types.Resume](t, w)
	assert.Equal(t, resumes.TailoredTitle, r.Title)
	assert.Equal(t, types.TemplateMinimal, r.Template)
	assert.Equal(t, userID, r.UserID)
	assert.Equal(t, "Grace Hopper", r.Content.PersonalInfo.FullName)
	assert.Equal(t, "Go engineer for payments.", r.Content.Summary)
}

func TestTailor_RequiresProfile(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "ai@example.com")

	w := h.do(t, http.MethodPost, "/api/ai/tailor", types.TailorRequest{JobDescription: jobPosting}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.llm.prompt)
}

func TestAI_UpstreamFailures(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		h := newHarness(t)
		token, _ := h.register(t, "ai@example.com")
		h.seedProfile(t, token)
		h.llm.err = errBoom

		w := h.do(t, http.MethodPost, "/api/ai/summary", types.EnhanceSummaryRequest{Target: types.TargetProfile}, token)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Len(t, h.llm.prompt, 1)
	})

	t.Run("unusable output", func(t *testing.T) {
		h := newHarness(t)
		token, _ := h.register(t, "ai@example.com")
		h.seedProfile(t, token)
		h.llm.reply = `{"headline": "wrong shape"}`

		w := h.do(t, http.MethodPost, "/api/ai/summary", types.EnhanceSummaryRequest{Target: types.TargetProfile}, token)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Len(t, h.llm.prompt, 2)
	})
}

func TestFetchJobDescription(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "ai@example.com")

	w := h.do(t, http.MethodPost, "/api/ai/job-description",
		types.FetchJobDescriptionRequest{URL: "https://boards.greenhouse.io/acme/jobs/1"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.FetchJobDescriptionResponse](t, w)
	assert.Equal(t, "Senior Go engineer wanted.", resp.JobDescription)

	w = h.do(t, http.MethodPost, "/api/ai/job-description",
		types.FetchJobDescriptionRequest{URL: "not a url"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.fetcher.err = &fetch.Error{URL: "https://example.com", Message: "HTTP status 404", StatusCode: 404}
	w = h.do(t, http.MethodPost, "/api/ai/job-description",
		types.FetchJobDescriptionRequest{URL: "https://example.com/job"}, token)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	h.fetcher.err = &fetch.Error{URL: "http://169.254.169.254/", Message: "URL does not point to a public address", Cause: fetch.ErrForbiddenAddress}
	w = h.do(t, http.MethodPost, "/api/ai/job-description",
		types.FetchJobDescriptionRequest{URL: "http://169.254.169.254/latest/meta-data"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "public address")
}

func TestAI_NotConfigured(t *testing.T) {
	h := newHarness(t, withoutAI())
	token, _ := h.register(t, "ai@example.com")

	w := h.do(t, http.MethodPost, "/api/ai/tailor", types.TailorRequest{JobDescription: jobPosting}, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ai.ErrUnavailable.Error(), errorMessage(t, w))
}

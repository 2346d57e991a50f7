package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func (h *harness) createResume(t *testing.T, token string, req types.CreateResumeRequest) types.Resume {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/resumes", req, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.Resume](t, w)
}

func TestCreateResume_CopiesProfile(t *testing.T) {
	h := newHarness(t)
	token, userID := h.register(t, "create@example.com")

	_, err := h.docs.ReplaceProfile(context.Background(), userID, types.ResumeContent{
		PersonalInfo: types.PersonalInfo{FullName: "Ada Lovelace"},
		Summary:      "Analyst.",
		Experience:   []types.Experience{{JobTitle: "Analyst", Company: "Engine Co", Description: "Notes"}},
	})
	require.NoError(t, err)

	r := h.createResume(t, token, types.CreateResumeRequest{Template: types.TemplateModern})
	assert.Equal(t, resumes.DefaultTitle, r.Title)
	assert.Equal(t, types.TemplateModern, r.Template)
	assert.Equal(t, userID, r.UserID)
	assert.Equal(t, "Ada Lovelace", r.Content.PersonalInfo.FullName)
	require.Len(t, r.Content.Experience, 1)
	assert.NotEmpty(t, r.Content.Experience[0].ID)
}

func TestCreateResume_Validation(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "create@example.com")

	w := h.do(t, http.MethodPost, "/api/resumes", types.CreateResumeRequest{Template: "neon"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "template")

	w = h.do(t, http.MethodPost, "/api/resumes", "{", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResume(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "owner@example.com")
	otherToken, _ := h.register(t, "other@example.com")
	r := h.createResume(t, token, types.CreateResumeRequest{Title: "Mine"})

	w := h.do(t, http.MethodGet, "/api/resumes/"+r.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mine", decode[types.Resume](t, w).Title)

	w = h.do(t, http.MethodGet, "/api/resumes/"+r.ID.String(), nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/api/resumes/"+uuid.NewString(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/api/resumes/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListResumes(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "list@example.com")
	otherToken, _ := h.register(t, "other@example.com")

	for _, title := range []string{"One", "Two", "Three"} {
		h.createResume(t, token, types.CreateResumeRequest{Title: title})
	}
	h.createResume(t, otherToken, types.CreateResumeRequest{Title: "Not mine"})

	w := h.do(t, http.MethodGet, "/api/resumes?limit=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[resumes.ListResult](t, w)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Resumes, 2)
	assert.Equal(t, "Three", page.Resumes[0].Title)

	w = h.do(t, http.MethodGet, "/api/resumes?limit=2&offset=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[resumes.ListResult](t, w)
	require.Len(t, page.Resumes, 1)
	assert.Equal(t, "One", page.Resumes[0].Title)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
		wantErr       bool
	}{
		{"", defaultListLimit, 0, false},
		{"limit=5&offset=10", 5, 10, false},
		{"limit=0", 0, 0, true},
		{"limit=abc", 0, 0, true},
		{"offset=-1", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/resumes?"+tt.query, nil)
			limit, offset, err := parsePagination(req)
			if tt.wantErr {
				assert.IsType(t, &ErrValidation{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestUpdateResume_Merge(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "update@example.com")
	r := h.createResume(t, token, types.CreateResumeRequest{
		Title:   "Draft",
		Summary: strPtr("Original summary"),
		Skills:  &[]types.Skill{{Name: "Go"}},
	})

	w := h.do(t, http.MethodPatch, "/api/resumes/"+r.ID.String(), types.UpdateResumeRequest{
		Title:    strPtr("Final"),
		IsPublic: boolPtr(true),
		Summary:  strPtr("New summary"),
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decode[types.Resume](t, w)
	assert.Equal(t, "Final", updated.Title)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, "New summary", updated.Content.Summary)
	assert.Equal(t, []types.Skill{{Name: "Go"}}, updated.Content.Skills)
	assert.True(t, updated.UpdatedAt.After(r.UpdatedAt))

	w = h.do(t, http.MethodPatch, "/api/resumes/"+r.ID.String(), types.UpdateResumeRequest{Title: strPtr("")}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteResume(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "delete@example.com")
	otherToken, _ := h.register(t, "other@example.com")
	r := h.createResume(t, token, types.CreateResumeRequest{})

	w := h.do(t, http.MethodDelete, "/api/resumes/"+r.ID.String(), nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodDelete, "/api/resumes/"+r.ID.String(), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = h.do(t, http.MethodGet, "/api/resumes/"+r.ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateResume(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "dup@example.com")
	r := h.createResume(t, token, types.CreateResumeRequest{Title: "Backend", IsPublic: true})

	w := h.do(t, http.MethodPost, "/api/resumes/"+r.ID.String()+"/duplicate", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)

	dup := decode[types.Resume](t, w)
	assert.NotEqual(t, r.ID, dup.ID)
	assert.Equal(t, "Backend (Copy)", dup.Title)
	assert.False(t, dup.IsPublic)
}

func TestGetPublicResume(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "public@example.com")
	private := h.createResume(t, token, types.CreateResumeRequest{Title: "Private"})
	public := h.createResume(t, token, types.CreateResumeRequest{Title: "Public", IsPublic: true})

	w := h.do(t, http.MethodGet, "/api/public/resumes/"+public.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Public", decode[types.Resume](t, w).Title)

	w = h.do(t, http.MethodGet, "/api/public/resumes/"+private.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumeRoutes_StoreFailure(t *testing.T) {
	h := newHarness(t)
	token, _ := h.register(t, "fail@example.com")
	h.store.Err = errBoom

	w := h.do(t, http.MethodGet, "/api/resumes", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), errorMessage(t, w))
}

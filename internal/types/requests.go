package types

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate runs struct-tag validation on v.
func Validate(v any) error {
	return Validator().Struct(v)
}

// CreateResumeRequest is the body of POST /api/resumes. Sections left nil are
// copied from the user's default profile.
type CreateResumeRequest struct {
	Title          string           `json:"title" validate:"max=200"`
	Template       Template         `json:"template,omitempty"`
	IsPublic       bool             `json:"is_public"`
	PersonalInfo   *PersonalInfo    `json:"personal_info,omitempty"`
	Summary        *string          `json:"summary,omitempty"`
	Experience     *[]Experience    `json:"experience,omitempty"`
	Education      *[]Education     `json:"education,omitempty"`
	Skills         *[]Skill         `json:"skills,omitempty"`
	Projects       *[]Project       `json:"projects,omitempty"`
	Certifications *[]Certification `json:"certifications,omitempty"`
	Languages      *[]Language      `json:"languages,omitempty"`
}

// UpdateResumeRequest is the body of PATCH /api/resumes/{id}. Only non-nil
// fields replace what is stored.
type UpdateResumeRequest struct {
	Title          *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Template       *Template        `json:"template,omitempty"`
	IsPublic       *bool            `json:"is_public,omitempty"`
	PersonalInfo   *PersonalInfo    `json:"personal_info,omitempty"`
	Summary        *string          `json:"summary,omitempty"`
	Experience     *[]Experience    `json:"experience,omitempty"`
	Education      *[]Education     `json:"education,omitempty"`
	Skills         *[]Skill         `json:"skills,omitempty"`
	Projects       *[]Project       `json:"projects,omitempty"`
	Certifications *[]Certification `json:"certifications,omitempty"`
	Languages      *[]Language      `json:"languages,omitempty"`
}

// ApplySections overwrites the sections of c that are set in the request.
func (r *UpdateResumeRequest) ApplySections(c *ResumeContent) {
	applySections(c, r.PersonalInfo, r.Summary, r.Experience, r.Education,
		r.Skills, r.Projects, r.Certifications, r.Languages)
}

// ApplySections overwrites the sections of c that are set in the request.
func (r *CreateResumeRequest) ApplySections(c *ResumeContent) {
	applySections(c, r.PersonalInfo, r.Summary, r.Experience, r.Education,
		r.Skills, r.Projects, r.Certifications, r.Languages)
}

func applySections(
	c *ResumeContent,
	personal *PersonalInfo,
	summary *string,
	experience *[]Experience,
	education *[]Education,
	skills *[]Skill,
	projects *[]Project,
	certifications *[]Certification,
	languages *[]Language,
) {
	if personal != nil {
		c.PersonalInfo = *personal
	}
	if summary != nil {
		c.Summary = *summary
	}
	if experience != nil {
		c.Experience = *experience
	}
	if education != nil {
		c.Education = *education
	}
	if skills != nil {
		c.Skills = *skills
	}
	if projects != nil {
		c.Projects = *projects
	}
	if certifications != nil {
		c.Certifications = *certifications
	}
	if languages != nil {
		c.Languages = *languages
	}
}

// Target names which document an AI result or upload is written into.
type Target string

// Targets
const (
	TargetResume  Target = "resume"
	TargetProfile Target = "profile"
)

// EnhanceSummaryRequest is the body of POST /api/ai/summary.
type EnhanceSummaryRequest struct {
	Target         Target `json:"target" validate:"required,oneof=resume profile"`
	ResumeID       string `json:"resume_id,omitempty" validate:"required_if=Target resume"`
	JobDescription string `json:"job_description,omitempty" validate:"max=20000"`
}

// EnhanceExperienceRequest is the body of POST /api/ai/experience.
type EnhanceExperienceRequest struct {
	Target         Target `json:"target" validate:"required,oneof=resume profile"`
	ResumeID       string `json:"resume_id,omitempty" validate:"required_if=Target resume"`
	ExperienceID   string `json:"experience_id" validate:"required"`
	JobDescription string `json:"job_description,omitempty" validate:"max=20000"`
}

// EnhanceAllRequest is the body of POST /api/ai/resumes/{id}/experience.
type EnhanceAllRequest struct {
	JobDescription string `json:"job_description,omitempty" validate:"max=20000"`
}

// TailorRequest is the body of POST /api/ai/tailor.
type TailorRequest struct {
	JobDescription string   `json:"job_description" validate:"required,min=20,max=20000"`
	Title          string   `json:"title,omitempty" validate:"max=200"`
	Template       Template `json:"template,omitempty"`
}

// FetchJobDescriptionRequest is the body of POST /api/ai/job-description.
type FetchJobDescriptionRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// FetchJobDescriptionResponse carries the extracted posting text.
type FetchJobDescriptionResponse struct {
	URL            string `json:"url"`
	JobDescription string `json:"job_description"`
}

// EnhanceSummaryResponse is returned by the summary operation.
type EnhanceSummaryResponse struct {
	Summary string `json:"summary"`
}

// EnhanceExperienceResponse is returned by the single-bullet operation.
type EnhanceExperienceResponse struct {
	Experience Experience `json:"experience"`
}

// UploadResponse is returned by the image upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}

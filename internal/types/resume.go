// Package types provides type definitions for the documents and API payloads used throughout Flower Resume.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Template identifies one of the static visual layouts the frontend renders.
type Template string

// Supported templates
const (
	TemplateClassic      Template = "classic"
	TemplateModern       Template = "modern"
	TemplateMinimal      Template = "minimal"
	TemplateProfessional Template = "professional"
	TemplateCreative     Template = "creative"
)

// DefaultTemplate is applied when a resume is created without one.
const DefaultTemplate = TemplateClassic

// Templates returns every supported template in display order.
func Templates() []Template {
	return []Template{
		TemplateClassic,
		TemplateModern,
		TemplateMinimal,
		TemplateProfessional,
		TemplateCreative,
	}
}

// Valid reports whether t is a supported template.
func (t Template) Valid() bool {
	for _, known := range Templates() {
		if t == known {
			return true
		}
	}
	return false
}

// PersonalInfo holds the contact block at the top of a resume.
type PersonalInfo struct {
	FullName string `json:"full_name"`
	JobTitle string `json:"job_title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Experience is one employment entry. Description holds the bullet text.
type Experience struct {
	ID          string `json:"id"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education is one education entry.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Description string `json:"description,omitempty"`
}

// Skill is a named skill with an optional proficiency level.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Project is a portfolio entry.
type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Certification is a credential entry.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Language is a spoken language entry.
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// ResumeContent is the section set shared by resumes and the default profile.
// It is stored as a single JSONB document.
type ResumeContent struct {
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
}

// Clone returns a deep copy so that edits to the copy never alias the source slices.
func (c ResumeContent) Clone() ResumeContent {
	out := c
	out.Experience = append([]Experience(nil), c.Experience...)
	out.Education = append([]Education(nil), c.Education...)
	out.Skills = append([]Skill(nil), c.Skills...)
	out.Certifications = append([]Certification(nil), c.Certifications...)
	out.Languages = append([]Language(nil), c.Languages...)
	if c.Projects != nil {
		out.Projects = make([]Project, len(c.Projects))
		for i, p := range c.Projects {
			p.Technologies = append([]string(nil), p.Technologies...)
			out.Projects[i] = p
		}
	}
	return out.Normalize()
}

// Normalize replaces nil sections with empty slices so documents always
// serialize as arrays.
func (c ResumeContent) Normalize() ResumeContent {
	if c.Experience == nil {
		c.Experience = []Experience{}
	}
	if c.Education == nil {
		c.Education = []Education{}
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	if c.Projects == nil {
		c.Projects = []Project{}
	}
	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	if c.Languages == nil {
		c.Languages = []Language{}
	}
	return c
}

// AssignIDs gives every addressable entry without an ID a fresh one.
func (c *ResumeContent) AssignIDs() {
	for i := range c.Experience {
		if c.Experience[i].ID == "" {
			c.Experience[i].ID = uuid.NewString()
		}
	}
	for i := range c.Education {
		if c.Education[i].ID == "" {
			c.Education[i].ID = uuid.NewString()
		}
	}
	for i := range c.Projects {
		if c.Projects[i].ID == "" {
			c.Projects[i].ID = uuid.NewString()
		}
	}
}

// FindExperience returns the index of the experience entry with the given ID, or -1.
func (c *ResumeContent) FindExperience(id string) int {
	for i := range c.Experience {
		if c.Experience[i].ID == id {
			return i
		}
	}
	return -1
}

// Resume is one user-created resume document.
type Resume struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Title     string        `json:"title"`
	Template  Template      `json:"template"`
	IsPublic  bool          `json:"is_public"`
	Content   ResumeContent `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DetailedResume is a user's default profile: the master content copied
// into new resumes and referenced by tailoring.
type DetailedResume struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Content   ResumeContent `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ResumeSummary is the lightweight list view of a resume.
type ResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Template  Template  `json:"template"`
	IsPublic  bool      `json:"is_public"`
	JobTitle  string    `json:"job_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

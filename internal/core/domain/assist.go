package domain

import (
	"fmt"
	"strings"
)

// AssistSection is the kind of resume entry AI assist writes for.
type AssistSection string

// Supported assist sections.
const (
	AssistExperience    AssistSection = "experience"
	AssistEducation     AssistSection = "education"
	AssistProject       AssistSection = "project"
	AssistCertification AssistSection = "certification"
	AssistAchievement   AssistSection = "achievement"
)

// IsValid returns true if the section is recognised.
func (s AssistSection) IsValid() bool {
	switch s {
	case AssistExperience, AssistEducation, AssistProject, AssistCertification, AssistAchievement:
		return true
	default:
		return false
	}
}

// RequiresContext returns true if the section needs a role or an
// organization to identify what is being described.
func (s AssistSection) RequiresContext() bool {
	return s == AssistExperience || s == AssistEducation || s == AssistCertification
}

// AssistStyle is the tone of generated text.
type AssistStyle string

// Supported styles.
const (
	StyleConcise   AssistStyle = "concise"
	StyleImpactful AssistStyle = "impactful"
	StyleTechnical AssistStyle = "technical"
)

// IsValid returns true if the style is recognised.
func (s AssistStyle) IsValid() bool {
	return s == StyleConcise || s == StyleImpactful || s == StyleTechnical
}

// Description returns the instruction given to the model for this style.
func (s AssistStyle) Description() string {
	switch s {
	case StyleImpactful:
		return "results-oriented, leading with measurable impact"
	case StyleTechnical:
		return "technically precise, naming tools and techniques"
	default:
		return "brief and plain, without filler"
	}
}

// GenerateRequest asks AI assist for text describing one resume entry.
type GenerateRequest struct {
	Section      AssistSection `json:"section"`
	Role         string        `json:"role,omitempty"`
	Organization string        `json:"organization,omitempty"`
	Location     string        `json:"location,omitempty"`
	Start        string        `json:"start,omitempty"`
	End          string        `json:"end,omitempty"`
	Skills       []string      `json:"skills,omitempty"`
	Style        AssistStyle   `json:"style,omitempty"`
	Lang         string        `json:"lang,omitempty"`
	WantBullets  bool          `json:"wantBullets,omitempty"`
}

// DefaultLang is used when a request carries no language.
const DefaultLang = "en"

// Normalize trims inputs and fills defaults for style and language.
func (r GenerateRequest) Normalize() GenerateRequest {
	out := r
	out.Section = AssistSection(strings.ToLower(strings.TrimSpace(string(r.Section))))
	out.Role = strings.TrimSpace(r.Role)
	out.Organization = strings.TrimSpace(r.Organization)
	out.Location = strings.TrimSpace(r.Location)
	out.Start = strings.TrimSpace(r.Start)
	out.End = strings.TrimSpace(r.End)
	out.Lang = strings.TrimSpace(r.Lang)
	if out.Lang == "" {
		out.Lang = DefaultLang
	}
	if out.Style == "" {
		out.Style = StyleConcise
	}
	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	out.Skills = skills
	return out
}

// Validate rejects requests that cannot be sent upstream.
func (r GenerateRequest) Validate() error {
	if !r.Section.IsValid() {
		return fmt.Errorf("%w: section %q is not one of experience, education, project, certification, achievement",
			ErrInvalidInput, r.Section)
	}
	if r.Style != "" && !r.Style.IsValid() {
		return fmt.Errorf("%w: style %q is not one of concise, impactful, technical", ErrInvalidInput, r.Style)
	}
	if r.Section.RequiresContext() && r.Role == "" && r.Organization == "" {
		return fmt.Errorf("%w: %s requires a role or an organization", ErrInvalidInput, r.Section)
	}
	return nil
}

// BulletsAllowed reports whether the response may carry bullets.
func (r GenerateRequest) BulletsAllowed() bool {
	return r.WantBullets && r.Section == AssistExperience
}

// GenerateResult is the AI assist response.
type GenerateResult struct {
	Paragraph string   `json:"paragraph"`
	Bullets   []string `json:"bullets,omitempty"`
}

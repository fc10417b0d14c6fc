package domain

import (
	"context"
	"strings"
)

const (
	LanguageLevelBasic        = "BASIC"
	LanguageLevelIntermediate = "INTERMEDIATE"
	LanguageLevelAdvanced     = "ADVANCED"
	LanguageLevelFluent       = "FLUENT"
	LanguageLevelNative       = "NATIVE"
)

// NormalizeLanguageLevel maps unknown or empty levels to BASIC.
func NormalizeLanguageLevel(level string) string {
	switch l := strings.ToUpper(strings.TrimSpace(level)); l {
	case LanguageLevelBasic, LanguageLevelIntermediate, LanguageLevelAdvanced,
		LanguageLevelFluent, LanguageLevelNative:
		return l
	default:
		return LanguageLevelBasic
	}
}

type Education struct {
	ID           string `json:"id,omitempty"`
	Institution  string `json:"institution" binding:"required,max=255"`
	Degree       string `json:"degree" binding:"omitempty,max=255"`
	FieldOfStudy string `json:"fieldOfStudy" binding:"omitempty,max=255"`
	StartDate    string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description" binding:"omitempty,max=4000"`
}

type Experience struct {
	ID          string `json:"id,omitempty"`
	Company     string `json:"company" binding:"required,max=255"`
	Position    string `json:"position" binding:"required,max=255"`
	StartDate   string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" binding:"omitempty,max=4000"`
}

type Skill struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" binding:"required,max=100"`
}

type Language struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" binding:"required,max=100"`
	Level string `json:"level"`
}

type Certificate struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name" binding:"required,max=255"`
	Issuer string `json:"issuer" binding:"omitempty,max=255"`
	Date   string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	URL    string `json:"url" binding:"omitempty,url"`
}

// CVSections groups every replaceable list of a CV.
type CVSections struct {
	Educations   []Education   `json:"educations" binding:"omitempty,dive"`
	Experiences  []Experience  `json:"experiences" binding:"omitempty,dive"`
	Skills       []Skill       `json:"skills" binding:"omitempty,dive"`
	Languages    []Language    `json:"languages" binding:"omitempty,dive"`
	Certificates []Certificate `json:"certificates" binding:"omitempty,dive"`
}

// CV is the user's profile plus all sections.
type CV struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	Summary  string `json:"summary,omitempty"`
	CVSections
}

type UpdateCVRequest struct {
	Phone    string `json:"phone" binding:"omitempty,valid_phone"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	LinkedIn string `json:"linkedin" binding:"omitempty,url"`
	GitHub   string `json:"github" binding:"omitempty,url"`
	Website  string `json:"website" binding:"omitempty,url"`
	Summary  string `json:"summary" binding:"omitempty,max=4000"`
	CVSections
}

// CVProfile holds the user columns a CV update touches.
type CVProfile struct {
	Phone    string
	Address  string
	LinkedIn string
	GitHub   string
	Website  string
	Summary  string
}

type CVRepository interface {
	GetSections(ctx context.Context, userID string) (*CVSections, error)
	// Replace updates the profile columns and swaps every section for the
	// given lists inside one transaction.
	Replace(ctx context.Context, userID string, profile CVProfile, sections CVSections) error
}

// CVDocument is a rendered CV file.
type CVDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}

type CVUsecase interface {
	Get(ctx context.Context, userID string) (*CV, error)
	Update(ctx context.Context, userID string, req UpdateCVRequest) (*CV, error)
	Download(ctx context.Context, userID string) (*CVDocument, error)
}

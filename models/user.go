package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Role is fixed when the account is created.
type Role string

const (
	RoleJobSeeker Role = "job-seeker"
	RoleJobPoster Role = "job-poster"
)

func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleJobPoster
}

type User struct {
	ID        uint   `gorm:"primaryKey;column:id" json:"id"`
	FirstName string `gorm:"column:first_name;size:100;not null" json:"first_name"`
	LastName  string `gorm:"column:last_name;size:100;not null" json:"last_name"`
	Email     string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Password  string `gorm:"column:password;not null" json:"-"`
	Role      Role   `gorm:"column:role;size:20;not null;<-:create" json:"role"`

	Phone          *string                     `gorm:"column:phone;size:50" json:"phone,omitempty"`
	Location       *string                     `gorm:"column:location;size:200" json:"location,omitempty"`
	Skills         datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills,omitempty"`
	Education      *string                     `gorm:"column:education;type:text" json:"education,omitempty"`
	Experience     *string                     `gorm:"column:experience;type:text" json:"experience,omitempty"`
	ProfilePicture *string                     `gorm:"column:profile_picture" json:"profile_picture,omitempty"`
	Resume         *string                     `gorm:"column:resume" json:"resume,omitempty"`
	LinkedinURL    *string                     `gorm:"column:linkedin_url" json:"linkedin_url,omitempty"`
	GithubURL      *string                     `gorm:"column:github_url" json:"github_url,omitempty"`
	PortfolioURL   *string                     `gorm:"column:portfolio_url" json:"portfolio_url,omitempty"`
	Bio            *string                     `gorm:"column:bio;size:500" json:"bio,omitempty"`

	// Company fields, only meaningful for job posters
	CompanyName        *string `gorm:"column:company_name;size:200" json:"company_name,omitempty"`
	CompanyDescription *string `gorm:"column:company_description;type:text" json:"company_description,omitempty"`
	CompanyWebsite     *string `gorm:"column:company_website" json:"company_website,omitempty"`
	CompanyLogo        *string `gorm:"column:company_logo" json:"company_logo,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName joins first and last name, falling back to "Unknown User".
func (u *User) DisplayName() string {
	if u == nil {
		return "Unknown User"
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "Unknown User"
	}
	return name
}

// UserSummary is the identity part of a user shown next to jobs and messages.
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// ApplicantProfile is what a poster may see of an applicant. It never carries
// the role or credentials.
type ApplicantProfile struct {
	ID           uint     `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	Phone        *string  `json:"phone,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Skills       []string `json:"skills"`
	Education    *string  `json:"education,omitempty"`
	Experience   *string  `json:"experience,omitempty"`
	Resume       *string  `json:"resume,omitempty"`
	LinkedinURL  *string  `json:"linkedin_url,omitempty"`
	GithubURL    *string  `json:"github_url,omitempty"`
	PortfolioURL *string  `json:"portfolio_url,omitempty"`
	Bio          *string  `json:"bio,omitempty"`
}

func (u *User) ApplicantProfile() *ApplicantProfile {
	if u == nil {
		return nil
	}
	skills := []string(u.Skills)
	if skills == nil {
		skills = []string{}
	}
	return &ApplicantProfile{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Location:     u.Location,
		Skills:       skills,
		Education:    u.Education,
		Experience:   u.Experience,
		Resume:       u.Resume,
		LinkedinURL:  u.LinkedinURL,
		GithubURL:    u.GithubURL,
		PortfolioURL: u.PortfolioURL,
		Bio:          u.Bio,
	}
}

// ApplicantProfileColumns lists the user columns needed to build an ApplicantProfile.
var ApplicantProfileColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "location", "skills",
	"education", "experience", "resume", "linkedin_url", "github_url", "portfolio_url", "bio",
}

// SummaryColumns lists the user columns needed to build a UserSummary.
var SummaryColumns = []string{"id", "first_name", "last_name", "email", "role"}

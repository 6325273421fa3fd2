package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is defined from s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// Application links one job-seeker to one job. The composite unique index
// keeps a single row per (job, applicant).
type Application struct {
	ID          uint              `gorm:"primaryKey;column:id" json:"id"`
	JobID       uint              `gorm:"column:job_id;not null;uniqueIndex:ux_applications_job_applicant,priority:1" json:"job_id"`
	ApplicantID uint              `gorm:"column:applicant_id;not null;uniqueIndex:ux_applications_job_applicant,priority:2;index" json:"applicant_id"`
	Status      ApplicationStatus `gorm:"column:status;size:20;not null" json:"status"`
	ReviewedBy  *uint             `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time        `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	Notes       *string           `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Job       *Job  `gorm:"foreignKey:JobID" json:"-"`
	Applicant *User `gorm:"foreignKey:ApplicantID" json:"-"`
}

func (Application) TableName() string {
	return "applications"
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job is a listing owned by exactly one poster.
type Job struct {
	ID          uint                        `gorm:"primaryKey;column:id" json:"id"`
	Title       string                      `gorm:"column:title;size:200;not null" json:"title"`
	Company     string                      `gorm:"column:company;size:200;not null" json:"company"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Type        string                      `gorm:"column:job_type;size:50" json:"type"`
	Location    string                      `gorm:"column:location;size:200" json:"location"`
	SalaryMin   *int64                      `gorm:"column:salary_min" json:"salary_min,omitempty"`
	SalaryMax   *int64                      `gorm:"column:salary_max" json:"salary_max,omitempty"`
	Skills      datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`
	PosterID    uint                        `gorm:"column:poster_id;not null;index" json:"poster_id"`
	CreatedAt   time.Time                   `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Poster *User `gorm:"foreignKey:PosterID" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

package services

import (
	"job-board-api/models"

	"gorm.io/gorm"
)

// Response projections. The outer fields shadow the relation fields of the
// embedded models so that only the intended user attributes are rendered.

type JobView struct {
	models.Job
	Poster *models.UserSummary `json:"poster,omitempty"`
}

type ApplicationView struct {
	models.Application
	Job       *JobView                 `json:"job,omitempty"`
	Applicant *models.ApplicantProfile `json:"applicant,omitempty"`
}

type MessageView struct {
	models.Message
	Sender      *models.UserSummary `json:"sender,omitempty"`
	Recipient   *models.UserSummary `json:"recipient,omitempty"`
	Application *ApplicationView    `json:"application,omitempty"`
}

func newJobView(j *models.Job) *JobView {
	if j == nil {
		return nil
	}
	return &JobView{Job: *j, Poster: j.Poster.Summary()}
}

func newApplicationView(a *models.Application, withApplicant bool) ApplicationView {
	v := ApplicationView{Application: *a, Job: newJobView(a.Job)}
	if withApplicant {
		v.Applicant = a.Applicant.ApplicantProfile()
	}
	return v
}

func newMessageView(m *models.Message) MessageView {
	v := MessageView{
		Message:   *m,
		Sender:    m.Sender.Summary(),
		Recipient: m.Recipient.Summary(),
	}
	if m.Application != nil {
		av := newApplicationView(m.Application, false)
		v.Application = &av
	}
	return v
}

func selectSummary(db *gorm.DB) *gorm.DB {
	return db.Select(models.SummaryColumns)
}

func selectApplicantProfile(db *gorm.DB) *gorm.DB {
	return db.Select(models.ApplicantProfileColumns)
}

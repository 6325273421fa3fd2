package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-board-api/config"
	"job-board-api/models"

	"gorm.io/gorm"
)

type ApplicationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	if db == nil {
		db = config.DB
	}
	return &ApplicationService{db: db, now: time.Now}
}

// JobApplications is the poster's view of the applications on one job.
type JobApplications struct {
	JobID        uint              `json:"job_id"`
	JobTitle     string            `json:"job_title"`
	Applications []ApplicationView `json:"applications"`
}

// Apply creates a pending application for the calling job-seeker and queues
// a notification for the job's poster in the same transaction.
func (s *ApplicationService) Apply(ctx context.Context, id Identity, jobID uint) (*models.Application, error) {
	if !id.IsSeeker() {
		return nil, Forbidden("Only job seekers can apply to jobs")
	}
	db := s.db.WithContext(ctx)

	var job models.Job
	if err := db.Select("id", "title", "company", "poster_id").First(&job, jobID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Job not found")
		}
		return nil, Internal(err)
	}

	app := models.Application{
		JobID:       job.ID,
		ApplicantID: id.UserID,
		Status:      models.ApplicationPending,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("You already applied to this job")
			}
			return Internal(err)
		}
		return enqueueNotification(tx, NotificationInput{
			UserID:  job.PosterID,
			Type:    models.NotificationApplicationReceived,
			Title:   "New Application Received",
			Message: fmt.Sprintf("%s applied for \"%s\"", id.DisplayName(), job.Title),
			Related: models.ApplicationRef(app.ID),
			Data: models.NotificationData{
				JobTitle:      job.Title,
				CompanyName:   job.Company,
				ApplicantName: id.DisplayName(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListMine returns the caller's applications with job and poster details, newest first.
func (s *ApplicationService) ListMine(ctx context.Context, id Identity) ([]ApplicationView, error) {
	var apps []models.Application
	if err := s.db.WithContext(ctx).
		Where("applicant_id = ?", id.UserID).
		Preload("Job").
		Preload("Job.Poster", selectSummary).
		Order("created_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, Internal(err)
	}

	out := make([]ApplicationView, 0, len(apps))
	for i := range apps {
		out = append(out, newApplicationView(&apps[i], false))
	}
	return out, nil
}

// Withdraw deletes the caller's own application regardless of its status.
// Notifications about it that were not delivered yet are cancelled.
func (s *ApplicationService) Withdraw(ctx context.Context, id Identity, applicationID uint) error {
	db := s.db.WithContext(ctx)

	var app models.Application
	if err := db.Select("id", "applicant_id").First(&app, applicationID).Error; err != nil {
		if isNotFound(err) {
			return NotFound("Application not found")
		}
		return Internal(err)
	}
	if app.ApplicantID != id.UserID {
		return Forbidden("Not authorized to withdraw this application")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND applicant_id = ?", applicationID, id.UserID).Delete(&models.Application{})
		if res.Error != nil {
			return Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFound("Application not found")
		}
		return cancelPendingFor(tx, models.ApplicationRef(app.ID), "application withdrawn")
	})
}

// ListForJob returns the applications on a job owned by the calling poster.
func (s *ApplicationService) ListForJob(ctx context.Context, id Identity, jobID uint) (*JobApplications, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can view applications")
	}
	db := s.db.WithContext(ctx)

	var job models.Job
	if err := db.Select("id", "title", "poster_id").
		Where("id = ? AND poster_id = ?", jobID, id.UserID).
		First(&job).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Job not found or unauthorized")
		}
		return nil, Internal(err)
	}

	var apps []models.Application
	if err := db.Where("job_id = ?", job.ID).
		Preload("Applicant", selectApplicantProfile).
		Order("created_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, Internal(err)
	}

	out := &JobApplications{
		JobID:        job.ID,
		JobTitle:     job.Title,
		Applications: make([]ApplicationView, 0, len(apps)),
	}
	for i := range apps {
		out.Applications = append(out.Applications, newApplicationView(&apps[i], true))
	}
	return out, nil
}

// ListForAllMyJobs returns applications across every job the calling poster owns.
func (s *ApplicationService) ListForAllMyJobs(ctx context.Context, id Identity) ([]ApplicationView, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can view applications")
	}
	db := s.db.WithContext(ctx)

	owned := db.Model(&models.Job{}).Select("id").Where("poster_id = ?", id.UserID)

	var apps []models.Application
	if err := db.Where("job_id IN (?)", owned).
		Preload("Job").
		Preload("Applicant", selectApplicantProfile).
		Order("created_at DESC, id DESC").
		Find(&apps).Error; err != nil {
		return nil, Internal(err)
	}

	out := make([]ApplicationView, 0, len(apps))
	for i := range apps {
		out = append(out, newApplicationView(&apps[i], true))
	}
	return out, nil
}

// UpdateStatus moves a pending application to accepted or rejected. The
// transition is a conditional update, so only the first decision sticks.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id Identity, applicationID uint, status models.ApplicationStatus, notes string) (*ApplicationView, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can update application status")
	}
	if status != models.ApplicationAccepted && status != models.ApplicationRejected {
		return nil, BadRequest("Invalid status. Must be 'accepted' or 'rejected'")
	}
	db := s.db.WithContext(ctx)

	var app models.Application
	if err := db.Preload("Job").First(&app, applicationID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Application not found")
		}
		return nil, Internal(err)
	}
	if app.Job == nil {
		return nil, NotFound("Job not found")
	}
	if app.Job.PosterID != id.UserID {
		return nil, Forbidden("Unauthorized to update this application")
	}

	notes = strings.TrimSpace(notes)
	now := s.now()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_by": id.UserID,
		"reviewed_at": now,
	}
	if notes != "" {
		updates["notes"] = notes
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, models.ApplicationPending).
			Updates(updates)
		if res.Error != nil {
			return Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("Application has already been reviewed")
		}
		return enqueueNotification(tx, statusNotification(&app, app.Job, status, notes))
	})
	if err != nil {
		return nil, err
	}

	app.Status = status
	app.ReviewedBy = &id.UserID
	app.ReviewedAt = &now
	if notes != "" {
		app.Notes = &notes
	}
	view := newApplicationView(&app, false)
	return &view, nil
}

func statusNotification(app *models.Application, job *models.Job, status models.ApplicationStatus, notes string) NotificationInput {
	verb := "rejected"
	title := "Application Rejected"
	if status == models.ApplicationAccepted {
		verb = "approved"
		title = "Application Approved"
	}

	msg := fmt.Sprintf("Your application for \"%s\" has been %s", job.Title, verb)
	if notes != "" {
		msg += ". " + notes
	} else {
		msg += "."
	}

	return NotificationInput{
		UserID:  app.ApplicantID,
		Type:    models.NotificationApplicationStatus,
		Title:   title,
		Message: msg,
		Related: models.ApplicationRef(app.ID),
		Data: models.NotificationData{
			JobTitle:          job.Title,
			CompanyName:       job.Company,
			ApplicationStatus: status,
			ApprovalMessage:   notes,
		},
	}
}

package services

import (
	"context"
	"strings"

	"job-board-api/config"
	"job-board-api/models"
	"job-board-api/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultJobPageSize = 20
	maxJobPageSize     = 100
)

type JobInput struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Company     string   `json:"company" binding:"required,max=200"`
	Description string   `json:"description"`
	Type        string   `json:"type" binding:"max=50"`
	Location    string   `json:"location" binding:"max=200"`
	SalaryMin   *int64   `json:"salary_min" binding:"omitempty,min=0"`
	SalaryMax   *int64   `json:"salary_max" binding:"omitempty,min=0"`
	Skills      []string `json:"skills"`
}

type JobFilter struct {
	Query    string
	Type     string
	Location string
	Page     int
	PageSize int
}

type JobPage struct {
	Items      []JobView `json:"jobs"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	if db == nil {
		db = config.DB
	}
	return &JobService{db: db}
}

func (s *JobService) Create(ctx context.Context, id Identity, in JobInput) (*JobView, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can create jobs")
	}
	in.Title = utils.SanitizeInput(in.Title)
	in.Company = utils.SanitizeInput(in.Company)
	if in.Title == "" || in.Company == "" {
		return nil, BadRequest("Title and company are required")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return nil, BadRequest("Minimum salary cannot exceed maximum salary")
	}

	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = utils.SanitizeInput(sk); sk != "" {
			skills = append(skills, sk)
		}
	}

	job := models.Job{
		Title:       in.Title,
		Company:     in.Company,
		Description: strings.TrimSpace(in.Description),
		Type:        utils.SanitizeInput(in.Type),
		Location:    utils.SanitizeInput(in.Location),
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		Skills:      datatypes.NewJSONSlice(skills),
		PosterID:    id.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, Internal(err)
	}
	return s.Get(ctx, job.ID)
}

func (s *JobService) Get(ctx context.Context, jobID uint) (*JobView, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).Preload("Poster", selectSummary).First(&job, jobID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Job not found")
		}
		return nil, Internal(err)
	}
	return newJobView(&job), nil
}

// List returns jobs newest first. Query matches title, company or description.
func (s *JobService) List(ctx context.Context, f JobFilter) (*JobPage, error) {
	page, pageSize := normalizePage(f.Page, f.PageSize, defaultJobPageSize, maxJobPageSize)

	q := s.db.WithContext(ctx).Model(&models.Job{})
	if term := strings.ToLower(utils.SanitizeInput(f.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if t := utils.SanitizeInput(f.Type); t != "" {
		q = q.Where("job_type = ?", t)
	}
	if loc := strings.ToLower(utils.SanitizeInput(f.Location)); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+loc+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Internal(err)
	}

	var jobs []models.Job
	if err := q.Session(&gorm.Session{}).
		Preload("Poster", selectSummary).
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&jobs).Error; err != nil {
		return nil, Internal(err)
	}

	items := make([]JobView, 0, len(jobs))
	for i := range jobs {
		items = append(items, *newJobView(&jobs[i]))
	}
	return &JobPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

func (s *JobService) ListByPoster(ctx context.Context, id Identity) ([]models.Job, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can list their jobs")
	}
	jobs := make([]models.Job, 0)
	if err := s.db.WithContext(ctx).
		Where("poster_id = ?", id.UserID).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error; err != nil {
		return nil, Internal(err)
	}
	return jobs, nil
}

// Delete removes a job together with its applications and their messages.
func (s *JobService) Delete(ctx context.Context, id Identity, jobID uint) error {
	if !id.IsPoster() {
		return Forbidden("Only job posters can delete jobs")
	}
	db := s.db.WithContext(ctx)

	var job models.Job
	if err := db.Select("id", "poster_id").First(&job, jobID).Error; err != nil {
		if isNotFound(err) {
			return NotFound("Job not found")
		}
		return Internal(err)
	}
	if job.PosterID != id.UserID {
		return Forbidden("Not authorized to delete this job")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		apps := tx.Model(&models.Application{}).Select("id").Where("job_id = ?", job.ID)
		if err := tx.Where("application_id IN (?)", apps).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", job.ID).Delete(&models.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Job{}, job.ID).Error
	})
	if err != nil {
		return Internal(err)
	}
	return nil
}

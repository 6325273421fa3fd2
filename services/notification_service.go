package services

import (
	"context"
	"strings"
	"time"

	"job-board-api/config"
	"job-board-api/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultNotificationPageSize = 20
	maxNotificationPageSize     = 100
)

// NotificationInput describes a notification to be stored for one user.
type NotificationInput struct {
	UserID  uint                    `json:"user_id"`
	Type    models.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Related models.RelatedRef       `json:"related"`
	Data    models.NotificationData `json:"data"`
}

func (in NotificationInput) validate() error {
	if in.UserID == 0 {
		return BadRequest("Notification recipient is required")
	}
	if !in.Type.Valid() {
		return BadRequest("Invalid notification type")
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return BadRequest("Notification title and message are required")
	}
	return nil
}

type NotificationPage struct {
	Items       []models.Notification `json:"notifications"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unread_count"`
	Page        int                   `json:"page"`
	PageSize    int                   `json:"page_size"`
	TotalPages  int                   `json:"total_pages"`
}

type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	if db == nil {
		db = config.DB
	}
	return &NotificationService{db: db, now: time.Now}
}

// withDB returns a copy bound to db, typically an open transaction.
func (s *NotificationService) withDB(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, now: s.now}
}

// Create stores a notification. It is called by the outbox dispatcher and is
// not exposed over HTTP.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n := models.Notification{
		UserID:  in.UserID,
		Type:    in.Type,
		Title:   strings.TrimSpace(in.Title),
		Message: strings.TrimSpace(in.Message),
		Related: in.Related,
		Data:    datatypes.NewJSONType(in.Data),
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, Internal(err)
	}
	return &n, nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, pageSize int, unreadOnly bool) (*NotificationPage, error) {
	page, pageSize = normalizePage(page, pageSize, defaultNotificationPageSize, maxNotificationPageSize)
	db := s.db.WithContext(ctx)

	q := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, Internal(err)
	}

	items := make([]models.Notification, 0)
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error; err != nil {
		return nil, Internal(err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &NotificationPage{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, Internal(err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	db := s.db.WithContext(ctx)

	var n models.Notification
	if err := db.Where("id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Notification not found")
		}
		return nil, Internal(err)
	}
	if n.IsRead {
		return &n, nil
	}

	now := s.now()
	if err := db.Model(&n).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		return nil, Internal(err)
	}
	n.IsRead = true
	n.ReadAt = &now
	return &n, nil
}

// MarkAllRead returns the number of notifications that changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": s.now(),
		})
	if res.Error != nil {
		return 0, Internal(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFound("Notification not found")
	}
	return nil
}

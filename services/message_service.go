package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"job-board-api/config"
	"job-board-api/models"

	"gorm.io/gorm"
)

type MessageService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageService(db *gorm.DB) *MessageService {
	if db == nil {
		db = config.DB
	}
	return &MessageService{db: db, now: time.Now}
}

// Send posts a message from the job's poster to the applicant and queues a
// message_received notification for the applicant.
func (s *MessageService) Send(ctx context.Context, id Identity, applicationID uint, content string) (*MessageView, error) {
	if !id.IsPoster() {
		return nil, Forbidden("Only job posters can send messages")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, BadRequest("Message content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, BadRequest(fmt.Sprintf("Message content must be at most %d characters", models.MaxMessageLength))
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
		return nil, Forbidden("Unauthorized to message this applicant")
	}

	msg := models.Message{
		ApplicationID: app.ID,
		SenderID:      id.UserID,
		RecipientID:   app.ApplicantID,
		Content:       content,
	}
	senderName := id.DisplayName()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return Internal(err)
		}
		return enqueueNotification(tx, NotificationInput{
			UserID:  app.ApplicantID,
			Type:    models.NotificationMessageReceived,
			Title:   "New Message Received",
			Message: fmt.Sprintf("You received a message from %s regarding your application for \"%s\"", senderName, app.Job.Title),
			Related: models.MessageRef(msg.ID),
			Data: models.NotificationData{
				JobTitle:    app.Job.Title,
				CompanyName: app.Job.Company,
				SenderName:  senderName,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Sender", selectSummary).Preload("Recipient", selectSummary).First(&msg, msg.ID).Error; err != nil {
		return nil, Internal(err)
	}
	view := newMessageView(&msg)
	return &view, nil
}

// ListForApplication returns the conversation oldest first. Unread messages
// addressed to the caller are marked read before they are loaded.
func (s *MessageService) ListForApplication(ctx context.Context, id Identity, applicationID uint) ([]MessageView, error) {
	db := s.db.WithContext(ctx)

	var app models.Application
	if err := db.Preload("Job").First(&app, applicationID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Application not found")
		}
		return nil, Internal(err)
	}
	isPoster := app.Job != nil && app.Job.PosterID == id.UserID
	isApplicant := app.ApplicantID == id.UserID
	if !isPoster && !isApplicant {
		return nil, Forbidden("Unauthorized to view these messages")
	}

	if err := db.Model(&models.Message{}).
		Where("application_id = ? AND recipient_id = ? AND is_read = ?", app.ID, id.UserID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": s.now(),
		}).Error; err != nil {
		return nil, Internal(err)
	}

	var msgs []models.Message
	if err := db.Where("application_id = ?", app.ID).
		Preload("Sender", selectSummary).
		Preload("Recipient", selectSummary).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, Internal(err)
	}

	out := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		out = append(out, newMessageView(&msgs[i]))
	}
	return out, nil
}

// GetByID returns one message to its sender or recipient, marking it read
// when the recipient opens it.
func (s *MessageService) GetByID(ctx context.Context, id Identity, messageID uint) (*MessageView, error) {
	db := s.db.WithContext(ctx)

	var msg models.Message
	if err := db.Preload("Sender", selectSummary).
		Preload("Recipient", selectSummary).
		Preload("Application").
		Preload("Application.Job").
		First(&msg, messageID).Error; err != nil {
		if isNotFound(err) {
			return nil, NotFound("Message not found")
		}
		return nil, Internal(err)
	}
	if msg.SenderID != id.UserID && msg.RecipientID != id.UserID {
		return nil, Forbidden("Unauthorized to view this message")
	}

	if msg.RecipientID == id.UserID && !msg.IsRead {
		now := s.now()
		if err := db.Model(&models.Message{}).
			Where("id = ? AND is_read = ?", msg.ID, false).
			Updates(map[string]interface{}{
				"is_read": true,
				"read_at": now,
			}).Error; err != nil {
			return nil, Internal(err)
		}
		msg.IsRead = true
		msg.ReadAt = &now
	}

	view := newMessageView(&msg)
	return &view, nil
}

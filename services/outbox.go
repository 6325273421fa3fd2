package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"job-board-api/config"
	"job-board-api/models"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicNotification carries a NotificationInput payload.
const TopicNotification = "notification.create"

const defaultOutboxBatchSize = 50

var errEventClaimed = errors.New("outbox event already claimed")

// enqueueNotification appends a notification intent to the outbox inside tx.
func enqueueNotification(tx *gorm.DB, in NotificationInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return Internal(err)
	}
	ev := models.OutboxEvent{
		Topic:       TopicNotification,
		Payload:     datatypes.JSON(payload),
		Ref:         in.Related.String(),
		Status:      models.OutboxPending,
		AvailableAt: time.Now().UTC(),
	}
	if err := tx.Create(&ev).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// cancelPendingFor cancels undelivered events whose notification points at
// ref. It runs inside the transaction that removes the referenced record.
func cancelPendingFor(tx *gorm.DB, ref models.RelatedRef, reason string) error {
	if ref.IsZero() {
		return nil
	}
	if err := tx.Model(&models.OutboxEvent{}).
		Where("ref = ? AND status = ?", ref.String(), models.OutboxPending).
		Updates(map[string]interface{}{
			"status":     models.OutboxCancelled,
			"last_error": reason,
		}).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// Publisher pushes a stored notification to live clients of a user.
type Publisher interface {
	Publish(userID uint, payload any)
}

//go:generate mockgen -source=outbox.go -destination=mocks/mock_outbox.go -package=mocks
type Mailer interface {
	Send(to []string, subject, html string) error
}

// MailerFunc adapts a plain function such as config.SendMail to Mailer.
type MailerFunc func(to []string, subject, html string) error

func (f MailerFunc) Send(to []string, subject, html string) error { return f(to, subject, html) }

type DispatchSummary struct {
	Dispatched int `json:"dispatched"`
	Retried    int `json:"retried"`
	Failed     int `json:"failed"`
}

func (s DispatchSummary) Total() int { return s.Dispatched + s.Retried + s.Failed }

type OutboxDispatcher struct {
	db            *gorm.DB
	notifications *NotificationService
	publisher     Publisher
	mailer        Mailer
	strategy      retry.Strategy
	mailStrategy  retry.Strategy
	batchSize     int
	now           func() time.Time
}

type DispatcherOption func(*OutboxDispatcher)

func WithPublisher(p Publisher) DispatcherOption {
	return func(d *OutboxDispatcher) { d.publisher = p }
}

func WithMailer(m Mailer) DispatcherOption {
	return func(d *OutboxDispatcher) { d.mailer = m }
}

// WithStrategy sets how often and how far apart a failing event is retried.
func WithStrategy(s retry.Strategy) DispatcherOption {
	return func(d *OutboxDispatcher) { d.strategy = s }
}

// WithMailStrategy sets the inline retry used for a single email send.
func WithMailStrategy(s retry.Strategy) DispatcherOption {
	return func(d *OutboxDispatcher) { d.mailStrategy = s }
}

func WithBatchSize(n int) DispatcherOption {
	return func(d *OutboxDispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

func withClock(now func() time.Time) DispatcherOption {
	return func(d *OutboxDispatcher) { d.now = now }
}

func NewOutboxDispatcher(db *gorm.DB, notifications *NotificationService, opts ...DispatcherOption) *OutboxDispatcher {
	if db == nil {
		db = config.DB
	}
	if notifications == nil {
		notifications = NewNotificationService(db)
	}
	d := &OutboxDispatcher{
		db:            db,
		notifications: notifications,
		strategy:      retry.Strategy{Attempts: 5, Delay: 5 * time.Second, Backoff: 2},
		mailStrategy:  retry.Strategy{Attempts: 1},
		batchSize:     defaultOutboxBatchSize,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drains the outbox every interval until ctx is cancelled.
func (d *OutboxDispatcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	zlog.Logger.Info().Msgf("outbox dispatcher started (interval=%s batch=%d)", interval, d.batchSize)
	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("outbox dispatcher stopped")
			return
		case <-ticker.C:
			summary, err := d.DrainOnce(ctx)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("outbox drain failed")
				continue
			}
			if summary.Total() > 0 {
				zlog.Logger.Info().
					Int("dispatched", summary.Dispatched).
					Int("retried", summary.Retried).
					Int("failed", summary.Failed).
					Msg("outbox batch processed")
			}
		}
	}
}

// DrainOnce processes one batch of due events. Delivery failures are recorded
// on the event and never returned; the error is only for failing to read the
// outbox itself.
func (d *OutboxDispatcher) DrainOnce(ctx context.Context) (*DispatchSummary, error) {
	summary := &DispatchSummary{}

	var events []models.OutboxEvent
	if err := d.db.WithContext(ctx).
		Where("status = ? AND available_at <= ?", models.OutboxPending, d.now()).
		Order("available_at ASC, id ASC").
		Limit(d.batchSize).
		Find(&events).Error; err != nil {
		return summary, err
	}

	for i := range events {
		if ctx.Err() != nil {
			break
		}
		ev := &events[i]
		n, err := d.deliver(ctx, ev)
		switch {
		case err == nil:
			summary.Dispatched++
			d.fanOut(ctx, n)
		case errors.Is(err, errEventClaimed):
			// handled elsewhere
		default:
			if d.recordFailure(ctx, ev, err) {
				summary.Failed++
			} else {
				summary.Retried++
			}
		}
	}
	return summary, nil
}

// deliver stores the notification and marks the event dispatched in one transaction.
func (d *OutboxDispatcher) deliver(ctx context.Context, ev *models.OutboxEvent) (*models.Notification, error) {
	if ev.Topic != TopicNotification {
		return nil, BadRequest(fmt.Sprintf("unknown outbox topic %q", ev.Topic))
	}
	var in NotificationInput
	if err := json.Unmarshal(ev.Payload, &in); err != nil {
		return nil, BadRequest(fmt.Sprintf("invalid outbox payload: %v", err))
	}

	var created *models.Notification
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := d.notifications.withDB(tx).Create(ctx, in)
		if err != nil {
			return err
		}
		now := d.now()
		res := tx.Model(&models.OutboxEvent{}).
			Where("id = ? AND status = ?", ev.ID, models.OutboxPending).
			Updates(map[string]interface{}{
				"status":        models.OutboxDispatched,
				"attempts":      ev.Attempts + 1,
				"dispatched_at": now,
				"last_error":    nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errEventClaimed
		}
		created = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// recordFailure reschedules ev with backoff, or marks it failed once the
// strategy is exhausted or the payload can never succeed. It reports whether
// the event is now failed.
func (d *OutboxDispatcher) recordFailure(ctx context.Context, ev *models.OutboxEvent, cause error) bool {
	attempts := ev.Attempts + 1
	maxAttempts := d.strategy.Attempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	permanent := KindOf(cause) == KindBadRequest
	msg := cause.Error()

	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": msg,
	}
	failed := permanent || attempts >= maxAttempts
	if failed {
		updates["status"] = models.OutboxFailed
	} else {
		updates["available_at"] = d.now().Add(d.backoff(attempts))
	}

	if err := d.db.WithContext(persistentContext(ctx)).Model(&models.OutboxEvent{}).
		Where("id = ? AND status = ?", ev.ID, models.OutboxPending).
		Updates(updates).Error; err != nil {
		zlog.Logger.Error().Err(err).Uint("event_id", ev.ID).Msg("failed to record outbox failure")
	}

	if failed {
		zlog.Logger.Error().Err(cause).Uint("event_id", ev.ID).Int("attempts", attempts).Msg("outbox event failed permanently")
	} else {
		zlog.Logger.Warn().Err(cause).Uint("event_id", ev.ID).Int("attempts", attempts).Msg("outbox event will be retried")
	}
	return failed
}

// backoff returns the wait before the next try after the given number of failed attempts.
func (d *OutboxDispatcher) backoff(attempts int) time.Duration {
	factor := d.strategy.Backoff
	if factor < 1 {
		factor = 1
	}
	delay := float64(d.strategy.Delay) * math.Pow(factor, float64(attempts-1))
	if delay > float64(24*time.Hour) {
		delay = float64(24 * time.Hour)
	}
	return time.Duration(delay)
}

// fanOut pushes a stored notification to live clients and by email. Both are best-effort.
func (d *OutboxDispatcher) fanOut(ctx context.Context, n *models.Notification) {
	if n == nil {
		return
	}
	if d.publisher != nil {
		d.publisher.Publish(n.UserID, n)
	}
	if d.mailer == nil {
		return
	}

	var recipient models.User
	if err := d.db.WithContext(persistentContext(ctx)).
		Select("id", "email", "first_name", "last_name").
		First(&recipient, n.UserID).Error; err != nil {
		zlog.Logger.Error().Err(err).Uint("user_id", n.UserID).Msg("notification email skipped: recipient lookup failed")
		return
	}
	if recipient.Email == "" {
		return
	}

	strategy := d.mailStrategy
	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}
	html := buildNotificationEmailHTML(n.Title, recipient.DisplayName(), n.Message)
	err := retry.Do(func() error {
		return d.mailer.Send([]string{recipient.Email}, n.Title, html)
	}, strategy)
	if err != nil {
		zlog.Logger.Error().Err(err).Uint("notification_id", n.ID).Str("to", recipient.Email).Msg("notification email send failed")
	}
}

type OutboxStats struct {
	Pending       int64      `json:"pending"`
	Dispatched    int64      `json:"dispatched"`
	Failed        int64      `json:"failed"`
	Cancelled     int64      `json:"cancelled"`
	OldestPending *time.Time `json:"oldest_pending,omitempty"`
}

// Stats summarises the outbox for operational checks.
func (d *OutboxDispatcher) Stats(ctx context.Context) (*OutboxStats, error) {
	db := d.db.WithContext(ctx)

	var rows []struct {
		Status models.OutboxStatus
		Total  int64
	}
	if err := db.Model(&models.OutboxEvent{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &OutboxStats{}
	for _, r := range rows {
		switch r.Status {
		case models.OutboxPending:
			stats.Pending = r.Total
		case models.OutboxDispatched:
			stats.Dispatched = r.Total
		case models.OutboxFailed:
			stats.Failed = r.Total
		case models.OutboxCancelled:
			stats.Cancelled = r.Total
		}
	}

	if stats.Pending > 0 {
		var oldest models.OutboxEvent
		if err := db.Select("id", "created_at").
			Where("status = ?", models.OutboxPending).
			Order("created_at ASC, id ASC").
			First(&oldest).Error; err == nil {
			stats.OldestPending = &oldest.CreatedAt
		}
	}
	return stats, nil
}

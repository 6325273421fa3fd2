package services

import (
	"context"
	"os"
	"testing"

	"job-board-api/config"
	"job-board-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Discard,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, email, first, last string) Identity {
	t.Helper()
	u := models.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  "$2a$10$placeholderplaceholderplaceholderplaceholderplacehold",
		Role:      role,
	}
	require.NoError(t, db.Create(&u).Error)
	return NewIdentity(&u)
}

func createJob(t *testing.T, db *gorm.DB, poster Identity, title string) *models.Job {
	t.Helper()
	j := models.Job{
		Title:    title,
		Company:  "Acme",
		Location: "Remote",
		Type:     "full-time",
		PosterID: poster.UserID,
	}
	require.NoError(t, db.Create(&j).Error)
	return &j
}

// world is the poster/seeker/job setup shared by the lifecycle tests.
type world struct {
	db     *gorm.DB
	poster Identity
	other  Identity
	seeker Identity
	job    *models.Job

	apps          *ApplicationService
	messages      *MessageService
	notifications *NotificationService
	dispatcher    *OutboxDispatcher
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := newTestDB(t)
	w := &world{
		db:     db,
		poster: createUser(t, db, models.RoleJobPoster, "poster@example.com", "Paula", "Poster"),
		other:  createUser(t, db, models.RoleJobPoster, "other@example.com", "Oscar", "Other"),
		seeker: createUser(t, db, models.RoleJobSeeker, "seeker@example.com", "Sam", "Seeker"),
	}
	w.job = createJob(t, db, w.poster, "Go Developer")
	w.apps = NewApplicationService(db)
	w.messages = NewMessageService(db)
	w.notifications = NewNotificationService(db)
	w.dispatcher = NewOutboxDispatcher(db, w.notifications)
	return w
}

// drain delivers every pending outbox event.
func (w *world) drain(t *testing.T) {
	t.Helper()
	_, err := w.dispatcher.DrainOnce(context.Background())
	require.NoError(t, err)
}

func (w *world) notificationsOf(t *testing.T, id Identity) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, w.db.Where("user_id = ?", id.UserID).Order("id ASC").Find(&out).Error)
	return out
}

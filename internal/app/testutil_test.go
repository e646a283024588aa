package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Item{}, &model.Category{}, &model.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewStore(client, time.Hour, 48*time.Hour)
	return NewAuthService(repository.NewUserRepository(db), sessions, "test-secret", time.Hour)
}

// recordingPublisher captures activities instead of touching a broker.
type recordingPublisher struct {
	activities []model.Activity
}

func (p *recordingPublisher) Publish(_ context.Context, activity model.Activity) error {
	p.activities = append(p.activities, activity)
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, model.Activity) error {
	return errors.New("broker unavailable")
}

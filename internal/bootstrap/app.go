package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/config"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	databaseClient "github.com/Gandalf-Rus/Yandex-lyceum-web/internal/platform/database"
	rabbitmqClient "github.com/Gandalf-Rus/Yandex-lyceum-web/internal/platform/rabbitmq"
	redisClient "github.com/Gandalf-Rus/Yandex-lyceum-web/internal/platform/redis"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/worker"
)

type App struct {
	Config         *config.Config
	DB             *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	Sessions       *session.Store
	Publisher      *rabbitmqClient.ActivityPublisher
	ActivityWorker *worker.ActivityWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := databaseClient.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Item{}, &model.Category{}, &model.Activity{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	sessions := session.NewStore(
		redisCli,
		time.Duration(cfg.Auth.SessionTTLHour)*time.Hour,
		time.Duration(cfg.Auth.RememberTTLHour)*time.Hour,
	)

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmqClient.NewActivityPublisher(mqConn, cfg.RabbitMQ.ActivityQueue)

	activityRepo := repository.NewActivityRepository(db)
	activityWorker := worker.NewActivityWorker(mqConn, activityRepo, cfg.RabbitMQ.ActivityQueue)
	if err := activityWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start activity worker failed: %w", err)
	}

	return &App{
		Config:         cfg,
		DB:             db,
		Redis:          redisCli,
		MQConn:         mqConn,
		Sessions:       sessions,
		Publisher:      publisher,
		ActivityWorker: activityWorker,
		StartedAt:      time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ActivityWorker != nil {
		a.ActivityWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ragdocs/internal/config"
	"ragdocs/internal/model"
	postgresClient "ragdocs/internal/platform/postgres"
	rabbitmqClient "ragdocs/internal/platform/rabbitmq"
	redisClient "ragdocs/internal/platform/redis"
	"ragdocs/internal/repository"
	"ragdocs/internal/worker"
)

type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	AuditWorker *worker.IngestAuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := postgresClient.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	if err := postgresClient.EnsureVectorExtension(db); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Document{}, &model.Chunk{}, &model.IngestEvent{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}
	if err := postgresClient.EnsureVectorIndex(db); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	eventRepo := repository.NewIngestEventRepository(db)
	auditWorker := worker.NewIngestAuditWorker(mqConn, eventRepo, cfg.RabbitMQ.IngestEventQueue)
	if err := auditWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest audit worker failed: %w", err)
	}

	return &App{
		Config:      cfg,
		DB:          db,
		Redis:       redisCli,
		MQConn:      mqConn,
		AuditWorker: auditWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
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

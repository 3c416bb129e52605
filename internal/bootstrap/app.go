package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"suggestboard/internal/cache"
	"suggestboard/internal/config"
	"suggestboard/internal/model"
	mysqlClient "suggestboard/internal/platform/mysql"
	rabbitmqClient "suggestboard/internal/platform/rabbitmq"
	redisClient "suggestboard/internal/platform/redis"
	"suggestboard/internal/pubsub"
	"suggestboard/internal/worker"
)

type App struct {
	Config    *config.Config
	MySQL     *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection
	Hub       *pubsub.Hub
	UserCache *cache.UserListCache
	Worker    *worker.UserEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.MySQL.MaxIdleConns, cfg.MySQL.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Board{}, &model.Suggestion{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	userCache := cache.NewUserListCache(redisCli, time.Duration(cfg.Redis.UserListTTLSeconds)*time.Second)

	eventWorker := worker.NewUserEventWorker(mqConn, userCache, cfg.RabbitMQ.UserAddedQueue)
	if err := eventWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start user event worker failed: %w", err)
	}

	return &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		Hub:       pubsub.NewHub(),
		UserCache: userCache,
		Worker:    eventWorker,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Worker != nil {
		a.Worker.Close()
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
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

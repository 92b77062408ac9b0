package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/database"
	"github.com/oracle312/AuthService/internal/domain"
	"github.com/oracle312/AuthService/internal/handler"
	"github.com/oracle312/AuthService/internal/mail"
	"github.com/oracle312/AuthService/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}

// run returns an error for every startup failure so that main exits non-zero
// after the deferred closes have run.
func run(logger *slog.Logger) error {
	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		// 签名配置无效时不允许启动
		return fmt.Errorf("无法加载配置文件: %w", err)
	}

	/**********************************************
	 * 连接数据库并执行迁移
	 **********************************************/
	dbpool, err := database.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("无法连接到数据库: %w", err)
	}
	defer dbpool.Close()

	if _, err := database.Migrate(context.Background(), dbpool, cfg.Database.Driver); err != nil {
		return fmt.Errorf("无法执行数据库迁移: %w", err)
	}

	/**********************************************
	 * 创建 repository
	 **********************************************/
	store := repository.NewStore(cfg, dbpool)

	/**********************************************
	 * 连接 redis（可选）
	 **********************************************/
	var guard auth.SignupGuard = auth.NopGuard{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("无法连接到 redis: %w", err)
		}

		guard = auth.NewRedisGuard(rdb, time.Duration(cfg.Redis.LockTTL)*time.Second)
		logger.Info("已启用注册锁", "addr", cfg.Redis.Addr)
	}

	/**********************************************
	 * 连接 rabbitmq（可选）
	 **********************************************/
	var publisher auth.MailPublisher = mail.NopPublisher{}
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			return fmt.Errorf("无法连接到 rabbitmq: %w", err)
		}
		defer conn.Close()

		// 建立通道
		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("无法建立通道: %w", err)
		}
		defer ch.Close()

		// 声明队列
		if _, err := mail.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			return fmt.Errorf("无法声明队列: %w", err)
		}

		publisher = mail.NewAMQPPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	}

	/**********************************************
	 * 创建认证组件
	 **********************************************/
	authenticator, err := auth.NewAuthenticator(cfg, store, guard, publisher)
	if err != nil {
		return fmt.Errorf("无法创建认证器: %w", err)
	}
	issuer := auth.NewTokenIssuer(cfg)

	/**********************************************
	 * 确保数据库中存在初始账户
	 **********************************************/
	if cfg.InitialAccount.Username != "" {
		_, err := authenticator.Signup(context.Background(), auth.SignupInput{
			Username: cfg.InitialAccount.Username,
			Password: cfg.InitialAccount.Password,
			Name:     cfg.InitialAccount.Name,
			Email:    cfg.InitialAccount.Email,
		})
		switch {
		case err == nil:
			logger.Info("已创建初始账户", "username", cfg.InitialAccount.Username)
		case errors.Is(err, domain.ErrDuplicateUser):
			// 说明数据库中已经存在初始账户，不处理
		default:
			return fmt.Errorf("无法创建初始账户: %w", err)
		}
	}

	/**********************************************
	 * 创建 handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, authenticator, issuer)
	if err != nil {
		return fmt.Errorf("无法创建 handler: %w", err)
	}
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("无法启动服务器: %w", err)
	case <-quit:
	}
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	logger.Info("服务器已成功关闭")
	return nil
}

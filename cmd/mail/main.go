package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oracle312/AuthService/internal/config"
	"github.com/oracle312/AuthService/internal/mail"
	amqp "github.com/rabbitmq/amqp091-go"
	gomail "github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err == nil {
		err = validateMailConfig(cfg)
	}
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := gomail.NewClient(cfg.Email.SMTP.Host,
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithSSL(),
		gomail.WithPort(cfg.Email.SMTP.Port),
		gomail.WithUsername(cfg.Email.SMTP.Username),
		gomail.WithPassword(cfg.Email.SMTP.Password),
		gomail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancelDial := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancelDial()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		os.Exit(1)
	}
	_ = client.Close()

	worker, err := mail.NewWorker(client, cfg.Email.SMTP.Username)
	if err != nil {
		logger.Error("无法创建 mail worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ch.Close()

	// 声明队列
	q, err := mail.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 非独占
		false,  // RabbitMQ 不支持 noLocal
		false,  // 等待 RabbitMQ 响应
		nil,
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx, msgs)
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待消息...（按 CTRL+C 退出）", "queue", q.Name)
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker 已成功关闭")
}

func validateMailConfig(cfg *config.Config) error {
	switch {
	case cfg.RabbitMQ.DSN == "":
		return errors.New("RABBITMQ_DSN is required by the mail worker")
	case cfg.Email.SMTP.Host == "":
		return errors.New("EMAIL_SMTP_HOST is required by the mail worker")
	case cfg.Email.SMTP.Username == "":
		return errors.New("EMAIL_SMTP_USERNAME is required by the mail worker")
	}
	return nil
}

package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oracle312/AuthService/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQPPublisher struct {
	ch      Channel
	queue   string
	timeout time.Duration
}

func NewAMQPPublisher(ch Channel, queue string, timeout time.Duration) *AMQPPublisher {
	return &AMQPPublisher{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg domain.MailMessage) error {
	// 序列化邮件
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish mail message: %w", err)
	}

	return nil
}

// NopPublisher drops every message. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.MailMessage) error {
	return nil
}

// DeclareQueue declares the durable mail queue shared by the API and the worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // 持久化
		false, // 没有消费者时不自动删除
		false, // 非独占
		false, // 等待 RabbitMQ 确认
		nil,
	)
}

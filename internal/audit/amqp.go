package audit

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	xerrors "OpenWeb3-Client/internal/errors"
)

// AMQPConfig describes the broker connection for the audit publisher.
type AMQPConfig struct {
	URL        string
	Queue      string
	Durable    bool
	AutoDelete bool
}

// AMQPPublisher forwards audit records to a RabbitMQ queue so downstream
// consumers can process them out of band.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPPublisher dials the broker and declares the queue.
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.URL == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "audit amqp url cannot be empty")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "openweb3.rpc-audit"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "dial amqp broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "open amqp channel")
	}
	if _, err := ch.QueueDeclare(queue, cfg.Durable, cfg.AutoDelete, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, xerrors.Wrap(xerrors.CodeAuditFailure, err, "declare audit queue")
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Record implements the Recorder interface.
func (p *AMQPPublisher) Record(ctx context.Context, rec Record) error {
	if p == nil || p.ch == nil {
		return xerrors.New(xerrors.CodeAuditFailure, "audit publisher is not initialised")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "encode audit record")
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return xerrors.Wrap(xerrors.CodeAuditFailure, err, "publish audit record")
	}
	return nil
}

// Close tears the channel and connection down.
func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

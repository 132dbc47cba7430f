package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of pgxpool.Pool the Postgres output needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresOutput appends events to the order_events table.
type PostgresOutput struct {
	db      Execer
	timeout time.Duration
	closeFn func()
}

func NewPostgresOutput(db Execer, closeFn func()) *PostgresOutput {
	return &PostgresOutput{db: db, timeout: 5 * time.Second, closeFn: closeFn}
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	var head struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return fmt.Errorf("decode %s event: %w", topic, err)
	}
	return p.WriteKeyedMessage(topic, head.OrderID, msg)
}

func (p *PostgresOutput) WriteKeyedMessage(topic, key string, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	_, err := p.db.Exec(ctx,
		`INSERT INTO order_events (topic, order_id, payload) VALUES ($1, $2, $3)`,
		topic, key, string(msg))
	if err != nil {
		return fmt.Errorf("failed to insert into order_events: %w", err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}

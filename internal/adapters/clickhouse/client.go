package clickhouse

import (
	"context"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/internal/adapters/config"
	"github.com/selivandex/edge-tracker/pkg/logger"
)

// Client wraps a sqlx ClickHouse connection for the equity time series
type Client struct {
	conn *sqlx.DB
}

// New creates new ClickHouse connection
func New(cfg *config.ClickHouseConfig) (*Client, error) {
	conn, err := sqlx.Open("clickhouse", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ClickHouse ping failed: %w", err)
	}

	logger.Info("ClickHouse connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return &Client{conn: conn}, nil
}

// DB returns the sqlx handle
func (c *Client) DB() *sqlx.DB {
	return c.conn
}

// Close closes the connection
func (c *Client) Close() error {
	if c.conn != nil {
		logger.Info("closing ClickHouse connection")
		return c.conn.Close()
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin-api/pkg/config"
)

func TestConnectWithRetryEventuallySucceeds(t *testing.T) {
	cfg := config.DatabaseConfig{ConnectRetries: 3, ConnectRetryDelay: time.Millisecond}
	calls := 0
	want := &sqlx.DB{}
	db, err := connectWithRetry(context.Background(), cfg, zap.NewNop(), func(config.DatabaseConfig) (*sqlx.DB, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return want, nil
	})
	require.NoError(t, err)
	assert.Same(t, want, db)
	assert.Equal(t, 3, calls)
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	cfg := config.DatabaseConfig{ConnectRetries: 2, ConnectRetryDelay: time.Millisecond}
	calls := 0
	_, err := connectWithRetry(context.Background(), cfg, nil, func(config.DatabaseConfig) (*sqlx.DB, error) {
		calls++
		return nil, errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestConnectWithRetryHonoursCancellation(t *testing.T) {
	cfg := config.DatabaseConfig{ConnectRetries: 5, ConnectRetryDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := connectWithRetry(ctx, cfg, nil, func(config.DatabaseConfig) (*sqlx.DB, error) {
		return nil, errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", dsn)
}

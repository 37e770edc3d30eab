package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emojilens/backend/internal/logger"
	"github.com/emojilens/backend/internal/models"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrPersistenceDisabled is returned when a session is requested while no
// DATABASE_URL is configured.
var ErrPersistenceDisabled = errors.New("DATABASE_URL is not configured - Postgres persistence is disabled")

// Gateway is the optional persistence port. The zero value and Disabled()
// are the disabled variant; Connect and New return the enabled one.
type Gateway struct {
	conn *gorm.DB
}

// Disabled returns a gateway on which every session request fails.
func Disabled() *Gateway {
	return &Gateway{}
}

// New wraps an already opened connection.
func New(conn *gorm.DB) *Gateway {
	return &Gateway{conn: conn}
}

// Connect opens the gateway for databaseURL. An empty URL yields the disabled
// gateway without error.
func Connect(databaseURL string) (*Gateway, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return Disabled(), nil
	}

	dsn, err := NormalizeDSN(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info("Database connected successfully", nil)
	return New(conn), nil
}

// NormalizeDSN turns a postgres URL into a key/value DSN. SQLAlchemy style
// schemes such as postgresql+psycopg2:// are accepted. Non-URL input is
// passed through unchanged.
func NormalizeDSN(databaseURL string) (string, error) {
	raw := strings.TrimSpace(databaseURL)
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw, nil
	}
	if driver, _, found := strings.Cut(scheme, "+"); found {
		scheme = driver
	}
	switch scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("unsupported scheme %q", scheme)
	}
	return pq.ParseURL("postgres://" + rest)
}

// Enabled is the capability probe for persistence.
func (g *Gateway) Enabled() bool {
	return g != nil && g.conn != nil
}

// Session runs fn inside a transaction bound to ctx. The transaction commits
// when fn returns nil and rolls back on error or panic; the connection goes
// back to the pool on every path.
func (g *Gateway) Session(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if !g.Enabled() {
		return ErrPersistenceDisabled
	}
	return g.conn.WithContext(ctx).Transaction(fn)
}

// AutoMigrate creates the analysis_results table if it is absent.
func (g *Gateway) AutoMigrate() error {
	if !g.Enabled() {
		return ErrPersistenceDisabled
	}
	if err := g.conn.AutoMigrate(&models.AnalysisRecord{}); err != nil {
		return fmt.Errorf("migrate analysis_results: %w", err)
	}
	logger.Info("Database migrated successfully", map[string]interface{}{
		"table": models.AnalysisRecord{}.TableName(),
	})
	return nil
}

// Ping checks that the enabled database answers.
func (g *Gateway) Ping(ctx context.Context) error {
	if !g.Enabled() {
		return ErrPersistenceDisabled
	}
	sqlDB, err := g.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (g *Gateway) Close() error {
	if !g.Enabled() {
		return nil
	}
	sqlDB, err := g.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

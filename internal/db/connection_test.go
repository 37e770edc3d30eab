package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockGateway(t *testing.T, monitorPings bool) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(monitorPings))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return New(conn), mock
}

func TestConnectWithoutURLIsDisabled(t *testing.T) {
	gw, err := Connect("   ")
	require.NoError(t, err)
	assert.False(t, gw.Enabled())
	assert.NoError(t, gw.Close())
}

func TestDisabledGatewayRefusesSessions(t *testing.T) {
	gw := Disabled()

	called := false
	err := gw.Session(context.Background(), func(tx *gorm.DB) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrPersistenceDisabled)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.False(t, called, "session body must not run when persistence is disabled")
	assert.ErrorIs(t, gw.AutoMigrate(), ErrPersistenceDisabled)
	assert.ErrorIs(t, gw.Ping(context.Background()), ErrPersistenceDisabled)
}

func TestNilGatewayIsDisabled(t *testing.T) {
	var gw *Gateway
	assert.False(t, gw.Enabled())
}

func TestSessionCommitsOnSuccess(t *testing.T) {
	gw, mock := newMockGateway(t, false)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := gw.Session(context.Background(), func(tx *gorm.DB) error { return nil })

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRollsBackOnError(t *testing.T) {
	gw, mock := newMockGateway(t, false)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := gw.Session(context.Background(), func(tx *gorm.DB) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRollsBackOnPanic(t *testing.T) {
	gw, mock := newMockGateway(t, false)
	mock.ExpectBegin()
	mock.ExpectRollback()

	func() {
		defer func() {
			assert.NotNil(t, recover(), "panic should propagate")
		}()
		_ = gw.Session(context.Background(), func(tx *gorm.DB) error { panic("kaboom") })
	}()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	gw, mock := newMockGateway(t, true)
	mock.ExpectPing()

	assert.NoError(t, gw.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "postgres url",
			input: "postgres://user:pass@db:5432/emoji",
			want:  "dbname=emoji host=db password=pass port=5432 user=user",
		},
		{
			name:  "sqlalchemy driver suffix",
			input: "postgresql+psycopg2://user:pass@db/emoji",
			want:  "dbname=emoji host=db password=pass user=user",
		},
		{
			name:  "key value dsn passes through",
			input: "host=db user=user dbname=emoji",
			want:  "host=db user=user dbname=emoji",
		},
		{
			name:    "unsupported scheme",
			input:   "mysql://user@db/emoji",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDSN(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

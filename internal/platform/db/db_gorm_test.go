package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestBuildDSN はTCP・Cloud SQL両方のDSN生成を検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "tcp",
			cfg:  Config{User: "u", Password: "p", Name: "scanner", Host: "localhost", Port: "5433"},
			want: "host=localhost port=5433 user=u password=p dbname=scanner sslmode=disable TimeZone=UTC",
		},
		{
			name: "default port and explicit sslmode",
			cfg:  Config{User: "u", Password: "p", Name: "scanner", Host: "db", SSLMode: "require"},
			want: "host=db port=5432 user=u password=p dbname=scanner sslmode=require TimeZone=UTC",
		},
		{
			name: "cloud sql takes precedence over host/port",
			cfg:  Config{User: "u", Password: "p", Name: "scanner", Host: "localhost", Port: "5433", InstanceName: "proj:region:inst"},
			want: "host=/cloudsql/proj:region:inst port=5432 user=u password=p dbname=scanner sslmode=disable TimeZone=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 20*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_Timeout はタイムアウト後に最後のエラーが返されることを検証します。
func TestConnectWithRetry_Timeout(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	attempts := 0
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, refused
	})

	assert.ErrorIs(t, err, refused)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("INSTANCE_CONNECTION_NAME", "")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, Config{
		User: "envuser", Password: "envpass", Name: "envdb",
		Host: "envhost", Port: "5433", SSLMode: "require",
	}, cfg)
}

// TestMigrate はすべてのテーブルが作成されることを検証します。
func TestMigrate(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"candles", "signals", "symbols"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

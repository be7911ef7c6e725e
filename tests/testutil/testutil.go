// Package testutil provides common test utilities for the payment backend:
// database doubles, authenticated request helpers and polling assertions.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/arahumroh/backend/internal/infrastructure/auth"
	"github.com/arahumroh/backend/internal/infrastructure/config"
	"github.com/arahumroh/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestJWTSecret signs the tokens issued by NewJWTService
const TestJWTSecret = "testutil-secret-that-is-long-enough-1234"

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a GORM postgres dialect backed by sqlmock. The
// connection is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{
		DB:    gormDB,
		Mock:  mock,
		SqlDB: mockDB,
	}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens an in-memory SQLite database with the payment tables.
// A single connection keeps every query on the same in-memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// NewJWTService returns a JWT service signing with TestJWTSecret
func NewJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                TestJWTSecret,
		Issuer:                "arah-umroh-test",
		AccessTokenExpiration: time.Hour,
	})
}

// BearerToken issues an access token for the account and returns the
// Authorization header value.
func BearerToken(t *testing.T, svc *auth.JWTService, accountID uuid.UUID, email string) string {
	t.Helper()

	token, _, err := svc.GenerateAccessToken(auth.GenerateInput{
		AccountID: accountID,
		Email:     email,
		Name:      "Test Jamaah",
	})
	require.NoError(t, err)
	return "Bearer " + token
}

// NewTestUUID creates a deterministic UUID from a seed string.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
}

// ContextWithTimeout creates a context with a timeout that is cancelled on test cleanup.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or fails the test after timeout.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}

// AssertNever verifies a condition never becomes true within the duration.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			require.Fail(t, "Condition unexpectedly became true", msgAndArgs...)
			return
		}
		time.Sleep(interval)
	}
}

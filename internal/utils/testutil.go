package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDatabaseURL string

func init() {
	loadTestEnv()
}

// loadTestEnv loads the .env file and sets up test environment variables
func loadTestEnv() {
	// Try to load .env from project root (2 levels up from this file)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		// Try current directory as fallback
		godotenv.Load()
	}

	testDatabaseURL = os.Getenv("TEST_DATABASE_URL")
}

// SetupTestDB opens a connection to the test Postgres database, migrates the
// given models and truncates their tables for a clean state. Tests calling it
// are skipped when TEST_DATABASE_URL is not set.
func SetupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	if testDatabaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(testDatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to Postgres")

	require.NoError(t, db.AutoMigrate(models...), "Failed to migrate test schema")

	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(model))
		db.Exec("TRUNCATE TABLE " + stmt.Table + " CASCADE")
	}

	return db
}

// GetTestDatabaseURL returns the test Postgres URL for direct use if needed
func GetTestDatabaseURL() string {
	if testDatabaseURL == "" {
		loadTestEnv()
	}
	return testDatabaseURL
}

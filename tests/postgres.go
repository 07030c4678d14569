package tests

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prior-it/directory/postgres"
)

// DB connects to the database in DATABASE_URL and migrates a throwaway schema that is
// deleted when the test ends. The test is skipped when no database is configured.
func DB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()
	if err := godotenv.Load("../.env"); err != nil {
		t.Logf("Could not load the .env file: %v", err)
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("To test database functionality, set the DATABASE_URL env variable to a valid database")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := postgres.NewDB(ctx, url, schema)
	if err != nil {
		t.Fatalf("Cannot connect to the test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.DeleteSchema(context.Background(), schema); err != nil {
			t.Errorf("Cannot delete test schema: %v", err)
		}
		db.Close()
	})

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Cannot migrate the test database: %v", err)
	}
	return db
}

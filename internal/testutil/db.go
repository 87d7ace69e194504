package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestMongoEnv names the environment variable holding the MongoDB URI
// used by store and handler tests. Tests that need a database skip
// when it is unset, so the pure-policy suites run anywhere.
const TestMongoEnv = "TRIPDESK_TEST_MONGO_URI"

// SetupTestDB connects to the test MongoDB and returns a database
// unique to this test. The database is dropped and the client
// disconnected in cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(TestMongoEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping database-backed test", TestMongoEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connecting to test mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("pinging test mongo: %v", err)
	}

	dbName := "tripdesk_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(dbName)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a generous timeout for test
// database operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

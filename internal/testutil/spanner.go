// Package testutil holds helpers shared by the emulator-backed tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/models/m_outbox"
	"github.com/light-bringer/catalog-service/internal/models/m_product"
	"github.com/light-bringer/catalog-service/internal/models/m_tag"
)

const defaultTestDB = "projects/test-project/instances/test-instance/databases/catalog-test"

// SetupSpannerTest connects to the Spanner emulator and empties every
// table. The test is skipped when SPANNER_EMULATOR_HOST is unset.
func SetupSpannerTest(t *testing.T) *spanner.Client {
	t.Helper()
	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	client, err := spanner.NewClient(context.Background(), TestSpannerDB())
	require.NoError(t, err, "create Spanner client")

	CleanDatabase(t, client)
	t.Cleanup(func() {
		CleanDatabase(t, client)
		client.Close()
	})
	return client
}

// TestSpannerDB returns the emulator database path, overridable with
// CATALOG_TEST_SPANNER_DATABASE.
func TestSpannerDB() string {
	if db := os.Getenv("CATALOG_TEST_SPANNER_DATABASE"); db != "" {
		return db
	}
	return defaultTestDB
}

// CleanDatabase deletes all rows from the catalog tables.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()
	_, err := client.Apply(context.Background(), []*spanner.Mutation{
		spanner.Delete(m_outbox.TableName, spanner.AllKeys()),
		spanner.Delete(m_product.TableName, spanner.AllKeys()),
		spanner.Delete(m_tag.TableName, spanner.AllKeys()),
	})
	require.NoError(t, err, "clean database")
}

// CountOutboxEvents counts outbox rows of the given type.
func CountOutboxEvents(t *testing.T, client *spanner.Client, eventType string) int64 {
	t.Helper()
	stmt := spanner.Statement{
		SQL:    "SELECT COUNT(*) FROM outbox_events WHERE event_type = @type",
		Params: map[string]interface{}{"type": eventType},
	}
	iter := client.Single().Query(context.Background(), stmt)
	defer iter.Stop()
	row, err := iter.Next()
	require.NoError(t, err)
	var n int64
	require.NoError(t, row.Columns(&n))
	return n
}

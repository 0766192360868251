package main

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseDatabasePath(t *testing.T) {
	p, err := parseDatabasePath("projects/p1/instances/i1/databases/d1")
	require.NoError(t, err)
	assert.Equal(t, "projects/p1", p.projectName())
	assert.Equal(t, "projects/p1/instances/i1", p.instanceName())
	assert.Equal(t, "projects/p1/instances/i1/databases/d1", p.String())

	for _, bad := range []string{
		"",
		"projects/p1/instances/i1",
		"projects//instances/i1/databases/d1",
		"project/p1/instances/i1/databases/d1",
	} {
		_, err := parseDatabasePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitStatements(t *testing.T) {
	ddl := `-- products
CREATE TABLE a (
  id STRING(36) NOT NULL
) PRIMARY KEY (id);

-- index
CREATE INDEX idx_a ON a(id);
`
	stmts := splitStatements(ddl)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (\nid STRING(36) NOT NULL\n) PRIMARY KEY (id)", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", stmts[1])
}

func TestSplitStatements_SchemaFile(t *testing.T) {
	content, err := os.ReadFile("../../migrations/001_initial_schema.sql")
	require.NoError(t, err)

	stmts := splitStatements(string(content))
	require.NotEmpty(t, stmts)
	assert.Contains(t, stmts[0], "CREATE TABLE products")
	for _, s := range stmts {
		assert.NotContains(t, s, "--")
	}
}

func TestAlreadyApplied(t *testing.T) {
	assert.False(t, alreadyApplied(nil))
	assert.True(t, alreadyApplied(status.Error(codes.AlreadyExists, "exists")))
	assert.True(t, alreadyApplied(errors.New("Duplicate name in schema: products.")))
	assert.False(t, alreadyApplied(status.Error(codes.InvalidArgument, "bad ddl")))
}

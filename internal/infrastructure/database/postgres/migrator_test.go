package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/config"
	"github.com/turtacn/chemidr/pkg/errors"
)

func TestMigrationFiles_PairedUpAndDown(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups[strings.TrimSuffix(f, ".up.sql")] = true
		case strings.HasSuffix(f, ".down.sql"):
			downs[strings.TrimSuffix(f, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %q", f)
		}
	}
	assert.Equal(t, ups, downs)
	assert.True(t, ups["000001_create_resolution_tables"])
}

func TestMigrations_CreateResolutionTables(t *testing.T) {
	up, err := migrationFS.ReadFile("migrations/000001_create_resolution_tables.up.sql")
	require.NoError(t, err)
	for _, want := range []string{"resolution_runs", "resolved_identifiers", "query_key", "composite_id"} {
		assert.Contains(t, string(up), want)
	}

	down, err := migrationFS.ReadFile("migrations/000001_create_resolution_tables.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP TABLE")
}

func TestNewMigrator_NilPool(t *testing.T) {
	_, err := NewMigrator(nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func TestNewConnection_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := NewConnection(ctx, config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "u",
		Password: "p",
		DBName:   "chemidr",
		SSLMode:  "disable",
	}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
}

//Personal.AI order the ending

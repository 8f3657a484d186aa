package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableDefinition(t *testing.T, schema, table string) string {
	t.Helper()
	start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	require.GreaterOrEqual(t, start, 0, "table %s not found", table)
	end := strings.Index(schema[start:], ");")
	require.Greater(t, end, 0)
	return schema[start : start+end]
}

func TestInitSchema_LeadDeletionKeepsBookings(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	schema := string(raw)

	bookings := tableDefinition(t, schema, "bookings")
	assert.Contains(t, bookings, "lead_id UUID REFERENCES leads(id) ON DELETE SET NULL")
	assert.NotContains(t, bookings, "ON DELETE CASCADE")

	activities := tableDefinition(t, schema, "activities")
	assert.Contains(t, activities, "REFERENCES leads(id) ON DELETE CASCADE")
}
